package inventory

import (
	"math"
	"time"
)

// DaySample is one calendar day of recorded stock and sales for a product.
type DaySample struct {
	Day   time.Time `json:"date"`
	Stock int       `json:"stock"`
	Sold  int       `json:"sold"`
}

// StockPoint is a reconstructed running stock level for one day.
type StockPoint struct {
	Day          time.Time `json:"date"`
	DisplayStock int       `json:"displayStock"`
	Sold         int       `json:"sold"`
}

// Reconstruct derives the displayed stock series from day samples. The first
// sample's stock is the anchor; every later day carries the previous display
// value minus the previous day's sales. Recorded stock values after day zero
// are deliberately ignored so the series stays internally consistent even
// when the source reports conflicting snapshots.
//
// This is the only reconstruction path in the codebase; every consumer must
// go through it rather than re-deriving the series.
func Reconstruct(samples []DaySample) []StockPoint {
	if len(samples) == 0 {
		return []StockPoint{}
	}
	out := make([]StockPoint, len(samples))
	out[0] = StockPoint{Day: samples[0].Day, DisplayStock: samples[0].Stock, Sold: samples[0].Sold}
	for i := 1; i < len(samples); i++ {
		out[i] = StockPoint{
			Day:          samples[i].Day,
			DisplayStock: out[i-1].DisplayStock - samples[i-1].Sold,
			Sold:         samples[i].Sold,
		}
	}
	return out
}

// Labels picks at most max evenly spaced day labels across the sample range,
// always keeping the first and last. Short series label every sample. Dates
// format as 2006-01-02.
func Labels(samples []DaySample, max int) []string {
	if max <= 0 {
		max = 5
	}
	n := len(samples)
	if n == 0 {
		return []string{}
	}
	if n <= max {
		out := make([]string, n)
		for i, s := range samples {
			out[i] = s.Day.Format("2006-01-02")
		}
		return out
	}
	// A single slot cannot hold both endpoints; the spacing formula below
	// also divides by max-1, so handle it before the loop.
	if max == 1 {
		return []string{samples[0].Day.Format("2006-01-02")}
	}
	out := make([]string, 0, max)
	prev := -1
	for i := 0; i < max; i++ {
		idx := int(math.Round(float64(i) * float64(n-1) / float64(max-1)))
		if idx == prev {
			continue
		}
		prev = idx
		out = append(out, samples[idx].Day.Format("2006-01-02"))
	}
	return out
}
