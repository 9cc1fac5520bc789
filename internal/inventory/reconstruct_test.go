package inventory

import (
	"testing"
	"time"
)

func day(offset int) time.Time {
	return time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestReconstructIgnoresLaterStockValues(t *testing.T) {
	samples := []DaySample{
		{Day: day(0), Stock: 10, Sold: 0},
		{Day: day(1), Stock: 999, Sold: 3},
		{Day: day(2), Stock: 999, Sold: 2},
	}
	got := Reconstruct(samples)
	want := []int{10, 10, 7}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].DisplayStock != w {
			t.Fatalf("point %d: displayStock = %d, want %d", i, got[i].DisplayStock, w)
		}
	}
	if got[1].Sold != 3 || got[2].Sold != 2 {
		t.Fatalf("sold passthrough broken: %+v", got)
	}
}

func TestReconstructEmpty(t *testing.T) {
	if got := Reconstruct(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestReconstructSingleSample(t *testing.T) {
	got := Reconstruct([]DaySample{{Day: day(0), Stock: 5, Sold: 1}})
	if len(got) != 1 {
		t.Fatalf("expected one point, got %d", len(got))
	}
	if got[0].DisplayStock != 5 || got[0].Sold != 1 {
		t.Fatalf("unexpected point: %+v", got[0])
	}
}

func TestLabelsShortSeriesLabelsEverySample(t *testing.T) {
	samples := []DaySample{
		{Day: day(0)}, {Day: day(1)}, {Day: day(2)},
	}
	got := Labels(samples, 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 labels, got %v", got)
	}
	if got[0] != "2026-08-01" || got[2] != "2026-08-03" {
		t.Fatalf("unexpected labels: %v", got)
	}
}

func TestLabelsLongSeriesKeepsEndpoints(t *testing.T) {
	samples := make([]DaySample, 30)
	for i := range samples {
		samples[i] = DaySample{Day: day(i)}
	}
	got := Labels(samples, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 labels, got %d: %v", len(got), got)
	}
	if got[0] != samples[0].Day.Format("2006-01-02") {
		t.Fatalf("first label missing: %v", got)
	}
	if got[4] != samples[29].Day.Format("2006-01-02") {
		t.Fatalf("last label missing: %v", got)
	}
}

func TestLabelsSingleSlot(t *testing.T) {
	samples := []DaySample{
		{Day: day(0)}, {Day: day(1)}, {Day: day(2)},
	}
	got := Labels(samples, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 label, got %v", got)
	}
	if got[0] != "2026-08-01" {
		t.Fatalf("expected first day, got %v", got)
	}
}

func TestLabelsEmpty(t *testing.T) {
	if got := Labels(nil, 5); len(got) != 0 {
		t.Fatalf("expected no labels, got %v", got)
	}
}
