// Package chart maps reconstructed stock series into bounded viewbox
// coordinates for dashboard rendering.
package chart

// PixelPoint is a single chart coordinate inside the viewbox.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// View describes the target viewbox.
type View struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// Scale maps each (index, value) pair into viewbox coordinates. X is spread
// evenly across [margin, width-margin] by index; Y maps [min, max] linearly
// onto [height-margin, margin] so higher values render higher on screen. A
// flat series lands on the vertical midline, a single point is centered
// horizontally.
func Scale(values []int, v View) []PixelPoint {
	n := len(values)
	if n == 0 {
		return []PixelPoint{}
	}

	min, max := values[0], values[0]
	for _, val := range values[1:] {
		if val < min {
			min = val
		}
		if val > max {
			max = val
		}
	}

	innerW := v.Width - 2*v.Margin
	innerH := v.Height - 2*v.Margin
	span := max - min

	out := make([]PixelPoint, n)
	for i, val := range values {
		x := v.Width / 2
		if n > 1 {
			x = v.Margin + float64(i)*innerW/float64(n-1)
		}
		norm := 0.5
		if span != 0 {
			norm = float64(val-min) / float64(span)
		}
		y := v.Height - v.Margin - norm*innerH
		out[i] = PixelPoint{X: x, Y: y}
	}
	return out
}
