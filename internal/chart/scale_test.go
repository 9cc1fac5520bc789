package chart

import "testing"

var view = View{Width: 600, Height: 220, Margin: 16}

func TestScaleEmpty(t *testing.T) {
	if got := Scale(nil, view); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestScaleSinglePointCentered(t *testing.T) {
	got := Scale([]int{7}, view)
	if len(got) != 1 {
		t.Fatalf("expected one point, got %d", len(got))
	}
	if got[0].X != view.Width/2 {
		t.Fatalf("x = %v, want %v", got[0].X, view.Width/2)
	}
	if got[0].Y != view.Height/2 {
		t.Fatalf("y = %v, want midline %v", got[0].Y, view.Height/2)
	}
}

func TestScaleFlatSeriesMidline(t *testing.T) {
	got := Scale([]int{5, 5, 5, 5}, view)
	for i, p := range got {
		if p.Y != view.Height/2 {
			t.Fatalf("point %d: y = %v, want midline %v", i, p.Y, view.Height/2)
		}
	}
}

func TestScaleInvertsY(t *testing.T) {
	got := Scale([]int{0, 10}, view)
	if got[0].Y != view.Height-view.Margin {
		t.Fatalf("min value y = %v, want %v", got[0].Y, view.Height-view.Margin)
	}
	if got[1].Y != view.Margin {
		t.Fatalf("max value y = %v, want %v", got[1].Y, view.Margin)
	}
}

func TestScaleSpreadsXAcrossInnerWidth(t *testing.T) {
	got := Scale([]int{1, 2, 3}, view)
	if got[0].X != view.Margin {
		t.Fatalf("first x = %v, want %v", got[0].X, view.Margin)
	}
	if got[2].X != view.Width-view.Margin {
		t.Fatalf("last x = %v, want %v", got[2].X, view.Width-view.Margin)
	}
	mid := view.Margin + (view.Width-2*view.Margin)/2
	if got[1].X != mid {
		t.Fatalf("middle x = %v, want %v", got[1].X, mid)
	}
}
