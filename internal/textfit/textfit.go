// Package textfit picks the largest font size, from a descending search, at which a
// string fits inside a width/height budget.
package textfit

// Measurer reports the ink bounding box of text rendered at a pixel size.
type Measurer interface {
	Measure(text string, size int) (width, height int)
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(text string, size int) (int, int)

func (f MeasurerFunc) Measure(text string, size int) (int, int) { return f(text, size) }

// Params configures one search.
type Params struct {
	Start     int     // first candidate size
	Min       int     // floor; the result is never below it
	MaxWidth  float64 // exclusive width budget in pixels
	MaxHeight float64 // exclusive height budget in pixels
	Divisor   int     // each step shrinks by max(1, size/Divisor)
}

// Layout is the outcome of a search.
type Layout struct {
	Size    int
	Width   int
	Height  int
	Fits    bool // false when the floor was reached without fitting
	Attempt int  // number of measurements taken
}

// Fit runs the descending search. It is not a binary search: sizes decrease by a
// proportional step until the text fits or the floor is hit, so the number of
// iterations is bounded by Start-Min.
func Fit(m Measurer, text string, p Params) Layout {
	if p.Min < 1 {
		p.Min = 1
	}
	if p.Start < p.Min {
		p.Start = p.Min
	}
	if p.Divisor < 1 {
		p.Divisor = 1
	}

	size := p.Start
	attempts := 0
	for {
		w, h := m.Measure(text, size)
		attempts++
		if float64(w) < p.MaxWidth && float64(h) < p.MaxHeight {
			return Layout{Size: size, Width: w, Height: h, Fits: true, Attempt: attempts}
		}

		if size == p.Min {
			return Layout{Size: size, Width: w, Height: h, Fits: false, Attempt: attempts}
		}

		size -= max(1, size/p.Divisor)
		if size < p.Min {
			// Floor reached: accept the minimum as-is.
			w, h = m.Measure(text, p.Min)
			attempts++
			fits := float64(w) < p.MaxWidth && float64(h) < p.MaxHeight
			return Layout{Size: p.Min, Width: w, Height: h, Fits: fits, Attempt: attempts}
		}
	}
}

// Animated returns the search parameters used for frames of the animated banner:
// start at 35% of the smaller canvas side, keep text under 90% of the width and
// half of the height, never go below 5% of the smaller side.
func Animated(width, height int) Params {
	short := min(width, height)
	return Params{
		Start:     int(float64(short) * 0.35),
		Min:       int(float64(short) * 0.05),
		MaxWidth:  float64(width) * 0.90,
		MaxHeight: float64(height) * 0.50,
		Divisor:   15,
	}
}

// Banner returns the search parameters for text inside a bottom banner strip.
func Banner(width, bannerHeight int) Params {
	return Params{
		Start:     int(float64(bannerHeight) * 1.1),
		Min:       int(float64(bannerHeight) * 0.80),
		MaxWidth:  float64(width) * 0.99,
		MaxHeight: float64(bannerHeight) * 0.98,
		Divisor:   10,
	}
}
