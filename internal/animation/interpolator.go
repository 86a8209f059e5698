// Package animation holds the easing and fade-in arithmetic of the banner slide.
package animation

import (
	"fmt"
	"strings"
)

// Easing maps linear progress in [0,1] onto an eased progress in [0,1].
type Easing func(t float64) float64

// EasingByName resolves the easing names accepted in job files.
func EasingByName(name string) (Easing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return Linear, nil
	case "cubic", "ease-in-out":
		return EaseInOutCubic, nil
	default:
		return nil, fmt.Errorf("unknown easing: %s", name)
	}
}

// Linear is the identity easing.
func Linear(t float64) float64 {
	return clamp01(t)
}

// EaseInOutCubic applies smooth easing function
func EaseInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// Progress is the position of frame i in a sequence of total frames, 0 for the
// first frame and 1 for the last.
func Progress(i, total int) float64 {
	if total <= 1 {
		return 0
	}
	return float64(i) / float64(total-1)
}

// FadeStep is the share of full opacity reached at frame i: (i+1)/total, so the
// first frame is dim but visible and the last frame is fully opaque.
func FadeStep(i, total int) float64 {
	if total <= 0 {
		return 1
	}
	return float64(i+1) / float64(total)
}

// Lerp performs linear interpolation between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ScaleAlpha returns floor(max*step), the fade-in alpha for a channel whose fully
// visible value is max. The epsilon absorbs float error on exact products such as
// 180*0.7.
func ScaleAlpha(max uint8, step float64) uint8 {
	return uint8(float64(max)*clamp01(step) + 1e-9)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
