package math3d

import "golang.org/x/exp/constraints"

// Clamp limits x to the inclusive range [lo, hi].
func Clamp[T constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Smoothstep clamps x to [lo, hi] and returns the cubic Hermite ease
// 3t² - 2t³ with t = (x-lo)/(hi-lo). It is 0 at lo, 1 at hi and C¹ continuous.
// lo must be less than hi.
func Smoothstep(lo, hi, x float64) float64 {
	p := Clamp(x, lo, hi)
	t := (p - lo) / (hi - lo)
	t2 := t * t
	return 3*t2 - 2*t*t2
}

// Lerp returns a + (b-a)*t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
