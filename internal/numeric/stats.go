// Package numeric is the shared quantitative toolkit: scalar statistics,
// least-squares fits, the bi-exponential fitness-fatigue model, and exact
// volume distribution. Everything here is pure and order-insensitive.
package numeric

import "math"

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round rounds half away from zero to the nearest integer.
func Round(v float64) int {
	return int(math.Round(v))
}

// GrowthRate returns the relative change from a to b ((b−a)/a), or 0 when a
// is not positive.
func GrowthRate(a, b float64) float64 {
	if a <= 0 {
		return 0
	}
	return (b - a) / a
}
