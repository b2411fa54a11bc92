package numeric

import (
	"math"

	"golang.org/x/exp/constraints"
)

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AlignUp rounds n up to the next multiple of align.
func AlignUp[T constraints.Integer](n, align T) T {
	if align <= 0 {
		return n
	}
	return ((n + align - 1) / align) * align
}

// MaxAbsDiff returns max|a[i]-b[i]| over the common length.
func MaxAbsDiff[T constraints.Float](a, b []T) T {
	var m T
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		d := T(math.Abs(float64(a[i] - b[i])))
		if d > m {
			m = d
		}
	}
	return m
}
