package matrix

import (
	"golang.org/x/exp/constraints"
)

func clampNonNegative[T constraints.Signed](v T) T {
	if v < 0 {
		return 0
	}
	return v
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
