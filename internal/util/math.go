package util

import "golang.org/x/exp/constraints"

// Clamp bounds v to [lo, hi]. Inverted bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if lo > hi {
		lo, hi = hi, lo
	}
	return min(max(v, lo), hi)
}
