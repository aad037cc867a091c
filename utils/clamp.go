package utils

import "golang.org/x/exp/constraints"

// Clamp limits t to the interval spanned by min and max. The bounds may be given in either order.
func Clamp[T constraints.Integer | constraints.Float](t, min, max T) T {
	if min > max {
		min, max = max, min
	}
	if t < min {
		return min
	}
	if t > max {
		return max
	}
	return t
}

// ClampByte clamps an integer into the DMX range.
func ClampByte(v int) int {
	return Clamp(v, 0, 255)
}
