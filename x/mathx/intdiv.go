package mathx

import "golang.org/x/exp/constraints"

// RoundDiv returns a/b rounded half-up, for non-negative operands.
// b == 0 yields 0.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
