package core

import "math"

// Minutes is the unit every timestamp and duration in a trace is expressed in.
type Minutes = float64

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ApproxEqual reports whether a and b differ by less than tolerance.
func ApproxEqual(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) < tolerance
}
