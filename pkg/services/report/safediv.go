package report

import "math"

// safeDiv returns nil instead of panicking or producing Inf/NaN: a zero or
// NaN denominator, or a NaN numerator, makes the KPI undefined.
func safeDiv(num, den float64) *float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return nil
	}
	v := num / den
	return &v
}
