package calc

import (
	"math"

	"statement_scraper/pkg/core/features"
	"statement_scraper/pkg/core/schema"
)

// =============================================================================
// RATIO HELPERS
// =============================================================================

// Ratio divides numerator by denominator. A zero denominator or a NaN
// operand yields NaN: the metric is undefined for that period.
func Ratio(numerator, denominator float64) float64 {
	if denominator == 0 || math.IsNaN(numerator) || math.IsNaN(denominator) {
		return math.NaN()
	}
	return numerator / denominator
}

// Eval sums the signed feature terms of expr over one features row. An
// absent feature makes the whole expression NaN.
func Eval(expr schema.Expr, row features.Row) float64 {
	var sum float64
	for _, t := range expr {
		v, ok := row.Get(t.Feature)
		if !ok {
			return math.NaN()
		}
		sum += t.Sign * v
	}
	return sum
}
