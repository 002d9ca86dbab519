// Package money holds the decimal conventions shared by the settlement
// pipeline: arbitrary-precision arithmetic everywhere, rounding to two
// places only at the output boundary.
package money

import "github.com/shopspring/decimal"

// Zero is the additive identity for accumulators.
var Zero = decimal.Zero

// Round2 rounds a value to two decimal places (half away from zero).
// Intermediate results must never pass through it; only values leaving
// the pipeline are rounded.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// WeightedShare returns price * weight / totalWeight at full precision.
func WeightedShare(price, weight, totalWeight decimal.Decimal) decimal.Decimal {
	return price.Mul(weight).Div(totalWeight)
}

// EvenShare returns price / n at full precision.
func EvenShare(price decimal.Decimal, n int) decimal.Decimal {
	return price.Div(decimal.NewFromInt(int64(n)))
}

// Sum adds a list of values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
