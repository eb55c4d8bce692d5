package swapper

import (
	"github.com/shopspring/decimal"
)

var bpsDivisor = decimal.NewFromInt(10000)

// SubtractBasisPointAmount returns amount minus bps basis points of it,
// rounded down to a whole base unit. Invalid input yields "0".
func SubtractBasisPointAmount(amount, bps string) string {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return "0"
	}
	b, err := decimal.NewFromString(bps)
	if err != nil {
		return "0"
	}
	out := a.Sub(a.Mul(b).Div(bpsDivisor)).Floor()
	if out.IsNegative() {
		return "0"
	}
	return out.String()
}

// ToPrecision converts a base-unit amount into a human amount.
func ToPrecision(baseUnit string, precision int32) decimal.Decimal {
	d, err := decimal.NewFromString(baseUnit)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-precision)
}

// ToBaseUnit converts a human amount into a truncated base-unit string.
func ToBaseUnit(amount decimal.Decimal, precision int32) string {
	return amount.Shift(precision).Truncate(0).String()
}

// InputOutputRatio is the buy amount per unit sold, in human units. Ratios
// are only compared across quotes for the same pair.
func InputOutputRatio(sellBaseUnit string, sellPrecision int32, buyBaseUnit string, buyPrecision int32) float64 {
	sell := ToPrecision(sellBaseUnit, sellPrecision)
	if !sell.IsPositive() {
		return 0
	}
	return ToPrecision(buyBaseUnit, buyPrecision).Div(sell).InexactFloat64()
}

// Rate is InputOutputRatio rendered as a decimal string.
func Rate(sellBaseUnit string, sellPrecision int32, buyBaseUnit string, buyPrecision int32) string {
	sell := ToPrecision(sellBaseUnit, sellPrecision)
	if !sell.IsPositive() {
		return "0"
	}
	return ToPrecision(buyBaseUnit, buyPrecision).Div(sell).String()
}
