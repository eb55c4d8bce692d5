package thorchain

import (
	"swapscout/internal/swapper"

	"github.com/shopspring/decimal"
)

// GetLimitWithManualSlippage is the minimum acceptable output (THOR base
// units) for a user-chosen slippage, rounded down.
func GetLimitWithManualSlippage(expectedAmountOutThorBaseUnit string, slippageBps string) string {
	expected, err := decimal.NewFromString(expectedAmountOutThorBaseUnit)
	if err != nil {
		return "0"
	}
	return swapper.SubtractBasisPointAmount(expected.Floor().String(), slippageBps)
}

// slippageBps converts a percentage decimal ("0.01" = 1%) into basis points.
func slippageBps(percentageDecimal string) (string, bool) {
	if percentageDecimal == "" {
		return "", false
	}
	d, err := decimal.NewFromString(percentageDecimal)
	if err != nil || d.IsNegative() {
		return "", false
	}
	return d.Mul(decimal.NewFromInt(10000)).Truncate(0).String(), true
}
