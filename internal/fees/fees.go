// Package fees computes affiliate fees in basis points, discounted by the
// trader's governance stake (FOX or THOR voting power).
package fees

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// FeeModel names a fee tier table.
type FeeModel string

const (
	ModelSwapper  FeeModel = "SWAPPER"
	ModelThorswap FeeModel = "THORSWAP"
)

// Parameters shape the sigmoid fee curve and the stake discount of one model.
type Parameters struct {
	NoFeeThresholdUsd       float64
	MaxFeeBps               float64
	MinFeeBps               float64
	MidpointUsd             float64
	SteepnessK              float64
	FoxMaxDiscountThreshold float64
	ThorDiscountThreshold   float64
}

// DefaultParameters are used for models the catalog does not override.
var DefaultParameters = map[FeeModel]Parameters{
	ModelSwapper: {
		NoFeeThresholdUsd:       250,
		MaxFeeBps:               55,
		MinFeeBps:               20,
		MidpointUsd:             150_000,
		SteepnessK:              0.0000075,
		FoxMaxDiscountThreshold: 1_000_000,
	},
	ModelThorswap: {
		NoFeeThresholdUsd:       250,
		MaxFeeBps:               35,
		MinFeeBps:               15,
		MidpointUsd:             150_000,
		SteepnessK:              0.0000075,
		FoxMaxDiscountThreshold: 1_000_000,
		ThorDiscountThreshold:   10_000,
	},
}

// Input is one fee calculation request. Amounts are decimal strings or numbers.
type Input struct {
	TradeAmountUsd decimal.Decimal
	FoxHeld        decimal.Decimal
	ThorHeld       decimal.Decimal
	FeeModel       FeeModel
}

// Result carries the fee before and after the stake discount.
type Result struct {
	FeeBps               decimal.Decimal `json:"fee_bps"`
	FeeBpsBeforeDiscount decimal.Decimal `json:"fee_bps_before_discount"`
	FoxDiscountPercent   decimal.Decimal `json:"fox_discount_percent"`
}

// AffiliateBps renders FeeBps as a truncated, non-negative integer string.
func (r Result) AffiliateBps() string {
	return truncateBps(r.FeeBps)
}

// PotentialAffiliateBps renders FeeBpsBeforeDiscount the same way.
func (r Result) PotentialAffiliateBps() string {
	return truncateBps(r.FeeBpsBeforeDiscount)
}

func truncateBps(d decimal.Decimal) string {
	if d.IsNegative() {
		return "0"
	}
	return d.Truncate(0).String()
}

// Calculator evaluates fees against a set of model parameters.
type Calculator struct {
	params map[FeeModel]Parameters
}

// NewCalculator merges overrides on top of DefaultParameters.
func NewCalculator(overrides map[FeeModel]Parameters) *Calculator {
	params := make(map[FeeModel]Parameters, len(DefaultParameters)+len(overrides))
	for k, v := range DefaultParameters {
		params[k] = v
	}
	for k, v := range overrides {
		params[k] = v
	}
	return &Calculator{params: params}
}

// CalculateFees returns the fee for a trade. Unknown models are an error.
func (c *Calculator) CalculateFees(in Input) (Result, error) {
	p, ok := c.params[in.FeeModel]
	if !ok {
		return Result{}, fmt.Errorf("unknown fee model %q", in.FeeModel)
	}

	before := feeBeforeDiscount(p, in.TradeAmountUsd)

	held, threshold := in.FoxHeld, p.FoxMaxDiscountThreshold
	if in.FeeModel == ModelThorswap {
		held, threshold = in.ThorHeld, p.ThorDiscountThreshold
	}
	discount := discountFraction(held, threshold)

	fee := before.Mul(decimal.NewFromInt(1).Sub(discount))
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	return Result{
		FeeBps:               fee,
		FeeBpsBeforeDiscount: before,
		FoxDiscountPercent:   discount.Mul(decimal.NewFromInt(100)),
	}, nil
}

// feeBeforeDiscount is min + (max-min) / (1 + e^(k*(usd-midpoint))), zero below
// the no-fee threshold.
func feeBeforeDiscount(p Parameters, tradeAmountUsd decimal.Decimal) decimal.Decimal {
	usd := tradeAmountUsd.InexactFloat64()
	if usd < p.NoFeeThresholdUsd {
		return decimal.Zero
	}
	bps := p.MinFeeBps + (p.MaxFeeBps-p.MinFeeBps)/(1+math.Exp(p.SteepnessK*(usd-p.MidpointUsd)))
	return decimal.NewFromFloat(bps)
}

func discountFraction(held decimal.Decimal, threshold float64) decimal.Decimal {
	if threshold <= 0 || !held.IsPositive() {
		return decimal.Zero
	}
	frac := held.Div(decimal.NewFromFloat(threshold))
	one := decimal.NewFromInt(1)
	if frac.GreaterThan(one) {
		return one
	}
	return frac
}
