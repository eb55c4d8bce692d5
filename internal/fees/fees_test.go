package fees

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateFeesNoStakeNoDiscount(t *testing.T) {
	c := NewCalculator(nil)
	res, err := c.CalculateFees(Input{
		TradeAmountUsd: decimal.NewFromInt(10000),
		FoxHeld:        decimal.Zero,
		ThorHeld:       decimal.Zero,
		FeeModel:       ModelSwapper,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.FeeBps.Equal(res.FeeBpsBeforeDiscount) {
		t.Fatalf("expected fee %s to equal fee before discount %s", res.FeeBps, res.FeeBpsBeforeDiscount)
	}
	if !res.FeeBpsBeforeDiscount.IsPositive() {
		t.Fatalf("expected positive fee at $10000, got %s", res.FeeBpsBeforeDiscount)
	}
}

func TestCalculateFeesFoxMonotonic(t *testing.T) {
	c := NewCalculator(nil)
	var prev Result
	for i, fox := range []int64{0, 1000, 10000, 100000, 500000, 999999} {
		res, err := c.CalculateFees(Input{
			TradeAmountUsd: decimal.NewFromInt(10000),
			FoxHeld:        decimal.NewFromInt(fox),
			FeeModel:       ModelSwapper,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i > 0 {
			if !res.FeeBps.LessThan(prev.FeeBps) {
				t.Fatalf("fox=%d: expected fee %s < %s", fox, res.FeeBps, prev.FeeBps)
			}
			if res.FeeBpsBeforeDiscount.LessThan(prev.FeeBpsBeforeDiscount) {
				t.Fatalf("fox=%d: fee before discount decreased", fox)
			}
		}
		prev = res
	}
}

func TestCalculateFeesFullDiscountFloorsAtZero(t *testing.T) {
	c := NewCalculator(nil)
	res, err := c.CalculateFees(Input{
		TradeAmountUsd: decimal.NewFromInt(10000),
		FoxHeld:        decimal.NewFromInt(5_000_000),
		FeeModel:       ModelSwapper,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.FeeBps.IsZero() {
		t.Fatalf("expected zero fee, got %s", res.FeeBps)
	}
	if res.AffiliateBps() != "0" {
		t.Fatalf("expected affiliate bps 0, got %s", res.AffiliateBps())
	}
}

func TestCalculateFeesThorswapUsesThorStake(t *testing.T) {
	c := NewCalculator(nil)
	base := Input{TradeAmountUsd: decimal.NewFromInt(10000), FeeModel: ModelThorswap}

	noStake, _ := c.CalculateFees(base)

	foxOnly := base
	foxOnly.FoxHeld = decimal.NewFromInt(500000)
	withFox, _ := c.CalculateFees(foxOnly)
	if !withFox.FeeBps.Equal(noStake.FeeBps) {
		t.Fatalf("fox stake should not discount THORSWAP: %s vs %s", withFox.FeeBps, noStake.FeeBps)
	}

	thor := base
	thor.ThorHeld = decimal.NewFromInt(5000)
	withThor, _ := c.CalculateFees(thor)
	if !withThor.FeeBps.LessThan(noStake.FeeBps) {
		t.Fatalf("thor stake should discount THORSWAP: %s vs %s", withThor.FeeBps, noStake.FeeBps)
	}
}

func TestCalculateFeesBelowThreshold(t *testing.T) {
	c := NewCalculator(nil)
	res, err := c.CalculateFees(Input{TradeAmountUsd: decimal.NewFromInt(10), FeeModel: ModelSwapper})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.FeeBpsBeforeDiscount.IsZero() || res.PotentialAffiliateBps() != "0" {
		t.Fatalf("expected no fee for small trades, got %s", res.FeeBpsBeforeDiscount)
	}
}

func TestCalculateFeesUnknownModel(t *testing.T) {
	if _, err := NewCalculator(nil).CalculateFees(Input{FeeModel: "NOPE"}); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestAffiliateBpsTruncates(t *testing.T) {
	r := Result{FeeBps: decimal.RequireFromString("48.97"), FeeBpsBeforeDiscount: decimal.RequireFromString("54.2")}
	if r.AffiliateBps() != "48" {
		t.Fatalf("expected 48, got %s", r.AffiliateBps())
	}
	if r.PotentialAffiliateBps() != "54" {
		t.Fatalf("expected 54, got %s", r.PotentialAffiliateBps())
	}
}

func TestNewCalculatorOverrides(t *testing.T) {
	c := NewCalculator(map[FeeModel]Parameters{
		ModelSwapper: {MaxFeeBps: 10, MinFeeBps: 10, MidpointUsd: 1, SteepnessK: 1},
	})
	res, err := c.CalculateFees(Input{TradeAmountUsd: decimal.NewFromInt(100), FeeModel: ModelSwapper})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AffiliateBps() != "10" {
		t.Fatalf("expected flat 10 bps, got %s", res.AffiliateBps())
	}
}
