package domain

import "swapscout/internal/caip"

// HopStep is one leg of a trade route. Hop N must settle before hop N+1 begins.
type HopStep struct {
	SellAsset                                     Asset  `json:"sell_asset"`
	BuyAsset                                      Asset  `json:"buy_asset"`
	SellAmountIncludingProtocolFeesCryptoBaseUnit string `json:"sell_amount_including_protocol_fees_crypto_base_unit"`
	BuyAmountBeforeFeesCryptoBaseUnit             string `json:"buy_amount_before_fees_crypto_base_unit"`
	BuyAmountAfterFeesCryptoBaseUnit              string `json:"buy_amount_after_fees_crypto_base_unit"`
	Rate                                          string `json:"rate"`
	AllowanceContract                             string `json:"allowance_contract"`
	Source                                        string `json:"source"`
	EstimatedExecutionTimeMs                      int64  `json:"estimated_execution_time_ms,omitempty"`
	Memo                                          string `json:"memo,omitempty"`
}

// LongtailData carries the expected output of the decentralized-exchange leg.
type LongtailData struct {
	LongtailToL1ExpectedAmountOut string `json:"longtail_to_l1_expected_amount_out"`
}

// Quote is an immutable swapper answer: one or more ordered hops plus metadata.
// Re-fetching produces a new Quote; existing values are never mutated.
type Quote struct {
	ID                                 string        `json:"id"`
	SwapperName                        string        `json:"swapper_name"`
	Steps                              []HopStep     `json:"steps"`
	Rate                               string        `json:"rate"`
	Receiver                           string        `json:"receiver,omitempty"`
	AffiliateBps                       string        `json:"affiliate_bps"`
	PotentialAffiliateBps              string        `json:"potential_affiliate_bps,omitempty"`
	SlippageTolerancePercentageDecimal string        `json:"slippage_tolerance_percentage_decimal,omitempty"`
	IsStreaming                        bool          `json:"is_streaming"`
	IsLongtail                         bool          `json:"is_longtail"`
	LongtailData                       *LongtailData `json:"longtail_data,omitempty"`
	Aggregator                         string        `json:"aggregator,omitempty"`
	TradeType                          string        `json:"trade_type,omitempty"`
	// Executable marks a firm quote (built with full account context) as opposed to a rate.
	Executable bool `json:"executable"`
}

// IsExecutable reports whether q is a firm, signable quote rather than an indicative rate.
func (q *Quote) IsExecutable() bool {
	return q != nil && q.Executable && q.Receiver != ""
}

// FirstHop returns the first step, or nil when the quote has no steps.
func (q *Quote) FirstHop() *HopStep {
	if q == nil || len(q.Steps) == 0 {
		return nil
	}
	return &q.Steps[0]
}

// LastHop returns the final step, or nil when the quote has no steps.
func (q *Quote) LastHop() *HopStep {
	if q == nil || len(q.Steps) == 0 {
		return nil
	}
	return &q.Steps[len(q.Steps)-1]
}

// Clone returns a deep copy so callers can derive new quotes without aliasing steps.
func (q Quote) Clone() Quote {
	out := q
	out.Steps = append([]HopStep(nil), q.Steps...)
	if q.LongtailData != nil {
		ld := *q.LongtailData
		out.LongtailData = &ld
	}
	return out
}

// ExecutionState is the per-hop state owned by the execution state machine.
type ExecutionState string

const (
	HopAwaitingInput ExecutionState = "awaiting_input"
	HopAwaitingSwap  ExecutionState = "awaiting_swap"
	HopExecuting     ExecutionState = "executing"
	HopComplete      ExecutionState = "complete"
	HopFailed        ExecutionState = "failed"
)

// IsValid reports whether s is a known execution state.
func (s ExecutionState) IsValid() bool {
	switch s {
	case HopAwaitingInput, HopAwaitingSwap, HopExecuting, HopComplete, HopFailed:
		return true
	default:
		return false
	}
}

// HopKey identifies one hop of one trade.
type HopKey struct {
	TradeID  string `json:"trade_id"`
	HopIndex int    `json:"hop_index"`
}

// AssetRef is the (asset, chain) pair reported in telemetry.
type AssetRef struct {
	AssetID caip.AssetID `json:"asset_id"`
	ChainID caip.ChainID `json:"chain_id"`
}
