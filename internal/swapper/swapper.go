// Package swapper defines the contracts shared by every swap provider.
package swapper

import (
	"context"
	"time"

	"swapscout/internal/domain"
)

// Swapper names as reported to clients and telemetry.
const (
	NameThorchain = "THORChain"
	NameZrx       = "0x"
	NameCowSwap   = "CoW Swap"
	NameLifi      = "LI.FI"
	NamePortals   = "Portals"
	NameChainflip = "Chainflip"
)

// DefaultPollingInterval applies to swappers without their own interval.
const DefaultPollingInterval = 20 * time.Second

// QuoteOrRate selects a firm quote (full account context) or an indicative rate.
type QuoteOrRate string

const (
	KindQuote QuoteOrRate = "quote"
	KindRate  QuoteOrRate = "rate"
)

// GetTradeQuoteInput is the normalized request every swapper receives.
type GetTradeQuoteInput struct {
	SellAsset                                     domain.Asset `json:"sell_asset"`
	BuyAsset                                      domain.Asset `json:"buy_asset"`
	SellAmountIncludingProtocolFeesCryptoBaseUnit string       `json:"sell_amount_including_protocol_fees_crypto_base_unit"`
	SellAccountNumber                             *int         `json:"sell_account_number,omitempty"`
	ReceiveAccountNumber                          *int         `json:"receive_account_number,omitempty"`
	SendAddress                                   string       `json:"send_address,omitempty"`
	ReceiveAddress                                string       `json:"receive_address,omitempty"`
	AllowMultiHop                                 bool         `json:"allow_multi_hop"`
	AffiliateBps                                  string       `json:"affiliate_bps"`
	PotentialAffiliateBps                         string       `json:"potential_affiliate_bps"`
	SlippageTolerancePercentageDecimal            string       `json:"slippage_tolerance_percentage_decimal,omitempty"`
	PubKey                                        string       `json:"pub_key,omitempty"`
	QuoteOrRate                                   QuoteOrRate  `json:"quote_or_rate"`
}

// QuoteError is a structured, per-swapper failure attached to an ApiQuote.
type QuoteError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ApiQuote is one swapper's answer: a quote, structured errors, or both.
type ApiQuote struct {
	ID               string        `json:"id"`
	SwapperName      string        `json:"swapper_name"`
	Quote            *domain.Quote `json:"quote,omitempty"`
	Errors           []QuoteError  `json:"errors"`
	InputOutputRatio float64       `json:"input_output_ratio"`
}

// IsStreaming reports the quote's streaming flag.
func (a ApiQuote) IsStreaming() bool { return a.Quote != nil && a.Quote.IsStreaming }

// IsLongtail reports the quote's longtail flag.
func (a ApiQuote) IsLongtail() bool { return a.Quote != nil && a.Quote.IsLongtail }

// IsActionable is true when a quote came back with no errors.
func (a ApiQuote) IsActionable() bool { return a.Quote != nil && len(a.Errors) == 0 }

// ErrorResult builds an ApiQuote carrying only err.
func ErrorResult(name string, err error) ApiQuote {
	code := CodeOf(err)
	if code == "" {
		code = CodeQueryFailed
	}
	return ApiQuote{
		SwapperName: name,
		Errors:      []QuoteError{{Code: code, Message: err.Error()}},
	}
}

// QuoteProvider is one swap provider polled by the aggregation engine.
// FetchQuote failures are returned as *SwapError.
type QuoteProvider interface {
	Name() string
	PollingInterval() time.Duration
	FetchQuote(ctx context.Context, input GetTradeQuoteInput) (*ApiQuote, error)
}

// AggregatorQuote is the best decentralized-exchange leg found for a longtail sell.
type AggregatorQuote struct {
	Aggregator      string `json:"aggregator"`
	QuotedAmountOut string `json:"quoted_amount_out"`
}
