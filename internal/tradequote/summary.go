package tradequote

import (
	"sort"
	"time"

	"swapscout/internal/domain"
	"swapscout/internal/swapper"
	"swapscout/internal/telemetry"

	"github.com/google/uuid"
)

// SortApiQuotes orders quotes with a quote ahead of error-only results, then
// by InputOutputRatio, best first.
func SortApiQuotes(quotes []swapper.ApiQuote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		hasI, hasJ := quotes[i].Quote != nil, quotes[j].Quote != nil
		if hasI != hasJ {
			return hasI
		}
		return quotes[i].InputOutputRatio > quotes[j].InputOutputRatio
	})
}

// DifferenceFromBest is how much worse ratio is than best as a decimal
// fraction: 0 for the best quote, 0.05 for one 5% worse.
func DifferenceFromBest(ratio, best float64) float64 {
	if best == 0 {
		return 0
	}
	return (ratio/best - 1) * -1
}

// BuildQuotesReceivedEvent summarizes quotes, which must already be sorted
// best first, into a telemetry event.
func BuildQuotesReceivedEvent(quotes []swapper.ApiQuote, sell, buy domain.Asset, sellAmountUsd string) telemetry.QuotesReceivedEvent {
	var best float64
	if len(quotes) > 0 {
		best = quotes[0].InputOutputRatio
	}

	event := telemetry.QuotesReceivedEvent{
		ID:            uuid.NewString(),
		QuoteMeta:     make([]telemetry.QuoteMeta, 0, len(quotes)),
		SellAssetID:   sell.AssetID,
		BuyAssetID:    buy.AssetID,
		SellAmountUsd: sellAmountUsd,
		Version:       telemetry.SchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}
	event.SellAssetChainID = sell.AssetID.ChainID()
	event.BuyAssetChainID = buy.AssetID.ChainID()

	for _, q := range quotes {
		meta := telemetry.QuoteMeta{
			SwapperName:   q.SwapperName,
			QuoteReceived: q.Quote != nil,
			IsStreaming:   q.IsStreaming(),
			IsLongtail:    q.IsLongtail(),
			Errors:        make([]swapper.ErrorCode, 0, len(q.Errors)),
			IsActionable:  q.IsActionable(),
		}
		meta.DifferenceFromBestQuoteDecimalPercentage = DifferenceFromBest(q.InputOutputRatio, best)
		if q.Quote != nil {
			meta.TradeType = q.Quote.TradeType
		}
		for _, e := range q.Errors {
			meta.Errors = append(meta.Errors, e.Code)
		}
		if meta.IsActionable {
			event.IsActionable = true
		}
		event.QuoteMeta = append(event.QuoteMeta, meta)
	}
	return event
}
