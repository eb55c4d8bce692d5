// Package telemetry defines the quotes-received event and the sinks it is
// delivered to.
package telemetry

import (
	"context"
	"errors"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/logger"
	"swapscout/internal/metrics"
	"swapscout/internal/swapper"
)

// SchemaVersion is bumped whenever QuotesReceivedEvent changes shape.
const SchemaVersion = "20240115"

// QuoteMeta summarizes one swapper's answer relative to the best quote.
type QuoteMeta struct {
	SwapperName                              string              `json:"swapper_name"`
	DifferenceFromBestQuoteDecimalPercentage float64             `json:"difference_from_best_quote_decimal_percentage"`
	QuoteReceived                            bool                `json:"quote_received"`
	IsStreaming                              bool                `json:"is_streaming"`
	IsLongtail                               bool                `json:"is_longtail"`
	TradeType                                string              `json:"trade_type,omitempty"`
	Errors                                   []swapper.ErrorCode `json:"errors"`
	IsActionable                             bool                `json:"is_actionable"`
}

// QuotesReceivedEvent is emitted once every swapper of a request has settled.
type QuotesReceivedEvent struct {
	ID               string       `json:"id"`
	QuoteMeta        []QuoteMeta  `json:"quote_meta"`
	SellAssetID      caip.AssetID `json:"sell_asset_id"`
	BuyAssetID       caip.AssetID `json:"buy_asset_id"`
	SellAssetChainID caip.ChainID `json:"sell_asset_chain_id"`
	BuyAssetChainID  caip.ChainID `json:"buy_asset_chain_id"`
	SellAmountUsd    string       `json:"sell_amount_usd,omitempty"`
	Version          string       `json:"version"`
	IsActionable     bool         `json:"is_actionable"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Sink receives telemetry events.
type Sink interface {
	Emit(ctx context.Context, event QuotesReceivedEvent) error
}

// LogSink writes events to the structured log.
type LogSink struct {
	log *logger.Entry
}

func NewLogSink() *LogSink {
	return &LogSink{log: logger.GetLogger().WithComponent("telemetry")}
}

func (s *LogSink) Emit(_ context.Context, event QuotesReceivedEvent) error {
	s.log.WithFields(logger.Fields{
		"event_id":      event.ID,
		"sell_asset_id": event.SellAssetID,
		"buy_asset_id":  event.BuyAssetID,
		"sell_amount":   event.SellAmountUsd,
		"quotes":        len(event.QuoteMeta),
		"is_actionable": event.IsActionable,
		"version":       event.Version,
	}).Info("quotes received")
	return nil
}

// MultiSink fans an event out to every sink and counts it once.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, event QuotesReceivedEvent) error {
	metrics.QuoteEvent(event.IsActionable)
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
