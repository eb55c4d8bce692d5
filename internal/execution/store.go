// Package execution holds per-trade execution state: hop states plus the
// confirmed and active quotes the aggregation engine writes back.
package execution

import (
	"context"
	"errors"

	"swapscout/internal/domain"
	"swapscout/internal/swapper"
)

// ErrHopNotFound is returned when no state was recorded for a trade hop.
var ErrHopNotFound = errors.New("hop execution state not found")

// Store is read by the aggregation engine for gating and written with its
// quote selection results.
type Store interface {
	HopState(ctx context.Context, tradeID string, hopIndex int) (domain.ExecutionState, error)
	SetHopState(ctx context.Context, tradeID string, hopIndex int, state domain.ExecutionState) error
	SetConfirmedQuote(ctx context.Context, tradeID string, quote *swapper.ApiQuote) error
	SetActiveQuote(ctx context.Context, tradeID string, quote *swapper.ApiQuote) error
	SetIsTradeQuoteRequestAborted(ctx context.Context, tradeID string, aborted bool) error
	IsTradeQuoteRequestAborted(ctx context.Context, tradeID string) (bool, error)
	ActiveQuote(ctx context.Context, tradeID string) (*swapper.ApiQuote, error)
	ConfirmedQuote(ctx context.Context, tradeID string) (*swapper.ApiQuote, error)
}
