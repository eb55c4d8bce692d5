// Package tradequote fetches, ranks and selects swap quotes. Aggregator does
// one-shot fan-outs; Engine runs a polling session for one trade.
package tradequote

import (
	"context"

	"swapscout/internal/logger"
	"swapscout/internal/metrics"
	"swapscout/internal/swapper"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Aggregator queries a fixed set of swappers.
type Aggregator struct {
	tracer   trace.Tracer
	swappers []swapper.QuoteProvider
	log      *logger.Entry
}

func NewAggregator(tracer trace.Tracer, swappers []swapper.QuoteProvider) *Aggregator {
	return &Aggregator{
		tracer:   tracer,
		swappers: swappers,
		log:      logger.GetLogger().WithComponent("tradequote"),
	}
}

// Swappers returns the swapper names in configuration order.
func (a *Aggregator) Swappers() []string {
	names := make([]string, len(a.swappers))
	for i, s := range a.swappers {
		names[i] = s.Name()
	}
	return names
}

// FetchOnce asks every swapper for a quote concurrently and returns the
// results ranked best first. Failures come back as error-only ApiQuotes.
func (a *Aggregator) FetchOnce(ctx context.Context, input swapper.GetTradeQuoteInput) []swapper.ApiQuote {
	ctx, span := a.tracer.Start(ctx, "tradequote.fetch-once")
	defer span.End()

	results := make([]swapper.ApiQuote, len(a.swappers))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range a.swappers {
		g.Go(func() error {
			results[i] = a.fetch(gctx, s, input)
			return nil
		})
	}
	_ = g.Wait()

	SortApiQuotes(results)
	return results
}

func (a *Aggregator) fetch(ctx context.Context, s swapper.QuoteProvider, input swapper.GetTradeQuoteInput) swapper.ApiQuote {
	name := s.Name()
	ctx, span := a.tracer.Start(ctx, "tradequote.fetch", trace.WithAttributes(attribute.String("swapper", name)))
	defer span.End()

	res, err := s.FetchQuote(ctx, input)
	if err == nil && res == nil {
		err = swapper.MakeSwapError(swapper.CodeNoQuotesAvailable, "swapper returned no quote", nil)
	}
	if err != nil {
		metrics.QuoteFetch(name, metrics.OutcomeError)
		if ctx.Err() == nil {
			a.log.WithFields(logger.Fields{
				"swapper": name,
				"code":    swapper.CodeOf(err),
			}).WithError(err).Warn("quote fetch failed")
		}
		return swapper.ErrorResult(name, err)
	}

	out := *res
	if out.SwapperName == "" {
		out.SwapperName = name
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.IsActionable() {
		metrics.QuoteFetch(name, metrics.OutcomeHit)
	} else {
		metrics.QuoteFetch(name, metrics.OutcomeEmpty)
	}
	return out
}
