package thorchain

import (
	"context"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/swapper"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// LongtailComposer builds DEX + L1 routes for tokens without a THORChain pool.
type LongtailComposer interface {
	ComposeLongtailRoute(ctx context.Context, input swapper.GetTradeQuoteInput, streamingInterval int, catalog AssetLookup) ([]domain.Quote, error)
}

// PoolQuoter is the THORNode surface the swapper needs.
type PoolQuoter interface {
	L1Quoter
	PoolName(id caip.AssetID) (string, bool)
}

// Swapper is the THORChain QuoteProvider. Natively pooled pairs get L1
// quotes; pooled buys from Ethereum tokens go through the longtail composer.
type Swapper struct {
	tracer            trace.Tracer
	thornode          PoolQuoter
	composer          LongtailComposer
	catalog           AssetLookup
	streamingInterval int
	pollingInterval   time.Duration
}

func NewSwapper(tracer trace.Tracer, thornode PoolQuoter, composer LongtailComposer, catalog AssetLookup, streamingInterval int, pollingInterval time.Duration) *Swapper {
	if pollingInterval <= 0 {
		pollingInterval = swapper.DefaultPollingInterval
	}
	return &Swapper{
		tracer:            tracer,
		thornode:          thornode,
		composer:          composer,
		catalog:           catalog,
		streamingInterval: streamingInterval,
		pollingInterval:   pollingInterval,
	}
}

func (s *Swapper) Name() string { return swapper.NameThorchain }

func (s *Swapper) PollingInterval() time.Duration { return s.pollingInterval }

// FetchQuote returns the best of the rapid and streaming routes.
func (s *Swapper) FetchQuote(ctx context.Context, input swapper.GetTradeQuoteInput) (*swapper.ApiQuote, error) {
	ctx, span := s.tracer.Start(ctx, "thorchain.fetch-quote")
	defer span.End()

	quotes, err := s.routes(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, swapper.MakeSwapError(swapper.CodeNoQuotesAvailable, "no THORChain routes", nil)
	}

	var (
		best      *domain.Quote
		bestRatio float64
	)
	for i := range quotes {
		last := quotes[i].LastHop()
		if last == nil {
			continue
		}
		ratio := swapper.InputOutputRatio(input.SellAmountIncludingProtocolFeesCryptoBaseUnit, input.SellAsset.Precision,
			last.BuyAmountAfterFeesCryptoBaseUnit, input.BuyAsset.Precision)
		if best == nil || ratio > bestRatio {
			best, bestRatio = &quotes[i], ratio
		}
	}
	if best == nil {
		return nil, swapper.MakeSwapError(swapper.CodeNoQuotesAvailable, "no THORChain routes", nil)
	}

	return &swapper.ApiQuote{
		ID:               uuid.NewString(),
		SwapperName:      s.Name(),
		Quote:            best,
		InputOutputRatio: bestRatio,
	}, nil
}

func (s *Swapper) routes(ctx context.Context, input swapper.GetTradeQuoteInput) ([]domain.Quote, error) {
	_, sellPooled := s.thornode.PoolName(input.SellAsset.AssetID)
	_, buyPooled := s.thornode.PoolName(input.BuyAsset.AssetID)

	switch {
	case sellPooled && buyPooled:
		return s.thornode.GetL1Quote(ctx, input, s.streamingInterval, TradeTypeL1ToL1)
	case buyPooled && s.composer != nil:
		return s.composer.ComposeLongtailRoute(ctx, input, s.streamingInterval, s.catalog)
	default:
		return nil, swapper.MakeSwapError(swapper.CodeUnsupportedTradePair,
			"THORChain does not support this pair",
			map[string]any{"sellAssetId": input.SellAsset.AssetID, "buyAssetId": input.BuyAsset.AssetID})
	}
}
