package thorchain

import (
	"context"
	"fmt"
	"strings"

	"swapscout/internal/assets"
	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/logger"
	"swapscout/internal/swapper"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AllowanceContract is the THORSwap aggregator token transfer proxy that the
// longtail sell token must approve.
const AllowanceContract = "0xF892Fef9dA200d9E84c9b0647ecFF0F34633aBe8"

// TradeType classifies which legs of a route need a DEX hop.
type TradeType string

const (
	TradeTypeL1ToL1             TradeType = "L1ToL1"
	TradeTypeLongTailToL1       TradeType = "LongTailToL1"
	TradeTypeL1ToLongTail       TradeType = "L1ToLongTail"
	TradeTypeLongTailToLongTail TradeType = "LongTailToLongTail"
)

// wrappedNativeTokens are the wrapped fee assets the DEX leg routes through.
var wrappedNativeTokens = map[caip.ChainID]string{
	caip.EthChainID: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
}

// AggregatorSelector finds the best aggregator contract for selling sellToken
// into nativeBuyAsset through wrappedNative.
type AggregatorSelector interface {
	BestAggregator(ctx context.Context, nativeBuyAsset domain.Asset, sellToken, wrappedNative, sellAmountCryptoBaseUnit string) (swapper.AggregatorQuote, error)
}

// L1Quoter returns primary-layer quotes for natively supported assets.
type L1Quoter interface {
	GetL1Quote(ctx context.Context, input swapper.GetTradeQuoteInput, streamingInterval int, tradeType TradeType) ([]domain.Quote, error)
}

// ChainAdapters resolves a chain's adapter.
type ChainAdapters interface {
	Get(chainID caip.ChainID) (assets.ChainAdapter, bool)
}

// AssetLookup reads assets from the catalog.
type AssetLookup interface {
	Get(assetID caip.AssetID) (domain.Asset, bool)
}

// Composer builds longtail routes: a DEX hop into the chain's native asset
// followed by the primary-layer route.
type Composer struct {
	tracer     trace.Tracer
	chains     ChainAdapters
	aggregator AggregatorSelector
	l1         L1Quoter
	log        *logger.Entry
}

func NewComposer(tracer trace.Tracer, chains ChainAdapters, aggregator AggregatorSelector, l1 L1Quoter) *Composer {
	return &Composer{
		tracer:     tracer,
		chains:     chains,
		aggregator: aggregator,
		l1:         l1,
		log:        logger.GetLogger().WithComponent("thorchain-composer"),
	}
}

// ComposeLongtailRoute quotes a longtail sell asset into an L1 buy asset.
// Every error returned is a *swapper.SwapError.
func (c *Composer) ComposeLongtailRoute(ctx context.Context, input swapper.GetTradeQuoteInput, streamingInterval int, catalog AssetLookup) ([]domain.Quote, error) {
	ctx, span := c.tracer.Start(ctx, "thorchain.compose-longtail-route")
	defer span.End()
	span.SetAttributes(
		attribute.String("sell_asset_id", string(input.SellAsset.AssetID)),
		attribute.String("buy_asset_id", string(input.BuyAsset.AssetID)),
	)

	sellAsset := input.SellAsset
	sellChainID := sellAsset.ChainID
	if sellChainID == "" {
		sellChainID = sellAsset.AssetID.ChainID()
	}

	// Only Ethereum longtail -> L1 is routed today.
	if sellChainID != caip.EthChainID {
		return nil, swapper.MakeSwapError(swapper.CodeUnsupportedChain,
			fmt.Sprintf("unsupported chainId %s", sellChainID),
			map[string]any{"sellAssetChainId": sellChainID})
	}

	var nativeBuyAsset domain.Asset
	found := false
	if adapter, ok := c.chains.Get(sellChainID); ok && catalog != nil {
		nativeBuyAsset, found = catalog.Get(adapter.FeeAssetID())
	}
	if !found {
		return nil, swapper.MakeSwapError(swapper.CodeInternalError,
			fmt.Sprintf("no native buy asset found for %s", sellChainID),
			map[string]any{"sellAssetChainId": sellChainID})
	}

	wrapped := wrappedNativeTokens[sellChainID]
	best, err := c.aggregator.BestAggregator(ctx, nativeBuyAsset, tokenFromAsset(sellAsset, wrapped), wrapped,
		input.SellAmountIncludingProtocolFeesCryptoBaseUnit)
	if err != nil {
		c.log.WithError(err).WithField("sell_asset_id", sellAsset.AssetID).Warn("aggregator selection failed")
	}
	if err != nil || best.Aggregator == "" || isZeroAmount(best.QuotedAmountOut) {
		return nil, swapper.MakeSwapError(swapper.CodeUnsupportedTradePair, "no best aggregator contract found", nil)
	}

	l1Input := input
	l1Input.SellAsset = nativeBuyAsset
	l1Input.SellAmountIncludingProtocolFeesCryptoBaseUnit = best.QuotedAmountOut

	quotes, err := c.l1.GetL1Quote(ctx, l1Input, streamingInterval, TradeTypeLongTailToL1)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, spliceAggregatorHop(q, input, nativeBuyAsset, best))
	}
	return out, nil
}

// spliceAggregatorHop returns a copy of q with the DEX leg as hop 0 and q's
// own hops following in their original order.
func spliceAggregatorHop(q domain.Quote, input swapper.GetTradeQuoteInput, nativeBuyAsset domain.Asset, best swapper.AggregatorQuote) domain.Quote {
	out := q.Clone()
	lead := domain.HopStep{
		SellAsset:         input.SellAsset,
		BuyAsset:          nativeBuyAsset,
		AllowanceContract: AllowanceContract,
		Source:            "UniswapV3",
	}
	lead.SellAmountIncludingProtocolFeesCryptoBaseUnit = input.SellAmountIncludingProtocolFeesCryptoBaseUnit
	lead.BuyAmountBeforeFeesCryptoBaseUnit = best.QuotedAmountOut
	lead.BuyAmountAfterFeesCryptoBaseUnit = best.QuotedAmountOut
	lead.Rate = swapper.Rate(input.SellAmountIncludingProtocolFeesCryptoBaseUnit, input.SellAsset.Precision,
		best.QuotedAmountOut, nativeBuyAsset.Precision)

	out.Steps = append([]domain.HopStep{lead}, out.Steps...)
	out.IsLongtail = true
	out.Aggregator = best.Aggregator
	out.LongtailData = &domain.LongtailData{LongtailToL1ExpectedAmountOut: best.QuotedAmountOut}
	out.TradeType = string(TradeTypeLongTailToL1)
	if last := out.LastHop(); last != nil {
		out.Rate = swapper.Rate(input.SellAmountIncludingProtocolFeesCryptoBaseUnit, input.SellAsset.Precision,
			last.BuyAmountAfterFeesCryptoBaseUnit, last.BuyAsset.Precision)
	}
	return out
}

// tokenFromAsset returns the ERC-20 contract for a token, or the wrapped
// native token for the chain's fee asset.
func tokenFromAsset(a domain.Asset, wrapped string) string {
	parts, err := caip.ParseAssetID(a.AssetID)
	if err != nil || parts.AssetNamespace != caip.AssetNamespaceERC20 {
		return wrapped
	}
	return strings.ToLower(parts.AssetReference)
}

func isZeroAmount(s string) bool {
	d, err := decimal.NewFromString(s)
	return err != nil || !d.IsPositive()
}
