// Package marketdata resolves prices, market caps and price history by
// walking an ordered list of unreliable providers.
package marketdata

import (
	"context"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
)

// Provider is one market data source. FindByAssetID returns nil when the
// provider has no data for the asset; history returns an empty slice.
type Provider interface {
	Name() string
	FindAll(ctx context.Context, args domain.FindAllArgs, sortKey domain.SortKey) (domain.MarketCapResult, error)
	FindByAssetID(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error)
	FindPriceHistoryByAssetID(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error)
}

// RelatedAssetResolver lists assets that represent the same underlying value
// (e.g. ETH on L2s), used as a last-resort price source.
type RelatedAssetResolver interface {
	GetRelatedAssetIDs(ctx context.Context, assetID caip.AssetID) ([]caip.AssetID, error)
}

// AssetLookup reads catalog flags for an asset.
type AssetLookup interface {
	Get(assetID caip.AssetID) (domain.Asset, bool)
}
