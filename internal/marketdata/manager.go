package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/logger"
	"swapscout/internal/metrics"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoProviderAvailable is returned by FindAll when no provider produced a result.
var ErrNoProviderAvailable = errors.New("cannot find market service provider for market data")

const (
	// PoolProviderName is moved to the front of the waterfall for pool assets.
	PoolProviderName = "portals"
	// VolumeProviderName is the only provider that supports volume sorting.
	VolumeProviderName = "coingecko"
)

// Manager runs the provider waterfall. Results are never cached here.
type Manager struct {
	tracer    trace.Tracer
	providers []Provider
	assets    AssetLookup
	related   RelatedAssetResolver
	log       *logger.Entry
}

// NewManager takes providers in priority order. assets and related may be nil.
func NewManager(tracer trace.Tracer, providers []Provider, assets AssetLookup, related RelatedAssetResolver) *Manager {
	return &Manager{
		tracer:    tracer,
		providers: providers,
		assets:    assets,
		related:   related,
		log:       logger.GetLogger().WithComponent("marketdata"),
	}
}

// Providers returns the base priority order.
func (m *Manager) Providers() []Provider {
	return append([]Provider(nil), m.providers...)
}

// FindAll returns the first non-empty listing in priority order.
func (m *Manager) FindAll(ctx context.Context, args domain.FindAllArgs) (domain.MarketCapResult, error) {
	ctx, span := m.tracer.Start(ctx, "marketdata.find-all")
	defer span.End()

	for _, p := range m.providers {
		result, err := p.FindAll(ctx, args, domain.SortMarketCapDesc)
		if err != nil {
			m.providerFailed(p, "find_all", "", err)
			continue
		}
		if len(result) == 0 {
			metrics.ProviderCall(p.Name(), "find_all", metrics.OutcomeEmpty)
			continue
		}
		metrics.ProviderCall(p.Name(), "find_all", metrics.OutcomeHit)
		span.SetAttributes(attribute.String("provider", p.Name()))
		return result, nil
	}
	return nil, ErrNoProviderAvailable
}

// FindByAssetID returns market data for assetID, or nil when no provider
// (nor any related asset) has data. NFTs get zeroed data without provider calls.
func (m *Manager) FindByAssetID(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error) {
	ctx, span := m.tracer.Start(ctx, "marketdata.find-by-asset-id")
	defer span.End()
	span.SetAttributes(attribute.String("asset_id", string(assetID)))

	if caip.IsNFT(assetID) {
		zero := domain.ZeroMarketData()
		return &zero, nil
	}

	if md := m.findFirst(ctx, m.prioritized(assetID), assetID); md != nil {
		return md, nil
	}

	if m.related == nil {
		return nil, nil
	}
	relatedIDs, err := m.related.GetRelatedAssetIDs(ctx, assetID)
	if err != nil {
		m.log.WithError(err).WithField("asset_id", assetID).Warn("related asset lookup failed")
		return nil, nil
	}
	for _, relatedID := range relatedIDs {
		md := m.findFirst(ctx, m.providers, relatedID)
		if md == nil {
			continue
		}
		// Only the price carries over from a related asset.
		approx := domain.ZeroMarketData()
		approx.Price = md.Price
		m.log.WithFields(logger.Fields{"asset_id": assetID, "related_asset_id": relatedID}).
			Debug("using related asset price")
		return &approx, nil
	}
	return nil, nil
}

// FindPriceHistoryByAssetID returns the first non-empty history. It never
// fails; exhaustion yields an empty slice.
func (m *Manager) FindPriceHistoryByAssetID(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error) {
	ctx, span := m.tracer.Start(ctx, "marketdata.find-price-history")
	defer span.End()
	span.SetAttributes(
		attribute.String("asset_id", string(assetID)),
		attribute.String("timeframe", string(timeframe)),
	)

	if caip.IsNFT(assetID) {
		return []domain.HistoryPoint{}, nil
	}

	for _, p := range m.providers {
		points, err := p.FindPriceHistoryByAssetID(ctx, assetID, timeframe)
		if err != nil {
			m.providerFailed(p, "find_price_history", assetID, err)
			continue
		}
		if len(points) == 0 {
			metrics.ProviderCall(p.Name(), "find_price_history", metrics.OutcomeEmpty)
			continue
		}
		metrics.ProviderCall(p.Name(), "find_price_history", metrics.OutcomeHit)
		return points, nil
	}
	return []domain.HistoryPoint{}, nil
}

// FindAllSortedByVolumeDesc lists up to count asset ids by descending 24h volume.
// Only the volume provider supports this; its errors are returned as-is.
func (m *Manager) FindAllSortedByVolumeDesc(ctx context.Context, count int) ([]caip.AssetID, error) {
	ctx, span := m.tracer.Start(ctx, "marketdata.find-all-sorted-by-volume")
	defer span.End()

	var volume Provider
	for _, p := range m.providers {
		if p.Name() == VolumeProviderName {
			volume = p
			break
		}
	}
	if volume == nil {
		return nil, fmt.Errorf("%w: %s not configured", ErrNoProviderAvailable, VolumeProviderName)
	}

	result, err := volume.FindAll(ctx, domain.FindAllArgs{Count: count, Page: 1}, domain.SortVolumeDesc)
	if err != nil {
		metrics.ProviderCall(volume.Name(), "find_all_by_volume", metrics.OutcomeError)
		return nil, fmt.Errorf("find all by volume: %w", err)
	}
	metrics.ProviderCall(volume.Name(), "find_all_by_volume", metrics.OutcomeHit)
	return SortByVolumeDesc(result, count), nil
}

// SortByVolumeDesc orders a result set by volume, breaking ties by asset id.
func SortByVolumeDesc(result domain.MarketCapResult, count int) []caip.AssetID {
	type entry struct {
		id     caip.AssetID
		volume decimal.Decimal
	}
	entries := make([]entry, 0, len(result))
	for id, md := range result {
		vol, err := decimal.NewFromString(md.Volume)
		if err != nil {
			vol = decimal.Zero
		}
		entries = append(entries, entry{id: id, volume: vol})
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].volume.Cmp(entries[j].volume); c != 0 {
			return c > 0
		}
		return entries[i].id < entries[j].id
	})
	if count > 0 && len(entries) > count {
		entries = entries[:count]
	}
	ids := make([]caip.AssetID, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// prioritized moves the pool specialist to the front for pool assets.
func (m *Manager) prioritized(assetID caip.AssetID) []Provider {
	if m.assets == nil {
		return m.providers
	}
	asset, ok := m.assets.Get(assetID)
	if !ok || !asset.IsPool {
		return m.providers
	}
	ordered := make([]Provider, 0, len(m.providers))
	for _, p := range m.providers {
		if p.Name() == PoolProviderName {
			ordered = append(ordered, p)
		}
	}
	for _, p := range m.providers {
		if p.Name() != PoolProviderName {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

func (m *Manager) findFirst(ctx context.Context, providers []Provider, assetID caip.AssetID) *domain.MarketData {
	for _, p := range providers {
		md, err := p.FindByAssetID(ctx, assetID)
		if err != nil {
			m.providerFailed(p, "find_by_asset_id", assetID, err)
			continue
		}
		if md == nil {
			metrics.ProviderCall(p.Name(), "find_by_asset_id", metrics.OutcomeEmpty)
			continue
		}
		metrics.ProviderCall(p.Name(), "find_by_asset_id", metrics.OutcomeHit)
		return md
	}
	return nil
}

func (m *Manager) providerFailed(p Provider, operation string, assetID caip.AssetID, err error) {
	metrics.ProviderCall(p.Name(), operation, metrics.OutcomeError)
	entry := m.log.WithError(err).WithFields(logger.Fields{"provider": p.Name(), "operation": operation})
	if assetID != "" {
		entry = entry.WithField("asset_id", assetID)
	}
	entry.Warn("market data provider failed")
}
