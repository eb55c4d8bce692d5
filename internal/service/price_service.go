package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const marketCacheTTL = 90 * time.Second

var (
	ErrInvalidAssetID   = errors.New("invalid asset id")
	ErrUnknownAsset     = errors.New("unknown asset")
	ErrNoMarketData     = errors.New("no market data available")
	ErrInvalidTimeframe = errors.New("invalid timeframe")
)

// MarketDataSource is the market data waterfall (marketdata.Manager).
type MarketDataSource interface {
	FindAll(ctx context.Context, args domain.FindAllArgs) (domain.MarketCapResult, error)
	FindByAssetID(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error)
	FindPriceHistoryByAssetID(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error)
	FindAllSortedByVolumeDesc(ctx context.Context, count int) ([]caip.AssetID, error)
}

type AssetCatalog interface {
	Get(id caip.AssetID) (domain.Asset, bool)
	All() []domain.Asset
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// AssetMarketData pairs an asset id with its market data.
type AssetMarketData struct {
	AssetID caip.AssetID      `json:"asset_id"`
	Symbol  string            `json:"symbol,omitempty"`
	Data    domain.MarketData `json:"market_data"`
}

// PriceService fronts the market data waterfall for the HTTP API, the bot
// and the MCP tools, with a short-lived Redis cache of per-asset results.
type PriceService struct {
	tracer trace.Tracer
	source MarketDataSource
	assets AssetCatalog
	redis  RedisClient
	log    *logger.Entry
}

func NewPriceService(
	tracer trace.Tracer,
	source MarketDataSource,
	assets AssetCatalog,
	redisClient RedisClient,
) *PriceService {
	return &PriceService{
		tracer: tracer,
		source: source,
		assets: assets,
		redis:  redisClient,
		log:    logger.GetLogger().WithComponent("price-service"),
	}
}

// ResolveAsset accepts a CAIP-19 asset id or a catalog symbol.
func (s *PriceService) ResolveAsset(query string) (caip.AssetID, error) {
	query = strings.TrimSpace(query)
	if strings.Contains(query, "/") {
		id := caip.AssetID(query)
		if _, err := caip.ParseAssetID(id); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAssetID, err)
		}
		return id, nil
	}
	if s.assets != nil {
		for _, a := range s.assets.All() {
			if strings.EqualFold(a.Symbol, query) {
				return a.AssetID, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownAsset, query)
}

// GetMarketData returns cached market data for assetID, falling back to the
// provider waterfall on a miss.
func (s *PriceService) GetMarketData(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.get-market-data")
	defer span.End()
	span.SetAttributes(attribute.String("asset_id", string(assetID)))

	if _, err := caip.ParseAssetID(assetID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetID, err)
	}

	if s.redis != nil {
		cached, err := s.getMarketCache(ctx, assetID)
		if err != nil {
			s.log.WithError(err).Warn("redis cache read error")
		}
		if cached != nil {
			return cached, nil
		}
	}

	data, err := s.source.FindByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoMarketData
	}
	if s.redis != nil {
		if err := s.setMarketCache(ctx, assetID, *data); err != nil {
			s.log.WithError(err).WithField("asset_id", assetID).Warn("redis cache write error")
		}
	}
	return data, nil
}

// GetMarkets returns one page of the market-cap listing and caches every entry.
func (s *PriceService) GetMarkets(ctx context.Context, args domain.FindAllArgs) (domain.MarketCapResult, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.get-markets")
	defer span.End()

	result, err := s.source.FindAll(ctx, args)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		for id, data := range result {
			_ = s.setMarketCache(ctx, id, data)
		}
	}
	return result, nil
}

// GetPriceHistory is never cached; history is requested far less often.
func (s *PriceService) GetPriceHistory(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.get-price-history")
	defer span.End()

	if _, err := caip.ParseAssetID(assetID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetID, err)
	}
	if !timeframe.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeframe, timeframe)
	}
	history, err := s.source.FindPriceHistoryByAssetID(ctx, assetID, timeframe)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.HistoryPoint{}
	}
	return history, nil
}

// TopVolume returns the count highest-volume assets with their market data.
// Assets whose data cannot be resolved are skipped.
func (s *PriceService) TopVolume(ctx context.Context, count int) ([]AssetMarketData, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.top-volume")
	defer span.End()

	ids, err := s.source.FindAllSortedByVolumeDesc(ctx, count)
	if err != nil {
		return nil, err
	}
	out := make([]AssetMarketData, 0, len(ids))
	for _, id := range ids {
		data, err := s.GetMarketData(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, AssetMarketData{AssetID: id, Symbol: s.symbol(id), Data: *data})
	}
	return out, nil
}

// RefreshTopVolume re-fetches and caches market data for the count
// highest-volume assets, bypassing the cache. It returns how many were stored.
func (s *PriceService) RefreshTopVolume(ctx context.Context, count int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.refresh-top-volume")
	defer span.End()

	ids, err := s.source.FindAllSortedByVolumeDesc(ctx, count)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, id := range ids {
		data, err := s.source.FindByAssetID(ctx, id)
		if err != nil || data == nil {
			continue
		}
		if s.redis != nil {
			if err := s.setMarketCache(ctx, id, *data); err != nil {
				s.log.WithError(err).WithField("asset_id", id).Warn("redis cache write error")
				continue
			}
		}
		refreshed++
	}

	s.log.WithFields(logger.Fields{"requested": len(ids), "refreshed": refreshed}).Info("refreshed top volume market data")
	return refreshed, nil
}

func (s *PriceService) symbol(id caip.AssetID) string {
	if s.assets == nil {
		return ""
	}
	if a, ok := s.assets.Get(id); ok {
		return a.Symbol
	}
	return ""
}

func marketCacheKey(id caip.AssetID) string {
	return "market:" + string(id)
}

func (s *PriceService) setMarketCache(ctx context.Context, id caip.AssetID, data domain.MarketData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, marketCacheKey(id), b, marketCacheTTL).Err()
}

func (s *PriceService) getMarketCache(ctx context.Context, id caip.AssetID) (*domain.MarketData, error) {
	b, err := s.redis.Get(ctx, marketCacheKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var data domain.MarketData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
