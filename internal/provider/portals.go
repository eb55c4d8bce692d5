package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const portalsBaseURL = "https://api.portals.fi/v2"

// PortalsProvider prices ERC-20 tokens including liquidity pool shares, which
// the general market data sources do not cover.
type PortalsProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewPortalsProvider(tracer trace.Tracer, baseURL, apiKey string) *PortalsProvider {
	if baseURL == "" {
		baseURL = portalsBaseURL
	}
	return &PortalsProvider{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: newLimiter(500*time.Millisecond, 4),
	}
}

// PortalsProviderName is the pool-data specialist moved to the front of the
// waterfall for pool assets.
const PortalsProviderName = "portals"

func (p *PortalsProvider) Name() string { return PortalsProviderName }

type portalsToken struct {
	Key       string  `json:"key"`
	Price     float64 `json:"price"`
	Liquidity float64 `json:"liquidity"`
	Volume    float64 `json:"volumeUsd1d"`
	Supply    string  `json:"totalSupply"`
}

func (t portalsToken) toMarketData() domain.MarketData {
	return domain.MarketData{
		Price:             floatString(t.Price),
		MarketCap:         floatString(t.Liquidity),
		Volume:            floatString(t.Volume),
		SupplyCirculating: numericString(t.Supply),
	}
}

// FindAll lists the most liquid Ethereum tokens.
func (p *PortalsProvider) FindAll(ctx context.Context, args domain.FindAllArgs, _ domain.SortKey) (domain.MarketCapResult, error) {
	ctx, span := p.tracer.Start(ctx, "portals.find-all")
	defer span.End()

	limit := args.Count
	if limit <= 0 || limit > 250 {
		limit = 250
	}
	page := max(args.Page-1, 0)
	q := url.Values{}
	q.Set("networks", "ethereum")
	q.Set("sortBy", "liquidity")
	q.Set("sortDirection", "desc")
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("page", fmt.Sprintf("%d", page))

	var resp struct {
		Tokens []portalsToken `json:"tokens"`
	}
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), p.baseURL+"/tokens?"+q.Encode(), p.header(), &resp); err != nil {
		return nil, fmt.Errorf("fetch tokens: %w", err)
	}

	result := make(domain.MarketCapResult, len(resp.Tokens))
	for _, t := range resp.Tokens {
		assetID, ok := portalsAssetID(t.Key)
		if !ok {
			continue
		}
		result[assetID] = t.toMarketData()
	}
	return result, nil
}

func (p *PortalsProvider) FindByAssetID(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error) {
	ctx, span := p.tracer.Start(ctx, "portals.find-by-asset-id")
	defer span.End()

	key, ok := portalsKey(assetID)
	if !ok {
		return nil, nil
	}

	var resp struct {
		Tokens []portalsToken `json:"tokens"`
	}
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), p.baseURL+"/tokens?ids="+url.QueryEscape(key), p.header(), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch token %s: %w", key, err)
	}
	for _, t := range resp.Tokens {
		if t.Key == key && t.Price > 0 {
			md := t.toMarketData()
			return &md, nil
		}
	}
	return nil, nil
}

func (p *PortalsProvider) FindPriceHistoryByAssetID(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error) {
	ctx, span := p.tracer.Start(ctx, "portals.find-price-history")
	defer span.End()

	key, ok := portalsKey(assetID)
	if !ok {
		return nil, nil
	}

	resolution, window := portalsResolution(timeframe)
	q := url.Values{}
	q.Set("id", key)
	q.Set("resolution", resolution)
	q.Set("from", fmt.Sprintf("%d", time.Now().Add(-window).Unix()))

	var resp struct {
		History []struct {
			Time  string  `json:"time"`
			Price float64 `json:"price"`
		} `json:"history"`
	}
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), p.baseURL+"/tokens/history?"+q.Encode(), p.header(), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch history for %s: %w", key, err)
	}

	points := make([]domain.HistoryPoint, 0, len(resp.History))
	for _, h := range resp.History {
		ts, err := time.Parse(time.RFC3339, h.Time)
		if err != nil {
			continue
		}
		points = append(points, domain.HistoryPoint{Date: ts.UnixMilli(), Price: h.Price})
	}
	return points, nil
}

func portalsResolution(tf domain.HistoryTimeframe) (string, time.Duration) {
	switch tf {
	case domain.TimeframeHour:
		return "15m", time.Hour
	case domain.TimeframeDay:
		return "1h", 24 * time.Hour
	case domain.TimeframeWeek:
		return "4h", 7 * 24 * time.Hour
	case domain.TimeframeMonth:
		return "1d", 30 * 24 * time.Hour
	case domain.TimeframeYear:
		return "1d", 365 * 24 * time.Hour
	default:
		return "1d", 5 * 365 * 24 * time.Hour
	}
}

func (p *PortalsProvider) header() http.Header {
	if p.apiKey == "" {
		return nil
	}
	return http.Header{"Authorization": []string{"Bearer " + p.apiKey}}
}
