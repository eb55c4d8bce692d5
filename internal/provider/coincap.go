package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	coincapBaseURL  = "https://api.coincap.io/v2"
	coincapPageSize = 2000
)

// CoinCapProvider is the secondary market data source.
type CoinCapProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewCoinCapProvider(tracer trace.Tracer, baseURL, apiKey string) *CoinCapProvider {
	if baseURL == "" {
		baseURL = coincapBaseURL
	}
	return &CoinCapProvider{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: newLimiter(time.Second, 5),
	}
}

func (p *CoinCapProvider) Name() string { return "coincap" }

type coincapAsset struct {
	ID                string `json:"id"`
	Supply            string `json:"supply"`
	MaxSupply         string `json:"maxSupply"`
	MarketCapUsd      string `json:"marketCapUsd"`
	VolumeUsd24Hr     string `json:"volumeUsd24Hr"`
	PriceUsd          string `json:"priceUsd"`
	ChangePercent24Hr string `json:"changePercent24Hr"`
}

func (a coincapAsset) toMarketData() domain.MarketData {
	return domain.MarketData{
		Price:             numericString(a.PriceUsd),
		MarketCap:         numericString(a.MarketCapUsd),
		Volume:            numericString(a.VolumeUsd24Hr),
		ChangePercent24Hr: parseFloat(a.ChangePercent24Hr),
		SupplyCirculating: numericString(a.Supply),
		MaxSupply:         numericString(a.MaxSupply),
	}
}

// FindAll returns assets in CoinCap rank order (market cap). CoinCap has no
// volume sort, so sortKey is ignored.
func (p *CoinCapProvider) FindAll(ctx context.Context, args domain.FindAllArgs, _ domain.SortKey) (domain.MarketCapResult, error) {
	ctx, span := p.tracer.Start(ctx, "coincap.find-all")
	defer span.End()

	count := args.Count
	if count <= 0 || count > coincapPageSize {
		count = coincapPageSize
	}
	offset := 0
	if args.Page > 1 {
		offset = (args.Page - 1) * count
	}
	url := fmt.Sprintf("%s/assets?limit=%d&offset=%d", p.baseURL, count, offset)

	var resp struct {
		Data []coincapAsset `json:"data"`
	}
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), url, p.header(), &resp); err != nil {
		return nil, fmt.Errorf("fetch assets: %w", err)
	}

	result := make(domain.MarketCapResult, len(resp.Data))
	for _, a := range resp.Data {
		assetID, ok := coincapAssetID(a.ID)
		if !ok {
			continue
		}
		if _, seen := result[assetID]; seen {
			continue
		}
		result[assetID] = a.toMarketData()
	}
	return result, nil
}

func (p *CoinCapProvider) FindByAssetID(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error) {
	ctx, span := p.tracer.Start(ctx, "coincap.find-by-asset-id")
	defer span.End()

	coinID, ok := coincapCoinID(assetID)
	if !ok {
		return nil, nil
	}

	var resp struct {
		Data *coincapAsset `json:"data"`
	}
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), p.baseURL+"/assets/"+coinID, p.header(), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch asset %s: %w", coinID, err)
	}
	if resp.Data == nil {
		return nil, nil
	}
	md := resp.Data.toMarketData()
	return &md, nil
}

func (p *CoinCapProvider) FindPriceHistoryByAssetID(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error) {
	ctx, span := p.tracer.Start(ctx, "coincap.find-price-history")
	defer span.End()

	coinID, ok := coincapCoinID(assetID)
	if !ok {
		return nil, nil
	}

	interval, window := coincapInterval(timeframe)
	end := time.Now()
	url := fmt.Sprintf("%s/assets/%s/history?interval=%s&start=%d&end=%d",
		p.baseURL, coinID, interval, end.Add(-window).UnixMilli(), end.UnixMilli())

	var resp struct {
		Data []struct {
			PriceUsd string `json:"priceUsd"`
			Time     int64  `json:"time"`
		} `json:"data"`
	}
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), url, p.header(), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch history for %s: %w", coinID, err)
	}

	points := make([]domain.HistoryPoint, 0, len(resp.Data))
	for _, d := range resp.Data {
		points = append(points, domain.HistoryPoint{Date: d.Time, Price: parseFloat(d.PriceUsd)})
	}
	return points, nil
}

// coincapInterval picks the sample interval and look-back window for a timeframe.
func coincapInterval(tf domain.HistoryTimeframe) (string, time.Duration) {
	switch tf {
	case domain.TimeframeHour:
		return "m1", time.Hour
	case domain.TimeframeDay:
		return "m5", 24 * time.Hour
	case domain.TimeframeWeek:
		return "h1", 7 * 24 * time.Hour
	case domain.TimeframeMonth:
		return "h6", 30 * 24 * time.Hour
	case domain.TimeframeYear:
		return "d1", 365 * 24 * time.Hour
	default:
		return "d1", 11 * 365 * 24 * time.Hour
	}
}

func (p *CoinCapProvider) header() http.Header {
	if p.apiKey == "" {
		return nil
	}
	return http.Header{"Authorization": []string{"Bearer " + p.apiKey}}
}
