package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	coingeckoBaseURL  = "https://api.coingecko.com/api/v3"
	coingeckoPageSize = 250
)

// CoinGeckoProvider serves market data, history and volume-sorted listings
// from the CoinGecko API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewCoinGeckoProvider creates a new provider with built-in rate limiting.
// The free tier allows roughly 8 requests per minute.
func NewCoinGeckoProvider(tracer trace.Tracer, baseURL, apiKey string) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: newLimiter(7500*time.Millisecond, 8),
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

type coingeckoMarket struct {
	ID                       string  `json:"id"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	TotalVolume              float64 `json:"total_volume"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	CirculatingSupply        float64 `json:"circulating_supply"`
	MaxSupply                float64 `json:"max_supply"`
}

// FindAll pages through /coins/markets until args.Count coins are collected.
// Coins without a known asset mapping are skipped.
func (p *CoinGeckoProvider) FindAll(ctx context.Context, args domain.FindAllArgs, sortKey domain.SortKey) (domain.MarketCapResult, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.find-all")
	defer span.End()

	if sortKey == "" {
		sortKey = domain.SortMarketCapDesc
	}
	count := args.Count
	if count <= 0 {
		count = coingeckoPageSize
	}
	page := args.Page
	if page <= 0 {
		page = 1
	}

	result := make(domain.MarketCapResult)
	for fetched := 0; fetched < count; page++ {
		perPage := min(coingeckoPageSize, count-fetched)
		url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=%s&per_page=%d&page=%d&sparkline=false",
			p.baseURL, sortKey, perPage, page)

		var markets []coingeckoMarket
		if err := getJSON(ctx, p.client, p.limiter, p.Name(), url, p.header(), &markets); err != nil {
			return nil, fmt.Errorf("fetch markets page %d: %w", page, err)
		}
		for _, m := range markets {
			assetID, ok := coingeckoAssetID(m.ID)
			if !ok {
				continue
			}
			if _, seen := result[assetID]; seen {
				continue
			}
			result[assetID] = m.toMarketData()
		}
		fetched += len(markets)
		if len(markets) < perPage {
			break
		}
	}
	return result, nil
}

func (m coingeckoMarket) toMarketData() domain.MarketData {
	return domain.MarketData{
		Price:             floatString(m.CurrentPrice),
		MarketCap:         floatString(m.MarketCap),
		Volume:            floatString(m.TotalVolume),
		ChangePercent24Hr: m.PriceChangePercentage24h,
		SupplyCirculating: floatString(m.CirculatingSupply),
		MaxSupply:         floatString(m.MaxSupply),
	}
}

// FindByAssetID returns nil when CoinGecko does not know the asset.
func (p *CoinGeckoProvider) FindByAssetID(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.find-by-asset-id")
	defer span.End()

	const fields = "vs_currencies=usd&include_market_cap=true&include_24hr_vol=true&include_24hr_change=true"

	var (
		url string
		key string
	)
	if coinID, ok := coingeckoCoinID(assetID); ok {
		url = fmt.Sprintf("%s/simple/price?ids=%s&%s", p.baseURL, coinID, fields)
		key = coinID
	} else if platform, address, ok := coingeckoContract(assetID); ok {
		url = fmt.Sprintf("%s/simple/token_price/%s?contract_addresses=%s&%s", p.baseURL, platform, address, fields)
		key = address
	} else {
		return nil, nil
	}

	// Response shape: {"ethereum": {"usd": 3000, "usd_market_cap": 1e11, "usd_24h_vol": 1e10, "usd_24h_change": -1.2}}
	var raw map[string]map[string]float64
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), url, p.header(), &raw); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch price for %s: %w", assetID, err)
	}
	data, ok := raw[key]
	if !ok {
		return nil, nil
	}
	return &domain.MarketData{
		Price:             floatString(data["usd"]),
		MarketCap:         floatString(data["usd_market_cap"]),
		Volume:            floatString(data["usd_24h_vol"]),
		ChangePercent24Hr: data["usd_24h_change"],
	}, nil
}

// FindPriceHistoryByAssetID reads /market_chart for the timeframe's day span.
func (p *CoinGeckoProvider) FindPriceHistoryByAssetID(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.find-price-history")
	defer span.End()

	days := "max"
	if d := timeframe.Days(); d > 0 {
		days = fmt.Sprintf("%d", d)
	}

	var path string
	if coinID, ok := coingeckoCoinID(assetID); ok {
		path = "/coins/" + coinID
	} else if platform, address, ok := coingeckoContract(assetID); ok {
		path = "/coins/" + platform + "/contract/" + address
	} else {
		return nil, nil
	}
	url := fmt.Sprintf("%s%s/market_chart?vs_currency=usd&days=%s", p.baseURL, path, days)

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), url, p.header(), &raw); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch market chart for %s: %w", assetID, err)
	}

	points := make([]domain.HistoryPoint, 0, len(raw.Prices))
	cutoff := int64(0)
	if timeframe == domain.TimeframeHour {
		cutoff = time.Now().Add(-time.Hour).UnixMilli()
	}
	for _, pt := range raw.Prices {
		if len(pt) < 2 {
			continue
		}
		ts := int64(pt[0])
		if ts < cutoff {
			continue
		}
		points = append(points, domain.HistoryPoint{Date: ts, Price: pt[1]})
	}
	return points, nil
}

func (p *CoinGeckoProvider) header() http.Header {
	if p.apiKey == "" {
		return nil
	}
	return http.Header{"x-cg-pro-api-key": []string{p.apiKey}}
}

func coingeckoContract(assetID caip.AssetID) (platform, address string, ok bool) {
	parts, err := caip.ParseAssetID(assetID)
	if err != nil || parts.AssetNamespace != caip.AssetNamespaceERC20 {
		return "", "", false
	}
	platform, ok = coingeckoPlatforms[assetID.ChainID()]
	if !ok {
		return "", "", false
	}
	return platform, strings.ToLower(parts.AssetReference), true
}
