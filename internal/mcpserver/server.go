// Package mcpserver exposes market data as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/logger"
	"swapscout/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	serverName    = "swapscout"
	serverVersion = "v1.0.0"
	maxTopVolume  = 100
)

var ErrRateLimited = errors.New("rate limit exceeded, retry later")

type MarketService interface {
	ResolveAsset(query string) (caip.AssetID, error)
	GetMarketData(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error)
	GetPriceHistory(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error)
	TopVolume(ctx context.Context, count int) ([]service.AssetMarketData, error)
}

type Options struct {
	RequestTimeout  time.Duration
	RateLimitPerMin int
}

type Server struct {
	tracer  trace.Tracer
	markets MarketService
	timeout time.Duration
	limiter *rate.Limiter
	log     *logger.Entry
}

func New(tracer trace.Tracer, markets MarketService, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	if opts.RateLimitPerMin <= 0 {
		opts.RateLimitPerMin = 60
	}
	return &Server{
		tracer:  tracer,
		markets: markets,
		timeout: opts.RequestTimeout,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RateLimitPerMin)), opts.RateLimitPerMin),
		log:     logger.GetLogger().WithComponent("mcp"),
	}
}

type MarketDataInput struct {
	AssetID string `json:"asset_id" jsonschema:"CAIP-19 asset id (e.g. eip155:1/slip44:60) or catalog symbol (e.g. ETH)"`
}

type MarketDataOutput struct {
	AssetID    caip.AssetID      `json:"asset_id"`
	MarketData domain.MarketData `json:"market_data"`
}

type PriceHistoryInput struct {
	AssetID   string `json:"asset_id" jsonschema:"CAIP-19 asset id or catalog symbol"`
	Timeframe string `json:"timeframe,omitempty" jsonschema:"one of 1H, 24H, 1W, 1M, 1Y, All; defaults to 24H"`
}

type PriceHistoryOutput struct {
	AssetID   caip.AssetID            `json:"asset_id"`
	Timeframe domain.HistoryTimeframe `json:"timeframe"`
	History   []domain.HistoryPoint   `json:"history"`
}

type TopVolumeInput struct {
	Count int `json:"count,omitempty" jsonschema:"number of assets to return, 1-100; defaults to 10"`
}

type TopVolumeOutput struct {
	Assets []service.AssetMarketData `json:"assets"`
}

// MCPServer builds an SDK server with every tool registered.
func (s *Server) MCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_data",
		Description: "Current USD price, market cap, 24h volume and 24h change for one asset.",
	}, s.marketData)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "price_history",
		Description: "USD price samples for one asset over a timeframe.",
	}, s.priceHistory)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "top_volume",
		Description: "Assets with the highest 24h trading volume, highest first.",
	}, s.topVolume)
	return server
}

// RunStdio serves one client over stdin/stdout until ctx is done.
func (s *Server) RunStdio(ctx context.Context) error {
	s.log.Info("serving MCP over stdio")
	return s.MCPServer().Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves the streamable HTTP transport. A non-empty token is
// required as a bearer token on every request.
func (s *Server) HTTPHandler(token string) http.Handler {
	server := s.MCPServer()
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	if token == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func (s *Server) begin(ctx context.Context, tool string) (context.Context, func(), error) {
	if !s.limiter.Allow() {
		s.log.WithField("tool", tool).Warn("MCP rate limit exceeded")
		return ctx, func() {}, ErrRateLimited
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	ctx, span := s.tracer.Start(ctx, "mcp."+tool)
	return ctx, func() {
		span.End()
		cancel()
	}, nil
}

func (s *Server) marketData(ctx context.Context, _ *mcp.CallToolRequest, in MarketDataInput) (*mcp.CallToolResult, MarketDataOutput, error) {
	ctx, done, err := s.begin(ctx, "market_data")
	defer done()
	if err != nil {
		return nil, MarketDataOutput{}, err
	}

	assetID, err := s.markets.ResolveAsset(in.AssetID)
	if err != nil {
		return nil, MarketDataOutput{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("asset_id", string(assetID)))

	data, err := s.markets.GetMarketData(ctx, assetID)
	if err != nil {
		return nil, MarketDataOutput{}, err
	}
	return nil, MarketDataOutput{AssetID: assetID, MarketData: *data}, nil
}

func (s *Server) priceHistory(ctx context.Context, _ *mcp.CallToolRequest, in PriceHistoryInput) (*mcp.CallToolResult, PriceHistoryOutput, error) {
	ctx, done, err := s.begin(ctx, "price_history")
	defer done()
	if err != nil {
		return nil, PriceHistoryOutput{}, err
	}

	assetID, err := s.markets.ResolveAsset(in.AssetID)
	if err != nil {
		return nil, PriceHistoryOutput{}, err
	}
	timeframe := domain.HistoryTimeframe(in.Timeframe)
	if timeframe == "" {
		timeframe = domain.TimeframeDay
	}

	history, err := s.markets.GetPriceHistory(ctx, assetID, timeframe)
	if err != nil {
		return nil, PriceHistoryOutput{}, err
	}
	if history == nil {
		history = []domain.HistoryPoint{}
	}
	return nil, PriceHistoryOutput{AssetID: assetID, Timeframe: timeframe, History: history}, nil
}

func (s *Server) topVolume(ctx context.Context, _ *mcp.CallToolRequest, in TopVolumeInput) (*mcp.CallToolResult, TopVolumeOutput, error) {
	ctx, done, err := s.begin(ctx, "top_volume")
	defer done()
	if err != nil {
		return nil, TopVolumeOutput{}, err
	}

	count := in.Count
	if count <= 0 {
		count = 10
	}
	count = min(count, maxTopVolume)

	assets, err := s.markets.TopVolume(ctx, count)
	if err != nil {
		return nil, TopVolumeOutput{}, err
	}
	if assets == nil {
		assets = []service.AssetMarketData{}
	}
	return nil, TopVolumeOutput{Assets: assets}, nil
}
