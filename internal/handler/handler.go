package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/fees"
	"swapscout/internal/metrics"
	"swapscout/internal/service"
	"swapscout/internal/swapper"
	"swapscout/internal/swapper/thorchain"
	"swapscout/internal/telemetry"
	"swapscout/internal/tradequote"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
)

type MarketService interface {
	ResolveAsset(query string) (caip.AssetID, error)
	GetMarketData(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error)
	GetMarkets(ctx context.Context, args domain.FindAllArgs) (domain.MarketCapResult, error)
	GetPriceHistory(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error)
	TopVolume(ctx context.Context, count int) ([]service.AssetMarketData, error)
}

type QuoteFetcher interface {
	FetchOnce(ctx context.Context, input swapper.GetTradeQuoteInput) []swapper.ApiQuote
	Swappers() []string
}

type LongtailRouter interface {
	ComposeLongtailRoute(ctx context.Context, input swapper.GetTradeQuoteInput, streamingInterval int, catalog thorchain.AssetLookup) ([]domain.Quote, error)
}

type QuoteEventLister interface {
	Recent(ctx context.Context, limit int) ([]telemetry.QuotesReceivedEvent, error)
}

type AssetCatalog interface {
	Get(id caip.AssetID) (domain.Asset, bool)
	All() []domain.Asset
}

type Handler struct {
	tracer  trace.Tracer
	markets MarketService
	assets  AssetCatalog
	fees    *fees.Calculator
	apiKey  string

	quotes   QuoteFetcher
	sink     telemetry.Sink
	sessions *tradequote.Sessions

	longtail          LongtailRouter
	streamingInterval int

	events   QuoteEventLister
	upgrader websocket.Upgrader
	// lowercased, without trailing slash
	allowedOrigins map[string]struct{}
}

func New(tracer trace.Tracer, markets MarketService, assets AssetCatalog, calc *fees.Calculator) *Handler {
	h := &Handler{
		tracer:  tracer,
		markets: markets,
		assets:  assets,
		fees:    calc,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// SetAllowedOrigins lists the cross-site origins, besides the server's own
// host, that may open a session stream.
func (h *Handler) SetAllowedOrigins(origins []string) {
	h.allowedOrigins = make(map[string]struct{}, len(origins))
	for _, o := range origins {
		h.allowedOrigins[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
}

// checkOrigin accepts clients that send no Origin (non-browser), browsers on
// the same host, and configured origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	_, ok := h.allowedOrigins[strings.ToLower(origin)]
	return ok
}

// SetAPIKey protects the quote session routes with APIKeyAuth.
func (h *Handler) SetAPIKey(key string) {
	h.apiKey = key
}

// SetQuoting enables the one-shot quote endpoint. sink may be nil.
func (h *Handler) SetQuoting(quotes QuoteFetcher, sink telemetry.Sink) {
	h.quotes = quotes
	h.sink = sink
}

func (h *Handler) SetSessions(sessions *tradequote.Sessions) {
	h.sessions = sessions
}

func (h *Handler) SetLongtailRouter(router LongtailRouter, streamingInterval int) {
	h.longtail = router
	h.streamingInterval = streamingInterval
}

func (h *Handler) SetQuoteEventLister(events QuoteEventLister) {
	h.events = events
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.GET("/markets", h.GetMarkets)
	api.GET("/markets/top-volume", h.GetTopVolume)
	api.GET("/market-data", h.GetMarketData)
	api.GET("/price-history", h.GetPriceHistory)
	api.GET("/assets/buy-assets", h.GetBuyAssets)
	api.POST("/quotes", h.GetQuotes)
	api.POST("/routes/longtail", h.GetLongtailRoute)
	api.POST("/fees", h.CalculateFees)
	api.GET("/quote-events", h.ListQuoteEvents)

	sessions := api.Group("/sessions", APIKeyAuth(h.apiKey))
	sessions.POST("", h.CreateSession)
	sessions.PUT("/:id/inputs", h.UpdateSessionInputs)
	sessions.GET("/:id/quotes", h.GetSessionQuotes)
	sessions.POST("/:id/select", h.SelectSessionQuote)
	sessions.DELETE("/:id", h.CloseSession)
	sessions.GET("/:id/stream", h.StreamSession)
}
