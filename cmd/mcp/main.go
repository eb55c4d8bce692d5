package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"swapscout/internal/assets"
	"swapscout/internal/cache"
	"swapscout/internal/config"
	"swapscout/internal/logger"
	"swapscout/internal/marketdata"
	"swapscout/internal/mcpserver"
	"swapscout/internal/provider"
	"swapscout/internal/service"
	"swapscout/pkg/tracing"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	loadCatalogFunc     = config.LoadCatalog
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	runStdioFunc        = func(s *mcpserver.Server, ctx context.Context) error { return s.RunStdio(ctx) }
	startHTTPServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
	notifyContextFunc   = signal.NotifyContext
	exitFunc            = os.Exit
)

func main() {
	_ = loadEnvFunc()
	log := logger.GetLogger().WithComponent("mcp")

	if err := run(); err != nil {
		log.WithError(err).Error("mcp server failed")
		exitFunc(1)
	}
}

func run() error {
	log := logger.GetLogger().WithComponent("mcp")
	cfg := loadConfigFunc()

	catalog, err := loadCatalogFunc(cfg.CatalogPath)
	if err != nil {
		return err
	}

	ctx, stop := notifyContextFunc(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, "swapscout-mcp")
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		log.WithError(err).Warn("redis unavailable, market data will not be cached")
	}

	server := mcpserver.New(tracer, newPriceService(tracer, cfg, catalog), mcpserver.Options{
		RequestTimeout:  time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
	})

	if cfg.MCPTransport != "http" {
		return runStdioFunc(server, ctx)
	}

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort)),
		Handler: server.HTTPHandler(cfg.MCPAuthToken),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", srv.Addr).Info("serving MCP over http")
	if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newPriceService(tracer trace.Tracer, cfg *config.Config, catalog *config.Catalog) *service.PriceService {
	assetCatalog := assets.NewCatalogFromConfig(catalog)
	markets := marketdata.NewManager(tracer, []marketdata.Provider{
		provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey),
		provider.NewCoinCapProvider(tracer, cfg.CoinCapBaseURL, cfg.CoinCapAPIKey),
		provider.NewPortalsProvider(tracer, cfg.PortalsBaseURL, cfg.PortalsAPIKey),
	}, assetCatalog, assetCatalog)

	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}
	return service.NewPriceService(tracer, markets, assetCatalog, redisClient)
}
