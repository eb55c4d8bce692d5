package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"swapscout/internal/assets"
	"swapscout/internal/bot"
	"swapscout/internal/cache"
	"swapscout/internal/config"
	"swapscout/internal/db"
	"swapscout/internal/execution"
	"swapscout/internal/fees"
	"swapscout/internal/handler"
	"swapscout/internal/job"
	"swapscout/internal/logger"
	"swapscout/internal/marketdata"
	"swapscout/internal/mcpserver"
	"swapscout/internal/metrics"
	"swapscout/internal/provider"
	"swapscout/internal/repository"
	"swapscout/internal/service"
	"swapscout/internal/swapper"
	"swapscout/internal/swapper/thorchain"
	"swapscout/internal/swapper/uniswap"
	"swapscout/internal/swapper/zrx"
	"swapscout/internal/telemetry"
	"swapscout/internal/tradequote"
	"swapscout/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "swapscout/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	loadCatalogFunc      = config.LoadCatalog
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	dialEthClientFunc    = func(endpoint string) (uniswap.ContractCaller, error) { return uniswap.DialEthClient(endpoint) }
	startPollerFunc      = func(p *job.MarketPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc = bot.StartTelegramBot
	newRouterFunc        = gin.Default
	setupSignalNotify    = signal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	exitFunc             = os.Exit

	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           SwapScout API
// @version         1.0
// @description     Multi-swapper trade quote aggregation with market data and fee estimates.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()
	log := logger.GetLogger().WithComponent("server")

	cfg := loadConfigFunc()
	catalog, err := loadCatalogFunc(cfg.CatalogPath)
	if err != nil {
		log.WithError(err).Error("failed to load catalog")
		exitFunc(1)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Init()

	tp, tracer, err := initTracerFunc(ctx, "swapscout")
	if err != nil {
		log.WithError(err).Error("failed to initialize tracer")
		exitFunc(1)
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("error shutting down tracer provider")
		}
	}()

	if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		log.WithError(err).Warn("postgres unavailable, quote telemetry will only be logged")
	}
	defer db.Close()
	if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		log.WithError(err).Warn("redis unavailable, using in-memory trade state")
	}

	assetCatalog := assets.NewCatalogFromConfig(catalog)
	markets := marketdata.NewManager(tracer, []marketdata.Provider{
		provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey),
		provider.NewCoinCapProvider(tracer, cfg.CoinCapBaseURL, cfg.CoinCapAPIKey),
		provider.NewPortalsProvider(tracer, cfg.PortalsBaseURL, cfg.PortalsAPIKey),
	}, assetCatalog, assetCatalog)

	var priceCache service.RedisClient
	var store execution.Store = execution.NewMemoryStore()
	if cache.Client != nil {
		priceCache = cache.Client
		store = execution.NewRedisStore(cache.Client)
	}
	priceService := service.NewPriceService(tracer, markets, assetCatalog, priceCache)

	poller := job.NewMarketPoller(tracer, priceService, cfg.MarketPollSecs, cfg.MarketTopCount)
	startPollerFunc(poller, ctx)

	startTelegramBotFunc(cfg.TelegramBotToken, priceService)

	swappers, longtail, err := buildSwappers(tracer, cfg, catalog, assetCatalog)
	if err != nil {
		log.WithError(err).Error("failed to build swappers")
		exitFunc(1)
		return
	}

	sinks := telemetry.MultiSink{telemetry.NewLogSink()}
	var events handler.QuoteEventLister
	if db.Pool != nil {
		repo := repository.NewQuoteEventRepository(db.Pool, tracer)
		sinks = append(sinks, repo)
		events = repo
	}

	calc := fees.NewCalculator(fees.OverridesFromCatalog(catalog))
	agg := tradequote.NewAggregator(tracer, swappers)
	sessions := tradequote.NewSessions(agg, store, calc, sinks)
	defer sessions.CloseAll()

	h := handler.New(tracer, priceService, assetCatalog, calc)
	h.SetAPIKey(cfg.APIKey)
	h.SetAllowedOrigins(cfg.WSAllowedOrigins)
	h.SetQuoting(agg, sinks)
	h.SetSessions(sessions)
	if longtail != nil {
		h.SetLongtailRouter(longtail, cfg.ThorchainStreamingInterval)
	}
	if events != nil {
		h.SetQuoteEventLister(events)
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware("swapscout"))
	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	servers := []*http.Server{{Addr: cfg.HTTPAddr, Handler: r}}
	if cfg.MCPHTTPEnabled {
		mcp := mcpserver.New(tracer, priceService, mcpserver.Options{
			RequestTimeout:  time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
			RateLimitPerMin: cfg.MCPRateLimitPerMin,
		})
		servers = append(servers, &http.Server{
			Addr:    net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort)),
			Handler: mcp.HTTPHandler(cfg.MCPAuthToken),
		})
	}

	for _, srv := range servers {
		go func(srv *http.Server) {
			log.WithField("addr", srv.Addr).Info("listening")
			if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).WithField("addr", srv.Addr).Error("listen failed")
			}
		}(srv)
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	for _, srv := range servers {
		if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
			log.WithError(err).WithField("addr", srv.Addr).Error("server forced to shutdown")
		}
	}
	if cache.Client != nil {
		_ = cache.Client.Close()
	}

	log.Info("server exiting")
}

// buildSwappers returns the catalog-enabled swappers and, when an Ethereum
// RPC is configured, the longtail route composer.
func buildSwappers(tracer trace.Tracer, cfg *config.Config, catalog *config.Catalog, assetCatalog *assets.Catalog) ([]swapper.QuoteProvider, handler.LongtailRouter, error) {
	log := logger.GetLogger().WithComponent("server")
	intervals := catalog.PollingIntervals()

	var (
		swappers []swapper.QuoteProvider
		longtail handler.LongtailRouter
	)

	if catalog.SwapperEnabled(swapper.NameThorchain) {
		thornode := thorchain.NewThornodeClient(tracer, cfg.ThornodeURL, catalog.ThorchainPools)

		var composer thorchain.LongtailComposer
		if cfg.EthRPCURL != "" {
			caller, err := dialEthClientFunc(cfg.EthRPCURL)
			if err != nil {
				log.WithError(err).Warn("eth rpc unavailable, longtail routing disabled")
			} else {
				selector, err := uniswap.NewSelector(tracer, caller, nil)
				if err != nil {
					return nil, nil, err
				}
				chains, err := assets.NewChainAdapterManager(catalog.ChainFeeAssets)
				if err != nil {
					return nil, nil, fmt.Errorf("chain adapters: %w", err)
				}
				c := thorchain.NewComposer(tracer, chains, selector, thornode)
				composer, longtail = c, c
			}
		}

		swappers = append(swappers, thorchain.NewSwapper(tracer, thornode, composer, assetCatalog,
			cfg.ThorchainStreamingInterval, intervals[swapper.NameThorchain]))
	}

	if catalog.SwapperEnabled(swapper.NameZrx) {
		swappers = append(swappers, zrx.NewSwapper(tracer, cfg.ZrxBaseURL, cfg.ZrxAPIKey, intervals[swapper.NameZrx]))
	}

	if len(swappers) == 0 {
		log.Warn("no swappers enabled in catalog, quote endpoints will return empty results")
	}
	return swappers, longtail, nil
}
