package config

import (
	"os"
	"strconv"
	"strings"

	"swapscout/internal/logger"
)

type Config struct {
	HTTPAddr         string
	APIKey           string
	WSAllowedOrigins []string
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	MarketPollSecs int
	MarketTopCount int
	CatalogPath    string

	CoinGeckoBaseURL string
	CoinGeckoAPIKey  string
	CoinCapBaseURL   string
	CoinCapAPIKey    string
	PortalsBaseURL   string
	PortalsAPIKey    string

	ThornodeURL                string
	ThorchainStreamingInterval int
	EthRPCURL                  string
	ZrxBaseURL                 string
	ZrxAPIKey                  string

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPHTTPEnabled        bool
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int
}

func Load() *Config {
	cfg := &Config{
		APIKey:           os.Getenv("API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		CatalogPath:      strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		CoinGeckoAPIKey:  os.Getenv("COINGECKO_API_KEY"),
		CoinCapAPIKey:    os.Getenv("COINCAP_API_KEY"),
		PortalsAPIKey:    os.Getenv("PORTALS_API_KEY"),
		ZrxAPIKey:        os.Getenv("ZRX_API_KEY"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	log := logger.GetLogger().WithComponent("config")
	if cfg.TelegramBotToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, quote telemetry will only be logged")
	}
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	for _, origin := range strings.Split(os.Getenv("WS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			cfg.WSAllowedOrigins = append(cfg.WSAllowedOrigins, origin)
		}
	}

	cfg.MarketPollSecs = 60
	if v := os.Getenv("MARKET_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MarketPollSecs = n
		}
	}

	cfg.MarketTopCount = 25
	if v := strings.TrimSpace(os.Getenv("MARKET_TOP_COUNT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MarketTopCount = n
		}
	}

	cfg.CoinGeckoBaseURL = envOrDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")
	cfg.CoinCapBaseURL = envOrDefault("COINCAP_BASE_URL", "https://api.coincap.io/v2")
	cfg.PortalsBaseURL = envOrDefault("PORTALS_BASE_URL", "https://api.portals.fi/v2")
	cfg.ThornodeURL = envOrDefault("THORNODE_URL", "https://thornode.ninerealms.com")
	cfg.ZrxBaseURL = envOrDefault("ZRX_BASE_URL", "https://api.0x.org")

	cfg.EthRPCURL = strings.TrimSpace(os.Getenv("ETH_RPC_URL"))
	if cfg.EthRPCURL == "" {
		log.Warn("ETH_RPC_URL not set, longtail routing will be disabled")
	}

	cfg.ThorchainStreamingInterval = 1
	if v := strings.TrimSpace(os.Getenv("THORCHAIN_STREAMING_INTERVAL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ThorchainStreamingInterval = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.WithField("transport", cfg.MCPTransport).Warn("unsupported MCP_TRANSPORT, defaulting to stdio")
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	return cfg
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return strings.TrimRight(v, "/")
	}
	return def
}
