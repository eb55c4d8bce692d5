package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("MARKET_POLL_SECS", "")
	t.Setenv("MARKET_TOP_COUNT", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("THORNODE_URL", "")
	t.Setenv("MCP_TRANSPORT", "")
	t.Setenv("WS_ALLOWED_ORIGINS", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.MarketPollSecs != 60 || cfg.MarketTopCount != 25 {
		t.Fatalf("unexpected poll defaults: %d %d", cfg.MarketPollSecs, cfg.MarketTopCount)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr, got %s", cfg.HTTPAddr)
	}
	if cfg.ThornodeURL != "https://thornode.ninerealms.com" {
		t.Fatalf("unexpected thornode url %s", cfg.ThornodeURL)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected stdio transport, got %s", cfg.MCPTransport)
	}
	if len(cfg.WSAllowedOrigins) != 0 {
		t.Fatalf("expected no extra websocket origins, got %v", cfg.WSAllowedOrigins)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("MARKET_POLL_SECS", "120")
	t.Setenv("THORNODE_URL", "http://thornode.local/")
	t.Setenv("MCP_TRANSPORT", "carrier-pigeon")
	t.Setenv("WS_ALLOWED_ORIGINS", " https://app.example.com/ ,,http://localhost:3000")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MarketPollSecs != 120 {
		t.Fatalf("expected poll secs 120, got %d", cfg.MarketPollSecs)
	}
	if cfg.ThornodeURL != "http://thornode.local" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.ThornodeURL)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back to stdio, got %s", cfg.MCPTransport)
	}
	if len(cfg.WSAllowedOrigins) != 2 || cfg.WSAllowedOrigins[0] != "https://app.example.com" || cfg.WSAllowedOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected websocket origins %v", cfg.WSAllowedOrigins)
	}

	t.Setenv("MARKET_POLL_SECS", "bad")
	cfg = Load()
	if cfg.MarketPollSecs != 60 {
		t.Fatalf("invalid poll secs should fall back to default, got %d", cfg.MarketPollSecs)
	}
}

func TestLoadMCPLimits(t *testing.T) {
	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "0")
	t.Setenv("MCP_AUTH_TOKEN", "tok")

	cfg := Load()
	if cfg.MCPRequestTimeoutSecs != 5 || cfg.MCPRateLimitPerMin != 60 {
		t.Fatalf("unexpected MCP defaults: %d %d", cfg.MCPRequestTimeoutSecs, cfg.MCPRateLimitPerMin)
	}
	if cfg.MCPAuthToken != "tok" {
		t.Fatalf("expected auth token, got %q", cfg.MCPAuthToken)
	}

	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "9")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "120")
	cfg = Load()
	if cfg.MCPRequestTimeoutSecs != 9 || cfg.MCPRateLimitPerMin != 120 {
		t.Fatalf("unexpected MCP limits: %d %d", cfg.MCPRequestTimeoutSecs, cfg.MCPRateLimitPerMin)
	}
}
