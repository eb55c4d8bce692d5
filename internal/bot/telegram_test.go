package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/service"
)

const ethID caip.AssetID = "eip155:1/slip44:60"

type stubMarkets struct {
	top       []service.AssetMarketData
	err       error
	lastCount int
}

func (s *stubMarkets) ResolveAsset(query string) (caip.AssetID, error) {
	if strings.EqualFold(query, "eth") || query == string(ethID) {
		return ethID, nil
	}
	return "", service.ErrUnknownAsset
}

func (s *stubMarkets) GetMarketData(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.MarketData{Price: "2012.3456", MarketCap: "241000000000.7", Volume: "9876543.21", ChangePercent24Hr: -1.234}, nil
}

func (s *stubMarkets) TopVolume(ctx context.Context, count int) ([]service.AssetMarketData, error) {
	s.lastCount = count
	return s.top, s.err
}

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	StartTelegramBot("", &stubMarkets{})
}

func TestPriceReply(t *testing.T) {
	markets := &stubMarkets{}

	got := priceReply(context.Background(), markets, []string{"ETH"})
	for _, want := range []string{string(ethID), "Price: $2012.35", "24h Change: -1.23%", "24h Volume: $9876543", "Market Cap: $241000000001"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in reply:\n%s", want, got)
		}
	}

	if got := priceReply(context.Background(), markets, nil); !strings.HasPrefix(got, "Usage") {
		t.Fatalf("expected usage, got %q", got)
	}
	if got := priceReply(context.Background(), markets, []string{"DOGE"}); got != "Unknown asset: DOGE" {
		t.Fatalf("unexpected reply %q", got)
	}

	markets.err = errors.New("all providers failed")
	if got := priceReply(context.Background(), markets, []string{"ETH"}); !strings.Contains(got, "all providers failed") {
		t.Fatalf("expected error in reply, got %q", got)
	}
}

func TestTopReply(t *testing.T) {
	markets := &stubMarkets{top: []service.AssetMarketData{
		{AssetID: ethID, Symbol: "ETH", Data: domain.MarketData{Price: "2000", Volume: "100", ChangePercent24Hr: 2}},
		{AssetID: "eip155:1/erc20:0xdead", Data: domain.MarketData{Price: "1", Volume: "50"}},
	}}

	got := topReply(context.Background(), markets, nil)
	if markets.lastCount != defaultTopCount {
		t.Fatalf("expected default count %d, got %d", defaultTopCount, markets.lastCount)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 3 || lines[0] != "Top 2 by 24h volume" {
		t.Fatalf("unexpected reply:\n%s", got)
	}
	if lines[1] != "1. ETH  $2000.00  vol $100  +2.00%" {
		t.Fatalf("unexpected first line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2. eip155:1/erc20:0xdead") {
		t.Fatalf("expected asset id fallback, got %q", lines[2])
	}

	topReply(context.Background(), markets, []string{"500"})
	if markets.lastCount != maxTopCount {
		t.Fatalf("expected count clamped to %d, got %d", maxTopCount, markets.lastCount)
	}
	if got := topReply(context.Background(), markets, []string{"x"}); !strings.HasPrefix(got, "Usage") {
		t.Fatalf("expected usage, got %q", got)
	}

	markets.top = nil
	if got := topReply(context.Background(), markets, nil); got != "No market data available" {
		t.Fatalf("unexpected reply %q", got)
	}
}
