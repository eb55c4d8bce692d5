package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/logger"
	"swapscout/internal/service"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"
)

const (
	defaultTopCount = 5
	maxTopCount     = 20
	replyTimeout    = 15 * time.Second
)

// MarketService is the subset of service.PriceService the bot reads.
type MarketService interface {
	ResolveAsset(query string) (caip.AssetID, error)
	GetMarketData(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error)
	TopVolume(ctx context.Context, count int) ([]service.AssetMarketData, error)
}

func StartTelegramBot(token string, markets MarketService) {
	log := logger.GetLogger().WithComponent("telegram-bot")
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.WithError(err).Error("failed to create Telegram bot")
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		return c.Send(priceReply(ctx, markets, c.Args()))
	})

	b.Handle("/top", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		return c.Send(topReply(ctx, markets, c.Args()))
	})

	log.Info("Telegram bot started")
	go b.Start()
}

func priceReply(ctx context.Context, markets MarketService, args []string) string {
	if len(args) == 0 {
		return "Usage: /price <asset id or symbol>\nExample: /price eip155:1/slip44:60"
	}
	assetID, err := markets.ResolveAsset(args[0])
	if err != nil {
		return fmt.Sprintf("Unknown asset: %s", args[0])
	}
	data, err := markets.GetMarketData(ctx, assetID)
	if err != nil {
		return fmt.Sprintf("Error fetching market data for %s: %v", assetID, err)
	}
	return fmt.Sprintf(
		"%s\nPrice: $%s\n24h Change: %.2f%%\n24h Volume: $%s\nMarket Cap: $%s",
		assetID, usd(data.Price, 2), data.ChangePercent24Hr, usd(data.Volume, 0), usd(data.MarketCap, 0),
	)
}

func topReply(ctx context.Context, markets MarketService, args []string) string {
	count := defaultTopCount
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Sprintf("Usage: /top [1-%d]", maxTopCount)
		}
		count = min(n, maxTopCount)
	}

	assets, err := markets.TopVolume(ctx, count)
	if err != nil {
		return fmt.Sprintf("Error fetching top volume assets: %v", err)
	}
	if len(assets) == 0 {
		return "No market data available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d by 24h volume\n", len(assets))
	for i, a := range assets {
		name := a.Symbol
		if name == "" {
			name = string(a.AssetID)
		}
		fmt.Fprintf(&sb, "%d. %s  $%s  vol $%s  %+.2f%%\n",
			i+1, name, usd(a.Data.Price, 2), usd(a.Data.Volume, 0), a.Data.ChangePercent24Hr)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// usd formats a decimal string; unparseable input is returned unchanged.
func usd(amount string, places int32) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return d.StringFixed(places)
}
