package job

import (
	"context"
	"time"

	"swapscout/internal/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MarketPoller keeps the market data cache warm for the highest-volume assets.
type MarketPoller struct {
	tracer       trace.Tracer
	refresher    MarketDataRefresher
	pollInterval time.Duration
	topCount     int
	log          *logger.Entry
}

type MarketDataRefresher interface {
	RefreshTopVolume(ctx context.Context, count int) (int, error)
}

func NewMarketPoller(tracer trace.Tracer, refresher MarketDataRefresher, pollIntervalSecs, topCount int) *MarketPoller {
	if topCount <= 0 {
		topCount = 25
	}
	return &MarketPoller{
		tracer:       tracer,
		refresher:    refresher,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		topCount:     topCount,
		log:          logger.GetLogger().WithComponent("market-poller"),
	}
}

// Start runs the refresh loop. Blocks until ctx is cancelled.
func (p *MarketPoller) Start(ctx context.Context) {
	p.log.WithFields(logger.Fields{
		"interval":  p.pollInterval.String(),
		"top_count": p.topCount,
	}).Info("market poller starting")

	p.pollLoop(ctx, p.pollInterval, p.refresh)

	p.log.Info("market poller stopped")
}

func (p *MarketPoller) refresh(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "market-poller.refresh")
	defer span.End()

	n, err := p.refresher.RefreshTopVolume(ctx, p.topCount)
	span.SetAttributes(attribute.Int("refreshed", n))
	return err
}

func (p *MarketPoller) pollLoop(ctx context.Context, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	if err := fn(ctx); err != nil {
		p.log.WithError(err).Warn("initial market refresh failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				p.log.WithError(err).Warn("market refresh failed")
			}
		}
	}
}
