package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"swapscout/internal/telemetry"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// QuoteEventRepository persists quotes-received events; it is a telemetry.Sink.
type QuoteEventRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewQuoteEventRepository(pool PgxPool, tracer trace.Tracer) *QuoteEventRepository {
	return &QuoteEventRepository{pool: pool, tracer: tracer}
}

func (r *QuoteEventRepository) Emit(ctx context.Context, event telemetry.QuotesReceivedEvent) error {
	ctx, span := r.tracer.Start(ctx, "quote-event-repo.emit")
	defer span.End()

	meta, err := json.Marshal(event.QuoteMeta)
	if err != nil {
		return fmt.Errorf("encode quote meta: %w", err)
	}
	var sellAmountUsd *string
	if event.SellAmountUsd != "" {
		sellAmountUsd = &event.SellAmountUsd
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO quote_request_events
		     (id, sell_asset_id, buy_asset_id, sell_chain_id, buy_chain_id, sell_amount_usd, version, is_actionable, quote_meta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO NOTHING`,
		event.ID, string(event.SellAssetID), string(event.BuyAssetID),
		string(event.SellAssetChainID), string(event.BuyAssetChainID),
		sellAmountUsd, event.Version, event.IsActionable, meta, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote event: %w", err)
	}
	return nil
}

// Recent returns the latest events, newest first.
func (r *QuoteEventRepository) Recent(ctx context.Context, limit int) ([]telemetry.QuotesReceivedEvent, error) {
	ctx, span := r.tracer.Start(ctx, "quote-event-repo.recent")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, sell_asset_id, buy_asset_id, sell_chain_id, buy_chain_id,
		        COALESCE(sell_amount_usd::text, ''), version, is_actionable, quote_meta, created_at
		 FROM quote_request_events
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []telemetry.QuotesReceivedEvent
	for rows.Next() {
		var (
			e    telemetry.QuotesReceivedEvent
			meta []byte
			ts   time.Time
		)
		if err := rows.Scan(&e.ID, &e.SellAssetID, &e.BuyAssetID, &e.SellAssetChainID, &e.BuyAssetChainID,
			&e.SellAmountUsd, &e.Version, &e.IsActionable, &meta, &ts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &e.QuoteMeta); err != nil {
			return nil, fmt.Errorf("decode quote meta for %s: %w", e.ID, err)
		}
		e.CreatedAt = ts.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}
