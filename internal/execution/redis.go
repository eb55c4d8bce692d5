package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"swapscout/internal/domain"
	"swapscout/internal/swapper"

	"github.com/redis/go-redis/v9"
)

const tradeStateTTL = 24 * time.Hour

// RedisClient is the subset of *redis.Client the store needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps trade state as JSON values under trade:<id>:* keys so
// every server instance sees the same hop states and selections.
type RedisStore struct {
	redis RedisClient
	ttl   time.Duration
}

func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{redis: client, ttl: tradeStateTTL}
}

func hopKey(tradeID string, hopIndex int) string {
	return "trade:" + tradeID + ":hop:" + strconv.Itoa(hopIndex)
}

func activeKey(tradeID string) string    { return "trade:" + tradeID + ":active" }
func confirmedKey(tradeID string) string { return "trade:" + tradeID + ":confirmed" }
func abortedKey(tradeID string) string   { return "trade:" + tradeID + ":aborted" }

func (s *RedisStore) HopState(ctx context.Context, tradeID string, hopIndex int) (domain.ExecutionState, error) {
	val, err := s.redis.Get(ctx, hopKey(tradeID, hopIndex)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrHopNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get hop state: %w", err)
	}
	return domain.ExecutionState(val), nil
}

func (s *RedisStore) SetHopState(ctx context.Context, tradeID string, hopIndex int, state domain.ExecutionState) error {
	if !state.IsValid() {
		return fmt.Errorf("invalid execution state %q", state)
	}
	if err := s.redis.Set(ctx, hopKey(tradeID, hopIndex), string(state), s.ttl).Err(); err != nil {
		return fmt.Errorf("set hop state: %w", err)
	}
	return nil
}

func (s *RedisStore) SetConfirmedQuote(ctx context.Context, tradeID string, quote *swapper.ApiQuote) error {
	return s.setJSON(ctx, confirmedKey(tradeID), quote)
}

func (s *RedisStore) SetActiveQuote(ctx context.Context, tradeID string, quote *swapper.ApiQuote) error {
	return s.setJSON(ctx, activeKey(tradeID), quote)
}

func (s *RedisStore) SetIsTradeQuoteRequestAborted(ctx context.Context, tradeID string, aborted bool) error {
	if err := s.redis.Set(ctx, abortedKey(tradeID), strconv.FormatBool(aborted), s.ttl).Err(); err != nil {
		return fmt.Errorf("set aborted flag: %w", err)
	}
	return nil
}

func (s *RedisStore) IsTradeQuoteRequestAborted(ctx context.Context, tradeID string) (bool, error) {
	val, err := s.redis.Get(ctx, abortedKey(tradeID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get aborted flag: %w", err)
	}
	return strconv.ParseBool(val)
}

func (s *RedisStore) ActiveQuote(ctx context.Context, tradeID string) (*swapper.ApiQuote, error) {
	return s.getJSON(ctx, activeKey(tradeID))
}

func (s *RedisStore) ConfirmedQuote(ctx context.Context, tradeID string) (*swapper.ApiQuote, error) {
	return s.getJSON(ctx, confirmedKey(tradeID))
}

func (s *RedisStore) setJSON(ctx context.Context, key string, quote *swapper.ApiQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// getJSON returns nil for both a missing key and a stored null.
func (s *RedisStore) getJSON(ctx context.Context, key string) (*swapper.ApiQuote, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var quote *swapper.ApiQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return quote, nil
}
