package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"swapscout/internal/domain"
	"swapscout/internal/swapper"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func testStores() map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(newFakeRedis()),
	}
}

func TestStoreHopState(t *testing.T) {
	for name, store := range testStores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.HopState(ctx, "trade-1", 0); !errors.Is(err, ErrHopNotFound) {
				t.Fatalf("expected ErrHopNotFound, got %v", err)
			}
			if err := store.SetHopState(ctx, "trade-1", 0, domain.HopAwaitingSwap); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			state, err := store.HopState(ctx, "trade-1", 0)
			if err != nil || state != domain.HopAwaitingSwap {
				t.Fatalf("expected awaiting_swap, got %q (%v)", state, err)
			}
			if _, err := store.HopState(ctx, "trade-1", 1); !errors.Is(err, ErrHopNotFound) {
				t.Fatalf("hop 1 should be unset, got %v", err)
			}
			if err := store.SetHopState(ctx, "trade-1", 0, "bogus"); err == nil {
				t.Fatal("expected error for invalid state")
			}
		})
	}
}

func TestStoreQuotesAndAbortFlag(t *testing.T) {
	for name, store := range testStores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if q, err := store.ActiveQuote(ctx, "trade-1"); err != nil || q != nil {
				t.Fatalf("expected no active quote, got %+v (%v)", q, err)
			}

			quote := &swapper.ApiQuote{
				ID:               "q-1",
				SwapperName:      swapper.NameThorchain,
				Quote:            &domain.Quote{ID: "inner", SwapperName: swapper.NameThorchain, Rate: "0.5"},
				InputOutputRatio: 0.5,
			}
			if err := store.SetActiveQuote(ctx, "trade-1", quote); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := store.SetConfirmedQuote(ctx, "trade-1", quote); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			active, err := store.ActiveQuote(ctx, "trade-1")
			if err != nil || active == nil || active.ID != "q-1" || active.Quote.Rate != "0.5" {
				t.Fatalf("unexpected active quote %+v (%v)", active, err)
			}
			confirmed, err := store.ConfirmedQuote(ctx, "trade-1")
			if err != nil || confirmed == nil || confirmed.SwapperName != swapper.NameThorchain {
				t.Fatalf("unexpected confirmed quote %+v (%v)", confirmed, err)
			}

			if err := store.SetIsTradeQuoteRequestAborted(ctx, "trade-1", true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			aborted, err := store.IsTradeQuoteRequestAborted(ctx, "trade-1")
			if err != nil || !aborted {
				t.Fatalf("expected aborted flag, got %v (%v)", aborted, err)
			}
		})
	}
}

func TestRedisStoreKeysAndErrors(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisStore(fake)
	ctx := context.Background()

	if err := store.SetHopState(ctx, "abc", 1, domain.HopExecuting); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(fake.data["trade:abc:hop:1"]) != "executing" {
		t.Fatalf("unexpected stored value %q", fake.data["trade:abc:hop:1"])
	}
	if fake.ttls["trade:abc:hop:1"] != tradeStateTTL {
		t.Fatalf("expected ttl %v, got %v", tradeStateTTL, fake.ttls["trade:abc:hop:1"])
	}

	if err := store.SetActiveQuote(ctx, "abc", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q, err := store.ActiveQuote(ctx, "abc"); err != nil || q != nil {
		t.Fatalf("stored null should read back as nil, got %+v (%v)", q, err)
	}

	fake.setErr = errors.New("down")
	if err := store.SetIsTradeQuoteRequestAborted(ctx, "abc", true); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
