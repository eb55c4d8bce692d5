package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

const (
	ethID  caip.AssetID = "eip155:1/slip44:60"
	btcID  caip.AssetID = "bip122:000000000019d6689c085ae165831e93/slip44:0"
	usdcID caip.AssetID = "eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

func TestPriceService_GetMarketDataCacheHit(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	cached := domain.MarketData{Price: "3000", MarketCap: "1", Volume: "2"}
	data, _ := json.Marshal(cached)
	_ = redis.Set(context.Background(), "market:"+string(ethID), data, 0)

	source := &mockSource{}
	svc := NewPriceService(testTracer, source, testCatalog{}, redis)

	got, err := svc.GetMarketData(context.Background(), ethID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != "3000" {
		t.Fatalf("expected cached price, got %+v", got)
	}
	if source.findByIDCalls != 0 {
		t.Fatalf("expected no provider call on cache hit, got %d", source.findByIDCalls)
	}
}

func TestPriceService_GetMarketDataFetchesOnMiss(t *testing.T) {
	t.Parallel()

	source := &mockSource{data: map[caip.AssetID]domain.MarketData{
		ethID: {Price: "2500", MarketCap: "300", Volume: "10"},
	}}
	redis := newFakeRedis()
	svc := NewPriceService(testTracer, source, testCatalog{}, redis)

	got, err := svc.GetMarketData(context.Background(), ethID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != "2500" {
		t.Fatalf("unexpected market data: %+v", got)
	}
	if source.findByIDCalls != 1 {
		t.Fatalf("expected one provider call, got %d", source.findByIDCalls)
	}
	if _, ok := redis.data["market:"+string(ethID)]; !ok {
		t.Fatal("market data not cached")
	}
	if redis.ttl["market:"+string(ethID)] != marketCacheTTL {
		t.Fatalf("expected ttl %s, got %s", marketCacheTTL, redis.ttl["market:"+string(ethID)])
	}
}

func TestPriceService_GetMarketDataFallsThroughOnRedisError(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	redis.getErr = errors.New("connection refused")
	redis.setErr = errors.New("connection refused")
	source := &mockSource{data: map[caip.AssetID]domain.MarketData{ethID: {Price: "1"}}}
	svc := NewPriceService(testTracer, source, testCatalog{}, redis)

	got, err := svc.GetMarketData(context.Background(), ethID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != "1" {
		t.Fatalf("unexpected market data: %+v", got)
	}
}

func TestPriceService_GetMarketDataErrors(t *testing.T) {
	t.Parallel()

	svc := NewPriceService(testTracer, &mockSource{}, testCatalog{}, nil)

	if _, err := svc.GetMarketData(context.Background(), "not-an-asset"); !errors.Is(err, ErrInvalidAssetID) {
		t.Fatalf("expected ErrInvalidAssetID, got %v", err)
	}
	if _, err := svc.GetMarketData(context.Background(), btcID); !errors.Is(err, ErrNoMarketData) {
		t.Fatalf("expected ErrNoMarketData, got %v", err)
	}
}

func TestPriceService_GetMarketsCachesEntries(t *testing.T) {
	t.Parallel()

	source := &mockSource{data: map[caip.AssetID]domain.MarketData{
		ethID: {Price: "2500"},
		btcID: {Price: "60000"},
	}}
	redis := newFakeRedis()
	svc := NewPriceService(testTracer, source, testCatalog{}, redis)

	result, err := svc.GetMarkets(context.Background(), domain.FindAllArgs{Count: 10, Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(result))
	}
	if source.lastFindAll.Count != 10 || source.lastFindAll.Page != 1 {
		t.Fatalf("unexpected find all args: %+v", source.lastFindAll)
	}
	if len(redis.data) != 2 {
		t.Fatalf("expected 2 cached entries, got %d", len(redis.data))
	}
}

func TestPriceService_GetPriceHistory(t *testing.T) {
	t.Parallel()

	source := &mockSource{history: []domain.HistoryPoint{{Date: 1, Price: 2}}}
	svc := NewPriceService(testTracer, source, testCatalog{}, nil)

	got, err := svc.GetPriceHistory(context.Background(), ethID, domain.TimeframeWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || source.lastTimeframe != domain.TimeframeWeek {
		t.Fatalf("unexpected history %+v (timeframe %s)", got, source.lastTimeframe)
	}

	if _, err := svc.GetPriceHistory(context.Background(), ethID, "2D"); !errors.Is(err, ErrInvalidTimeframe) {
		t.Fatalf("expected ErrInvalidTimeframe, got %v", err)
	}

	source.history = nil
	got, err = svc.GetPriceHistory(context.Background(), ethID, domain.TimeframeDay)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil history, got %v (%v)", got, err)
	}
}

func TestPriceService_TopVolumeSkipsMissingData(t *testing.T) {
	t.Parallel()

	source := &mockSource{
		data:   map[caip.AssetID]domain.MarketData{ethID: {Price: "2500"}, usdcID: {Price: "1"}},
		ranked: []caip.AssetID{usdcID, btcID, ethID},
	}
	svc := NewPriceService(testTracer, source, testCatalog{}, newFakeRedis())

	got, err := svc.TopVolume(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].AssetID != usdcID || got[0].Symbol != "USDC" || got[1].AssetID != ethID {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestPriceService_RefreshTopVolumeBypassesCache(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	stale, _ := json.Marshal(domain.MarketData{Price: "1"})
	_ = redis.Set(context.Background(), "market:"+string(ethID), stale, 0)

	source := &mockSource{
		data:   map[caip.AssetID]domain.MarketData{ethID: {Price: "2600"}},
		ranked: []caip.AssetID{ethID, btcID},
	}
	svc := NewPriceService(testTracer, source, testCatalog{}, redis)

	n, err := svc.RefreshTopVolume(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 refreshed, got %d", n)
	}
	var cached domain.MarketData
	_ = json.Unmarshal(redis.data["market:"+string(ethID)], &cached)
	if cached.Price != "2600" {
		t.Fatalf("expected refreshed price, got %+v", cached)
	}
	if source.lastCount != 2 {
		t.Fatalf("expected count 2, got %d", source.lastCount)
	}
}

func TestPriceService_RefreshTopVolumePropagatesRankingError(t *testing.T) {
	t.Parallel()

	source := &mockSource{rankErr: errors.New("all providers down")}
	svc := NewPriceService(testTracer, source, testCatalog{}, nil)

	if _, err := svc.RefreshTopVolume(context.Background(), 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestPriceService_ResolveAsset(t *testing.T) {
	t.Parallel()

	svc := NewPriceService(testTracer, &mockSource{}, testCatalog{}, nil)

	tests := []struct {
		query string
		want  caip.AssetID
		err   error
	}{
		{query: "eth", want: ethID},
		{query: " USDC ", want: usdcID},
		{query: string(btcID), want: btcID},
		{query: "DOGE", err: ErrUnknownAsset},
		{query: "eip155:1/", err: ErrInvalidAssetID},
	}
	for _, tc := range tests {
		got, err := svc.ResolveAsset(tc.query)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q: expected %v, got %v", tc.query, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: expected %s, got %s (%v)", tc.query, tc.want, got, err)
		}
	}
}

type mockSource struct {
	data          map[caip.AssetID]domain.MarketData
	history       []domain.HistoryPoint
	ranked        []caip.AssetID
	rankErr       error
	findByIDCalls int
	lastFindAll   domain.FindAllArgs
	lastTimeframe domain.HistoryTimeframe
	lastCount     int
}

func (m *mockSource) FindAll(ctx context.Context, args domain.FindAllArgs) (domain.MarketCapResult, error) {
	m.lastFindAll = args
	out := domain.MarketCapResult{}
	for id, d := range m.data {
		out[id] = d
	}
	return out, nil
}

func (m *mockSource) FindByAssetID(ctx context.Context, assetID caip.AssetID) (*domain.MarketData, error) {
	m.findByIDCalls++
	d, ok := m.data[assetID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *mockSource) FindPriceHistoryByAssetID(ctx context.Context, assetID caip.AssetID, timeframe domain.HistoryTimeframe) ([]domain.HistoryPoint, error) {
	m.lastTimeframe = timeframe
	return m.history, nil
}

func (m *mockSource) FindAllSortedByVolumeDesc(ctx context.Context, count int) ([]caip.AssetID, error) {
	m.lastCount = count
	if m.rankErr != nil {
		return nil, m.rankErr
	}
	return m.ranked, nil
}

type testCatalog struct{}

func (testCatalog) Get(id caip.AssetID) (domain.Asset, bool) {
	for _, a := range (testCatalog{}).All() {
		if a.AssetID == id {
			return a, true
		}
	}
	return domain.Asset{}, false
}

func (testCatalog) All() []domain.Asset {
	return []domain.Asset{
		{AssetID: ethID, Symbol: "ETH", Precision: 18},
		{AssetID: btcID, Symbol: "BTC", Precision: 8},
		{AssetID: usdcID, Symbol: "USDC", Precision: 6},
	}
}

type fakeRedis struct {
	data   map[string][]byte
	ttl    map[string]time.Duration
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttl: make(map[string]time.Duration)}
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
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
