package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"swapscout/internal/domain"

	"go.opentelemetry.io/otel/trace/noop"
)

func newTestCoinCap(t *testing.T, fn roundTripFunc) *CoinCapProvider {
	t.Helper()
	p := NewCoinCapProvider(noop.NewTracerProvider().Tracer("test"), "http://example", "")
	p.client = &http.Client{Transport: fn}
	p.limiter = newLimiter(time.Millisecond, 100)
	return p
}

func TestCoinCapFindByAssetID(t *testing.T) {
	t.Parallel()

	p := newTestCoinCap(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/assets/bitcoin" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"data": map[string]string{
				"id":                "bitcoin",
				"priceUsd":          "97000.123",
				"marketCapUsd":      "1900000000000",
				"volumeUsd24Hr":     "",
				"changePercent24Hr": "2.5",
			},
		}), nil
	})

	md, err := p.FindByAssetID(context.Background(), btcAssetID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md == nil || md.Price != "97000.123" || md.Volume != "0" || md.ChangePercent24Hr != 2.5 {
		t.Fatalf("unexpected market data: %+v", md)
	}
}

func TestCoinCapFindAll(t *testing.T) {
	t.Parallel()

	p := newTestCoinCap(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("limit") != "5" || req.URL.Query().Get("offset") != "5" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"data": []map[string]string{
				{"id": "ethereum", "priceUsd": "3000"},
				{"id": "unknown-coin", "priceUsd": "1"},
			},
		}), nil
	})

	result, err := p.FindAll(context.Background(), domain.FindAllArgs{Count: 5, Page: 2}, domain.SortMarketCapDesc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[ethAssetID].Price != "3000" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCoinCapPriceHistory(t *testing.T) {
	t.Parallel()

	p := newTestCoinCap(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("interval") != "m5" {
			t.Fatalf("unexpected interval: %s", req.URL.RawQuery)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"priceUsd": "1.5", "time": 1700000000000},
				{"priceUsd": "1.6", "time": 1700000300000},
			},
		}), nil
	})

	points, err := p.FindPriceHistoryByAssetID(context.Background(), runeAssetID, domain.TimeframeDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 || points[0].Date != 1700000000000 || points[1].Price != 1.6 {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestCoinCapServerError(t *testing.T) {
	t.Parallel()

	p := newTestCoinCap(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusInternalServerError, map[string]string{"error": "boom"}), nil
	})
	if _, err := p.FindByAssetID(context.Background(), btcAssetID); err == nil {
		t.Fatal("expected error on 500")
	}
}
