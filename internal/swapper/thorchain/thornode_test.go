package thorchain

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/swapper"

	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, v any) *http.Response {
	data, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

var testPools = map[caip.AssetID]string{
	ethAsset.AssetID: "ETH.ETH",
	btcAsset.AssetID: "BTC.BTC",
}

func newTestThornode(fn roundTripFunc) *ThornodeClient {
	c := NewThornodeClient(noop.NewTracerProvider().Tracer("test"), "http://thornode", testPools)
	c.client = &http.Client{Transport: fn}
	c.limiter = rate.NewLimiter(rate.Every(time.Millisecond), 100)
	return c
}

func l1Input() swapper.GetTradeQuoteInput {
	input := swapper.GetTradeQuoteInput{
		SellAsset:                          ethAsset,
		BuyAsset:                           btcAsset,
		ReceiveAddress:                     "bc1qreceiver",
		AffiliateBps:                       "48",
		SlippageTolerancePercentageDecimal: "0.01",
		QuoteOrRate:                        swapper.KindQuote,
	}
	input.SellAmountIncludingProtocolFeesCryptoBaseUnit = "1000000000000000000"
	return input
}

func TestGetL1QuoteRapidAndStreaming(t *testing.T) {
	const final = "=:BTC.BTC:bc1qreceiver:5000000/1/0:ss:48"
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestThornode(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/thorchain/quote/swap" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("from_asset") != "ETH.ETH" || q.Get("to_asset") != "BTC.BTC" || q.Get("amount") != "100000000" {
			t.Errorf("unexpected query %s", req.URL.RawQuery)
		}
		if q.Get("affiliate_bps") != "48" || q.Get("tolerance_bps") != "100" {
			t.Errorf("unexpected fee params %s", req.URL.RawQuery)
		}
		mu.Lock()
		seen = append(seen, q.Get("streaming_interval"))
		mu.Unlock()
		return jsonResponse(http.StatusOK, map[string]any{
			"expected_amount_out": "5000000",
			"fees":                map[string]any{"total": "10000"},
			"router":              "0xrouter",
			"memo":                final,
			"total_swap_seconds":  600,
		}), nil
	})

	quotes, err := c.GetL1Quote(context.Background(), l1Input(), 3, TradeTypeL1ToL1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 || len(seen) != 2 {
		t.Fatalf("expected rapid and streaming quotes, got %d quotes, requests %v", len(quotes), seen)
	}
	rapid, streaming := quotes[0], quotes[1]
	if rapid.IsStreaming || !streaming.IsStreaming {
		t.Fatalf("unexpected streaming flags: %v %v", rapid.IsStreaming, streaming.IsStreaming)
	}

	hop := rapid.Steps[0]
	if hop.BuyAmountAfterFeesCryptoBaseUnit != "5000000" || hop.BuyAmountBeforeFeesCryptoBaseUnit != "5010000" {
		t.Fatalf("unexpected amounts: %+v", hop)
	}
	if hop.AllowanceContract != "0xrouter" || hop.EstimatedExecutionTimeMs != 600000 {
		t.Fatalf("unexpected hop metadata: %+v", hop)
	}
	if hop.Memo != "=:BTC.BTC:bc1qreceiver:4950000/1/0:ss:48" {
		t.Fatalf("memo limit should reflect manual slippage, got %s", hop.Memo)
	}
	if rapid.Rate != "0.05" || !rapid.Executable || rapid.TradeType != string(TradeTypeL1ToL1) {
		t.Fatalf("unexpected quote: %+v", rapid)
	}
}

func TestGetL1QuoteOneLegFails(t *testing.T) {
	c := newTestThornode(func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("streaming_interval") != "" {
			return jsonResponse(http.StatusBadRequest, map[string]any{"code": 3, "message": "streaming not allowed"}), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{"expected_amount_out": "100"}), nil
	})
	quotes, err := c.GetL1Quote(context.Background(), l1Input(), 1, TradeTypeL1ToL1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].IsStreaming {
		t.Fatalf("expected only the rapid quote, got %+v", quotes)
	}
}

func TestGetL1QuoteErrors(t *testing.T) {
	c := newTestThornode(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, map[string]any{"code": 3, "message": "amount less than dust threshold"}), nil
	})
	_, err := c.GetL1Quote(context.Background(), l1Input(), 0, TradeTypeL1ToL1)
	if swapper.CodeOf(err) != swapper.CodeQueryFailed {
		t.Fatalf("expected QueryFailed, got %v", err)
	}

	input := l1Input()
	input.BuyAsset = domain.Asset{AssetID: "eip155:1/erc20:0xdead"}
	_, err = c.GetL1Quote(context.Background(), input, 0, TradeTypeL1ToL1)
	if swapper.CodeOf(err) != swapper.CodeUnsupportedTradePair {
		t.Fatalf("expected UnsupportedTradePair, got %v", err)
	}
}

func TestGetLimitWithManualSlippage(t *testing.T) {
	tests := []struct {
		expected, bps, want string
	}{
		{"5000000", "100", "4950000"},
		{"12345.9", "50", "12283"},
		{"1", "100", "0"},
		{"bad", "100", "0"},
	}
	for _, tc := range tests {
		if got := GetLimitWithManualSlippage(tc.expected, tc.bps); got != tc.want {
			t.Fatalf("GetLimitWithManualSlippage(%s, %s) = %s, want %s", tc.expected, tc.bps, got, tc.want)
		}
	}
}

func TestMemoWithLimit(t *testing.T) {
	if got := memoWithLimit("=:ETH.ETH:0xabc:1000/3/0:ss:50", "900"); got != "=:ETH.ETH:0xabc:900/3/0:ss:50" {
		t.Fatalf("unexpected memo %s", got)
	}
	if got := memoWithLimit("=:ETH.ETH:0xabc:1000", "900"); got != "=:ETH.ETH:0xabc:900" {
		t.Fatalf("unexpected memo %s", got)
	}
	if got := memoWithLimit("short", "1"); got != "short" {
		t.Fatalf("short memos are untouched, got %s", got)
	}
}
