package swapper

import (
	"errors"
	"fmt"
	"testing"

	"swapscout/internal/domain"

	"github.com/shopspring/decimal"
)

func TestSubtractBasisPointAmount(t *testing.T) {
	tests := []struct {
		amount, bps, want string
	}{
		{"10000", "100", "9900"},
		{"999", "50", "994"},
		{"1", "5000", "0"},
		{"123456789", "0", "123456789"},
		{"100", "20000", "0"},
		{"abc", "1", "0"},
	}
	for _, tc := range tests {
		if got := SubtractBasisPointAmount(tc.amount, tc.bps); got != tc.want {
			t.Fatalf("SubtractBasisPointAmount(%s, %s) = %s, want %s", tc.amount, tc.bps, got, tc.want)
		}
	}
}

func TestSwapErrorCode(t *testing.T) {
	err := fmt.Errorf("compose: %w", MakeSwapError(CodeUnsupportedChain, "unsupported chain", map[string]any{"chainId": "bip122"}))
	if CodeOf(err) != CodeUnsupportedChain {
		t.Fatalf("expected UnsupportedChain, got %q", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Fatal("plain errors have no code")
	}

	cause := errors.New("timeout")
	wrapped := WrapSwapError(CodeQueryFailed, "thornode", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatal("wrapped swap error should unwrap to its cause")
	}
	if wrapped.Error() != "QueryFailed: thornode: timeout" {
		t.Fatalf("unexpected message: %s", wrapped.Error())
	}
}

func TestErrorResult(t *testing.T) {
	res := ErrorResult(NameZrx, errors.New("boom"))
	if res.IsActionable() || len(res.Errors) != 1 || res.Errors[0].Code != CodeQueryFailed {
		t.Fatalf("unexpected error result: %+v", res)
	}
	res = ErrorResult(NameThorchain, MakeSwapError(CodeUnsupportedTradePair, "no pool", nil))
	if res.Errors[0].Code != CodeUnsupportedTradePair {
		t.Fatalf("expected code to carry over, got %+v", res.Errors)
	}
}

func TestApiQuoteFlags(t *testing.T) {
	q := ApiQuote{Quote: &domain.Quote{IsStreaming: true, IsLongtail: true}}
	if !q.IsStreaming() || !q.IsLongtail() || !q.IsActionable() {
		t.Fatalf("unexpected flags: %+v", q)
	}
	q.Errors = []QuoteError{{Code: CodeQueryFailed}}
	if q.IsActionable() {
		t.Fatal("quotes with errors are not actionable")
	}
	if (ApiQuote{}).IsStreaming() {
		t.Fatal("empty quote is not streaming")
	}
}

func TestInputOutputRatioAndUnits(t *testing.T) {
	// 1 ETH (18 decimals) -> 3000 USDC (6 decimals)
	ratio := InputOutputRatio("1000000000000000000", 18, "3000000000", 6)
	if ratio != 3000 {
		t.Fatalf("expected 3000, got %v", ratio)
	}
	if Rate("1000000000000000000", 18, "1500000000", 6) != "1500" {
		t.Fatalf("unexpected rate %s", Rate("1000000000000000000", 18, "1500000000", 6))
	}
	if InputOutputRatio("0", 18, "1", 6) != 0 {
		t.Fatal("zero sell amount should give zero ratio")
	}
	if ToBaseUnit(decimal.RequireFromString("1.2345678"), 6) != "1234567" {
		t.Fatalf("unexpected base unit %s", ToBaseUnit(decimal.RequireFromString("1.2345678"), 6))
	}
}
