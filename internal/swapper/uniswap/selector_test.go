package uniswap

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"swapscout/internal/domain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	pepe = "0x6982508145454ce325ddbe47a25d4ec3d2311933"
	weth = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
)

// stubCaller answers QuoterV2 calls keyed by the fee tier in the calldata.
type stubCaller struct {
	t       *testing.T
	abi     abi.ABI
	outputs map[int64]*big.Int
	fail    map[int64]bool
	calls   int
}

func (s *stubCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	s.calls++
	method := s.abi.Methods["quoteExactInputSingle"]
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		s.t.Fatalf("unpack input: %v", err)
	}
	params := abi.ConvertType(args[0], new(quoteParams)).(*quoteParams)
	fee := params.Fee.Int64()
	if s.fail[fee] {
		return nil, errors.New("execution reverted")
	}
	out, ok := s.outputs[fee]
	if !ok {
		out = big.NewInt(0)
	}
	return method.Outputs.Pack(out, big.NewInt(0), uint32(0), big.NewInt(100000))
}

func newStub(t *testing.T, outputs map[int64]*big.Int, fail map[int64]bool) *stubCaller {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(quoterV2ABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	return &stubCaller{t: t, abi: parsed, outputs: outputs, fail: fail}
}

func TestBestAggregatorPicksHighestOutput(t *testing.T) {
	caller := newStub(t, map[int64]*big.Int{
		500:   big.NewInt(900),
		3000:  big.NewInt(1500),
		10000: big.NewInt(1200),
	}, nil)
	s, err := NewSelector(noop.NewTracerProvider().Tracer("test"), caller, nil)
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	best, err := s.BestAggregator(context.Background(), domain.Asset{}, pepe, weth, "1000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Aggregator != DefaultAggregators[1].Address || best.QuotedAmountOut != "1500" {
		t.Fatalf("unexpected best aggregator: %+v", best)
	}
	if caller.calls != len(DefaultAggregators) {
		t.Fatalf("expected one call per tier, got %d", caller.calls)
	}
}

func TestBestAggregatorSkipsFailingTiers(t *testing.T) {
	caller := newStub(t, map[int64]*big.Int{10000: big.NewInt(7)}, map[int64]bool{500: true, 3000: true})
	s, _ := NewSelector(noop.NewTracerProvider().Tracer("test"), caller, nil)

	best, err := s.BestAggregator(context.Background(), domain.Asset{}, pepe, weth, "1000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Aggregator != DefaultAggregators[2].Address || best.QuotedAmountOut != "7" {
		t.Fatalf("unexpected best aggregator: %+v", best)
	}
}

func TestBestAggregatorNoLiquidity(t *testing.T) {
	caller := newStub(t, nil, map[int64]bool{500: true})
	s, _ := NewSelector(noop.NewTracerProvider().Tracer("test"), caller, nil)

	best, err := s.BestAggregator(context.Background(), domain.Asset{}, pepe, weth, "1000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Aggregator != "" || best.QuotedAmountOut != "" {
		t.Fatalf("expected empty result, got %+v", best)
	}
}

func TestBestAggregatorRejectsBadInput(t *testing.T) {
	s, _ := NewSelector(noop.NewTracerProvider().Tracer("test"), newStub(t, nil, nil), nil)
	if _, err := s.BestAggregator(context.Background(), domain.Asset{}, pepe, weth, "0"); err == nil {
		t.Fatal("expected error for zero amount")
	}
	if _, err := s.BestAggregator(context.Background(), domain.Asset{}, "not-an-address", weth, "10"); err == nil {
		t.Fatal("expected error for bad token")
	}
}

func TestDialEthClientRequiresEndpoint(t *testing.T) {
	if _, err := DialEthClient("  "); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
