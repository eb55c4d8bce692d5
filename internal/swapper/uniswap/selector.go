// Package uniswap picks the THORSwap Uniswap V3 aggregator with the best
// output for a longtail sell, by quoting each fee tier on-chain.
package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"swapscout/internal/domain"
	"swapscout/internal/logger"
	"swapscout/internal/swapper"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel/trace"
)

// QuoterV2Address is the Uniswap V3 QuoterV2 deployment on Ethereum mainnet.
const QuoterV2Address = "0x61fFE014bA17989E743c5F6cB21bF9697530B21e"

const quoterV2ABI = `[{"inputs":[{"components":[{"internalType":"address","name":"tokenIn","type":"address"},{"internalType":"address","name":"tokenOut","type":"address"},{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"uint24","name":"fee","type":"uint24"},{"internalType":"uint160","name":"sqrtPriceLimitX96","type":"uint160"}],"internalType":"struct IQuoterV2.QuoteExactInputSingleParams","name":"params","type":"tuple"}],"name":"quoteExactInputSingle","outputs":[{"internalType":"uint256","name":"amountOut","type":"uint256"},{"internalType":"uint160","name":"sqrtPriceX96After","type":"uint160"},{"internalType":"uint32","name":"initializedTicksCrossed","type":"uint32"},{"internalType":"uint256","name":"gasEstimate","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}]`

// Aggregator is a THORSwap aggregator contract bound to one pool fee tier.
type Aggregator struct {
	Address string
	Fee     int64
}

// DefaultAggregators are the THORSwap TSAggregatorUniswapV3 contracts.
var DefaultAggregators = []Aggregator{
	{Address: "0xbd68cbe6c247e2c3a0e36b8f0e24964914f26ee8", Fee: 500},
	{Address: "0x0747c681e5ada7936ad915ccff6cd3bd71dbf121", Fee: 3000},
	{Address: "0xd1ea5f7ce9da98d0bd7b1f4e3e05985e88b1ef10", Fee: 10000},
}

// ContractCaller is the subset of the Ethereum RPC the selector uses.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// DialEthClient opens an RPC client for endpoint.
func DialEthClient(endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("eth rpc endpoint required")
	}
	return ethclient.Dial(trimmed)
}

// Selector quotes every aggregator's pool and keeps the highest output.
type Selector struct {
	tracer      trace.Tracer
	caller      ContractCaller
	quoter      common.Address
	aggregators []Aggregator
	abi         abi.ABI
	log         *logger.Entry
}

func NewSelector(tracer trace.Tracer, caller ContractCaller, aggregators []Aggregator) (*Selector, error) {
	parsed, err := abi.JSON(strings.NewReader(quoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}
	if len(aggregators) == 0 {
		aggregators = DefaultAggregators
	}
	return &Selector{
		tracer:      tracer,
		caller:      caller,
		quoter:      common.HexToAddress(QuoterV2Address),
		aggregators: aggregators,
		abi:         parsed,
		log:         logger.GetLogger().WithComponent("uniswap-selector"),
	}, nil
}

type quoteParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// BestAggregator returns an empty AggregatorQuote when no tier can fill the
// sell; failing tiers are skipped.
func (s *Selector) BestAggregator(ctx context.Context, _ domain.Asset, sellToken, wrappedNative, sellAmountCryptoBaseUnit string) (swapper.AggregatorQuote, error) {
	ctx, span := s.tracer.Start(ctx, "uniswap.best-aggregator")
	defer span.End()

	amountIn, ok := new(big.Int).SetString(sellAmountCryptoBaseUnit, 10)
	if !ok || amountIn.Sign() <= 0 {
		return swapper.AggregatorQuote{}, fmt.Errorf("invalid sell amount %q", sellAmountCryptoBaseUnit)
	}
	if !common.IsHexAddress(sellToken) || !common.IsHexAddress(wrappedNative) {
		return swapper.AggregatorQuote{}, fmt.Errorf("invalid token address")
	}

	var (
		best       swapper.AggregatorQuote
		bestAmount *big.Int
	)
	for _, agg := range s.aggregators {
		out, err := s.quote(ctx, common.HexToAddress(sellToken), common.HexToAddress(wrappedNative), amountIn, agg.Fee)
		if err != nil {
			s.log.WithError(err).WithFields(logger.Fields{"aggregator": agg.Address, "fee": agg.Fee}).
				Debug("uniswap quote failed")
			continue
		}
		if out.Sign() <= 0 {
			continue
		}
		if bestAmount == nil || out.Cmp(bestAmount) > 0 {
			bestAmount = out
			best = swapper.AggregatorQuote{Aggregator: agg.Address, QuotedAmountOut: out.String()}
		}
	}
	return best, nil
}

func (s *Selector) quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, fee int64) (*big.Int, error) {
	data, err := s.abi.Pack("quoteExactInputSingle", quoteParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(fee),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("pack quote call: %w", err)
	}

	res, err := s.caller.CallContract(ctx, ethereum.CallMsg{To: &s.quoter, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call quoter: %w", err)
	}

	values, err := s.abi.Unpack("quoteExactInputSingle", res)
	if err != nil {
		return nil, fmt.Errorf("unpack quote result: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty quote result")
	}
	amountOut, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected amountOut type %T", values[0])
	}
	return amountOut, nil
}
