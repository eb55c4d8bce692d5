package thorchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/swapper"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	thornodeBaseURL = "https://thornode.ninerealms.com"
	thorPrecision   = 8
	// affiliateName is the THORName fees are paid to.
	affiliateName = "ss"
)

// ThornodeClient requests swap quotes from a THORNode.
type ThornodeClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
	pools   map[caip.AssetID]string
}

// NewThornodeClient maps catalog asset ids to THORChain pool names via pools.
func NewThornodeClient(tracer trace.Tracer, baseURL string, pools map[caip.AssetID]string) *ThornodeClient {
	if baseURL == "" {
		baseURL = thornodeBaseURL
	}
	return &ThornodeClient{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
		pools:   pools,
	}
}

// PoolName returns the THORChain pool for an asset.
func (c *ThornodeClient) PoolName(id caip.AssetID) (string, bool) {
	pool, ok := c.pools[id]
	return pool, ok
}

type thornodeFees struct {
	Asset       string `json:"asset"`
	Affiliate   string `json:"affiliate"`
	Outbound    string `json:"outbound"`
	Liquidity   string `json:"liquidity"`
	Total       string `json:"total"`
	SlippageBps int    `json:"slippage_bps"`
	TotalBps    int    `json:"total_bps"`
}

type thornodeQuote struct {
	ExpectedAmountOut      string       `json:"expected_amount_out"`
	Fees                   thornodeFees `json:"fees"`
	InboundAddress         string       `json:"inbound_address"`
	Router                 string       `json:"router"`
	Memo                   string       `json:"memo"`
	TotalSwapSeconds       int64        `json:"total_swap_seconds"`
	RecommendedMinAmountIn string       `json:"recommended_min_amount_in"`
	MaxStreamingQuantity   int          `json:"max_streaming_quantity"`
	StreamingSwapSeconds   int64        `json:"streaming_swap_seconds"`
	Error                  string       `json:"error"`
	Message                string       `json:"message"`
}

// GetL1Quote returns a rapid quote and, when streamingInterval > 0, a
// streaming quote for the same input. Either may fail alone; the call fails
// only when neither succeeds.
func (c *ThornodeClient) GetL1Quote(ctx context.Context, input swapper.GetTradeQuoteInput, streamingInterval int, tradeType TradeType) ([]domain.Quote, error) {
	ctx, span := c.tracer.Start(ctx, "thorchain.get-l1-quote")
	defer span.End()

	fromPool, ok := c.pools[input.SellAsset.AssetID]
	if !ok {
		return nil, swapper.MakeSwapError(swapper.CodeUnsupportedTradePair,
			fmt.Sprintf("no THORChain pool for %s", input.SellAsset.AssetID), nil)
	}
	toPool, ok := c.pools[input.BuyAsset.AssetID]
	if !ok {
		return nil, swapper.MakeSwapError(swapper.CodeUnsupportedTradePair,
			fmt.Sprintf("no THORChain pool for %s", input.BuyAsset.AssetID), nil)
	}

	intervals := []int{0}
	if streamingInterval > 0 {
		intervals = append(intervals, streamingInterval)
	}

	quotes := make([]*domain.Quote, len(intervals))
	errs := make([]error, len(intervals))
	var g errgroup.Group
	for i, interval := range intervals {
		g.Go(func() error {
			q, err := c.fetchQuote(ctx, input, fromPool, toPool, interval, tradeType)
			quotes[i], errs[i] = q, err
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q != nil {
			out = append(out, *q)
		}
	}
	if len(out) == 0 {
		return nil, errs[0]
	}
	return out, nil
}

func (c *ThornodeClient) fetchQuote(ctx context.Context, input swapper.GetTradeQuoteInput, fromPool, toPool string, streamingInterval int, tradeType TradeType) (*domain.Quote, error) {
	amount := swapper.ToBaseUnit(
		swapper.ToPrecision(input.SellAmountIncludingProtocolFeesCryptoBaseUnit, input.SellAsset.Precision),
		thorPrecision)
	if isZeroAmount(amount) {
		return nil, swapper.MakeSwapError(swapper.CodeTradeQuoteAmountTooSmall, "sell amount rounds to zero", nil)
	}

	q := url.Values{}
	q.Set("from_asset", fromPool)
	q.Set("to_asset", toPool)
	q.Set("amount", amount)
	if input.ReceiveAddress != "" {
		q.Set("destination", input.ReceiveAddress)
	}
	if streamingInterval > 0 {
		q.Set("streaming_interval", strconv.Itoa(streamingInterval))
		q.Set("streaming_quantity", "0")
	}
	if input.AffiliateBps != "" && input.AffiliateBps != "0" {
		q.Set("affiliate", affiliateName)
		q.Set("affiliate_bps", input.AffiliateBps)
	}
	bps, manualSlippage := slippageBps(input.SlippageTolerancePercentageDecimal)
	if manualSlippage {
		q.Set("tolerance_bps", bps)
	}

	resp, err := c.doRequest(ctx, c.baseURL+"/thorchain/quote/swap?"+q.Encode())
	if err != nil {
		return nil, swapper.WrapSwapError(swapper.CodeQueryFailed, "thornode quote request failed", err)
	}
	if resp.Error != "" {
		return nil, swapper.MakeSwapError(swapper.CodeQueryFailed, resp.Error, nil)
	}
	if isZeroAmount(resp.ExpectedAmountOut) {
		return nil, swapper.MakeSwapError(swapper.CodeNoQuotesAvailable, "thornode returned no output", nil)
	}

	memo := resp.Memo
	if manualSlippage {
		memo = memoWithLimit(memo, GetLimitWithManualSlippage(resp.ExpectedAmountOut, bps))
	}

	buyAfterFees := fromThorBaseUnit(resp.ExpectedAmountOut, input.BuyAsset.Precision)
	buyBeforeFees := buyAfterFees
	if !isZeroAmount(resp.Fees.Total) {
		before := swapper.ToPrecision(resp.ExpectedAmountOut, thorPrecision).Add(swapper.ToPrecision(resp.Fees.Total, thorPrecision))
		buyBeforeFees = swapper.ToBaseUnit(before, input.BuyAsset.Precision)
	}

	source := swapper.NameThorchain
	seconds := resp.TotalSwapSeconds
	if streamingInterval > 0 {
		source = swapper.NameThorchain + " • Streaming"
		if resp.StreamingSwapSeconds > 0 {
			seconds = resp.StreamingSwapSeconds
		}
	}

	step := domain.HopStep{
		SellAsset:         input.SellAsset,
		BuyAsset:          input.BuyAsset,
		AllowanceContract: resp.Router,
		Source:            source,
		Memo:              memo,
	}
	step.SellAmountIncludingProtocolFeesCryptoBaseUnit = input.SellAmountIncludingProtocolFeesCryptoBaseUnit
	step.BuyAmountBeforeFeesCryptoBaseUnit = buyBeforeFees
	step.BuyAmountAfterFeesCryptoBaseUnit = buyAfterFees
	step.Rate = swapper.Rate(input.SellAmountIncludingProtocolFeesCryptoBaseUnit, input.SellAsset.Precision,
		buyAfterFees, input.BuyAsset.Precision)
	step.EstimatedExecutionTimeMs = seconds * 1000

	return &domain.Quote{
		ID:                                 uuid.NewString(),
		SwapperName:                        swapper.NameThorchain,
		Steps:                              []domain.HopStep{step},
		Rate:                               step.Rate,
		Receiver:                           input.ReceiveAddress,
		AffiliateBps:                       input.AffiliateBps,
		PotentialAffiliateBps:              input.PotentialAffiliateBps,
		SlippageTolerancePercentageDecimal: input.SlippageTolerancePercentageDecimal,
		IsStreaming:                        streamingInterval > 0,
		TradeType:                          string(tradeType),
		Executable:                         input.QuoteOrRate == swapper.KindQuote && input.ReceiveAddress != "",
	}, nil
}

func (c *ThornodeClient) doRequest(ctx context.Context, url string) (*thornodeQuote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", "swapscout")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out thornodeQuote
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("thornode API error %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("parse thornode quote: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Message
		if msg == "" {
			msg = out.Error
		}
		if msg == "" {
			return nil, fmt.Errorf("thornode API error %d: %s", resp.StatusCode, string(body))
		}
		return nil, errors.New(msg)
	}
	return &out, nil
}

// memoWithLimit replaces the limit in a swap memo ("=:POOL:DEST:LIMIT/INTERVAL/QTY:...").
func memoWithLimit(memo, limit string) string {
	parts := strings.Split(memo, ":")
	if len(parts) < 4 {
		return memo
	}
	limitParts := strings.Split(parts[3], "/")
	limitParts[0] = limit
	parts[3] = strings.Join(limitParts, "/")
	return strings.Join(parts, ":")
}

func fromThorBaseUnit(amount string, precision int32) string {
	return swapper.ToBaseUnit(swapper.ToPrecision(amount, thorPrecision), precision)
}
