// Package zrx is the 0x swap API QuoteProvider for same-chain EVM trades.
package zrx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"
	"swapscout/internal/swapper"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	baseURL = "https://api.0x.org"
	// nativeToken is 0x's placeholder for a chain's fee asset.
	nativeToken = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
	// affiliateRecipient receives swap fees.
	affiliateRecipient = "0x90a48d5cf7343b08da12e067680b4c6dbfe551be"
)

// Swapper fetches 0x prices (rates) and quotes.
type Swapper struct {
	client          *http.Client
	baseURL         string
	apiKey          string
	tracer          trace.Tracer
	limiter         *rate.Limiter
	pollingInterval time.Duration
}

func NewSwapper(tracer trace.Tracer, base, apiKey string, pollingInterval time.Duration) *Swapper {
	if base == "" {
		base = baseURL
	}
	if pollingInterval <= 0 {
		pollingInterval = swapper.DefaultPollingInterval
	}
	return &Swapper{
		client:          &http.Client{Timeout: 15 * time.Second},
		baseURL:         strings.TrimSuffix(base, "/"),
		apiKey:          apiKey,
		tracer:          tracer,
		limiter:         rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		pollingInterval: pollingInterval,
	}
}

func (s *Swapper) Name() string { return swapper.NameZrx }

func (s *Swapper) PollingInterval() time.Duration { return s.pollingInterval }

type priceResponse struct {
	LiquidityAvailable bool   `json:"liquidityAvailable"`
	BuyAmount          string `json:"buyAmount"`
	MinBuyAmount       string `json:"minBuyAmount"`
	SellAmount         string `json:"sellAmount"`
	TotalNetworkFee    string `json:"totalNetworkFee"`
	Issues             struct {
		Allowance *struct {
			Spender string `json:"spender"`
		} `json:"allowance"`
	} `json:"issues"`
	Route struct {
		Fills []struct {
			Source string `json:"source"`
		} `json:"fills"`
	} `json:"route"`
	Transaction *struct {
		To string `json:"to"`
	} `json:"transaction"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (s *Swapper) FetchQuote(ctx context.Context, input swapper.GetTradeQuoteInput) (*swapper.ApiQuote, error) {
	ctx, span := s.tracer.Start(ctx, "zrx.fetch-quote")
	defer span.End()

	sellChain, buyChain := input.SellAsset.AssetID.ChainID(), input.BuyAsset.AssetID.ChainID()
	if !caip.IsEvmChainID(sellChain) {
		return nil, swapper.MakeSwapError(swapper.CodeUnsupportedChain,
			fmt.Sprintf("unsupported chainId %s", sellChain), map[string]any{"chainId": sellChain})
	}
	if sellChain != buyChain {
		return nil, swapper.MakeSwapError(swapper.CodeUnsupportedTradePair, "cross-chain trades are not supported", nil)
	}

	_, chainRef, _ := strings.Cut(string(sellChain), ":")
	q := url.Values{}
	q.Set("chainId", chainRef)
	q.Set("sellToken", tokenAddress(input.SellAsset))
	q.Set("buyToken", tokenAddress(input.BuyAsset))
	q.Set("sellAmount", input.SellAmountIncludingProtocolFeesCryptoBaseUnit)
	if input.SendAddress != "" {
		q.Set("taker", input.SendAddress)
	}
	if input.AffiliateBps != "" && input.AffiliateBps != "0" {
		q.Set("swapFeeBps", input.AffiliateBps)
		q.Set("swapFeeRecipient", affiliateRecipient)
		q.Set("swapFeeToken", tokenAddress(input.BuyAsset))
	}
	if bps, ok := slippageBps(input.SlippageTolerancePercentageDecimal); ok {
		q.Set("slippageBps", bps)
	}

	endpoint := "/swap/allowance-holder/price"
	firm := input.QuoteOrRate == swapper.KindQuote && input.SendAddress != ""
	if firm {
		endpoint = "/swap/allowance-holder/quote"
	}

	resp, err := s.doRequest(ctx, s.baseURL+endpoint+"?"+q.Encode())
	if err != nil {
		return nil, swapper.WrapSwapError(swapper.CodeQueryFailed, "0x request failed", err)
	}
	if !resp.LiquidityAvailable || resp.BuyAmount == "" || resp.BuyAmount == "0" {
		return nil, swapper.MakeSwapError(swapper.CodeNoQuotesAvailable, "no liquidity available", nil)
	}

	allowance := ""
	if resp.Issues.Allowance != nil {
		allowance = resp.Issues.Allowance.Spender
	} else if resp.Transaction != nil {
		allowance = resp.Transaction.To
	}
	source := swapper.NameZrx
	if len(resp.Route.Fills) == 1 && resp.Route.Fills[0].Source != "" {
		source = swapper.NameZrx + " • " + resp.Route.Fills[0].Source
	}

	step := domain.HopStep{
		SellAsset:         input.SellAsset,
		BuyAsset:          input.BuyAsset,
		AllowanceContract: allowance,
		Source:            source,
	}
	step.SellAmountIncludingProtocolFeesCryptoBaseUnit = input.SellAmountIncludingProtocolFeesCryptoBaseUnit
	step.BuyAmountBeforeFeesCryptoBaseUnit = resp.BuyAmount
	step.BuyAmountAfterFeesCryptoBaseUnit = resp.BuyAmount
	step.Rate = swapper.Rate(input.SellAmountIncludingProtocolFeesCryptoBaseUnit, input.SellAsset.Precision,
		resp.BuyAmount, input.BuyAsset.Precision)

	quote := &domain.Quote{
		ID:                                 uuid.NewString(),
		SwapperName:                        swapper.NameZrx,
		Steps:                              []domain.HopStep{step},
		Rate:                               step.Rate,
		Receiver:                           input.ReceiveAddress,
		AffiliateBps:                       input.AffiliateBps,
		PotentialAffiliateBps:              input.PotentialAffiliateBps,
		SlippageTolerancePercentageDecimal: input.SlippageTolerancePercentageDecimal,
		Executable:                         firm && input.ReceiveAddress != "",
	}
	return &swapper.ApiQuote{
		ID:          uuid.NewString(),
		SwapperName: s.Name(),
		Quote:       quote,
		InputOutputRatio: swapper.InputOutputRatio(input.SellAmountIncludingProtocolFeesCryptoBaseUnit,
			input.SellAsset.Precision, resp.BuyAmount, input.BuyAsset.Precision),
	}, nil
}

func (s *Swapper) doRequest(ctx context.Context, url string) (*priceResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("0x-version", "v2")
	if s.apiKey != "" {
		req.Header.Set("0x-api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out priceResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &out) == nil && out.Message != "" {
			return nil, fmt.Errorf("0x API error %d: %s", resp.StatusCode, out.Message)
		}
		return nil, fmt.Errorf("0x API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse 0x response: %w", err)
	}
	return &out, nil
}

func tokenAddress(a domain.Asset) string {
	parts, err := caip.ParseAssetID(a.AssetID)
	if err != nil || parts.AssetNamespace != caip.AssetNamespaceERC20 {
		return nativeToken
	}
	return parts.AssetReference
}

func slippageBps(percentageDecimal string) (string, bool) {
	if percentageDecimal == "" {
		return "", false
	}
	bps := swapper.ToBaseUnit(swapper.ToPrecision(percentageDecimal, 0), 4)
	return bps, bps != "0"
}
