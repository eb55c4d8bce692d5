package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"swapscout/internal/caip"
	"swapscout/internal/fees"
	"swapscout/internal/logger"
	"swapscout/internal/swapper"
	"swapscout/internal/telemetry"
	"swapscout/internal/tradequote"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// QuoteRequest is the wire form of tradequote.Inputs; assets are given by id
// and resolved against the catalog.
type QuoteRequest struct {
	SellAssetID                        caip.AssetID        `json:"sell_asset_id" binding:"required"`
	BuyAssetID                         caip.AssetID        `json:"buy_asset_id" binding:"required"`
	SellAmountCryptoPrecision          decimal.Decimal     `json:"sell_amount_crypto_precision"`
	SellAssetUsdRate                   decimal.Decimal     `json:"sell_asset_usd_rate"`
	SlippageTolerancePercentageDecimal string              `json:"slippage_tolerance_percentage_decimal,omitempty"`
	SellAccountID                      string              `json:"sell_account_id,omitempty"`
	SellAccountNumber                  *int                `json:"sell_account_number,omitempty"`
	SellAccountType                    string              `json:"sell_account_type,omitempty"`
	ReceiveAccountNumber               *int                `json:"receive_account_number,omitempty"`
	SendAddress                        string              `json:"send_address,omitempty"`
	ReceiveAddress                     string              `json:"receive_address,omitempty"`
	FoxVotingPower                     decimal.Decimal     `json:"fox_voting_power"`
	ThorVotingPower                    decimal.Decimal     `json:"thor_voting_power"`
	VotingPowerPending                 bool                `json:"voting_power_pending"`
	IsLedger                           bool                `json:"is_ledger"`
	QuoteOrRate                        swapper.QuoteOrRate `json:"quote_or_rate,omitempty" enums:"quote,rate"`
}

// inputs resolves both assets. Without a USD rate in the request, the sell
// asset's market price is used; a failed lookup leaves the rate at zero.
func (h *Handler) inputs(ctx context.Context, req QuoteRequest) (tradequote.Inputs, error) {
	sell, ok := h.assets.Get(req.SellAssetID)
	if !ok {
		return tradequote.Inputs{}, fmt.Errorf("unknown sell asset %s", req.SellAssetID)
	}
	buy, ok := h.assets.Get(req.BuyAssetID)
	if !ok {
		return tradequote.Inputs{}, fmt.Errorf("unknown buy asset %s", req.BuyAssetID)
	}

	usdRate := req.SellAssetUsdRate
	if !usdRate.IsPositive() && h.markets != nil {
		if data, err := h.markets.GetMarketData(ctx, sell.AssetID); err == nil {
			if price, err := decimal.NewFromString(data.Price); err == nil {
				usdRate = price
			}
		}
	}

	return tradequote.Inputs{
		SellAsset:                          sell,
		BuyAsset:                           buy,
		SellAmountCryptoPrecision:          req.SellAmountCryptoPrecision,
		SellAssetUsdRate:                   usdRate,
		SlippageTolerancePercentageDecimal: req.SlippageTolerancePercentageDecimal,
		SellAccountID:                      req.SellAccountID,
		SellAccountNumber:                  req.SellAccountNumber,
		SellAccountType:                    req.SellAccountType,
		ReceiveAccountNumber:               req.ReceiveAccountNumber,
		SendAddress:                        req.SendAddress,
		ReceiveAddress:                     req.ReceiveAddress,
		FoxVotingPower:                     req.FoxVotingPower,
		ThorVotingPower:                    req.ThorVotingPower,
		VotingPowerPending:                 req.VotingPowerPending,
		IsLedger:                           req.IsLedger,
		QuoteOrRate:                        req.QuoteOrRate,
	}, nil
}

// GetQuotes godoc
// @Summary      Fetch ranked quotes once
// @Description  Queries every enabled swapper in parallel and returns their answers best first, with the quotes-received summary
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request  body  QuoteRequest  true  "Quote inputs"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/quotes [post]
func (h *Handler) GetQuotes(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quotes")
	defer span.End()

	if h.quotes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quoting is not configured"})
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := h.inputs(ctx, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("sell_asset_id", string(in.SellAsset.AssetID)),
		attribute.String("buy_asset_id", string(in.BuyAsset.AssetID)),
	)

	input, skip, err := tradequote.BuildInput(h.fees, in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if skip {
		c.JSON(http.StatusOK, gin.H{"skipped": true, "quotes": []swapper.ApiQuote{}})
		return
	}

	quotes := h.quotes.FetchOnce(ctx, input)
	event := tradequote.BuildQuotesReceivedEvent(quotes, in.SellAsset, in.BuyAsset, in.SellAmountUsd())
	if h.sink != nil {
		if err := h.sink.Emit(ctx, event); err != nil {
			logger.GetLogger().WithComponent("handler").WithError(err).Warn("failed to emit quotes received event")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"skipped": false,
		"input":   input,
		"quotes":  quotes,
		"summary": event,
	})
}

// GetLongtailRoute godoc
// @Summary      Compose a longtail route
// @Description  Quotes an ERC-20 longtail sell asset into a THORChain L1 asset through the best DEX aggregator
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request  body  QuoteRequest  true  "Quote inputs"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]interface{}
// @Router       /api/routes/longtail [post]
func (h *Handler) GetLongtailRoute(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-longtail-route")
	defer span.End()

	if h.longtail == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "longtail routing is not configured"})
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.QuoteOrRate = swapper.KindRate
	in, err := h.inputs(ctx, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, skip, err := tradequote.BuildInput(h.fees, in)
	if err != nil || skip {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sell amount must be positive"})
		return
	}

	routes, err := h.longtail.ComposeLongtailRoute(ctx, input, h.streamingInterval, h.assets)
	if err != nil {
		var swapErr *swapper.SwapError
		if errors.As(err, &swapErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   swapErr.Message,
				"code":    swapErr.Code,
				"details": swapErr.Details,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

type feeRequest struct {
	TradeAmountUsd decimal.Decimal `json:"trade_amount_usd"`
	FoxHeld        decimal.Decimal `json:"fox_held"`
	ThorHeld       decimal.Decimal `json:"thor_held"`
	FeeModel       fees.FeeModel   `json:"fee_model" enums:"SWAPPER,THORSWAP"`
}

// CalculateFees godoc
// @Summary      Calculate affiliate fees
// @Description  Returns the fee in basis points before and after the governance stake discount
// @Tags         fees
// @Accept       json
// @Produce      json
// @Param        request  body  feeRequest  true  "Fee inputs"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/fees [post]
func (h *Handler) CalculateFees(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.calculate-fees")
	defer span.End()

	var req feeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FeeModel == "" {
		req.FeeModel = fees.ModelSwapper
	}
	if req.TradeAmountUsd.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trade_amount_usd must not be negative"})
		return
	}

	result, err := h.fees.CalculateFees(fees.Input{
		TradeAmountUsd: req.TradeAmountUsd,
		FoxHeld:        req.FoxHeld,
		ThorHeld:       req.ThorHeld,
		FeeModel:       req.FeeModel,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fee_model":               req.FeeModel,
		"fee_bps":                 result.FeeBps,
		"fee_bps_before_discount": result.FeeBpsBeforeDiscount,
		"fox_discount_percent":    result.FoxDiscountPercent,
		"affiliate_bps":           result.AffiliateBps(),
		"potential_affiliate_bps": result.PotentialAffiliateBps(),
	})
}

// ListQuoteEvents godoc
// @Summary      Recent quotes-received events
// @Description  Returns the most recent persisted quote telemetry events, newest first
// @Tags         quotes
// @Produce      json
// @Param        limit  query  int  false  "Number of events (max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/quote-events [get]
func (h *Handler) ListQuoteEvents(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-quote-events")
	defer span.End()

	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote event storage is not configured"})
		return
	}

	events, err := h.events.Recent(ctx, queryInt(c, "limit", 50, 200))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if events == nil {
		events = []telemetry.QuotesReceivedEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
