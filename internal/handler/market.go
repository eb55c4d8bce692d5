package handler

import (
	"errors"
	"net/http"
	"strconv"

	"swapscout/internal/domain"
	"swapscout/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetMarkets godoc
// @Summary      List markets by market cap
// @Description  Returns one page of market data keyed by CAIP-19 asset id
// @Tags         markets
// @Produce      json
// @Param        count  query  int  false  "Page size (max 250)"  default(100)
// @Param        page   query  int  false  "Page number"          default(1)
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /api/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-markets")
	defer span.End()

	args := domain.FindAllArgs{
		Count: queryInt(c, "count", 100, 250),
		Page:  queryInt(c, "page", 1, 10_000),
	}
	span.SetAttributes(attribute.Int("count", args.Count), attribute.Int("page", args.Page))

	result, err := h.markets.GetMarkets(ctx, args)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   args.Count,
		"page":    args.Page,
		"markets": result,
	})
}

// GetTopVolume godoc
// @Summary      Highest-volume assets
// @Description  Returns the assets with the largest 24h volume, highest first
// @Tags         markets
// @Produce      json
// @Param        count  query  int  false  "Number of assets (max 100)"  default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /api/markets/top-volume [get]
func (h *Handler) GetTopVolume(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-top-volume")
	defer span.End()

	count := queryInt(c, "count", 10, 100)
	assets, err := h.markets.TopVolume(ctx, count)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// GetMarketData godoc
// @Summary      Market data for one asset
// @Description  Returns price, market cap, volume and 24h change from the first provider that knows the asset
// @Tags         markets
// @Produce      json
// @Param        asset_id  query  string  true  "CAIP-19 asset id or catalog symbol"
// @Success      200  {object}  domain.MarketData
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/market-data [get]
func (h *Handler) GetMarketData(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-data")
	defer span.End()

	assetID, err := h.markets.ResolveAsset(c.Query("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("asset_id", string(assetID)))

	data, err := h.markets.GetMarketData(ctx, assetID)
	if err != nil {
		c.JSON(marketErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset_id":    assetID,
		"market_data": data,
	})
}

// GetPriceHistory godoc
// @Summary      Price history for one asset
// @Description  Returns price samples (unix ms, USD) over the requested timeframe
// @Tags         markets
// @Produce      json
// @Param        asset_id   query  string  true   "CAIP-19 asset id or catalog symbol"
// @Param        timeframe  query  string  false  "1H, 24H, 1W, 1M, 1Y or All"  default(24H)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/price-history [get]
func (h *Handler) GetPriceHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price-history")
	defer span.End()

	assetID, err := h.markets.ResolveAsset(c.Query("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	timeframe := domain.HistoryTimeframe(c.DefaultQuery("timeframe", string(domain.TimeframeDay)))
	span.SetAttributes(
		attribute.String("asset_id", string(assetID)),
		attribute.String("timeframe", string(timeframe)),
	)

	history, err := h.markets.GetPriceHistory(ctx, assetID, timeframe)
	if err != nil {
		c.JSON(marketErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset_id":  assetID,
		"timeframe": timeframe,
		"history":   history,
	})
}

func marketErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidAssetID),
		errors.Is(err, service.ErrUnknownAsset),
		errors.Is(err, service.ErrInvalidTimeframe):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoMarketData):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// queryInt parses a positive integer query parameter, falling back to def
// when missing or out of range.
func queryInt(c *gin.Context, key string, def, limit int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > limit {
		return def
	}
	return n
}
