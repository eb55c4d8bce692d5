package handler

import (
	"net/http"
	"strings"

	"swapscout/internal/assets"
	"swapscout/internal/caip"
	"swapscout/internal/domain"

	"github.com/gin-gonic/gin"
)

type buyAssetsResponse struct {
	SellAsset  domain.Asset   `json:"sell_asset"`
	SameChain  []domain.Asset `json:"same_chain"`
	CrossChain []domain.Asset `json:"cross_chain"`
}

// GetBuyAssets godoc
// @Summary      Buy asset candidates
// @Description  Lists catalog assets that can be bought with the sell asset, split by same-chain and cross-chain
// @Tags         assets
// @Produce      json
// @Param        sell_asset_id  query  string  true  "CAIP-19 sell asset id"
// @Success      200  {object}  buyAssetsResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/assets/buy-assets [get]
func (h *Handler) GetBuyAssets(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-buy-assets")
	defer span.End()

	id := caip.AssetID(strings.TrimSpace(c.Query("sell_asset_id")))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sell_asset_id is required"})
		return
	}
	sell, ok := h.assets.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown asset " + string(id)})
		return
	}

	all := h.assets.All()
	resp := buyAssetsResponse{SellAsset: sell, SameChain: []domain.Asset{}, CrossChain: []domain.Asset{}}
	switch {
	case caip.IsEvmChainID(sell.ChainID):
		resp.SameChain = append(resp.SameChain, assets.FilterSameChainEvmBuyAssets(sell, all)...)
		resp.CrossChain = append(resp.CrossChain, assets.FilterCrossChainEvmBuyAssets(sell, all)...)
	case caip.IsSolanaChainID(sell.ChainID):
		resp.SameChain = append(resp.SameChain, assets.FilterSameChainSolanaBuyAssets(sell, all)...)
	}
	c.JSON(http.StatusOK, resp)
}
