package assets

import (
	"swapscout/internal/caip"
	"swapscout/internal/domain"
)

// FilterSameChainEvmBuyAssets keeps EVM assets on the sell asset's chain,
// excluding the sell asset itself.
func FilterSameChainEvmBuyAssets(sellAsset domain.Asset, candidates []domain.Asset) []domain.Asset {
	if !caip.IsEvmChainID(sellAsset.ChainID) {
		return nil
	}
	return filter(candidates, func(a domain.Asset) bool {
		return a.AssetID != sellAsset.AssetID && a.ChainID == sellAsset.ChainID
	})
}

// FilterCrossChainEvmBuyAssets keeps EVM assets on other EVM chains, except
// Arbitrum Nova which has no cross-chain liquidity.
func FilterCrossChainEvmBuyAssets(sellAsset domain.Asset, candidates []domain.Asset) []domain.Asset {
	if !caip.IsEvmChainID(sellAsset.ChainID) {
		return nil
	}
	return filter(candidates, func(a domain.Asset) bool {
		return caip.IsEvmChainID(a.ChainID) &&
			a.ChainID != sellAsset.ChainID &&
			a.ChainID != caip.ArbitrumNovaChainID
	})
}

// FilterSameChainSolanaBuyAssets keeps Solana assets other than the sell asset.
func FilterSameChainSolanaBuyAssets(sellAsset domain.Asset, candidates []domain.Asset) []domain.Asset {
	if !caip.IsSolanaChainID(sellAsset.ChainID) {
		return nil
	}
	return filter(candidates, func(a domain.Asset) bool {
		return a.AssetID != sellAsset.AssetID && caip.IsSolanaChainID(a.ChainID)
	})
}

func filter(in []domain.Asset, keep func(domain.Asset) bool) []domain.Asset {
	var out []domain.Asset
	for _, a := range in {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
