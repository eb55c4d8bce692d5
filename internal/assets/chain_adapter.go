package assets

import (
	"fmt"

	"swapscout/internal/caip"
)

// ChainAdapter is the narrow view of a chain the routing code needs.
type ChainAdapter interface {
	ChainID() caip.ChainID
	FeeAssetID() caip.AssetID
}

type staticAdapter struct {
	chainID    caip.ChainID
	feeAssetID caip.AssetID
}

func (a staticAdapter) ChainID() caip.ChainID    { return a.chainID }
func (a staticAdapter) FeeAssetID() caip.AssetID { return a.feeAssetID }

// ChainAdapterManager resolves adapters by chain id.
type ChainAdapterManager struct {
	adapters map[caip.ChainID]ChainAdapter
}

// NewChainAdapterManager builds static adapters from the catalog's chain fee assets.
func NewChainAdapterManager(feeAssets map[caip.ChainID]caip.AssetID) (*ChainAdapterManager, error) {
	m := &ChainAdapterManager{adapters: make(map[caip.ChainID]ChainAdapter, len(feeAssets))}
	for chainID, assetID := range feeAssets {
		if assetID.ChainID() != chainID {
			return nil, fmt.Errorf("fee asset %s is not on chain %s", assetID, chainID)
		}
		m.adapters[chainID] = staticAdapter{chainID: chainID, feeAssetID: assetID}
	}
	return m, nil
}

// Get returns the adapter for chainID, if one is registered.
func (m *ChainAdapterManager) Get(chainID caip.ChainID) (ChainAdapter, bool) {
	a, ok := m.adapters[chainID]
	return a, ok
}
