// Package caip parses chain and asset identifiers in CAIP-2 / CAIP-19 form.
package caip

import (
	"fmt"
	"strings"
)

// ChainID identifies a chain as namespace:reference (CAIP-2).
type ChainID string

// AssetID identifies an asset as <chainId>/<assetNamespace>:<assetReference> (CAIP-19).
type AssetID string

const (
	EthChainID          ChainID = "eip155:1"
	AvalancheChainID    ChainID = "eip155:43114"
	BscChainID          ChainID = "eip155:56"
	ArbitrumChainID     ChainID = "eip155:42161"
	ArbitrumNovaChainID ChainID = "eip155:42170"
	BtcChainID          ChainID = "bip122:000000000019d6689c085ae165831e93"
	ThorchainChainID    ChainID = "cosmos:thorchain-mainnet-v1"
	SolanaChainID       ChainID = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
)

const (
	NamespaceEIP155 = "eip155"
	NamespaceSolana = "solana"

	AssetNamespaceSlip44  = "slip44"
	AssetNamespaceERC20   = "erc20"
	AssetNamespaceERC721  = "erc721"
	AssetNamespaceERC1155 = "erc1155"
)

// Parts is the decomposed form of an AssetID.
type Parts struct {
	ChainNamespace string
	ChainReference string
	AssetNamespace string
	AssetReference string
}

// ParseAssetID splits an asset id into its four components.
func ParseAssetID(id AssetID) (Parts, error) {
	chainPart, assetPart, ok := strings.Cut(string(id), "/")
	if !ok {
		return Parts{}, fmt.Errorf("invalid asset id %q: missing '/'", id)
	}
	chainNS, chainRef, ok := strings.Cut(chainPart, ":")
	if !ok || chainNS == "" || chainRef == "" {
		return Parts{}, fmt.Errorf("invalid asset id %q: bad chain id", id)
	}
	assetNS, assetRef, ok := strings.Cut(assetPart, ":")
	if !ok || assetNS == "" || assetRef == "" {
		return Parts{}, fmt.Errorf("invalid asset id %q: bad asset part", id)
	}
	return Parts{
		ChainNamespace: chainNS,
		ChainReference: chainRef,
		AssetNamespace: assetNS,
		AssetReference: assetRef,
	}, nil
}

// ToAssetID builds an asset id from a chain id and asset namespace/reference.
func ToAssetID(chainID ChainID, assetNamespace, assetReference string) AssetID {
	return AssetID(fmt.Sprintf("%s/%s:%s", chainID, assetNamespace, assetReference))
}

// ChainID returns the chain portion of the asset id, or "" when malformed.
func (id AssetID) ChainID() ChainID {
	chainPart, _, ok := strings.Cut(string(id), "/")
	if !ok {
		return ""
	}
	return ChainID(chainPart)
}

// Reference returns the asset reference (e.g. the token contract), or "" when malformed.
func (id AssetID) Reference() string {
	parts, err := ParseAssetID(id)
	if err != nil {
		return ""
	}
	return parts.AssetReference
}

// Namespace returns the namespace portion of a chain id.
func (c ChainID) Namespace() string {
	ns, _, _ := strings.Cut(string(c), ":")
	return ns
}

// IsNFT reports whether the asset id names an ERC-721 or ERC-1155 token.
func IsNFT(id AssetID) bool {
	parts, err := ParseAssetID(id)
	if err != nil {
		return false
	}
	switch parts.AssetNamespace {
	case AssetNamespaceERC721, AssetNamespaceERC1155:
		return true
	default:
		return false
	}
}

func IsEvmChainID(c ChainID) bool {
	return c.Namespace() == NamespaceEIP155
}

func IsSolanaChainID(c ChainID) bool {
	return c.Namespace() == NamespaceSolana
}
