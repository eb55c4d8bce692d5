package provider

import (
	"strings"

	"swapscout/internal/caip"
)

const (
	ethAssetID      caip.AssetID = "eip155:1/slip44:60"
	arbEthAssetID   caip.AssetID = "eip155:42161/slip44:60"
	opEthAssetID    caip.AssetID = "eip155:10/slip44:60"
	avaxAssetID     caip.AssetID = "eip155:43114/slip44:60"
	bnbAssetID      caip.AssetID = "eip155:56/slip44:60"
	btcAssetID      caip.AssetID = "bip122:000000000019d6689c085ae165831e93/slip44:0"
	runeAssetID     caip.AssetID = "cosmos:thorchain-mainnet-v1/slip44:931"
	solAssetID      caip.AssetID = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp/slip44:501"
	usdcAssetID     caip.AssetID = "eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	usdtAssetID     caip.AssetID = "eip155:1/erc20:0xdac17f958d2ee523a2206206994597c13d831ec7"
	foxAssetID      caip.AssetID = "eip155:1/erc20:0xc770eefad204b5180df6a14ee197d99d808ee52d"
	wethAssetID     caip.AssetID = "eip155:1/erc20:0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	wbtcAssetID     caip.AssetID = "eip155:1/erc20:0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"
	pepeAssetID     caip.AssetID = "eip155:1/erc20:0x6982508145454ce325ddbe47a25d4ec3d2311933"
	daiAssetID      caip.AssetID = "eip155:1/erc20:0x6b175474e89094c44da98b954eedeac495271d0f"
	linkAssetID     caip.AssetID = "eip155:1/erc20:0x514910771af9ca656af840dff83e8264ecf986ca"
	uniTokenAssetID caip.AssetID = "eip155:1/erc20:0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"
)

// coingeckoIDs maps well-known assets to CoinGecko coin ids. The first asset
// listed for an id is the one FindAll reports.
var coingeckoIDs = []struct {
	coinID  string
	assetID caip.AssetID
}{
	{"bitcoin", btcAssetID},
	{"ethereum", ethAssetID},
	{"ethereum", arbEthAssetID},
	{"ethereum", opEthAssetID},
	{"tether", usdtAssetID},
	{"binancecoin", bnbAssetID},
	{"solana", solAssetID},
	{"usd-coin", usdcAssetID},
	{"avalanche-2", avaxAssetID},
	{"chainlink", linkAssetID},
	{"wrapped-bitcoin", wbtcAssetID},
	{"weth", wethAssetID},
	{"dai", daiAssetID},
	{"uniswap", uniTokenAssetID},
	{"pepe", pepeAssetID},
	{"thorchain", runeAssetID},
	{"shapeshift-fox-token", foxAssetID},
}

// coingeckoPlatforms maps EVM chains to CoinGecko asset platform ids.
var coingeckoPlatforms = map[caip.ChainID]string{
	caip.EthChainID:       "ethereum",
	caip.AvalancheChainID: "avalanche",
	caip.BscChainID:       "binance-smart-chain",
	caip.ArbitrumChainID:  "arbitrum-one",
	"eip155:10":           "optimistic-ethereum",
	"eip155:137":          "polygon-pos",
	"eip155:8453":         "base",
}

func coingeckoCoinID(id caip.AssetID) (string, bool) {
	for _, m := range coingeckoIDs {
		if m.assetID == id {
			return m.coinID, true
		}
	}
	return "", false
}

func coingeckoAssetID(coinID string) (caip.AssetID, bool) {
	for _, m := range coingeckoIDs {
		if m.coinID == coinID {
			return m.assetID, true
		}
	}
	return "", false
}

// coincapIDs maps well-known assets to CoinCap asset ids.
var coincapIDs = []struct {
	coinID  string
	assetID caip.AssetID
}{
	{"bitcoin", btcAssetID},
	{"ethereum", ethAssetID},
	{"ethereum", arbEthAssetID},
	{"ethereum", opEthAssetID},
	{"tether", usdtAssetID},
	{"binance-coin", bnbAssetID},
	{"solana", solAssetID},
	{"usd-coin", usdcAssetID},
	{"avalanche", avaxAssetID},
	{"chainlink", linkAssetID},
	{"wrapped-bitcoin", wbtcAssetID},
	{"multi-collateral-dai", daiAssetID},
	{"uniswap", uniTokenAssetID},
	{"pepe", pepeAssetID},
	{"thorchain", runeAssetID},
}

func coincapCoinID(id caip.AssetID) (string, bool) {
	for _, m := range coincapIDs {
		if m.assetID == id {
			return m.coinID, true
		}
	}
	return "", false
}

func coincapAssetID(coinID string) (caip.AssetID, bool) {
	for _, m := range coincapIDs {
		if m.coinID == coinID {
			return m.assetID, true
		}
	}
	return "", false
}

// portalsNetworks maps EVM chains to Portals network names.
var portalsNetworks = map[caip.ChainID]string{
	caip.EthChainID:       "ethereum",
	caip.AvalancheChainID: "avalanche",
	caip.BscChainID:       "bsc",
	caip.ArbitrumChainID:  "arbitrum",
	"eip155:10":           "optimism",
	"eip155:137":          "polygon",
	"eip155:8453":         "base",
}

// portalsKey returns the "<network>:<address>" token key for an ERC-20 asset.
func portalsKey(id caip.AssetID) (string, bool) {
	parts, err := caip.ParseAssetID(id)
	if err != nil || parts.AssetNamespace != caip.AssetNamespaceERC20 {
		return "", false
	}
	network, ok := portalsNetworks[id.ChainID()]
	if !ok {
		return "", false
	}
	return network + ":" + strings.ToLower(parts.AssetReference), true
}

// portalsAssetID is the inverse of portalsKey.
func portalsAssetID(key string) (caip.AssetID, bool) {
	network, address, ok := strings.Cut(key, ":")
	if !ok || address == "" {
		return "", false
	}
	for chainID, n := range portalsNetworks {
		if n == network {
			return caip.ToAssetID(chainID, caip.AssetNamespaceERC20, strings.ToLower(address)), true
		}
	}
	return "", false
}
