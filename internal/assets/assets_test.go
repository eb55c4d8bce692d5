package assets

import (
	"context"
	"reflect"
	"testing"

	"swapscout/internal/caip"
	"swapscout/internal/config"
	"swapscout/internal/domain"
)

const (
	eth    caip.AssetID = "eip155:1/slip44:60"
	arbEth caip.AssetID = "eip155:42161/slip44:60"
	weth   caip.AssetID = "eip155:1/erc20:0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	usdc   caip.AssetID = "eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	nova   caip.AssetID = "eip155:42170/slip44:60"
	sol    caip.AssetID = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp/slip44:501"
	bonk   caip.AssetID = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp/token:DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

func testCatalog() *Catalog {
	return NewCatalog([]domain.Asset{
		{AssetID: eth, Symbol: "ETH"},
		{AssetID: arbEth, Symbol: "ETH", RelatedAssetKey: eth},
		{AssetID: weth, Symbol: "WETH", RelatedAssetKey: eth},
		{AssetID: usdc, Symbol: "USDC"},
		{AssetID: nova, Symbol: "ETH"},
		{AssetID: sol, Symbol: "SOL"},
		{AssetID: bonk, Symbol: "BONK"},
		{AssetID: eth, Symbol: "DUPLICATE"},
	})
}

func TestCatalogGetAndOrder(t *testing.T) {
	c := testCatalog()
	a, ok := c.Get(eth)
	if !ok || a.Symbol != "ETH" || a.ChainID != caip.EthChainID {
		t.Fatalf("unexpected asset: %+v", a)
	}
	all := c.All()
	if len(all) != 7 || all[0].AssetID != eth || all[6].AssetID != bonk {
		t.Fatalf("unexpected catalog order: %+v", all)
	}
	if _, ok := c.Get("eip155:1/erc20:0xdead"); ok {
		t.Fatal("unknown asset should not be found")
	}
}

func TestGetRelatedAssetIDs(t *testing.T) {
	c := testCatalog()
	ctx := context.Background()

	got, _ := c.GetRelatedAssetIDs(ctx, arbEth)
	if !reflect.DeepEqual(got, []caip.AssetID{eth, weth}) {
		t.Fatalf("unexpected related ids for arb eth: %v", got)
	}
	got, _ = c.GetRelatedAssetIDs(ctx, eth)
	if !reflect.DeepEqual(got, []caip.AssetID{arbEth, weth}) {
		t.Fatalf("unexpected related ids for eth: %v", got)
	}
	got, _ = c.GetRelatedAssetIDs(ctx, usdc)
	if len(got) != 0 {
		t.Fatalf("usdc has no related assets, got %v", got)
	}
}

func TestChainAdapterManager(t *testing.T) {
	m, err := NewChainAdapterManager(map[caip.ChainID]caip.AssetID{caip.EthChainID: eth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := m.Get(caip.EthChainID)
	if !ok || a.FeeAssetID() != eth || a.ChainID() != caip.EthChainID {
		t.Fatalf("unexpected adapter: %+v", a)
	}
	if _, ok := m.Get(caip.BtcChainID); ok {
		t.Fatal("btc adapter should be absent")
	}

	if _, err := NewChainAdapterManager(map[caip.ChainID]caip.AssetID{caip.BtcChainID: eth}); err == nil {
		t.Fatal("expected mismatched fee asset error")
	}
}

func TestChainAdapterManagerFromDefaultCatalog(t *testing.T) {
	cfg, err := config.LoadCatalog("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	m, err := NewChainAdapterManager(cfg.ChainFeeAssets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := m.Get(caip.EthChainID)
	if !ok {
		t.Fatal("expected eth adapter")
	}
	if _, ok := NewCatalogFromConfig(cfg).Get(a.FeeAssetID()); !ok {
		t.Fatal("eth fee asset should be in the default catalog")
	}
}

func TestBuyAssetFilters(t *testing.T) {
	c := testCatalog()
	all := c.All()
	ethAsset, _ := c.Get(eth)
	solAsset, _ := c.Get(sol)

	ids := func(list []domain.Asset) []caip.AssetID {
		out := make([]caip.AssetID, 0, len(list))
		for _, a := range list {
			out = append(out, a.AssetID)
		}
		return out
	}

	if got := ids(FilterSameChainEvmBuyAssets(ethAsset, all)); !reflect.DeepEqual(got, []caip.AssetID{weth, usdc}) {
		t.Fatalf("same-chain evm: %v", got)
	}
	if got := ids(FilterCrossChainEvmBuyAssets(ethAsset, all)); !reflect.DeepEqual(got, []caip.AssetID{arbEth}) {
		t.Fatalf("cross-chain evm should exclude nova: %v", got)
	}
	if got := ids(FilterSameChainSolanaBuyAssets(solAsset, all)); !reflect.DeepEqual(got, []caip.AssetID{bonk}) {
		t.Fatalf("same-chain solana: %v", got)
	}
	if got := FilterSameChainSolanaBuyAssets(ethAsset, all); got != nil {
		t.Fatalf("non-solana sell asset should yield nothing: %v", got)
	}
	if got := FilterSameChainEvmBuyAssets(solAsset, all); got != nil {
		t.Fatalf("non-evm sell asset should yield nothing: %v", got)
	}
}
