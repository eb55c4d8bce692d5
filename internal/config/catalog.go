package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"swapscout/internal/caip"
	"swapscout/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Duration wraps time.Duration to support YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Catalog is the reference data the engines consume: assets, chain fee
// assets, swapper settings and fee curves.
type Catalog struct {
	Assets         []domain.Asset                `yaml:"assets"`
	ChainFeeAssets map[caip.ChainID]caip.AssetID `yaml:"chain_fee_assets"`
	Swappers       []SwapperConfig               `yaml:"swappers"`
	FeeModels      map[string]FeeModelConfig     `yaml:"fee_models"`
	ThorchainPools map[caip.AssetID]string       `yaml:"thorchain_pools"`
}

// SwapperConfig enables a swapper and overrides its polling interval.
type SwapperConfig struct {
	Name            string   `yaml:"name"`
	Enabled         bool     `yaml:"enabled"`
	PollingInterval Duration `yaml:"polling_interval"`
}

// FeeModelConfig holds the fee curve parameters for one fee model.
type FeeModelConfig struct {
	NoFeeThresholdUsd       float64 `yaml:"no_fee_threshold_usd"`
	MaxFeeBps               float64 `yaml:"max_fee_bps"`
	MinFeeBps               float64 `yaml:"min_fee_bps"`
	MidpointUsd             float64 `yaml:"midpoint_usd"`
	SteepnessK              float64 `yaml:"steepness_k"`
	FoxMaxDiscountThreshold float64 `yaml:"fox_max_discount_threshold"`
	ThorDiscountThreshold   float64 `yaml:"thor_discount_threshold"`
}

// LoadCatalog reads the catalog at path, or the built-in catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		data = raw
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	seen := make(map[caip.AssetID]struct{}, len(c.Assets))
	for i, a := range c.Assets {
		if _, err := caip.ParseAssetID(a.AssetID); err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		if _, dup := seen[a.AssetID]; dup {
			return nil, fmt.Errorf("duplicate asset %s", a.AssetID)
		}
		seen[a.AssetID] = struct{}{}
		if a.ChainID == "" {
			c.Assets[i].ChainID = a.AssetID.ChainID()
		}
	}
	if c.ChainFeeAssets == nil {
		c.ChainFeeAssets = map[caip.ChainID]caip.AssetID{}
	}
	return &c, nil
}

// PollingIntervals returns the configured interval per enabled swapper.
func (c *Catalog) PollingIntervals() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.Swappers))
	for _, s := range c.Swappers {
		if s.Enabled && s.PollingInterval.Duration > 0 {
			out[s.Name] = s.PollingInterval.Duration
		}
	}
	return out
}

// SwapperEnabled reports whether name is enabled in the catalog.
func (c *Catalog) SwapperEnabled(name string) bool {
	for _, s := range c.Swappers {
		if s.Name == name {
			return s.Enabled
		}
	}
	return false
}
