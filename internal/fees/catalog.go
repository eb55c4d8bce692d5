package fees

import "swapscout/internal/config"

// OverridesFromCatalog converts the catalog's fee curves into Calculator
// overrides, keyed by upper-case model name.
func OverridesFromCatalog(c *config.Catalog) map[FeeModel]Parameters {
	if c == nil || len(c.FeeModels) == 0 {
		return nil
	}
	out := make(map[FeeModel]Parameters, len(c.FeeModels))
	for name, m := range c.FeeModels {
		out[FeeModel(name)] = Parameters{
			NoFeeThresholdUsd:       m.NoFeeThresholdUsd,
			MaxFeeBps:               m.MaxFeeBps,
			MinFeeBps:               m.MinFeeBps,
			MidpointUsd:             m.MidpointUsd,
			SteepnessK:              m.SteepnessK,
			FoxMaxDiscountThreshold: m.FoxMaxDiscountThreshold,
			ThorDiscountThreshold:   m.ThorDiscountThreshold,
		}
	}
	return out
}
