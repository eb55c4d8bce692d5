// Package assets holds the read-only asset reference data: the catalog, the
// related-asset groups and the per-chain fee assets.
package assets

import (
	"context"

	"swapscout/internal/caip"
	"swapscout/internal/config"
	"swapscout/internal/domain"
)

// Catalog is an in-memory, ordered asset index.
type Catalog struct {
	order []caip.AssetID
	byID  domain.AssetsByID
}

func NewCatalog(list []domain.Asset) *Catalog {
	c := &Catalog{
		order: make([]caip.AssetID, 0, len(list)),
		byID:  make(domain.AssetsByID, len(list)),
	}
	for _, a := range list {
		if _, dup := c.byID[a.AssetID]; dup {
			continue
		}
		if a.ChainID == "" {
			a.ChainID = a.AssetID.ChainID()
		}
		c.order = append(c.order, a.AssetID)
		c.byID[a.AssetID] = a
	}
	return c
}

// NewCatalogFromConfig builds the catalog from the YAML reference data.
func NewCatalogFromConfig(cfg *config.Catalog) *Catalog {
	return NewCatalog(cfg.Assets)
}

func (c *Catalog) Get(id caip.AssetID) (domain.Asset, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// All returns assets in catalog order.
func (c *Catalog) All() []domain.Asset {
	out := make([]domain.Asset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ByID returns a copy of the index.
func (c *Catalog) ByID() domain.AssetsByID {
	out := make(domain.AssetsByID, len(c.byID))
	for k, v := range c.byID {
		out[k] = v
	}
	return out
}

// relatedKey is the group an asset belongs to: its RelatedAssetKey, or its
// own id when other assets point at it.
func (c *Catalog) relatedKey(id caip.AssetID) caip.AssetID {
	a, ok := c.byID[id]
	if !ok {
		return ""
	}
	if a.RelatedAssetKey != "" {
		return a.RelatedAssetKey
	}
	return a.AssetID
}

// GetRelatedAssetIDs returns the other members of id's related-asset group
// in catalog order, the group's primary asset included.
func (c *Catalog) GetRelatedAssetIDs(_ context.Context, id caip.AssetID) ([]caip.AssetID, error) {
	key := c.relatedKey(id)
	if key == "" {
		return nil, nil
	}
	var out []caip.AssetID
	for _, other := range c.order {
		if other == id {
			continue
		}
		if c.relatedKey(other) == key {
			out = append(out, other)
		}
	}
	return out, nil
}
