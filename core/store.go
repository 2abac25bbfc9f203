package core

import (
	"context"
	"pagewidth/models"
)

// Store is the asynchronous key-value store holding settings records.
// Get omits keys that have no stored value.
type Store interface {
	Get(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, records map[string][]byte) error
	Remove(ctx context.Context, keys []string) error
}

// Catalog is the per-site rule catalog. Implementations may apply any
// matching logic; entries come back in the catalog's own order.
type Catalog interface {
	LookupSiteRules(rawURL string, width int) []models.CatalogEntry
}

// CatalogFunc adapts a plain function to Catalog.
type CatalogFunc func(rawURL string, width int) []models.CatalogEntry

func (f CatalogFunc) LookupSiteRules(rawURL string, width int) []models.CatalogEntry {
	return f(rawURL, width)
}

func lookup(c Catalog, rawURL string, width int) []models.CatalogEntry {
	if c == nil {
		return nil
	}
	return c.LookupSiteRules(rawURL, width)
}
