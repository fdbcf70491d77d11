package domain

import (
	"context"
	"time"
)

// CatalogRepository exposes read-only access to the branded and generic
// ingredient catalogs. Implementations must be safe for concurrent readers;
// the matching core never writes through this interface.
type CatalogRepository interface {
	// FindBrandedContaining returns branded ingredients whose INCI set shares
	// at least one member with the given normalized names.
	FindBrandedContaining(ctx context.Context, names []string) ([]BrandedIngredient, error)

	// BrandedIngredients returns the full branded catalog in a stable order.
	BrandedIngredients(ctx context.Context) ([]BrandedIngredient, error)

	// FindGenericByNormalizedNames looks up generic INCI entries by their
	// normalized-name keys. Missing names are simply absent from the result.
	FindGenericByNormalizedNames(ctx context.Context, names []string) ([]GenericIngredient, error)

	// CategoriesForNames returns the bifurcation category for each normalized
	// name that has one recorded.
	CategoriesForNames(ctx context.Context, names []string) (map[string]Category, error)
}

// SynonymProvider supplies known synonym strings for ingredient names from an
// external chemical registry. Absent or partial entries are tolerated.
type SynonymProvider interface {
	SynonymsBatch(ctx context.Context, names []string) (map[string][]string, error)
}

// CautionProvider supplies regulatory caution texts keyed by ingredient name.
type CautionProvider interface {
	CautionsFor(ctx context.Context, names []string) (map[string][]string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
