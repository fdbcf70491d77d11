// Package catalog provides the read-only ingredient catalog as an immutable
// in-memory snapshot loaded from a JSON seed file. A snapshot is swapped
// atomically on Reload; requests in flight keep reading the one they started
// with, so no locking is needed inside the matching core.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/formulynx/backend/internal/domain"
	"github.com/formulynx/backend/internal/inci"
)

// seedDocument is the on-disk shape of the catalog seed file.
type seedDocument struct {
	Branded []domain.BrandedIngredient `json:"branded"`
	Generic []seedGeneric              `json:"generic"`
}

type seedGeneric struct {
	Name     string          `json:"name"`
	Category domain.Category `json:"category,omitempty"`
}

// snapshot is one immutable view of the catalog. Never mutated after build.
type snapshot struct {
	branded       []domain.BrandedIngredient
	genericByName map[string]domain.GenericIngredient
}

// Store implements domain.CatalogRepository over the current snapshot.
type Store struct {
	path string
	mu   sync.RWMutex
	snap *snapshot
}

// NewStore loads the seed file at path and returns a ready store. A seed that
// cannot be read or parsed is fatal: matching is meaningless without a
// catalog.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the seed file and swaps in a fresh snapshot. Safe to call
// concurrently with readers; on error the previous snapshot stays in place.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: reading seed file %s: %v", domain.ErrCatalogUnavailable, s.path, err)
	}

	var doc seedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parsing seed file %s: %v", domain.ErrCatalogUnavailable, s.path, err)
	}

	snap := buildSnapshot(&doc)

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	log.Printf("[CATALOG] loaded %d branded and %d generic ingredients from %s",
		len(snap.branded), len(snap.genericByName), s.path)
	return nil
}

// buildSnapshot normalizes all INCI keys once at load time so the matching
// stages can compare names without re-normalizing catalog data.
func buildSnapshot(doc *seedDocument) *snapshot {
	branded := make([]domain.BrandedIngredient, 0, len(doc.Branded))
	for _, b := range doc.Branded {
		var components []string
		seen := make(map[string]bool)
		for _, raw := range b.INCI {
			if n := inci.NormalizeName(raw); n != "" && !seen[n] {
				components = append(components, n)
				seen[n] = true
			}
		}
		if len(components) == 0 {
			// A branded ingredient with no INCI declaration can never match.
			log.Printf("[CATALOG] skipping branded ingredient %q: empty INCI set", b.Name)
			continue
		}
		b.INCI = components
		branded = append(branded, b)
	}

	genericByName := make(map[string]domain.GenericIngredient, len(doc.Generic))
	for _, g := range doc.Generic {
		norm := inci.NormalizeName(g.Name)
		if norm == "" {
			continue
		}
		genericByName[norm] = domain.GenericIngredient{
			NormalizedName: norm,
			DisplayName:    g.Name,
			Category:       g.Category,
		}
	}

	return &snapshot{branded: branded, genericByName: genericByName}
}

func (s *Store) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// BrandedIngredients returns the full branded catalog in seed order. The
// returned slice is shared snapshot data; callers must treat it as read-only.
func (s *Store) BrandedIngredients(ctx context.Context) ([]domain.BrandedIngredient, error) {
	return s.current().branded, nil
}

// FindBrandedContaining returns branded ingredients whose INCI set shares at
// least one member with the given normalized names, in seed order.
func (s *Store) FindBrandedContaining(ctx context.Context, names []string) ([]domain.BrandedIngredient, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[inci.NormalizeName(n)] = true
	}

	var out []domain.BrandedIngredient
	for _, b := range s.current().branded {
		for _, comp := range b.INCI {
			if want[comp] {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

// FindGenericByNormalizedNames returns generic entries for the requested
// names, in request order. Unknown names are silently absent.
func (s *Store) FindGenericByNormalizedNames(ctx context.Context, names []string) ([]domain.GenericIngredient, error) {
	snap := s.current()
	var out []domain.GenericIngredient
	for _, n := range names {
		if g, ok := snap.genericByName[inci.NormalizeName(n)]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

// CategoriesForNames returns the recorded category for each normalized name
// that has one.
func (s *Store) CategoriesForNames(ctx context.Context, names []string) (map[string]domain.Category, error) {
	snap := s.current()
	out := make(map[string]domain.Category)
	for _, n := range names {
		norm := inci.NormalizeName(n)
		if g, ok := snap.genericByName[norm]; ok && g.Category != "" {
			out[norm] = g.Category
		}
	}
	return out, nil
}
