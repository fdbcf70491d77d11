package usecase

import (
	"context"
	"fmt"

	"github.com/formulynx/backend/internal/domain"
	"github.com/formulynx/backend/internal/inci"
)

// CategoryComputer assigns the Active/Excipient bifurcation category to match
// results. It holds no mutable state: annotating the same matches with the
// same catalog twice yields identical output.
type CategoryComputer struct {
	catalog domain.CatalogRepository
}

// NewCategoryComputer creates a new category computer backed by the catalog
func NewCategoryComputer(catalog domain.CatalogRepository) *CategoryComputer {
	return &CategoryComputer{catalog: catalog}
}

// Annotate fetches categories for every INCI name the matches consumed and
// returns the per-name category map alongside annotated copies of the
// matches. The input slice is never mutated.
func (c *CategoryComputer) Annotate(
	ctx context.Context,
	matches []domain.MatchResult,
) (map[string]domain.Category, []domain.MatchResult, error) {
	var names []string
	seen := make(map[string]bool)
	for _, m := range matches {
		for _, n := range m.MatchedINCI {
			norm := inci.NormalizeName(n)
			if norm != "" && !seen[norm] {
				names = append(names, norm)
				seen[norm] = true
			}
		}
	}

	categories := map[string]domain.Category{}
	if len(names) > 0 {
		var err error
		categories, err = c.catalog.CategoriesForNames(ctx, names)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching ingredient categories: %w", err)
		}
	}

	annotated := make([]domain.MatchResult, len(matches))
	for i, m := range matches {
		annotated[i] = m
		annotated[i].Category = categoryFor(m, categories)
	}
	return categories, annotated, nil
}

// categoryFor applies the category rules for one match:
//   - combinations always inherit from their members (any Active dominates)
//   - single generic entries prefer the catalog's stored category
//   - single branded entries prefer the manufacturer-declared category
func categoryFor(m domain.MatchResult, categories map[string]domain.Category) domain.Category {
	if len(m.MatchedINCI) > 1 {
		return CombinationCategory(m.MatchedINCI, categories)
	}

	if m.Tag == domain.TagBranded && m.DeclaredCategory != "" {
		return m.DeclaredCategory
	}

	if len(m.MatchedINCI) == 1 {
		if cat, ok := categories[inci.NormalizeName(m.MatchedINCI[0])]; ok {
			return cat
		}
	}
	return CombinationCategory(m.MatchedINCI, categories)
}

// CombinationCategory computes the inherited category for a set of INCI
// names. A single Active member makes the whole combination Active — a trace
// active makes the combination safety-relevant regardless of how many
// excipients surround it. With no Active members, one known Excipient makes
// it Excipient; otherwise the category is unknown.
func CombinationCategory(matchedINCI []string, categories map[string]domain.Category) domain.Category {
	hasExcipient := false
	for _, name := range matchedINCI {
		switch categories[inci.NormalizeName(name)] {
		case domain.CategoryActive:
			return domain.CategoryActive
		case domain.CategoryExcipient:
			hasExcipient = true
		}
	}
	if hasExcipient {
		return domain.CategoryExcipient
	}
	return ""
}
