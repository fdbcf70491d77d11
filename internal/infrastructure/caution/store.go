// Package caution serves regulatory caution texts for ingredients. The
// source corpus is distilled out-of-band into a JSON map of ingredient name
// to caution texts; lookup here is a plain normalized-name read.
package caution

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/formulynx/backend/internal/inci"
)

// Store implements domain.CautionProvider over an in-memory caution map.
type Store struct {
	byName map[string][]string
}

// NewStore loads the caution file at path. Unlike the catalog, cautions are
// enrichment only: callers may treat a load failure as "run without cautions".
func NewStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading caution file %s: %w", path, err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing caution file %s: %w", path, err)
	}

	byName := make(map[string][]string, len(raw))
	for name, texts := range raw {
		if norm := inci.NormalizeName(name); norm != "" && len(texts) > 0 {
			byName[norm] = texts
		}
	}

	log.Printf("[CAUTION] loaded cautions for %d ingredients from %s", len(byName), path)
	return &Store{byName: byName}, nil
}

// Empty returns a store with no cautions, for running without a caution file.
func Empty() *Store {
	return &Store{byName: map[string][]string{}}
}

// CautionsFor returns caution texts keyed by the submitted (original) name
// for every name that has any. Names without cautions are absent.
func (s *Store) CautionsFor(ctx context.Context, names []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, name := range names {
		if texts, ok := s.byName[inci.NormalizeName(name)]; ok {
			out[name] = texts
		}
	}
	return out, nil
}
