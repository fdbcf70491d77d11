package usecase

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/formulynx/backend/internal/domain"
	"github.com/formulynx/backend/internal/inci"
)

// AnalysisConfig holds configuration for the analysis service
type AnalysisConfig struct {
	CacheTTL          time.Duration
	EnrichmentTimeout time.Duration
}

// AnalysisService sequences the full ingredient analysis: synonym and caution
// enrichment run concurrently, then the matching engine consumes the
// synonyms, then the category computer annotates the matches, and finally the
// results are grouped for display. Enrichment failures degrade to empty
// contributions and never fail the request.
type AnalysisService struct {
	engine        *MatchingEngine
	categories    *CategoryComputer
	synonyms      domain.SynonymProvider
	cautions      domain.CautionProvider
	cache         domain.CacheRepository
	cacheTTL      time.Duration
	enrichTimeout time.Duration
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	engine *MatchingEngine,
	categories *CategoryComputer,
	synonyms domain.SynonymProvider,
	cautions domain.CautionProvider,
	cache domain.CacheRepository,
	config AnalysisConfig,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	enrichTimeout := config.EnrichmentTimeout
	if enrichTimeout == 0 {
		enrichTimeout = 15 * time.Second
	}

	return &AnalysisService{
		engine:        engine,
		categories:    categories,
		synonyms:      synonyms,
		cautions:      cautions,
		cache:         cache,
		cacheTTL:      cacheTTL,
		enrichTimeout: enrichTimeout,
	}
}

// Analyze resolves a submitted ingredient list into grouped matches,
// categories, tags, and cautions. Input elements may themselves be
// multi-ingredient strings; they are parsed before matching.
func (s *AnalysisService) Analyze(ctx context.Context, rawInput []string) (*domain.AnalysisResult, error) {
	start := time.Now()

	names := inci.ParseItems(rawInput)
	if len(names) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := s.generateCacheKey(names)
	if cached := s.getFromCache(ctx, cacheKey); cached != nil {
		cached.Source = "Cache"
		return cached, nil
	}

	synonymsMap, cautionsMap := s.fetchEnrichment(ctx, names)

	outcome, err := s.engine.Resolve(ctx, names, synonymsMap)
	if err != nil {
		return nil, err
	}

	categories, annotated, err := s.categories.Annotate(ctx, outcome.Matches)
	if err != nil {
		// Categories are an enrichment on top of matching; keep going.
		log.Printf("[ANALYZE] warning: category annotation failed: %v", err)
		categories, annotated = nil, outcome.Matches
	}

	result := &domain.AnalysisResult{
		Detected:       groupByINCI(annotated),
		Unresolved:     outcome.Unresolved,
		Categories:     categories,
		Tags:           outcome.TagMap,
		Cautions:       filterWaterCautions(cautionsMap),
		ProcessingTime: math.Round(time.Since(start).Seconds()*1000) / 1000,
		Source:         "Live",
	}
	if result.Unresolved == nil {
		result.Unresolved = []string{}
	}

	if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
		log.Printf("[ANALYZE] warning: failed to cache result: %v", err)
	}

	return result, nil
}

// fetchEnrichment runs the synonym and caution lookups concurrently, each
// bounded by the enrichment timeout. A failure or timeout on either side
// yields an empty map for that collaborator.
func (s *AnalysisService) fetchEnrichment(ctx context.Context, names []string) (map[string][]string, map[string][]string) {
	var synonymsMap, cautionsMap map[string][]string

	g := &errgroup.Group{}
	g.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
		defer cancel()
		m, err := s.synonyms.SynonymsBatch(fetchCtx, names)
		if err != nil {
			log.Printf("[ANALYZE] warning: synonym lookup failed, proceeding without: %v", err)
			return nil
		}
		synonymsMap = m
		return nil
	})
	g.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
		defer cancel()
		m, err := s.cautions.CautionsFor(fetchCtx, names)
		if err != nil {
			log.Printf("[ANALYZE] warning: caution lookup failed, proceeding without: %v", err)
			return nil
		}
		cautionsMap = m
		return nil
	})
	g.Wait()

	return synonymsMap, cautionsMap
}

// groupByINCI buckets matches by their sorted matched-INCI tuple and orders
// groups by descending INCI-set size. Groups of equal size keep first-seen
// order.
func groupByINCI(matches []domain.MatchResult) []domain.IngredientGroup {
	type bucket struct {
		key   []string
		items []domain.MatchResult
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, m := range matches {
		key := strings.Join(m.MatchedINCI, "|")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: m.MatchedINCI}
			buckets[key] = b
			order = append(order, key)
		}
		b.items = append(b.items, m)
	}

	groups := make([]domain.IngredientGroup, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		groups = append(groups, domain.IngredientGroup{
			INCIList: b.key,
			Items:    b.items,
			Count:    len(b.items),
		})
	}

	// Stable: equal-size groups stay in discovery order.
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].INCIList) > len(groups[j].INCIList)
	})
	return groups
}

// filterWaterCautions drops water/aqua entries from the caution map. Water
// cautions are noise on virtually every formulation.
func filterWaterCautions(cautions map[string][]string) map[string][]string {
	if len(cautions) == 0 {
		return nil
	}
	filtered := make(map[string][]string, len(cautions))
	for name, texts := range cautions {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "water") || strings.Contains(lower, "aqua") {
			continue
		}
		filtered[name] = texts
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

// generateCacheKey builds a normalized, order-sensitive key for a submission.
func (s *AnalysisService) generateCacheKey(names []string) string {
	normalized := make([]string, len(names))
	for i, n := range names {
		normalized[i] = inci.NormalizeName(n)
	}
	return "analysis:" + strings.Join(normalized, ",")
}

func (s *AnalysisService) getFromCache(ctx context.Context, key string) *domain.AnalysisResult {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	result, ok := value.(*domain.AnalysisResult)
	if !ok {
		return nil
	}
	// Hand back a shallow copy so Source flips don't write into the cache.
	clone := *result
	return &clone
}
