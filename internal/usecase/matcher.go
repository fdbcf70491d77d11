package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/formulynx/backend/internal/domain"
	"github.com/formulynx/backend/internal/inci"
)

// Default matching constants. The fuzzy threshold and synonym score are
// empirical values carried over from production data; tune only with
// supporting test data.
const (
	defaultFuzzyThreshold = 0.75 // minimum token-sort similarity for stage 2
	defaultSynonymScore   = 0.9  // confidence assigned to synonym-mediated hits
)

// MatchConfig holds configuration for the matching engine
type MatchConfig struct {
	FuzzyThreshold     float64
	SynonymScore       float64
	EnableFuzzy        bool
	EnableDebugLogging bool
}

// MatchingEngine resolves raw ingredient names against the branded and
// generic catalogs through a five-stage fallback pipeline: exact catalog
// containment, fuzzy matching, synonym-mediated matching, generic lookup,
// residual. Each stage only sees names the previous stages left unconsumed.
type MatchingEngine struct {
	catalog            domain.CatalogRepository
	fuzzyThreshold     float64
	synonymScore       float64
	enableFuzzy        bool
	enableDebugLogging bool
}

// NewMatchingEngine creates a new matching engine with the given configuration
func NewMatchingEngine(catalog domain.CatalogRepository, config MatchConfig) *MatchingEngine {
	threshold := config.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultFuzzyThreshold
	}

	synScore := config.SynonymScore
	if synScore <= 0 || synScore > 1 {
		synScore = defaultSynonymScore
	}

	return &MatchingEngine{
		catalog:            catalog,
		fuzzyThreshold:     threshold,
		synonymScore:       synScore,
		enableFuzzy:        config.EnableFuzzy,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// inputName is one submitted ingredient after parsing. Combination
// declarations expand into multiple normalized components; a plain name has
// exactly one. An input is resolved when all of its components are consumed
// by some match, or when a synonym match claims the whole original string.
type inputName struct {
	original   string
	components []string
}

// Resolve runs the full pipeline over rawNames. The synonym map is optional;
// a nil or partial map simply means fewer stage-3 opportunities. The engine
// never fails on malformed names — they flow to Unresolved — and only
// returns an error when the catalog itself cannot be read.
func (e *MatchingEngine) Resolve(
	ctx context.Context,
	rawNames []string,
	synonyms map[string][]string,
) (*domain.ResolutionOutcome, error) {
	inputs, submitted := buildInputs(rawNames)

	branded, err := e.catalog.BrandedIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	outcome := &domain.ResolutionOutcome{
		TagMap: make(map[string]domain.Tag),
	}
	consumed := make(map[string]bool)
	resolvedByName := make(map[int]bool)

	// Stage 1: exact catalog containment. A branded ingredient matches when
	// its entire INCI set appears in the submitted set.
	for _, b := range branded {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		inciSet := normalizedINCI(b)
		if len(inciSet) == 0 || !subsetOf(inciSet, submitted) {
			continue
		}

		outcome.Matches = append(outcome.Matches, brandedMatch(b, inciSet, 1.0, domain.MatchExact))
		for _, name := range inciSet {
			consumed[name] = true
			outcome.TagMap[name] = domain.TagBranded
		}
		if e.enableDebugLogging {
			log.Printf("[MATCH] exact: %q covers %v", b.Name, inciSet)
		}
	}

	// Stage 2: fuzzy matching against unconsumed catalog components. Skipped
	// entirely when fuzzy matching is disabled, not degraded to weaker logic.
	if e.enableFuzzy {
		e.fuzzyStage(branded, inputs, consumed, outcome)
	}

	// Stage 3: synonym-mediated matching. The original raw name is the unit
	// of consumption here, not its normalized form.
	if len(synonyms) > 0 {
		e.synonymStage(branded, inputs, synonyms, consumed, resolvedByName, outcome)
	}

	// Stage 4: generic catalog lookup for whatever is left.
	if err := e.genericStage(ctx, inputs, consumed, outcome); err != nil {
		return nil, err
	}

	// Stage 5: residual. Anything not accounted for keeps its original string.
	for i, in := range inputs {
		if resolvedByName[i] || allConsumed(in.components, consumed) {
			continue
		}
		outcome.Unresolved = append(outcome.Unresolved, in.original)
	}

	sortMatches(outcome.Matches)
	return outcome, nil
}

// fuzzyStage matches each unconsumed submitted name against every unconsumed
// catalog INCI component using token-order-insensitive similarity, accepting
// the single best candidate at or above the threshold.
func (e *MatchingEngine) fuzzyStage(
	branded []domain.BrandedIngredient,
	inputs []inputName,
	consumed map[string]bool,
	outcome *domain.ResolutionOutcome,
) {
	type candidate struct {
		component string
		owner     domain.BrandedIngredient
	}
	var candidates []candidate
	for _, b := range branded {
		for _, comp := range normalizedINCI(b) {
			if !consumed[comp] {
				candidates = append(candidates, candidate{comp, b})
			}
		}
	}
	if len(candidates) == 0 {
		return
	}

	for _, name := range unconsumedComponents(inputs, consumed) {
		bestScore := 0.0
		bestIdx := -1
		for i, c := range candidates {
			if consumed[c.component] {
				continue
			}
			if score := tokenSortSimilarity(name, c.component); score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 || bestScore < e.fuzzyThreshold {
			continue
		}

		best := candidates[bestIdx]
		matched := []string{best.component}
		outcome.Matches = append(outcome.Matches, brandedMatch(best.owner, matched, bestScore, domain.MatchFuzzy))
		consumed[best.component] = true
		consumed[name] = true
		outcome.TagMap[best.component] = domain.TagBranded

		if e.enableDebugLogging {
			log.Printf("[MATCH] fuzzy: %q ~ %q (%.3f) via %q", name, best.component, bestScore, best.owner.Name)
		}
	}
}

// synonymStage bridges unresolved names to branded ingredients through their
// registry synonyms. A hit consumes the original raw name, and every synonym
// that intersected the catalog entry's INCI set.
func (e *MatchingEngine) synonymStage(
	branded []domain.BrandedIngredient,
	inputs []inputName,
	synonyms map[string][]string,
	consumed map[string]bool,
	resolvedByName map[int]bool,
	outcome *domain.ResolutionOutcome,
) {
	for i, in := range inputs {
		if resolvedByName[i] || allConsumed(in.components, consumed) {
			continue
		}

		normSyns := make(map[string]bool)
		for _, s := range synonyms[in.original] {
			if n := inci.NormalizeName(s); n != "" {
				normSyns[n] = true
			}
		}
		if len(normSyns) == 0 {
			continue
		}

		for _, b := range branded {
			var hits []string
			for _, comp := range normalizedINCI(b) {
				if normSyns[comp] {
					hits = append(hits, comp)
				}
			}
			if len(hits) == 0 {
				continue
			}

			sort.Strings(hits)
			outcome.Matches = append(outcome.Matches, brandedMatch(b, hits, e.synonymScore, domain.MatchSynonym))
			for _, h := range hits {
				consumed[h] = true
				outcome.TagMap[h] = domain.TagBranded
			}
			resolvedByName[i] = true

			if e.enableDebugLogging {
				log.Printf("[MATCH] synonym: %q -> %q via %v", in.original, b.Name, hits)
			}
			break
		}
	}
}

// genericStage resolves remaining names directly against the generic INCI
// catalog by normalized-name key.
func (e *MatchingEngine) genericStage(
	ctx context.Context,
	inputs []inputName,
	consumed map[string]bool,
	outcome *domain.ResolutionOutcome,
) error {
	remaining := unconsumedComponents(inputs, consumed)
	if len(remaining) == 0 {
		return nil
	}

	generics, err := e.catalog.FindGenericByNormalizedNames(ctx, remaining)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	for _, g := range generics {
		if consumed[g.NormalizedName] {
			continue
		}
		outcome.Matches = append(outcome.Matches, domain.MatchResult{
			IngredientName: g.DisplayName,
			MatchScore:     1.0,
			MatchedINCI:    []string{g.NormalizedName},
			MatchedCount:   1,
			TotalINCI:      1,
			Tag:            domain.TagGeneric,
			MatchMethod:    domain.MatchExact,
		})
		outcome.GenericNames = append(outcome.GenericNames, g.DisplayName)
		consumed[g.NormalizedName] = true
		outcome.TagMap[g.NormalizedName] = domain.TagGeneric

		if e.enableDebugLogging {
			log.Printf("[MATCH] generic: %q", g.NormalizedName)
		}
	}
	return nil
}

// buildInputs parses each raw name, expanding combination declarations into
// their normalized components, and collects the full submitted name set.
func buildInputs(rawNames []string) ([]inputName, map[string]bool) {
	inputs := make([]inputName, 0, len(rawNames))
	submitted := make(map[string]bool)

	for _, raw := range rawNames {
		var components []string
		if combo := inci.SplitCombination(raw); combo != nil {
			for _, c := range combo {
				if n := inci.NormalizeName(c); n != "" {
					components = append(components, n)
				}
			}
		} else if n := inci.NormalizeName(raw); n != "" {
			components = []string{n}
		}

		for _, c := range components {
			submitted[c] = true
		}
		inputs = append(inputs, inputName{original: raw, components: components})
	}
	return inputs, submitted
}

// unconsumedComponents returns the distinct normalized components not yet
// consumed, in first-seen input order.
func unconsumedComponents(inputs []inputName, consumed map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, in := range inputs {
		for _, c := range in.components {
			if !consumed[c] && !seen[c] {
				out = append(out, c)
				seen[c] = true
			}
		}
	}
	return out
}

// allConsumed reports whether every component is consumed. Inputs with no
// usable components (empty after normalization) are never considered resolved.
func allConsumed(components []string, consumed map[string]bool) bool {
	if len(components) == 0 {
		return false
	}
	for _, c := range components {
		if !consumed[c] {
			return false
		}
	}
	return true
}

// normalizedINCI returns the ingredient's INCI components normalized and
// deduplicated, preserving catalog order. The loader already normalizes seed
// data; this keeps the engine correct for any repository implementation.
func normalizedINCI(b domain.BrandedIngredient) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range b.INCI {
		if n := inci.NormalizeName(raw); n != "" && !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	return out
}

func subsetOf(names []string, set map[string]bool) bool {
	for _, n := range names {
		if !set[n] {
			return false
		}
	}
	return true
}

func brandedMatch(b domain.BrandedIngredient, matched []string, score float64, method domain.MatchMethod) domain.MatchResult {
	matchedCopy := make([]string, len(matched))
	copy(matchedCopy, matched)
	sort.Strings(matchedCopy)

	return domain.MatchResult{
		IngredientName:   b.Name,
		IngredientID:     b.ID,
		Supplier:         b.Supplier,
		Description:      b.Description,
		DeclaredCategory: b.DeclaredCategory,
		FunctionalPaths:  b.FunctionalPaths,
		ChemicalPaths:    b.ChemicalPaths,
		MatchScore:       score,
		MatchedINCI:      matchedCopy,
		MatchedCount:     len(matchedCopy),
		TotalINCI:        len(normalizedINCI(b)),
		Tag:              domain.TagBranded,
		MatchMethod:      method,
	}
}

// sortMatches orders the final list: branded before generic, branded by
// match-method rank (exact, fuzzy, synonym) then descending score. Ties keep
// discovery order.
func sortMatches(matches []domain.MatchResult) {
	rank := map[domain.MatchMethod]int{
		domain.MatchExact:   0,
		domain.MatchFuzzy:   1,
		domain.MatchSynonym: 2,
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if (a.Tag == domain.TagGeneric) != (b.Tag == domain.TagGeneric) {
			return a.Tag != domain.TagGeneric
		}
		if rank[a.MatchMethod] != rank[b.MatchMethod] {
			return rank[a.MatchMethod] < rank[b.MatchMethod]
		}
		return a.MatchScore > b.MatchScore
	})
}

// tokenSortSimilarity computes a token-order-insensitive similarity in [0,1]:
// both strings have their tokens sorted, then the result is one minus the
// normalized edit distance of the joined forms.
func tokenSortSimilarity(a, b string) float64 {
	sa := sortedTokens(a)
	sb := sortedTokens(b)
	if sa == "" || sb == "" {
		return 0
	}
	if sa == sb {
		return 1
	}

	ra := []rune(sa)
	rb := []rune(sb)
	longest := max(len(ra), len(rb))
	dist := levenshteinDistance(sa, sb)
	return 1 - float64(dist)/float64(longest)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
