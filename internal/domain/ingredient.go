package domain

// Tag classifies a match as branded (supplier product) or generic (plain INCI entry).
type Tag string

const (
	TagBranded Tag = "branded"
	TagGeneric Tag = "generic"
)

// MatchMethod records which pipeline stage produced a match.
type MatchMethod string

const (
	MatchExact   MatchMethod = "exact"
	MatchFuzzy   MatchMethod = "fuzzy"
	MatchSynonym MatchMethod = "synonym"
)

// Category is the bifurcation category used to split ingredients into
// actives/excipients tabs downstream. Empty means unknown.
type Category string

const (
	CategoryActive    Category = "Active"
	CategoryExcipient Category = "Excipient"
)

// BrandedIngredient is a supplier's named, possibly multi-component product.
// INCI holds the normalized component names that together constitute the
// product; a branded ingredient with an empty INCI set can never match.
type BrandedIngredient struct {
	ID               string     `json:"id,omitempty"`
	Name             string     `json:"name"`
	Supplier         string     `json:"supplier,omitempty"`
	Description      string     `json:"description,omitempty"`
	DeclaredCategory Category   `json:"category,omitempty"`
	FunctionalPaths  [][]string `json:"functionalPaths,omitempty"`
	ChemicalPaths    [][]string `json:"chemicalPaths,omitempty"`
	INCI             []string   `json:"inci"`
}

// GenericIngredient is a single canonical INCI entry not tied to any supplier.
type GenericIngredient struct {
	NormalizedName string   `json:"normalizedName"`
	DisplayName    string   `json:"displayName"`
	Category       Category `json:"category,omitempty"`
}

// MatchResult is one matched catalog or generic entity. It is created once by
// the matching engine and never mutated afterwards; the category computer
// returns annotated copies rather than writing through.
type MatchResult struct {
	IngredientName   string      `json:"ingredientName"`
	IngredientID     string      `json:"ingredientId,omitempty"`
	Supplier         string      `json:"supplierName,omitempty"`
	Description      string      `json:"description,omitempty"`
	DeclaredCategory Category    `json:"categoryDecided,omitempty"`
	Category         Category    `json:"category,omitempty"`
	FunctionalPaths  [][]string  `json:"functionalityCategoryTree,omitempty"`
	ChemicalPaths    [][]string  `json:"chemicalClassCategoryTree,omitempty"`
	MatchScore       float64     `json:"matchScore"`
	MatchedINCI      []string    `json:"matchedInci"`
	MatchedCount     int         `json:"matchedCount"`
	TotalINCI        int         `json:"totalInci"`
	Tag              Tag         `json:"tag"`
	MatchMethod      MatchMethod `json:"matchMethod"`
}

// ResolutionOutcome is the full result of one matching invocation. Every input
// name appears either in some match (via its normalized components) or in
// Unresolved, never both and never neither.
type ResolutionOutcome struct {
	Matches      []MatchResult  `json:"matches"`
	GenericNames []string       `json:"genericNames,omitempty"`
	TagMap       map[string]Tag `json:"tagMap"`
	Unresolved   []string       `json:"unresolved"`
}

// IngredientGroup bundles the matches that account for the same set of
// submitted INCI names. INCIList is sorted and acts as the group key.
type IngredientGroup struct {
	INCIList []string      `json:"inciList"`
	Items    []MatchResult `json:"items"`
	Count    int           `json:"count"`
}

// AnalysisResult is the assembled response of one analysis request.
type AnalysisResult struct {
	Detected       []IngredientGroup   `json:"detected"`
	Unresolved     []string            `json:"unableToDecode"`
	Categories     map[string]Category `json:"categories,omitempty"`
	Tags           map[string]Tag      `json:"tags,omitempty"`
	Cautions       map[string][]string `json:"cautions,omitempty"`
	ProcessingTime float64             `json:"processingTime"`
	Source         string              `json:"source,omitempty"` // "Live" or "Cache"
}
