package inci

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Submitted INCI lists arrive with every separator imaginable: commas,
// semicolons, pipes, newlines, spaced hyphens, "and", "&". On top of that,
// labels declare multi-component products inline as combinations, e.g.
// "Xylitylglucoside (and) Anhydroxylitol (and) Xylitol". When the input also
// contains list separators, those combination spans must survive splitting as
// single items so containment matching can see all their components together.

var (
	listSeparatorRegex = regexp.MustCompile(`(?:,\s+|,\s*$|[;\n|]+|\s+-\s+)`)
	otherSepRegex      = regexp.MustCompile(`[,;\n|]`)

	// Combination spans between list separators, most specific first.
	comboParenRegex = regexp.MustCompile(`(?i)[^,;\n|]+(?:\s*\(and\)\s*[^,;\n|]+)+`)
	comboAmpRegex   = regexp.MustCompile(`[^,;\n|]+(?:\s+&\s+[^,;\n|]+)+`)
	comboWordRegex  = regexp.MustCompile(`(?i)[^,;\n|]+(?:\s+and\s+[^,;\n|]+)+`)

	// Splitters used inside a single combination span.
	splitParenRegex = regexp.MustCompile(`(?i)\s*\(and\)\s*`)
	splitAmpRegex   = regexp.MustCompile(`\s+&\s+`)
	splitWordRegex  = regexp.MustCompile(`(?i)\s+and\s+`)

	// Tight "&" between words ("A&B") with no surrounding spaces.
	tightAmpRegex = regexp.MustCompile(`(\w)\s*&\s*(\w)`)

	placeholderRegex = regexp.MustCompile(`^__COMBO_(\d+)__$`)
)

// ParseList splits a raw ingredient string into individual items. Commas are
// only treated as separators when followed by whitespace (or at end of input)
// so names like "1,2-Hexanediol" stay intact. Combination declarations are
// kept together as single items when other separators are present; otherwise
// "and"/"&" act as plain separators.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if otherSepRegex.MatchString(raw) {
		return parseWithCombinations(raw)
	}

	// No list separators: "and" and "&" are just separators here.
	s := splitWordRegex.ReplaceAllString(raw, ", ")
	s = splitAmpRegex.ReplaceAllString(s, ", ")
	s = tightAmpRegex.ReplaceAllString(s, "$1, $2")

	parts := listSeparatorRegex.Split(s, -1)
	items := cleanParts(parts)
	if len(items) == 0 {
		return []string{raw}
	}
	return items
}

// ParseItems applies ParseList to each element of an already-split submission.
// Callers may hand us one ingredient per element or a handful of half-split
// fragments; both come out as one flat list.
func ParseItems(items []string) []string {
	var out []string
	for _, item := range items {
		out = append(out, ParseList(item)...)
	}
	return out
}

// SplitCombination splits a declared combination name into its component INCI
// names. Returns nil when the name is not a combination (fewer than two
// components). Only "(and)" and spaced "&" mark combinations here; a bare
// "and" is too ambiguous outside list context.
func SplitCombination(name string) []string {
	var parts []string
	switch {
	case splitParenRegex.MatchString(name):
		parts = splitParenRegex.Split(name, -1)
	case splitAmpRegex.MatchString(name):
		parts = splitAmpRegex.Split(name, -1)
	default:
		return nil
	}

	var components []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > 2 {
			components = append(components, p)
		}
	}
	if len(components) < 2 {
		return nil
	}
	return components
}

// parseWithCombinations protects combination spans behind placeholders, splits
// on the remaining separators, then restores the spans verbatim.
func parseWithCombinations(raw string) []string {
	var protected []string
	protect := func(match string) string {
		protected = append(protected, strings.TrimSpace(match))
		// Spans start right after a separator, so the match swallows the
		// separator's trailing whitespace; keep it so splitting still works.
		lead := match[:len(match)-len(strings.TrimLeft(match, " \t"))]
		return lead + fmt.Sprintf("__COMBO_%d__", len(protected)-1)
	}

	s := comboParenRegex.ReplaceAllStringFunc(raw, protect)
	s = comboAmpRegex.ReplaceAllStringFunc(s, protect)
	s = comboWordRegex.ReplaceAllStringFunc(s, protect)

	parts := listSeparatorRegex.Split(s, -1)

	var items []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if m := placeholderRegex.FindStringSubmatch(p); m != nil {
			idx, err := strconv.Atoi(m[1])
			if err == nil && idx < len(protected) {
				items = append(items, protected[idx])
			}
			continue
		}
		items = append(items, p)
	}

	if len(items) == 0 {
		return []string{strings.TrimSpace(raw)}
	}
	return items
}

func cleanParts(parts []string) []string {
	var items []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
