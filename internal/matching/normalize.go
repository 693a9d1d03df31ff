package matching

import (
	"sort"
	"strings"
	"unicode"
)

// nameVariantTokens are honorifics and generational suffixes ignored by the
// normalized pass. Nickname equivalence ("Jeff" vs "Jeffrey") is a separate
// concern and deliberately not handled here.
var nameVariantTokens = map[string]bool{
	"mr":  true,
	"mrs": true,
	"ms":  true,
	"dr":  true,
	"jr":  true,
	"sr":  true,
	"ii":  true,
	"iii": true,
	"iv":  true,
	"jnr": true,
	"snr": true,
}

// normalizeName canonicalizes a display name for comparison: "Last, First"
// is flipped to "First Last", the string is case-folded, punctuation is
// stripped, whitespace is collapsed, and tokens are sorted so word order
// does not affect equality. Returns "" for names that are empty after
// normalization.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)

	// Detect "Last, First" and swap around the first comma
	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		first := strings.TrimSpace(name[idx+1:])
		name = first + " " + last
	}

	tokens := tokenize(name)
	if len(tokens) == 0 {
		return ""
	}

	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// normalizeNameStripped is normalizeName with name-variant tokens removed,
// used by the normalized pass.
func normalizeNameStripped(name string) string {
	normalized := normalizeName(name)
	if normalized == "" {
		return ""
	}

	kept := make([]string, 0, 4)
	for _, token := range strings.Fields(normalized) {
		if nameVariantTokens[token] {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// tokenize lowercases and splits a name, keeping only letters and digits
// within each token.
func tokenize(name string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}
		// Apostrophes, periods, and other punctuation are dropped
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
