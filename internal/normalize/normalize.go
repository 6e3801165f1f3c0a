// Package normalize folds text into a comparable form for keyword matching.
//
// Folding decomposes (NFKD), drops combining marks (Latin accents and Arabic
// harakat alike), recomposes, case-folds, unifies apostrophes and collapses
// whitespace. It is applied identically to catalog terms and to scanned text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// apostrophes maps typographic quote variants to ASCII.
var apostrophes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"ʼ", "'",
	"ʻ", "'",
	"`", "'",
	"´", "'",
)

// Fold returns the comparable form of s. Safe for concurrent use: the
// x/text transformers are stateful, so each call builds its own chain.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(stripped)
	folded = apostrophes.Replace(folded)

	return strings.Join(strings.Fields(folded), " ")
}

// FoldAll folds every entry, keeping order.
func FoldAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = Fold(t)
	}
	return out
}

// ContainsAny reports whether folded text contains any folded term.
func ContainsAny(folded string, foldedTerms []string) bool {
	for _, t := range foldedTerms {
		if t != "" && strings.Contains(folded, t) {
			return true
		}
	}
	return false
}
