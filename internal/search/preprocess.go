package search

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes s for comparison: NFKC, Unicode case folding and collapsed
// whitespace. "  STEEL  Pipes " and "steel pipes" fold to the same value.
func Fold(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s) // a Caser is not safe for concurrent use
	return strings.Join(strings.Fields(s), " ")
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

// DefaultStopwords are dropped from category and free-text tokens: they
// carry no meaning for matching ("machinery and parts" vs "parts").
var DefaultStopwords = []string{
	"a", "an", "and", "as", "at", "by", "for", "from", "in", "of", "on", "or", "the", "to", "with",
	"other", "others", "misc", "general", "products", "product", "items", "item",
}

// Tokenize folds s and returns its set of significant tokens. Tokens shorter
// than minRunes or present in stop are skipped.
func Tokenize(s string, stop map[string]struct{}, minRunes int) map[string]struct{} {
	words := wordRE.FindAllString(Fold(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) < minRunes {
			continue
		}
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

// StopSet builds a lookup set from words, folding each entry.
func StopSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = Fold(w)
		if w != "" {
			m[w] = struct{}{}
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Overlap returns |a ∩ b|.
func Overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
