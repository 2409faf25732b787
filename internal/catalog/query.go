package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize lowercases, strips diacritics, and collapses whitespace so that
// "Clair de Lune" and "claïr  de lune" compare equal.
func normalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	prevSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '/':
			if !prevSpace && b.Len() > 0 {
				b.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// buildQueries generates search queries from most to least specific.
// The first hit at or above the confidence floor terminates the fan-out.
// Normalized fallback queries help with noisy entries ("Für Elise  (easy)")
// and are only added when analysis is enabled.
func buildQueries(title, author string, analysis bool) []string {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	var queries []string
	if title != "" && author != "" {
		queries = append(queries, fmt.Sprintf("track:%q artist:%q", title, author))
		queries = append(queries, title+" "+author)
	}
	if title != "" {
		queries = append(queries, fmt.Sprintf("%q", title))
	}
	if author != "" {
		queries = append(queries, fmt.Sprintf("artist:%q", author))
	}

	if analysis {
		normTitle := normalize(title)
		if normTitle != "" && normTitle != strings.ToLower(title) {
			queries = append(queries, strings.TrimSpace(normTitle+" "+normalize(author)))
		}
	}
	return queries
}

// similarity scores the token overlap between two normalized strings on a
// 0.0 to 1.0 scale.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	setB := make(map[string]struct{}, len(tokensB))
	for _, tok := range tokensB {
		setB[tok] = struct{}{}
	}

	shared := 0
	for _, tok := range tokensA {
		if _, ok := setB[tok]; ok {
			shared++
		}
	}

	longest := len(tokensA)
	if len(tokensB) > longest {
		longest = len(tokensB)
	}
	return float64(shared) / float64(longest)
}
