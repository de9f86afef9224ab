package usecase

import (
	"strings"
	"unicode"
)

// Score computes the keyword relevance of text for query. The base score is
// the average normalized term frequency of the unique query words, boosted
// by +1.0 when the whole query appears verbatim in the text and by +0.5 when
// the text carries the substring "title" together with at least one query
// word. Pure and total: any degenerate input yields 0.
func Score(query, text string) float64 {
	if query == "" || text == "" {
		return 0.0
	}

	queryLower := strings.ToLower(query)
	textLower := strings.ToLower(text)

	queryWords := toWordSet(queryLower)
	textWords := splitWords(textLower)
	if len(queryWords) == 0 || len(textWords) == 0 {
		return 0.0
	}

	freq := make(map[string]int, len(textWords))
	for _, w := range textWords {
		freq[w]++
	}
	total := float64(len(textWords))

	var base float64
	for w := range queryWords {
		if n, ok := freq[w]; ok {
			base += float64(n) / total
		}
	}
	base /= float64(len(queryWords))

	var exactBonus float64
	if strings.Contains(textLower, queryLower) {
		exactBonus = 1.0
	}

	var titleBonus float64
	if strings.Contains(textLower, "title") && anyWordIn(queryWords, textLower) {
		titleBonus = 0.5
	}

	return base + exactBonus + titleBonus
}

func anyWordIn(words map[string]struct{}, text string) bool {
	for w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func toWordSet(s string) map[string]struct{} {
	words := splitWords(s)
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// splitWords extracts maximal word-character runs (letters, digits,
// underscore). Input is expected to be lower-cased already.
func splitWords(s string) []string {
	if s == "" {
		return nil
	}

	words := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		words = append(words, b.String())
	}
	return words
}
