// Package tokenizer provides text tokenisation for the search engine.
// It lower-cases input and splits it into maximal runs of word characters
// (letters, digits, underscore); everything else is a separator.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize breaks text into a slice of lowercased word tokens. Punctuation,
// whitespace, apostrophes, and hyphens all act as separators, so
// "How's it going?" yields ["how", "s", "it", "going"]. Empty input yields
// an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
}

// CountWords tokenizes text and returns per-word occurrence counts along
// with the total token count.
func CountWords(text string) (counts map[string]int, total int) {
	tokens := Tokenize(text)
	counts = make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts, len(tokens)
}

// Unique returns the distinct tokens of text in first-seen order.
func Unique(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		unique = append(unique, tok)
	}
	return unique
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
