package textnorm

import (
	"strings"
	"unicode"
)

// Token is a lowercase word with the byte offsets of its original occurrence.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into lowercase word tokens while preserving the byte
// offsets of each token in the original text. Any run of non-letter,
// non-digit characters acts as a separator. Empty or whitespace-only input
// yields an empty slice.
func Tokenize(text string) []Token {
	var tokens []Token
	start := -1

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{
				Text:  strings.ToLower(text[start:i]),
				Start: start,
				End:   i,
			})
			start = -1
		}
	}

	if start >= 0 {
		tokens = append(tokens, Token{
			Text:  strings.ToLower(text[start:]),
			Start: start,
			End:   len(text),
		})
	}

	return tokens
}

// Words returns the lowercase word tokens of text without position tracking.
func Words(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// UniqueWords counts distinct words in a token list.
func UniqueWords(words []string) int {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return len(seen)
}
