package tokenize

import (
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter separates token strings in delimited output. U+23AE was
// chosen because it almost never appears in natural text.
const DefaultDelimiter = "⎮"

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountChars returns the number of Unicode code points in text.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// Delimit joins token strings with the given delimiter. An empty delimiter
// falls back to DefaultDelimiter.
func Delimit(tokens []string, delimiter string) string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return strings.Join(tokens, delimiter)
}

// Frequencies returns how many times each token string occurs in the result.
func Frequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}
