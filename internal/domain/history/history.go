// Package history defines domain models for tokenization usage history.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SnippetLength caps how much of the original text an entry retains.
const SnippetLength = 80

// Entry records one tokenization run for the usage history.
type Entry struct {
	ID         string    // Unique entry identifier
	Text       string    // Snippet of the tokenized text
	Model      string    // Model name used
	Provider   string    // Provider that served the model
	TokenCount int       // Tokens produced
	WordCount  int       // Whitespace-separated words in the input
	CharCount  int       // Unicode code points in the input
	CreatedAt  time.Time // When the run happened
}

// NewEntry builds a history entry for a completed tokenization, truncating
// the text to SnippetLength runes.
func NewEntry(text, model, provider string, tokenCount, wordCount, charCount int) *Entry {
	return &Entry{
		ID:         uuid.NewString(),
		Text:       Snippet(text),
		Model:      model,
		Provider:   provider,
		TokenCount: tokenCount,
		WordCount:  wordCount,
		CharCount:  charCount,
		CreatedAt:  time.Now().UTC(),
	}
}

// Snippet truncates text to SnippetLength runes, collapsing newlines so an
// entry renders on one line.
func Snippet(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= SnippetLength {
		return flat
	}
	return string(runes[:SnippetLength-3]) + "..."
}
