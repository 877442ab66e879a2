package history

import (
	"strings"
	"testing"
)

func TestNewEntry(t *testing.T) {
	e := NewEntry("Hello world", "cl100k_base", "OpenAI", 2, 2, 11)

	if e.ID == "" {
		t.Error("ID should be generated")
	}
	if e.Text != "Hello world" {
		t.Errorf("Text = %q, want %q", e.Text, "Hello world")
	}
	if e.Model != "cl100k_base" || e.Provider != "OpenAI" {
		t.Errorf("Model/Provider = %q/%q", e.Model, e.Provider)
	}
	if e.TokenCount != 2 || e.WordCount != 2 || e.CharCount != 11 {
		t.Errorf("counts = %d/%d/%d, want 2/2/11", e.TokenCount, e.WordCount, e.CharCount)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestNewEntry_UniqueIDs(t *testing.T) {
	a := NewEntry("a", "m", "p", 1, 1, 1)
	b := NewEntry("b", "m", "p", 1, 1, 1)
	if a.ID == b.ID {
		t.Errorf("entries share ID %q", a.ID)
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text unchanged", "Hello world", "Hello world"},
		{"newlines collapsed", "line one\nline two", "line one line two"},
		{"whitespace collapsed", "a   b\t\tc", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.text); got != tt.want {
				t.Errorf("Snippet(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSnippet_Truncates(t *testing.T) {
	long := strings.Repeat("x", SnippetLength*2)
	got := Snippet(long)

	if len([]rune(got)) != SnippetLength {
		t.Errorf("snippet length = %d runes, want %d", len([]rune(got)), SnippetLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("snippet %q should end with ellipsis", got)
	}
}

func TestSnippet_MultibyteBoundary(t *testing.T) {
	long := strings.Repeat("界", SnippetLength+10)
	got := Snippet(long)

	if len([]rune(got)) != SnippetLength {
		t.Errorf("snippet length = %d runes, want %d", len([]rune(got)), SnippetLength)
	}
}
