package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sugarme/tokenizer"
)

func TestProvider_Name(t *testing.T) {
	p := New()
	if p.Name() != "HuggingFace" {
		t.Errorf("Name() = %q, want HuggingFace", p.Name())
	}
}

func TestModels_Empty(t *testing.T) {
	// Open-vocabulary backend: no static catalogue.
	if models := Models(); len(models) != 0 {
		t.Errorf("Models() = %v, want empty", models)
	}
}

func TestNew_DoesNotLoadTokenizers(t *testing.T) {
	p := New()

	p.mu.RLock()
	loaded := len(p.tokenizers)
	p.mu.RUnlock()

	if loaded != 0 {
		t.Errorf("New() loaded %d tokenizers eagerly, want 0", loaded)
	}
}

func TestProvider_ProbeModel_Accepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/models/gpt2" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := New(WithClient(NewClient(fastConfig(), WithBaseURL(server.URL))))

	accepted, err := p.ProbeModel(context.Background(), "gpt2")
	if err != nil {
		t.Fatalf("ProbeModel() error = %v", err)
	}
	if !accepted {
		t.Error("ProbeModel() = false, want true")
	}
}

func TestProvider_ProbeModel_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := New(WithClient(NewClient(fastConfig(), WithBaseURL(server.URL))))

	accepted, err := p.ProbeModel(context.Background(), "__bogus__")
	if err != nil {
		t.Fatalf("ProbeModel() error = %v", err)
	}
	if accepted {
		t.Error("ProbeModel() = true, want false")
	}
}

func TestProvider_ProbeModel_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := New(WithClient(NewClient(fastConfig(), WithBaseURL(server.URL))))

	if _, err := p.ProbeModel(context.Background(), "any/model"); err == nil {
		t.Error("ProbeModel() expected error when the hub is unreachable")
	}
}

func TestProvider_Tokenize_CancelledContext(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Tokenize(ctx, "gpt2", "text"); err == nil {
		t.Error("Tokenize() expected error for cancelled context")
	}
}

func TestResultFromEncoding(t *testing.T) {
	enc := &tokenizer.Encoding{
		Ids:    []int{15496, 11, 995},
		Tokens: []string{"Hello", ",", "Ġworld"},
	}

	result := resultFromEncoding(enc)

	if result.TokenCount != 3 {
		t.Errorf("TokenCount = %d, want 3", result.TokenCount)
	}
	if len(result.TokenStrings) != 3 || result.TokenStrings[2] != "Ġworld" {
		t.Errorf("TokenStrings = %v, want trailing Ġworld", result.TokenStrings)
	}
	if len(result.TokenIDs) != 3 || result.TokenIDs[0] != 15496 {
		t.Errorf("TokenIDs = %v, want leading 15496", result.TokenIDs)
	}
}

func TestResultFromEncoding_CopiesSlices(t *testing.T) {
	enc := &tokenizer.Encoding{
		Ids:    []int{1},
		Tokens: []string{"a"},
	}

	result := resultFromEncoding(enc)
	enc.Ids[0] = 99
	enc.Tokens[0] = "mutated"

	if result.TokenIDs[0] != 1 {
		t.Error("resultFromEncoding() shares the encoding's id slice")
	}
	if result.TokenStrings[0] != "a" {
		t.Error("resultFromEncoding() shares the encoding's token slice")
	}
}

func TestResultFromEncoding_Empty(t *testing.T) {
	result := resultFromEncoding(&tokenizer.Encoding{})

	if result.TokenCount != 0 {
		t.Errorf("TokenCount = %d, want 0", result.TokenCount)
	}
	if result.TokenStrings == nil || result.TokenIDs == nil {
		t.Error("empty encoding should produce empty, non-nil slices")
	}
}
