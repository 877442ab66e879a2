// Package openai provides the OpenAI tokenizer backend built on tiktoken
// encodings.
package openai

import (
	"context"
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/igoakulov/tokker/internal/application/ports"
	"github.com/igoakulov/tokker/internal/domain/tokenize"
)

// ProviderName is the display name of the OpenAI backend.
const ProviderName = "OpenAI"

// catalogue lists the tiktoken encodings this backend serves. Each is a
// BPE vocabulary shipped with the library, so the set is closed and known
// at build time.
var catalogue = []string{
	"cl100k_base",
	"o200k_base",
	"p50k_base",
	"p50k_edit",
	"r50k_base",
}

// Models returns the statically catalogued encoding names.
func Models() []string {
	models := make([]string, len(catalogue))
	copy(models, catalogue)
	return models
}

// Provider implements the TokenizerProvider port using tiktoken encodings.
// Encodings are loaded lazily and cached per name.
type Provider struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

// New creates a new OpenAI provider. No vocabulary is loaded until the
// first Tokenize call.
func New() *Provider {
	return &Provider{
		encodings: make(map[string]*tiktoken.Tiktoken),
	}
}

// Name returns the provider's display name.
func (p *Provider) Name() string {
	return ProviderName
}

// Tokenize encodes text with the named tiktoken encoding and returns the
// parallel token strings and ids.
func (p *Provider) Tokenize(ctx context.Context, model, text string) (*tokenize.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc, err := p.encoding(model)
	if err != nil {
		return nil, err
	}

	ids := enc.Encode(text, nil, nil)

	// Decode each id on its own to recover the per-token strings.
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = enc.Decode([]int{id})
	}

	return tokenize.NewResult(tokens, ids), nil
}

// encoding returns the cached encoding for name, loading it on first use.
func (p *Provider) encoding(name string) (*tiktoken.Tiktoken, error) {
	p.mu.RLock()
	enc, ok := p.encodings[name]
	p.mu.RUnlock()
	if ok {
		return enc, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock
	if enc, ok := p.encodings[name]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", name, err)
	}

	p.encodings[name] = enc
	return enc, nil
}

// Ensure Provider implements TokenizerProvider
var _ ports.TokenizerProvider = (*Provider)(nil)
