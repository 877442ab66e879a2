// Package huggingface provides the HuggingFace tokenizer backend: an
// open-vocabulary provider that serves any Hub model publishing a
// tokenizer.json.
package huggingface

import (
	"context"
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/igoakulov/tokker/internal/application/ports"
	"github.com/igoakulov/tokker/internal/domain/tokenize"
)

// ProviderName is the display name of the HuggingFace backend.
const ProviderName = "HuggingFace"

// Models returns the statically catalogued model names. This backend is
// open-vocabulary, so nothing is catalogued up front; models are claimed
// through probing instead.
func Models() []string {
	return []string{}
}

// Provider implements the TokenizerProvider and ModelProber ports.
// Probes go to the Hub API; tokenizer files are downloaded and loaded
// lazily, then cached per model for the lifetime of the process.
type Provider struct {
	hub *Client

	mu         sync.RWMutex
	tokenizers map[string]*tokenizer.Tokenizer
}

// ProviderOption is a functional option for configuring the Provider.
type ProviderOption func(*Provider)

// WithClient sets a custom Hub client for the provider.
func WithClient(client *Client) ProviderOption {
	return func(p *Provider) {
		p.hub = client
	}
}

// New creates a new HuggingFace provider. No tokenizer is downloaded or
// loaded until the first Tokenize call.
func New(opts ...ProviderOption) *Provider {
	p := &Provider{
		hub:        NewClient(DefaultConfig()),
		tokenizers: make(map[string]*tokenizer.Tokenizer),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the provider's display name.
func (p *Provider) Name() string {
	return ProviderName
}

// ProbeModel asks the Hub whether the named model exists. A transport
// failure returns the error; callers treat it as non-acceptance.
func (p *Provider) ProbeModel(ctx context.Context, name string) (bool, error) {
	return p.hub.ModelExists(ctx, name)
}

// Tokenize encodes text with the named Hub model's tokenizer.
func (p *Provider) Tokenize(ctx context.Context, model, text string) (*tokenize.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tk, err := p.tokenizer(model)
	if err != nil {
		return nil, err
	}

	enc, err := tk.EncodeSingle(text)
	if err != nil {
		return nil, fmt.Errorf("encode with %q: %w", model, err)
	}

	return resultFromEncoding(enc), nil
}

// tokenizer returns the cached tokenizer for the model, fetching and
// loading it on first use.
func (p *Provider) tokenizer(model string) (*tokenizer.Tokenizer, error) {
	p.mu.RLock()
	tk, ok := p.tokenizers[model]
	p.mu.RUnlock()
	if ok {
		return tk, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock
	if tk, ok := p.tokenizers[model]; ok {
		return tk, nil
	}

	path, err := tokenizer.CachedPath(model, "tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tokenizer for %q: %w", model, err)
	}

	tk, err = pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer for %q: %w", model, err)
	}

	p.tokenizers[model] = tk
	return tk, nil
}

// resultFromEncoding converts a tokenizer encoding into a domain result.
func resultFromEncoding(enc *tokenizer.Encoding) *tokenize.Result {
	tokens := make([]string, len(enc.Tokens))
	copy(tokens, enc.Tokens)

	ids := make([]int, len(enc.Ids))
	copy(ids, enc.Ids)

	return tokenize.NewResult(tokens, ids)
}

// Ensure Provider implements both tokenizer ports
var (
	_ ports.TokenizerProvider = (*Provider)(nil)
	_ ports.ModelProber       = (*Provider)(nil)
)
