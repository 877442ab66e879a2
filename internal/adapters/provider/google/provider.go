// Package google provides the Google tokenizer backend for Gemini models,
// served by the Vertex AI ComputeTokens API.
package google

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"

	"github.com/igoakulov/tokker/internal/application/ports"
	"github.com/igoakulov/tokker/internal/domain/tokenize"
)

// ProviderName is the display name of the Google backend.
const ProviderName = "Google"

// defaultLocation is used when no Vertex AI location is configured.
const defaultLocation = "us-central1"

// catalogue lists the Gemini models this backend serves.
var catalogue = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

// Models returns the statically catalogued model names.
func Models() []string {
	models := make([]string, len(catalogue))
	copy(models, catalogue)
	return models
}

// Provider implements the TokenizerProvider port against the Vertex AI
// ComputeTokens endpoint. The API client is created lazily; construction
// must not require credentials.
type Provider struct {
	mu     sync.Mutex
	client *genai.Client
}

// New creates a new Google provider. No client is built and no
// credentials are read until the first Tokenize call.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider's display name.
func (p *Provider) Name() string {
	return ProviderName
}

// Tokenize sends text to the ComputeTokens endpoint for the named model
// and returns the parallel token strings and ids.
func (p *Provider) Tokenize(ctx context.Context, model, text string) (*tokenize.Result, error) {
	client, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Models.ComputeTokens(ctx, model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("compute tokens for %q: %w", model, err)
	}

	var tokens []string
	var ids []int
	for _, info := range resp.TokensInfo {
		for _, id := range info.TokenIDs {
			ids = append(ids, int(id))
		}
		for _, raw := range info.Tokens {
			tokens = append(tokens, string(raw))
		}
	}

	return tokenize.NewResult(tokens, ids), nil
}

// ensureClient creates the Vertex AI client on first use.
func (p *Provider) ensureClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	// The SDK resolves project and location from the environment; default
	// the location so only the project and credentials remain required.
	if os.Getenv("GOOGLE_CLOUD_LOCATION") == "" && os.Getenv("GOOGLE_CLOUD_REGION") == "" {
		os.Setenv("GOOGLE_CLOUD_LOCATION", defaultLocation)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	p.client = client
	return client, nil
}

// Ensure Provider implements TokenizerProvider
var _ ports.TokenizerProvider = (*Provider)(nil)
