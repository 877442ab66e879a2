package ports

import (
	"context"

	"github.com/igoakulov/tokker/internal/domain/tokenize"
)

// TokenizerProvider is the capability every tokenizer backend exposes.
// Implementations own their heavy state (loaded vocabularies, network
// clients) and initialize it lazily; construction must stay cheap.
type TokenizerProvider interface {
	// Name returns the provider's display name, unique across the
	// installed set.
	Name() string

	// Tokenize encodes text with the vocabulary of the named model and
	// returns parallel token strings and ids. Implementations return an
	// error on internal failure rather than a sentinel result.
	Tokenize(ctx context.Context, model, text string) (*tokenize.Result, error)
}

// ModelProber is the optional capability of open-vocabulary backends that
// can answer whether an arbitrary model name is recognized. Detected by
// interface assertion on a TokenizerProvider.
type ModelProber interface {
	// ProbeModel reports whether the backend recognizes the model name.
	// A transport failure returns (false, err); callers treat it as
	// non-acceptance.
	ProbeModel(ctx context.Context, name string) (bool, error)
}
