// Package provider assembles the tokenizer backends built into the binary
// and runs guarded discovery over them.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/igoakulov/tokker/internal/adapters/provider/google"
	"github.com/igoakulov/tokker/internal/adapters/provider/huggingface"
	"github.com/igoakulov/tokker/internal/adapters/provider/openai"
	"github.com/igoakulov/tokker/internal/application/ports"
	domainErrors "github.com/igoakulov/tokker/internal/domain/errors"
)

// Registration describes one backend known at build time.
type Registration struct {
	// Name is the backend's display name, unique across the table.
	Name string

	// Check reports whether the backend can run in this process. A nil
	// Check means always runnable. An error wrapping
	// ErrProviderUnavailable marks the backend as not installed; any
	// other error aborts discovery as a defect in the backend.
	Check func() error

	// Models returns the backend's statically catalogued model names.
	Models func() []string

	// New constructs the backend. Construction must be cheap; heavy
	// state loads lazily inside the instance.
	New func(ctx context.Context) (ports.TokenizerProvider, error)
}

// Builtins returns the registration table in discovery order.
func Builtins() []Registration {
	return []Registration{
		{
			Name:   openai.ProviderName,
			Models: openai.Models,
			New: func(ctx context.Context) (ports.TokenizerProvider, error) {
				return openai.New(), nil
			},
		},
		{
			Name:   google.ProviderName,
			Models: google.Models,
			New: func(ctx context.Context) (ports.TokenizerProvider, error) {
				return google.New(), nil
			},
		},
		{
			Name:   huggingface.ProviderName,
			Models: huggingface.Models,
			New: func(ctx context.Context) (ports.TokenizerProvider, error) {
				return huggingface.New(), nil
			},
		},
	}
}

// Identifiers returns the names of all registered backends, installed or
// not. The discovery cache fingerprint derives from this set.
func Identifiers(regs []Registration) []string {
	ids := make([]string, len(regs))
	for i, reg := range regs {
		ids[i] = reg.Name
	}
	return ids
}

// Find returns the registration with the given name.
func Find(regs []Registration, name string) (Registration, bool) {
	for _, reg := range regs {
		if reg.Name == name {
			return reg, true
		}
	}
	return Registration{}, false
}

// Discover walks the registration table and assembles the installed
// snapshot: provider names in table order plus the static model index.
// Backends whose Check fails with ErrProviderUnavailable are skipped.
// Any other Check failure aborts discovery: a registered backend that
// cannot even report availability is a defect, not a missing install.
func Discover(regs []Registration) (*ports.DiscoveryRecord, int, error) {
	record := &ports.DiscoveryRecord{
		Providers:  make([]string, 0, len(regs)),
		ModelIndex: make(map[string]string),
	}

	skipped := 0
	for _, reg := range regs {
		if reg.Check != nil {
			if err := reg.Check(); err != nil {
				if errors.Is(err, domainErrors.ErrProviderUnavailable) {
					skipped++
					continue
				}
				return nil, skipped, domainErrors.NewError(domainErrors.CodeProvider,
					fmt.Sprintf("discovery failed for provider %s", reg.Name), err)
			}
		}

		record.Providers = append(record.Providers, reg.Name)
		for _, model := range reg.Models() {
			// First registration wins on conflicting model names.
			if _, exists := record.ModelIndex[model]; !exists {
				record.ModelIndex[model] = reg.Name
			}
		}
	}

	return record, skipped, nil
}
