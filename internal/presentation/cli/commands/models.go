package commands

import (
	"context"
	"fmt"

	"github.com/igoakulov/tokker/internal/presentation/cli/output"
)

// Provider display names as the backends register them. Presentation keys
// on the name rather than importing the backend packages.
const (
	googleProviderName      = "Google"
	huggingFaceProviderName = "HuggingFace"
)

// runListModels prints the static model catalogue grouped by installed
// provider, in discovery order.
func runListModels(ctx context.Context, app *AppContext) error {
	registry := app.Container.Registry()

	providers, err := registry.Providers(ctx)
	if err != nil {
		return err
	}
	groups, err := registry.ModelsByProvider(ctx)
	if err != nil {
		return err
	}

	f := app.Formatter
	for i, name := range providers {
		if i > 0 {
			f.Println("")
		}
		f.Println("%s", f.Bold(name+":"))
		for _, model := range groups[name] {
			f.Println("  %s", model)
		}

		switch name {
		case googleProviderName:
			f.Println("%s", f.Dim("  Needs Google Cloud authentication. "+output.GoogleAuthGuide))
		case huggingFaceProviderName:
			if len(groups[name]) == 0 {
				f.Println("%s", f.Dim("  Any hub model id with a fast tokenizer, for example gpt2 or bert-base-uncased."))
			}
		}
	}
	return nil
}

// runSetDefaultModel validates the model against the installed providers and
// persists it as the configured default.
func runSetDefaultModel(ctx context.Context, app *AppContext, model string) error {
	providerName, err := app.Container.Registry().ResolveModel(ctx, model)
	if err != nil {
		return err
	}

	cfg := app.Config
	cfg.Defaults.Model = model
	if err := app.Loader.Save(cfg, ""); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	f := app.Formatter
	f.Success("Default model set to: %s (%s)", model, providerName)
	f.Println("%s", f.Dim("Configuration saved to: "+app.Loader.DefaultConfigPath()))
	return nil
}
