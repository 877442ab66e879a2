// Package commands implements the CLI commands for tok.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/igoakulov/tokker/internal/application"
	domainErrors "github.com/igoakulov/tokker/internal/domain/errors"
	"github.com/igoakulov/tokker/internal/infrastructure/config"
	"github.com/igoakulov/tokker/internal/presentation/cli/output"
)

// Version information - set at build time via ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GlobalFlags holds the global CLI flags.
type GlobalFlags struct {
	Model   string
	Output  string
	NoColor bool
	Verbose bool
}

// rootSwitches holds the flag-selected root actions.
type rootSwitches struct {
	Models       bool
	ModelDefault string
	History      bool
	HistoryClear bool
}

// AppContext holds the application runtime context.
type AppContext struct {
	Config    *config.Config
	Loader    *config.Loader
	Formatter *output.Formatter
	Flags     *GlobalFlags
	Container *application.Container
}

var (
	globalFlags GlobalFlags
	rootOpts    rootSwitches
	appCtx      *AppContext
	appCtxMu    sync.RWMutex // Protects appCtx for thread-safe access
)

// NewRootCmd creates the root command for the tok CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tok [text]",
		Short: "Tokker - tokenize text with real model vocabularies",
		Long: `Tokker (tok) shows text the way language models see it.

It tokenizes the given text (or stdin) with the selected model and prints
the tokens, their ids, and counts.

Installed providers:
  • OpenAI       tiktoken encodings (cl100k_base, o200k_base, ...)
  • Google       Gemini models via the Vertex AI ComputeTokens API
  • HuggingFace  any hub model id with a fast tokenizer (gpt2, bert-base-uncased, ...)

Examples:
  tok "Hello world"
  echo "Hello world" | tok
  tok "Hello world" --model gpt2 --output count
  tok --models
  tok --model-default o200k_base`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help, version, and completion commands
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			return initializeApp()
		},
		RunE: runRoot,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Model, "model", "m", "", "model to tokenize with (default from config)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "", "output format: json, plain, count, pivot (default from config)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "enable verbose output")

	// Flag-selected root actions
	rootCmd.Flags().BoolVar(&rootOpts.Models, "models", false, "list models grouped by provider")
	rootCmd.Flags().StringVar(&rootOpts.ModelDefault, "model-default", "", "validate a model and save it as the default")
	rootCmd.Flags().BoolVar(&rootOpts.History, "history", false, "show recent tokenization history")
	rootCmd.Flags().BoolVar(&rootOpts.HistoryClear, "history-clear", false, "clear tokenization history")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewReplCmd())
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}

// initializeApp initializes the application context.
func initializeApp() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Resolve the output format early so a bad flag fails before any
	// backend work happens
	formatName := globalFlags.Output
	if formatName == "" {
		formatName = cfg.Defaults.Output
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(!globalFlags.NoColor && output.IsColorSupported()),
		output.WithDelimiter(cfg.Defaults.Delimiter),
	)

	// Initialize the application container with all dependencies
	container, err := application.NewContainer(cfg, globalFlags.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Store app context with mutex protection
	appCtxMu.Lock()
	appCtx = &AppContext{
		Config:    cfg,
		Loader:    container.ConfigLoader(),
		Formatter: formatter,
		Flags:     &globalFlags,
		Container: container,
	}
	appCtxMu.Unlock()

	return nil
}

// loadConfig loads configuration from ~/.tokker/config.yaml, falling back
// to defaults when no file exists yet.
func loadConfig() (*config.Config, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}

	cfg, err := loader.Load("")
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeConfiguration,
			"could not load configuration", err)
	}
	return cfg, nil
}

// runRoot dispatches the flag-selected action, defaulting to tokenization.
func runRoot(cmd *cobra.Command, args []string) error {
	app := GetAppContext()
	if app == nil {
		return fmt.Errorf("application not initialized")
	}
	ctx := cmd.Context()

	switch {
	case rootOpts.Models:
		return runListModels(ctx, app)
	case rootOpts.ModelDefault != "":
		return runSetDefaultModel(ctx, app, rootOpts.ModelDefault)
	case rootOpts.HistoryClear:
		return runClearHistory(ctx, app)
	case rootOpts.History:
		return runShowHistory(ctx, app)
	}

	text, err := readInputText(cmd, args)
	if err != nil {
		return err
	}
	return runTokenize(ctx, app, text)
}

// readInputText takes the positional argument or falls back to stdin.
func readInputText(cmd *cobra.Command, args []string) (string, error) {
	var text string
	if len(args) > 0 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		// echo appends a newline; drop it rather than count it
		text = strings.TrimRight(string(data), "\r\n")
	}

	if strings.TrimSpace(text) == "" {
		return "", domainErrors.NewError(domainErrors.CodeValidation,
			"no text provided", domainErrors.ErrTextRequired)
	}
	return text, nil
}

// runTokenize resolves the model, tokenizes the text, and renders the
// result in the active output format.
func runTokenize(ctx context.Context, app *AppContext, text string) error {
	model := globalFlags.Model
	if model == "" {
		model = app.Config.Defaults.Model
	}

	registry := app.Container.Registry()
	providerName, err := registry.ResolveModel(ctx, model)
	if err != nil {
		return err
	}

	result, err := registry.Tokenize(ctx, model, text)
	if err != nil {
		return err
	}

	app.Container.RecordHistory(ctx, text, model, providerName, result)
	return app.Formatter.RenderTokenization(result, text)
}

// GetAppContext returns the current application context.
// Returns nil if the app hasn't been initialized.
// Thread-safe via mutex protection.
func GetAppContext() *AppContext {
	appCtxMu.RLock()
	defer appCtxMu.RUnlock()
	return appCtx
}

// GetFormatter returns the output formatter.
// Creates a default formatter if app context is not initialized.
// Thread-safe via mutex protection.
func GetFormatter() *output.Formatter {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Formatter
	}
	return output.NewFormatter()
}

// GetContainer returns the application container.
// Returns nil if the app hasn't been initialized.
// Thread-safe via mutex protection.
func GetContainer() *application.Container {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Container
	}
	return nil
}

// Shutdown releases application resources.
func Shutdown() {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()

	if appCtx != nil && appCtx.Container != nil {
		_ = appCtx.Container.Close()
	}
}

// Execute runs the root command with graceful shutdown support.
func Execute() {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Run command in a goroutine
	errChan := make(chan error, 1)
	go func() {
		rootCmd := NewRootCmd()
		errChan <- rootCmd.Execute()
	}()

	// Wait for either command completion or signal
	select {
	case err := <-errChan:
		if err != nil {
			output.PrintErrorLines(os.Stderr, err)
			Shutdown()
			os.Exit(1)
		}
	case sig := <-sigChan:
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, shutting down...\n", sig)
		Shutdown()
		os.Exit(130) // Standard exit code for SIGINT
	}

	Shutdown()
}
