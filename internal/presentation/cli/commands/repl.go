package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/igoakulov/tokker/internal/presentation/cli/output"
)

// NewReplCmd creates the repl command for interactive tokenization.
func NewReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive tokenizer REPL",
		Long: `Start an interactive tokenizer session.

Every line you type is tokenized with the current model and rendered in
the current output format. The model and format can be switched without
leaving the session.

Special commands:
  /exit, /quit     - Exit the session
  /help            - Show help message
  /model <name>    - Switch to a different model
  /output <format> - Switch output format (json, plain, count, pivot)

Examples:
  # Start with the configured default model
  tok repl

  # Start with a specific model and format
  tok repl --model gpt2 --output count`,
		Aliases: []string{"interactive"},
		Args:    cobra.NoArgs,
		RunE:    runRepl,
	}

	return cmd
}

// runRepl executes the interactive tokenizer REPL.
func runRepl(cmd *cobra.Command, args []string) error {
	app := GetAppContext()
	if app == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := app.Formatter
	ctx := cmd.Context()

	currentModel := globalFlags.Model
	if currentModel == "" {
		currentModel = app.Config.Defaults.Model
	}

	// Print welcome message
	formatter.Header("Tokenizer REPL")
	formatter.Item("Model", currentModel)
	formatter.Item("Output", string(formatter.Format()))
	formatter.Println("")
	formatter.Info("Type text to tokenize it. Type /help for commands.")
	formatter.Println("")

	// Create readline instance
	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	// REPL loop
	for {
		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle special commands
		if strings.HasPrefix(line, "/") {
			shouldExit, err := handleReplCommand(ctx, app, line, &currentModel)
			if err != nil {
				printInlineError(formatter, err)
				continue
			}
			if shouldExit {
				break
			}
			continue
		}

		// Tokenize the line
		registry := app.Container.Registry()
		providerName, err := registry.ResolveModel(ctx, currentModel)
		if err != nil {
			printInlineError(formatter, err)
			continue
		}

		result, err := registry.Tokenize(ctx, currentModel, line)
		if err != nil {
			printInlineError(formatter, err)
			continue
		}

		app.Container.RecordHistory(ctx, line, currentModel, providerName, result)
		if err := formatter.RenderTokenization(result, line); err != nil {
			printInlineError(formatter, err)
		}
		formatter.Println("")
	}

	formatter.Info("Session ended. Goodbye!")
	return nil
}

// handleReplCommand handles special REPL commands.
// Returns (shouldExit, error).
func handleReplCommand(ctx context.Context, app *AppContext, line string, currentModel *string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	f := app.Formatter
	command := strings.ToLower(parts[0])

	switch command {
	case "/exit", "/quit":
		return true, nil

	case "/help":
		f.Header("REPL Commands")
		f.Item("/exit, /quit", "Exit the session")
		f.Item("/help", "Show this help message")
		f.Item("/model <name>", "Switch to a different model")
		f.Item("/output <format>", "Switch output format (json, plain, count, pivot)")
		f.Println("")
		return false, nil

	case "/model":
		if len(parts) < 2 {
			f.Warning("Usage: /model <model-name>")
			return false, nil
		}
		name := parts[1]

		// Resolution may probe backends over the network, so show
		// progress on stderr while it runs
		spinner := output.NewSpinner(fmt.Sprintf("Checking %s...", name))
		spinner.Start()
		providerName, err := app.Container.Registry().ResolveModel(ctx, name)
		spinner.Stop()
		if err != nil {
			return false, err
		}

		*currentModel = name
		f.Success("Model set to %s (%s)", name, providerName)
		return false, nil

	case "/output":
		if len(parts) < 2 {
			f.Warning("Usage: /output <json|plain|count|pivot>")
			return false, nil
		}
		format, err := output.ParseFormat(parts[1])
		if err != nil {
			return false, err
		}
		f.SetFormat(format)
		f.Success("Output format set to %s", format)
		return false, nil

	default:
		f.Warning("Unknown command: %s (type /help for help)", command)
		return false, nil
	}
}

// printInlineError renders a failure without stopping the loop it serves.
// The first mapped line gets error styling; guidance lines print as-is.
func printInlineError(f *output.Formatter, err error) {
	lines := output.ErrorLines(err)
	if len(lines) == 0 {
		return
	}
	f.Error("%s", lines[0])
	for _, line := range lines[1:] {
		f.Println("%s", line)
	}
}
