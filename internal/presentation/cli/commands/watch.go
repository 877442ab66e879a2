package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/igoakulov/tokker/internal/domain/tokenize"
	"github.com/igoakulov/tokker/internal/infrastructure/watch"
)

// watchFlags holds the flags for the watch command.
type watchFlags struct {
	DebounceMS int
}

var watchOpts watchFlags

// NewWatchCmd creates the watch command for live token counting.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Watch a file and report token counts on change",
		Long: `Tokenize a file whenever it changes on disk.

The file is tokenized once at startup and again after every write, with
one summary line per run. Useful while editing a prompt to keep its
token count in view.

Examples:
  # Watch a prompt file with the default model
  tok watch prompt.txt

  # Watch with a specific model and a longer settle window
  tok watch prompt.txt --model o200k_base --debounce 500`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().IntVar(&watchOpts.DebounceMS, "debounce", 300, "settle window in milliseconds before re-tokenizing")

	return cmd
}

// runWatch executes the watch loop until interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
	app := GetAppContext()
	if app == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := app.Formatter
	path := args[0]

	model := globalFlags.Model
	if model == "" {
		model = app.Config.Defaults.Model
	}

	// Stop cleanly on Ctrl-C
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchCfg := watch.DefaultConfig()
	if watchOpts.DebounceMS > 0 {
		watchCfg.DebounceDuration = time.Duration(watchOpts.DebounceMS) * time.Millisecond
	}

	watcher, err := watch.NewWatcher(watchCfg)
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Watch(ctx, path); err != nil {
		return err
	}

	formatter.Info("Watching %s with model %s. Press Ctrl-C to stop.", path, model)

	// Count the current content before the first change arrives
	if err := tokenizeFile(ctx, app, model, path); err != nil {
		printInlineError(formatter, err)
	}

	for {
		select {
		case <-ctx.Done():
			formatter.Println("")
			formatter.Info("Stopped watching %s", path)
			return nil
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if event.Type == watch.EventRemove {
				formatter.Warning("%s was removed", event.Path)
				continue
			}
			if err := tokenizeFile(ctx, app, model, path); err != nil {
				printInlineError(formatter, err)
			}
		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			formatter.Warning("Watch error: %v", err)
		}
	}
}

// tokenizeFile reads the file and prints a one-line count summary. Watch
// runs stay out of the usage history.
func tokenizeFile(ctx context.Context, app *AppContext, model, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(data)

	result, err := app.Container.Registry().Tokenize(ctx, model, text)
	if err != nil {
		return err
	}

	f := app.Formatter
	f.Println("%s  %s  %d tokens  %d words  %d chars",
		f.Dim(time.Now().Format("15:04:05")), model,
		result.TokenCount, tokenize.CountWords(text), tokenize.CountChars(text))
	return nil
}
