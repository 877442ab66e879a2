package commands

import (
	"context"
	"strconv"

	domainErrors "github.com/igoakulov/tokker/internal/domain/errors"
	"github.com/igoakulov/tokker/internal/presentation/cli/output"
)

// runShowHistory prints the most recent tokenization runs, newest first.
func runShowHistory(ctx context.Context, app *AppContext) error {
	repo := app.Container.History()
	if repo == nil {
		return domainErrors.NewError(domainErrors.CodeConfiguration,
			"history recording is disabled", domainErrors.ErrHistoryDisabled)
	}

	entries, err := repo.Recent(ctx, 0)
	if err != nil {
		return err
	}

	f := app.Formatter
	if len(entries) == 0 {
		f.Println("Your history is empty")
		return nil
	}

	f.Header("History")
	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "WHEN", Width: 16, Align: output.AlignLeft},
			{Header: "MODEL", Width: 16, Align: output.AlignLeft},
			{Header: "PROVIDER", Width: 11, Align: output.AlignLeft},
			{Header: "TOKENS", Width: 6, Align: output.AlignRight},
			{Header: "TEXT", Width: 40, Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(entries)),
	}
	for _, entry := range entries {
		tableData.Rows = append(tableData.Rows, []string{
			entry.CreatedAt.Local().Format("2006-01-02 15:04"),
			entry.Model,
			entry.Provider,
			strconv.Itoa(entry.TokenCount),
			entry.Text,
		})
	}
	return f.Table(tableData)
}

// runClearHistory deletes all recorded runs.
func runClearHistory(ctx context.Context, app *AppContext) error {
	repo := app.Container.History()
	if repo == nil {
		return domainErrors.NewError(domainErrors.CodeConfiguration,
			"history recording is disabled", domainErrors.ErrHistoryDisabled)
	}

	deleted, err := repo.Clear(ctx)
	if err != nil {
		return err
	}

	f := app.Formatter
	if deleted == 0 {
		f.Println("History is already empty.")
		return nil
	}
	f.Success("Cleared %d history entries", deleted)
	return nil
}
