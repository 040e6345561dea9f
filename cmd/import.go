package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isnadmansour/IsnadTasks/internal/adapters/ingest/xlsx"
	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

func newImportCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load spreadsheets into the pools",
	}

	cmd.AddCommand(
		newImportTasksCmd(app),
		newImportAccountsCmd(app),
	)

	return cmd
}

func newImportTasksCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks <file.xlsx>",
		Short: "Replace the task pool with a fresh batch from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open tasks file: %w", err)
			}
			defer file.Close()

			rows, err := xlsx.ParseTasks(file)
			if err != nil {
				return fmt.Errorf("parse tasks file: %w", err)
			}

			var batch domain.BatchID
			var count int
			err = runImportSpinner(cmd.Context(), cmd.OutOrStdout(), "Importing tasks...", func(ctx context.Context) error {
				var replaceErr error
				batch, count, replaceErr = app.ingest.ReplaceTaskBatch(ctx, rows)
				return replaceErr
			})
			if err != nil {
				return err
			}

			app.logger.Info("task batch replaced", "source", args[0], "batch", string(batch), "rows", count)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks into batch %s\n", count, batch)
			return nil
		},
	}
}

func newImportAccountsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <file.xlsx>",
		Short: "Merge target accounts from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open accounts file: %w", err)
			}
			defer file.Close()

			rows, err := xlsx.ParseAccounts(file)
			if err != nil {
				return fmt.Errorf("parse accounts file: %w", err)
			}

			var count int
			err = runImportSpinner(cmd.Context(), cmd.OutOrStdout(), "Importing target accounts...", func(ctx context.Context) error {
				var upsertErr error
				count, upsertErr = app.ingest.UpsertTargetAccounts(ctx, rows)
				return upsertErr
			})
			if err != nil {
				return err
			}

			app.logger.Info("target accounts merged", "source", args[0], "rows", count)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d target accounts\n", count)
			return nil
		},
	}
}
