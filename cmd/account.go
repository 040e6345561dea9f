package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect target accounts",
	}

	cmd.AddCommand(newAccountShowCmd(app))

	return cmd
}

func newAccountShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-name>",
		Short: "Show one target account by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := app.ingest.AccountDetails(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return fmt.Errorf("account %q not found", args[0])
				}
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "name: %s\n", account.Name)
			_, _ = fmt.Fprintf(out, "account id: %s\n", account.AccountID)
			_, _ = fmt.Fprintf(out, "link: %s\n", account.Link)
			_, _ = fmt.Fprintf(out, "status: %s\n", account.Status)
			_, _ = fmt.Fprintf(out, "category: %s\n", account.Category)
			_, _ = fmt.Fprintf(out, "type: %s\n", account.Type)
			_, _ = fmt.Fprintf(out, "publishing level: %s\n", account.PublishingLevel)
			_, _ = fmt.Fprintf(out, "access level: %s\n", account.AccessLevel)
			_, _ = fmt.Fprintf(out, "used: %t\n", account.Used)
			return nil
		},
	}
}
