package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

func newAgentCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent API keys",
	}

	cmd.AddCommand(newAgentKeyCmd(app))

	return cmd
}

func newAgentKeyCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "key <agent-id>",
		Short: "Mint and store a fresh API key for an agent",
		Long:  "Mints a random API key, stores it in the agent registry under the given id (replacing any previous key), and prints it once. Use the id \"admin\" to rotate the admin key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := mintAPIKey()
			if err != nil {
				return fmt.Errorf("mint api key: %w", err)
			}

			if err := app.registry.Put(cmd.Context(), args[0], key); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", key)
			return nil
		},
	}
}

func mintAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
