package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "isnad",
		Short:         "Isnad task allocation: distribute tasks and target accounts to field agents",
		Long:          "isnad runs the allocation engine behind the Isnad campaign: it serves the HTTP upload API and the Telegram bot, imports task and target-account spreadsheets, and reports pool status from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newImportCmd(app),
		newStatusCmd(app),
		newAccountCmd(app),
		newAgentCmd(app),
	)

	return rootCmd
}
