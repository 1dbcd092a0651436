package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"timesheet/jira"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the Jira server.",
	Long: `Load the configuration, authenticate with JIRA_API_TOKEN and request the
current user from the server.`,
	Example: `
  # Verify credentials of the active config
  timesheet test
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newJiraClient(cfg)
		if err != nil {
			return err
		}
		return runConnectionTest(cmd.Context(), cmd.OutOrStdout(), client)
	},
}

func runConnectionTest(ctx context.Context, out io.Writer, client jira.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info().Msg("testing connection")
	user, err := client.Myself(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	printConnected(out, user)
	return nil
}

func init() {
	rootCmd.AddCommand(testCmd)
}
