package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the timesheet configuration file.",
	Long: `Create, inspect or edit the jira-cli compatible configuration file.

The configuration stores:
- server, login, installation (cloud|local), auth_type, insecure
- project.key / project.board_id / project.board_name (or a plain "project: KEY")
- timesheet.timezone / timesheet.default_format

The API token is never stored; export JIRA_API_TOKEN instead.`,
	Example: `
  # Create an example config at ~/.config/.jira/.config.yml
  timesheet config create

  # Show active config and source file
  timesheet config show

  # Open the active config in $VISUAL or $EDITOR
  timesheet config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
