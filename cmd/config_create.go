package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"timesheet/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the example template.

If the configuration file already exists, it is left untouched.`,
	Example: `
  # Create default config at ~/.config/.jira/.config.yml
  timesheet config create

  # Create a config at a custom location
  timesheet config create -c ./timesheet.yml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(cmd.OutOrStdout())
	},
}

func saveDefaultConfig(out io.Writer) error {
	configPath, err := activeConfigPath()
	if err != nil {
		return err
	}

	created, err := config.EnsureExample(configPath)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(out, "New config file created at: %s\n", configPath)
		return nil
	}

	fmt.Fprintf(out, "Config file already exists at: %s\n", configPath)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
