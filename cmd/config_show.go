package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"timesheet/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and where it was loaded from.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  timesheet config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		configPath, err := activeConfigPath()
		if err != nil {
			return err
		}
		printConfig(cmd.OutOrStdout(), cfg, configPath)
		return nil
	},
}

func printConfig(out io.Writer, cfg *config.Config, configPath string) {
	project := cfg.Project.Key
	if project == "" {
		project = "Not set"
	}
	token := "Not set"
	if cfg.Token != "" {
		token = "Set via " + config.EnvAPIToken
	}

	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "server: %s\n", cfg.Server)
	fmt.Fprintf(out, "login: %s\n", cfg.Login)
	fmt.Fprintf(out, "project: %s\n", project)
	if cfg.Project.BoardID > 0 {
		fmt.Fprintf(out, "project.board_id: %d\n", cfg.Project.BoardID)
	}
	if cfg.Project.BoardName != "" {
		fmt.Fprintf(out, "project.board_name: %s\n", cfg.Project.BoardName)
	}
	fmt.Fprintf(out, "installation: %s (API v%s)\n", cfg.Installation, cfg.APIVersion())
	fmt.Fprintf(out, "auth_type: %s\n", cfg.AuthType)
	fmt.Fprintf(out, "insecure: %t\n", cfg.Insecure)
	fmt.Fprintf(out, "timesheet.timezone: %s\n", cfg.TimezoneOrDefault())
	fmt.Fprintf(out, "timesheet.default_format: %s\n", cfg.FormatOrDefault())
	fmt.Fprintf(out, "api_token: %s\n", token)
	fmt.Fprintf(out, "Config file loaded from: %s (%s)\n", configPath, configSource())
}

func configSource() string {
	switch {
	case strings.TrimSpace(cfgFile) != "":
		return "--config flag"
	case strings.TrimSpace(os.Getenv(config.EnvConfigFile)) != "":
		return config.EnvConfigFile + " env var"
	default:
		return "default location"
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
