/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timesheet/config"
	"timesheet/internal/logging"
)

const (
	keyLogLevel = "log_level"
	keyLogFile  = "log_file"
	keyNoColor  = "no_color"
)

var cfgFile string

var (
	logger    = zerolog.Nop()
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Generate timesheets from Jira worklogs using your jira-cli configuration.",
	Long: `
**********************************************
*              JIRA TIMESHEET                *
**********************************************

This CLI searches the issues of a Jira project, collects their worklogs and
renders them grouped by author and day as a terminal table, CSV, Markdown,
JSON or an Excel workbook.

The configuration is shared with jira-cli (~/.config/.jira/.config.yml) and the
API token is read from the JIRA_API_TOKEN environment variable.
`,
	Example: `
  # Set up a configuration file
  timesheet init --server https://example.atlassian.net --login you@example.com --project ABC

  # Check the connection
  timesheet test

  # Timesheet for January as a terminal table
  timesheet generate -s 01.01.2024 -e 31.01.2024

  # Two authors, exported as Markdown
  timesheet generate -p ABC -u jane@example.com -u john@example.com -f markdown -o ./january.md
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		built, closer, err := logging.New(logging.Options{
			Level:   viper.GetString(keyLogLevel),
			File:    viper.GetString(keyLogFile),
			Console: cmd.ErrOrStderr(),
			NoColor: viper.GetBool(keyNoColor),
		})
		if err != nil {
			return err
		}
		logger = built
		logCloser = closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser == nil {
			return nil
		}
		return logCloser.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: $JIRA_CONFIG_FILE, then ~/.config/.jira/.config.yml)")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file (rotated)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	_ = viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(keyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag(keyNoColor, rootCmd.PersistentFlags().Lookup("no-color"))
}

// initConfig points Viper at the active config file and enables TIMESHEET_*
// environment overrides. The file itself is read by commands that need it.
func initConfig() {
	path, err := config.ResolvePath(cfgFile)
	cobra.CheckErr(err)

	config.SetDefaults()
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("TIMESHEET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv(keyEditor, "VISUAL", "EDITOR")
}
