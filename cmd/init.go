package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timesheet/config"
	"timesheet/jira"
)

var (
	initServer        string
	initLogin         string
	initInstallation  string
	initAuthType      string
	initProject       string
	initBoardID       int
	initBoardName     string
	initTimezone      string
	initDefaultFormat string
	initInsecure      bool
	initForce         bool
	initSkipTest      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a jira-cli compatible configuration file.",
	Long: `Validate the given connection settings and write them to the active
configuration file.

An existing file is copied to <file>.backup.<timestamp> first unless --force is
given. Afterwards the connection is tested with JIRA_API_TOKEN unless
--skip-test is set.`,
	Example: `
  # Jira Cloud
  timesheet init --server https://example.atlassian.net --login you@example.com --project ABC

  # Self-hosted Jira with a personal access token
  timesheet init --server https://jira.internal --installation local --auth-type bearer --insecure
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := activeConfigPath()
		if err != nil {
			return err
		}
		opts := initOptions{
			Server:        initServer,
			Login:         initLogin,
			Installation:  initInstallation,
			AuthType:      initAuthType,
			Project:       initProject,
			BoardID:       initBoardID,
			BoardName:     initBoardName,
			BoardNameSet:  cmd.Flags().Changed("board-name"),
			Timezone:      initTimezone,
			DefaultFormat: initDefaultFormat,
			Insecure:      initInsecure,
			Force:         initForce,
			SkipTest:      initSkipTest,
		}
		return runInit(cmd.Context(), cmd.OutOrStdout(), configPath, opts, time.Now(), connectionTester)
	},
}

type initOptions struct {
	Server        string
	Login         string
	Installation  string
	AuthType      string
	Project       string
	BoardID       int
	BoardName     string
	BoardNameSet  bool
	Timezone      string
	DefaultFormat string
	Insecure      bool
	Force         bool
	SkipTest      bool
}

// testerFunc checks the written configuration against the server.
type testerFunc func(ctx context.Context, out io.Writer, cfg *config.Config) error

func connectionTester(ctx context.Context, out io.Writer, cfg *config.Config) error {
	client, err := newJiraClient(cfg)
	if err != nil {
		return err
	}
	return runConnectionTest(ctx, out, client)
}

func runInit(ctx context.Context, out io.Writer, configPath string, opts initOptions, now time.Time, tester testerFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := buildInitConfig(opts)
	if err != nil {
		return err
	}

	if !opts.Force {
		backupPath, err := config.Backup(configPath, now)
		if err != nil {
			return err
		}
		if backupPath != "" {
			fmt.Fprintf(out, "Existing config backed up to: %s\n", backupPath)
		}
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration saved to: %s\n", configPath)

	if opts.SkipTest || tester == nil {
		return nil
	}

	cfg.Token = strings.TrimSpace(getenv(config.EnvAPIToken))
	if err := cfg.RequireToken(); err != nil {
		logger.Warn().Msgf("%s is not set, skipping connection test", config.EnvAPIToken)
		fmt.Fprintf(out, "Set %s and run 'timesheet test' to verify the connection.\n", config.EnvAPIToken)
		return nil
	}
	return tester(ctx, out, &cfg)
}

func buildInitConfig(opts initOptions) (config.Config, error) {
	installation := strings.ToLower(strings.TrimSpace(opts.Installation))
	if installation == "" {
		installation = config.InstallationCloud
	}
	authType := strings.ToLower(strings.TrimSpace(opts.AuthType))
	if authType == "" {
		authType = jira.AuthBasic
	}

	var problems []error
	if err := config.ValidateServerURL(opts.Server); err != nil {
		problems = append(problems, err)
	}
	if authType != jira.AuthBearer || strings.TrimSpace(opts.Login) != "" {
		if installation == config.InstallationCloud {
			if err := config.ValidateEmail(opts.Login); err != nil {
				problems = append(problems, err)
			}
		} else if strings.TrimSpace(opts.Login) == "" {
			problems = append(problems, errors.New("Login is required"))
		}
	}
	if err := config.ValidateProjectKey(opts.Project); err != nil {
		problems = append(problems, err)
	}
	if opts.BoardNameSet {
		if err := config.ValidateBoardName(opts.BoardName); err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) > 0 {
		return config.Config{}, fmt.Errorf("invalid init options: %w", errors.Join(problems...))
	}

	return config.Config{
		Server:       opts.Server,
		Login:        opts.Login,
		Installation: installation,
		AuthType:     authType,
		Insecure:     opts.Insecure,
		Project: config.ProjectConfig{
			Key:       strings.TrimSpace(opts.Project),
			BoardID:   opts.BoardID,
			BoardName: strings.TrimSpace(opts.BoardName),
		},
		Timesheet: config.TimesheetConfig{
			Timezone:      strings.TrimSpace(opts.Timezone),
			DefaultFormat: strings.TrimSpace(opts.DefaultFormat),
		},
	}, nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initServer, "server", "", "Jira server URL, e.g. https://example.atlassian.net")
	initCmd.Flags().StringVar(&initLogin, "login", "", "Login email (cloud) or username (local)")
	initCmd.Flags().StringVar(&initInstallation, "installation", config.InstallationCloud, "Installation type: cloud|local")
	initCmd.Flags().StringVar(&initAuthType, "auth-type", jira.AuthBasic, "Authentication: basic|bearer|api_token")
	initCmd.Flags().StringVar(&initProject, "project", "", "Default project key")
	initCmd.Flags().IntVar(&initBoardID, "board-id", 0, "Default board id")
	initCmd.Flags().StringVar(&initBoardName, "board-name", "", "Default board name")
	initCmd.Flags().StringVar(&initTimezone, "timezone", config.DefaultTimezone, "Timezone for day grouping")
	initCmd.Flags().StringVar(&initDefaultFormat, "default-format", config.DefaultFormat, "Default output format: table|csv|markdown|json|excel")
	initCmd.Flags().BoolVar(&initInsecure, "insecure", false, "Skip TLS certificate verification")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config without a backup")
	initCmd.Flags().BoolVar(&initSkipTest, "skip-test", false, "Do not test the connection after writing the config")

	_ = initCmd.MarkFlagRequired("server")
}
