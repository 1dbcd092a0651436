package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timesheet/config"
)

const (
	keyEditor     = "editor"
	defaultEditor = "vi"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active configuration file in an editor and validate it once the
editor exits. A missing file is first created from the example template.

The editor is taken from --editor, then $VISUAL, then $EDITOR, and defaults
to vi. It may carry arguments, e.g. "code --wait".`,
	Example: `
  # Edit the active config
  timesheet config edit

  # Edit a specific file with VS Code
  timesheet config edit -c ./timesheet.yml --editor "code --wait"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := activeConfigPath()
		if err != nil {
			return err
		}

		created, err := config.EnsureExample(configPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "No config file found. Created example config at: %s\n", configPath)
		}

		return editConfig(cmd.OutOrStdout(), configPath, configuredEditor(), runInteractive)
	},
}

// editorRunner runs the prepared editor process and waits for it.
type editorRunner func(command *exec.Cmd) error

func runInteractive(command *exec.Cmd) error {
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	return command.Run()
}

// configuredEditor resolves the editor through viper: --editor, $VISUAL,
// $EDITOR, then vi.
func configuredEditor() string {
	if value := strings.TrimSpace(viper.GetString(keyEditor)); value != "" {
		return value
	}
	return defaultEditor
}

// editConfig opens configPath with editor and validates what was saved. An
// invalid file is left in place so the edit is not lost.
func editConfig(out io.Writer, configPath, editor string, run editorRunner) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return errors.New("editor command is empty")
	}
	command := exec.Command(fields[0], append(fields[1:], configPath)...)
	if err := run(command); err != nil {
		return fmt.Errorf("opening editor %q failed: %w", fields[0], err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading edited config failed: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return fmt.Errorf("config validation failed in %s: %w", configPath, err)
	}

	fmt.Fprintf(out, "Configuration saved and validated: %s\n", configPath)
	fmt.Fprintf(out, "Server: %s (%s, API v%s)\n", cfg.Server, cfg.Installation, cfg.APIVersion())
	return nil
}

func init() {
	configCmd.AddCommand(configEditCmd)

	configEditCmd.Flags().String("editor", "", "Editor command (default: $VISUAL, then $EDITOR, then vi)")
	_ = viper.BindPFlag(keyEditor, configEditCmd.Flags().Lookup("editor"))
}
