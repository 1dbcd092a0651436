package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"timesheet/config"
	"timesheet/jira"
)

const userAgent = "timesheet-cli"

// getenv is swapped in tests.
var getenv = os.Getenv

// loadConfig reads the active config file. initConfig must have run.
func loadConfig() (*config.Config, error) {
	return config.LoadAndValidate()
}

func activeConfigPath() (string, error) {
	return config.ResolvePath(cfgFile)
}

func newJiraClient(cfg *config.Config) (*jira.HTTPClient, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}
	return jira.NewClient(jira.ClientConfig{
		BaseURL:    cfg.Server,
		Login:      cfg.Login,
		Token:      cfg.Token,
		AuthType:   cfg.AuthType,
		APIVersion: cfg.APIVersion(),
		Insecure:   cfg.Insecure,
		UserAgent:  userAgent,
		Logger:     logger,
	})
}

// colorEnabled reports whether w is a terminal that should get ANSI styling.
func colorEnabled(w io.Writer) bool {
	if viper.GetBool(keyNoColor) || os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func printConnected(w io.Writer, user jira.User) {
	name := user.DisplayName
	if name == "" {
		name = user.Name
	}
	if user.EmailAddress != "" {
		fmt.Fprintf(w, "Connected as: %s (%s)\n", name, user.EmailAddress)
		return
	}
	fmt.Fprintf(w, "Connected as: %s\n", name)
}
