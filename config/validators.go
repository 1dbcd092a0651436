package config

import (
	"errors"
	"net/url"
	"strings"
)

// The validators below check single values entered during init and return
// messages meant for the operator.

func ValidateServerURL(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("Server URL is required")
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("Invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("Server URL must use HTTP or HTTPS protocol")
	}
	return nil
}

func ValidateEmail(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("Email is required")
	}
	if err := structValidator().Var(value, "email"); err != nil {
		return errors.New("Invalid email format")
	}
	return nil
}

// ValidateProjectKey accepts an empty key because a default project is optional.
func ValidateProjectKey(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !projectKeyPattern.MatchString(value) {
		return errors.New("Project key must start with a letter and contain only uppercase letters and numbers")
	}
	return nil
}

func ValidateBoardName(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("Board name cannot be empty")
	}
	return nil
}
