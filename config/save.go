package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const backupTimestampLayout = "20060102-150405"

// Save validates cfg and writes it to path as YAML. The token is never
// written.
func Save(path string, cfg Config) error {
	cfg.normalize()
	if err := Validate(cfg); err != nil {
		return err
	}

	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("writing config file failed: %w", err)
	}
	return nil
}

// Backup copies an existing config file next to itself and returns the
// backup path. It returns "" when there is nothing to back up.
func Backup(path string, now time.Time) (string, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading config for backup failed: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, now.Format(backupTimestampLayout))
	if err := os.WriteFile(backupPath, content, 0o600); err != nil {
		return "", fmt.Errorf("writing config backup failed: %w", err)
	}
	return backupPath, nil
}

// EnsureExample writes the example template to path unless a file exists.
// It reports whether a file was created.
func EnsureExample(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("creating example config failed: %w", err)
	}
	return true, nil
}
