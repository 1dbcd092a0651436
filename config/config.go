package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	KeyServer        = "server"
	KeyLogin         = "login"
	KeyInstallation  = "installation"
	KeyAuthType      = "auth_type"
	KeyInsecure      = "insecure"
	KeyProject       = "project"
	KeyTimezone      = "timesheet.timezone"
	KeyDefaultFormat = "timesheet.default_format"
)

// Environment variables read by the CLI.
const (
	EnvConfigFile = "JIRA_CONFIG_FILE"
	EnvAPIToken   = "JIRA_API_TOKEN"
)

const (
	InstallationCloud = "cloud"
	InstallationLocal = "local"
)

const (
	DefaultTimezone = "Europe/Berlin"
	DefaultFormat   = "table"
)

var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrTokenMissing   = errors.New(EnvAPIToken + " environment variable not set")
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*$`)

// Config mirrors the jira-cli configuration file plus a timesheet section.
type Config struct {
	Server       string          `mapstructure:"server" yaml:"server" validate:"required,url,httpurl"`
	Login        string          `mapstructure:"login" yaml:"login" validate:"required_unless=AuthType bearer"`
	Installation string          `mapstructure:"installation" yaml:"installation" validate:"oneof=cloud local"`
	AuthType     string          `mapstructure:"auth_type" yaml:"auth_type" validate:"oneof=basic bearer api_token"`
	Insecure     bool            `mapstructure:"insecure" yaml:"insecure"`
	Project      ProjectConfig   `mapstructure:"project" yaml:"project,omitempty"`
	Timesheet    TimesheetConfig `mapstructure:"timesheet" yaml:"timesheet"`

	// Token is read from the environment only and never written to disk.
	Token string `mapstructure:"-" yaml:"-"`
}

type ProjectConfig struct {
	Key       string `mapstructure:"key" yaml:"key,omitempty" validate:"omitempty,projectkey"`
	BoardID   int    `mapstructure:"board_id" yaml:"board_id,omitempty" validate:"gte=0"`
	BoardName string `mapstructure:"board_name" yaml:"board_name,omitempty"`
}

type TimesheetConfig struct {
	Timezone      string `mapstructure:"timezone" yaml:"timezone,omitempty"`
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format,omitempty" validate:"omitempty,oneof=table csv markdown md json excel xlsx"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyInstallation, InstallationCloud)
	v.SetDefault(KeyAuthType, "basic")
	v.SetDefault(KeyInsecure, false)
	v.SetDefault(KeyTimezone, DefaultTimezone)
	v.SetDefault(KeyDefaultFormat, DefaultFormat)
}

// DefaultPath is the jira-cli configuration location below the home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", ".jira", ".config.yml"), nil
}

// ResolvePath picks the config file: explicit override, then
// JIRA_CONFIG_FILE, then the default location.
func ResolvePath(override string) (string, error) {
	if value := strings.TrimSpace(override); value != "" {
		return value, nil
	}
	if value := strings.TrimSpace(os.Getenv(EnvConfigFile)); value != "" {
		return value, nil
	}
	return DefaultPath()
}

// LoadAndValidate loads the file configured on the global Viper instance.
func LoadAndValidate() (*Config, error) {
	return loadFile(viper.GetViper())
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return loadFile(v)
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

func loadFile(v *viper.Viper) (*Config, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		return nil, fmt.Errorf("%w: no config file configured", ErrConfigNotFound)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s. Please run 'timesheet init' first.", ErrConfigNotFound, path)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return loadAndValidateFromViper(v)
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		projectStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.normalize()
	cfg.Token = strings.TrimSpace(os.Getenv(EnvAPIToken))

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// projectStringHook accepts `project: ABC` as shorthand for `project.key`.
func projectStringHook() mapstructure.DecodeHookFuncType {
	projectType := reflect.TypeOf(ProjectConfig{})
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != projectType {
			return data, nil
		}
		return map[string]any{"key": strings.TrimSpace(data.(string))}, nil
	}
}

func (c *Config) normalize() {
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	c.Login = strings.TrimSpace(c.Login)
	c.Installation = strings.ToLower(strings.TrimSpace(c.Installation))
	c.AuthType = strings.ToLower(strings.TrimSpace(c.AuthType))
	c.Project.Key = strings.TrimSpace(c.Project.Key)
	c.Timesheet.Timezone = strings.TrimSpace(c.Timesheet.Timezone)
	c.Timesheet.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Timesheet.DefaultFormat))
}

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func structValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("projectkey", func(fl validator.FieldLevel) bool {
			return projectKeyPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			parsed, err := url.Parse(fl.Field().String())
			return err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https")
		})
	})
	return validate
}

// Validate checks cfg against its struct tags.
func Validate(cfg Config) error {
	if err := structValidator().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// RequireToken reports ErrTokenMissing when no API token is available.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrTokenMissing
	}
	return nil
}

// APIVersion is the REST API version matching the installation type.
func (c *Config) APIVersion() string {
	if c.Installation == InstallationLocal {
		return "2"
	}
	return "3"
}

// ResolveProject prefers the command line project over the configured one.
func (c *Config) ResolveProject(flagValue string) (string, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		return value, nil
	}
	if c != nil && c.Project.Key != "" {
		return c.Project.Key, nil
	}
	return "", errors.New("no project specified. Use -p/--project or set default project in config")
}

func (c *Config) TimezoneOrDefault() string {
	if c == nil || c.Timesheet.Timezone == "" {
		return DefaultTimezone
	}
	return c.Timesheet.Timezone
}

func (c *Config) FormatOrDefault() string {
	if c == nil || c.Timesheet.DefaultFormat == "" {
		return DefaultFormat
	}
	return c.Timesheet.DefaultFormat
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# timesheet configuration (jira-cli compatible)
# The API token is read from the JIRA_API_TOKEN environment variable.
server: "https://your-domain.atlassian.net"
login: "you@example.com"
installation: cloud      # cloud | local
auth_type: basic         # basic | bearer | api_token
insecure: false

project:
  key: "ABC"

timesheet:
  timezone: "Europe/Berlin"
  default_format: table  # table | csv | markdown | json | excel
`
}
