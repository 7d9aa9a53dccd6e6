// Package config handles loading and validating schoolwork configuration.
// Supports YAML config files (global and per-project) and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/marcus/schoolwork/internal/logging"
	"github.com/marcus/schoolwork/internal/providers"
)

// ProjectConfigName is the per-directory config file name.
const ProjectConfigName = "schoolwork.yaml"

// DefaultProvider matches the provider the generated config selects.
const DefaultProvider = providers.KindCloud

var (
	ErrInvalidLogLevel  = errors.New("logging.level must be one of debug, info, warn, error")
	ErrInvalidLogFormat = errors.New("logging.format must be json or text")
	ErrInvalidRetention = errors.New("logging.retention_days must not be negative")
)

// Config holds all schoolwork configuration.
type Config struct {
	// Provider is the name of the provider to resolve at startup.
	Provider string

	// Sections holds the per-provider config sections present in the file
	// or created by environment overrides, keyed by section name.
	Sections providers.Sections

	Logging LoggingConfig

	// Files lists the config files that were read, in merge order.
	Files []string
}

// LoggingConfig mirrors logging.Config in the config file.
type LoggingConfig struct {
	Level         string `validate:"omitempty,oneof=debug info warn error"`
	Format        string `validate:"omitempty,oneof=json text"`
	Path          string
	RetentionDays int    `validate:"gte=0"`
}

// envOverrides are static credential and connection lookups from the environment.
type envOverrides struct {
	Provider    string `env:"SCHOOLWORK_PROVIDER"`
	CloudAPIKey string `env:"GEMINI_API_KEY"`
	LocalHost   string `env:"OLLAMA_HOST"`
	LocalModel  string `env:"OLLAMA_MODEL"`
	LogLevel    string `env:"SCHOOLWORK_LOG_LEVEL"`
}

// GlobalConfigPath returns the path of the user-wide config file.
func GlobalConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "schoolwork", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "schoolwork", "config.yaml")
}

// Load reads the global config, then the project config in the working
// directory merged over it, then environment overrides.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return LoadFromPaths(GlobalConfigPath(), filepath.Join(cwd, ProjectConfigName))
}

// LoadFile reads exactly one config file, which must exist.
func LoadFile(path string) (*Config, error) {
	path = logging.ExpandPath(path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return LoadFromPaths(path)
}

// LoadFromPaths merges the given YAML files in order. Paths that do not
// exist are skipped.
func LoadFromPaths(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	var files []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat config %s: %w", p, err)
		}
		v.SetConfigFile(p)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", p, err)
		}
		files = append(files, p)
	}

	cfg := &Config{
		Provider: strings.TrimSpace(v.GetString("provider")),
		Sections: readSections(v),
		Logging: LoggingConfig{
			Level:         v.GetString("logging.level"),
			Format:        v.GetString("logging.format"),
			Path:          v.GetString("logging.path"),
			RetentionDays: v.GetInt("logging.retention_days"),
		},
		Files: files,
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := logging.DefaultConfig()
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("logging.level", def.Level)
	v.SetDefault("logging.format", def.Format)
	v.SetDefault("logging.path", def.Path)
	v.SetDefault("logging.retention_days", def.RetentionDays)
}

// readSections collects every known provider section present in v.
func readSections(v *viper.Viper) providers.Sections {
	sections := make(providers.Sections)
	for _, e := range providers.Entries() {
		if !v.IsSet(e.Section) {
			continue
		}
		opts := make(providers.Options)
		for k, val := range v.GetStringMapString(e.Section) {
			opts[k] = val
		}
		sections[e.Section] = opts
	}
	return sections
}

func applyEnv(cfg *Config) error {
	var e envOverrides
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if e.Provider != "" {
		cfg.Provider = e.Provider
	}
	if e.CloudAPIKey != "" {
		cfg.section(providers.SectionCloud)["api_key"] = e.CloudAPIKey
	}
	if e.LocalHost != "" {
		cfg.section(providers.SectionLocalServer)["host"] = normalizeHost(e.LocalHost)
	}
	if e.LocalModel != "" {
		cfg.section(providers.SectionLocalServer)["model"] = e.LocalModel
	}
	if e.LogLevel != "" {
		cfg.Logging.Level = e.LogLevel
	}
	return nil
}

// section returns the named section, creating it if absent.
func (c *Config) section(name string) providers.Options {
	if c.Sections == nil {
		c.Sections = make(providers.Sections)
	}
	opts, ok := c.Sections[name]
	if !ok || opts == nil {
		opts = make(providers.Options)
		c.Sections[name] = opts
	}
	return opts
}

// normalizeHost adds an http scheme to bare host:port values such as "0.0.0.0:11434".
func normalizeHost(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "http://" + host
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for errors. Provider selection and
// provider sections are checked at resolution time, not here.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg.Logging)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating config: %w", err)
	}
	switch verrs[0].Field() {
	case "Level":
		return ErrInvalidLogLevel
	case "Format":
		return ErrInvalidLogFormat
	case "RetentionDays":
		return ErrInvalidRetention
	default:
		return fmt.Errorf("validating config: %w", err)
	}
}

// Descriptor returns the provider descriptor for resolution.
func (c *Config) Descriptor() providers.Descriptor {
	return providers.Descriptor{
		Name:     c.Provider,
		Sections: c.Sections,
	}
}

// LogConfig converts the logging section into a logging.Config.
func (c *Config) LogConfig() logging.Config {
	return logging.Config{
		Level:         c.Logging.Level,
		Format:        c.Logging.Format,
		Path:          c.Logging.Path,
		RetentionDays: c.Logging.RetentionDays,
	}
}
