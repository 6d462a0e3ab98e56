// Package config loads patcheck configuration. Resolution order is
// flags over environment over config file over defaults; flags are
// applied by the command layer after Load returns.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"patcheck/internal/errors"
)

// Config is the complete patcheck configuration
type Config struct {
	Version   int             `json:"version" mapstructure:"version"`
	Search    SearchConfig    `json:"search" mapstructure:"search"`
	Templates TemplatesConfig `json:"templates" mapstructure:"templates"`
	History   HistoryConfig   `json:"history" mapstructure:"history"`
	Output    OutputConfig    `json:"output" mapstructure:"output"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// SearchConfig bounds the binding search
type SearchConfig struct {
	CandidateCap  int `json:"candidateCap" mapstructure:"candidateCap"`
	PowerSetLimit int `json:"powerSetLimit" mapstructure:"powerSetLimit"`
	MaxBindings   int `json:"maxBindings" mapstructure:"maxBindings"`
}

// TemplatesConfig points at user template files loaded on top of the
// builtin catalog
type TemplatesConfig struct {
	Paths []string `json:"paths" mapstructure:"paths"`
}

// HistoryConfig configures the batch run history database
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// OutputConfig controls verdict rendering
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Indent bool   `json:"indent" mapstructure:"indent"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchConfig{
			CandidateCap:  100,
			PowerSetLimit: 4,
			MaxBindings:   10000,
		},
		Templates: TemplatesConfig{
			Paths: []string{},
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    ".patcheck/history.db",
		},
		Output: OutputConfig{
			Format: "json",
			Indent: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads .patcheck/config.json under root, layering PATCHECK_*
// environment variables on top. A missing file yields the defaults.
func Load(root string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("search.candidateCap", def.Search.CandidateCap)
	v.SetDefault("search.powerSetLimit", def.Search.PowerSetLimit)
	v.SetDefault("search.maxBindings", def.Search.MaxBindings)
	v.SetDefault("templates.paths", def.Templates.Paths)
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.path", def.History.Path)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("output.indent", def.Output.Indent)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetEnvPrefix("PATCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".patcheck"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.New(errors.ConfigInvalid, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .patcheck/config.json under root
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".patcheck")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return errors.Newf(errors.ConfigInvalid, "unsupported config version %d", c.Version)
	}
	if c.Search.CandidateCap < 1 {
		return errors.Newf(errors.ConfigInvalid, "search.candidateCap must be positive, got %d", c.Search.CandidateCap)
	}
	if c.Search.PowerSetLimit < 1 {
		return errors.Newf(errors.ConfigInvalid, "search.powerSetLimit must be positive, got %d", c.Search.PowerSetLimit)
	}
	if c.Search.MaxBindings < 1 {
		return errors.Newf(errors.ConfigInvalid, "search.maxBindings must be positive, got %d", c.Search.MaxBindings)
	}
	switch c.Output.Format {
	case "json", "human":
	default:
		return errors.Newf(errors.ConfigInvalid, "output.format must be json or human, got %q", c.Output.Format)
	}
	switch c.Logging.Format {
	case "json", "human":
	default:
		return errors.Newf(errors.ConfigInvalid, "logging.format must be json or human, got %q", c.Logging.Format)
	}
	return nil
}
