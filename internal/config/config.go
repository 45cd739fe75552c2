// Package config handles configuration loading and validation for codegauge.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".codegauge"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// AppName names the XDG data directory.
	AppName = "codegauge"

	BackendBadger = "badger"
	BackendSQLite = "sqlite"

	SourceScript = "script"
	SourceModule = "module"
)

// Config holds all configuration for codegauge.
type Config struct {
	// Analyzer contains the input rules enforced before analysis.
	Analyzer AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer"`
	// Storage contains analysis record storage configuration.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	// Scan contains directory scanning configuration.
	Scan ScanConfig `mapstructure:"scan" yaml:"scan"`
	// Log contains logging configuration.
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// AnalyzerConfig holds the input rules shared by create and update.
type AnalyzerConfig struct {
	// MaxFileNameLength is the longest accepted file name.
	MaxFileNameLength int `mapstructure:"max_file_name_length" yaml:"max_file_name_length"`
	// Extension is the required file name suffix, including the dot.
	Extension string `mapstructure:"extension" yaml:"extension"`
	// SourceType is "script" (import/export rejected) or "module".
	SourceType string `mapstructure:"source_type" yaml:"source_type"`
}

// StorageConfig holds analysis record storage configuration.
type StorageConfig struct {
	// Backend is the storage backend (badger or sqlite).
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path is the database directory. Empty means the XDG data directory.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// ScanConfig holds directory scanning configuration.
type ScanConfig struct {
	// Concurrency is the number of files analyzed at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// Exclude lists glob patterns to skip while scanning and watching.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
}

// Load loads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Check if a specific config file was set via CLI flag (stored in global viper)
	globalViper := viper.GetViper()
	if configFile := globalViper.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CODEGAUGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Analyzer.MaxFileNameLength <= 0 {
		return fmt.Errorf("analyzer.max_file_name_length must be positive, got %d", c.Analyzer.MaxFileNameLength)
	}
	if !strings.HasPrefix(c.Analyzer.Extension, ".") || len(c.Analyzer.Extension) < 2 {
		return fmt.Errorf("analyzer.extension must start with a dot, got %q", c.Analyzer.Extension)
	}
	if c.Analyzer.SourceType != SourceScript && c.Analyzer.SourceType != SourceModule {
		return fmt.Errorf("analyzer.source_type must be '%s' or '%s', got %q", SourceScript, SourceModule, c.Analyzer.SourceType)
	}
	if c.Storage.Backend != BackendBadger && c.Storage.Backend != BackendSQLite {
		return fmt.Errorf("storage backend must be '%s' or '%s', got %q", BackendBadger, BackendSQLite, c.Storage.Backend)
	}
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be positive, got %d", c.Scan.Concurrency)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// ResolveStoragePath returns the database directory. A non-empty override
// (e.g. from --db-path) wins over the configured path, which wins over the
// XDG data directory.
func (c *Config) ResolveStoragePath(override string) string {
	if override != "" {
		return override
	}
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(xdg.DataHome, AppName, c.Storage.Backend)
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("analyzer.max_file_name_length", 20)
	v.SetDefault("analyzer.extension", ".js")
	v.SetDefault("analyzer.source_type", SourceScript)

	v.SetDefault("storage.backend", BackendBadger)
	v.SetDefault("storage.path", "")

	v.SetDefault("scan.concurrency", 8)
	v.SetDefault("scan.exclude", []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/dist/**",
		"**/build/**",
		"*.min.js",
	})

	v.SetDefault("log.level", "warn")
}
