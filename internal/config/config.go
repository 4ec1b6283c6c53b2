// Package config provides configuration management for redactor using
// Viper for loading from files, environment variables, and command-line
// flags.
//
// The configuration is read from .redactor.yml (or the file named by
// --config / REDACTOR_CONFIG_FILE) and every key can be overridden with a
// REDACTOR_ environment variable, e.g. REDACTOR_LINT_FAIL_ON=warning.
package config

import (
	"runtime"

	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/spf13/viper"
)

// MaxWorkers caps the automatic worker count.
const MaxWorkers = 8

type Config struct {
	Lint        LintConfig   `mapstructure:"lint" yaml:"lint"`
	Watch       WatchConfig  `mapstructure:"watch" yaml:"watch"`
	Server      ServerConfig `mapstructure:"server" yaml:"server"`
	Log         LogConfig    `mapstructure:"log" yaml:"log"`
	TargetFiles []string     `mapstructure:"-" yaml:"-"` // CLI arguments, not from config file
}

type LintConfig struct {
	ScanPaths       []string `mapstructure:"scan_paths" yaml:"scan_paths"`
	Extensions      []string `mapstructure:"extensions" yaml:"extensions"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
	CatalogFile     string   `mapstructure:"catalog_file" yaml:"catalog_file"`
	FailOn          string   `mapstructure:"fail_on" yaml:"fail_on"`
	Workers         int      `mapstructure:"workers" yaml:"workers"`
}

type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// FailOnValues lists the accepted lint.fail_on settings.
var FailOnValues = []string{"error", "warning", "hint", "never"}

// SetDefaults registers the default value of every key. Registering every
// key also lets AutomaticEnv resolve REDACTOR_ overrides during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("lint.scan_paths", []string{"./docs"})
	v.SetDefault("lint.extensions", []string{".txt", ".md", ".tex"})
	v.SetDefault("lint.exclude_patterns", []string{"*.bak"})
	v.SetDefault("lint.catalog_file", "")
	v.SetDefault("lint.fail_on", "error")
	v.SetDefault("lint.workers", 0)

	v.SetDefault("watch.debounce_ms", 300)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 7777)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, rerrors.NewConfigError(rerrors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}

	// An explicitly empty list in the file still means "use the default"
	if len(config.Lint.ScanPaths) == 0 {
		config.Lint.ScanPaths = []string{"./docs"}
	}
	if len(config.Lint.Extensions) == 0 {
		config.Lint.Extensions = []string{".txt", ".md", ".tex"}
	}

	if err := validateConfig(&config); err != nil {
		return nil, rerrors.NewConfigError(rerrors.ErrCodeConfigInvalid, "invalid configuration", err)
	}

	return &config, nil
}

// WorkerCount resolves lint.workers, where 0 means one worker per CPU.
func (c LintConfig) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	n := runtime.NumCPU()
	if n > MaxWorkers {
		n = MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}
