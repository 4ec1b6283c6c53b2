// Package cmd provides the command-line interface for redactor.
//
// Configuration System:
//
//	The CLI supports configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --fail-on, etc.) - highest priority
//	2. REDACTOR_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (REDACTOR_LINT_FAIL_ON, etc.)
//	4. Configuration files (.redactor.yml) - lowest priority
//
// Environment Variables:
//
//	REDACTOR_CONFIG_FILE: Path to custom configuration file
//	REDACTOR_LINT_FAIL_ON: Severity that makes lint exit non-zero
//	REDACTOR_SERVER_PORT: Override server port
//	And every other key following the REDACTOR_<SECTION>_<OPTION> pattern
package cmd

import (
	"os"
	"strings"

	"github.com/conneroisu/redactor/internal/config"
	"github.com/conneroisu/redactor/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "redactor",
	Short: "Lint and tidy documents written with [[tag]] markup",
	Long: `Redactor checks documents that use the [[name:payload]] tag markup.

Inline tags look like [[nota:text]] or [[cita:smith2020]]; block tags wrap
content between [[caja:Title]] and [[/caja]].

Quick Start:
  redactor lint docs/             Report tag problems
  redactor fix docs/              Normalize whitespace before committing
  redactor tag inline f.txt ...   Wrap a selection in an inline tag
  redactor watch                  Re-lint files as they change
  redactor serve                  Serve the engine to editors over a websocket`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .redactor.yml, can also use REDACTOR_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	AddFlagValidation(rootCmd.PersistentFlags(), "log-format", ValidateChoice("text", "json"))
}

// initConfig selects the config file and enables REDACTOR_ environment
// overrides. A missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("REDACTOR_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".redactor")
	}

	viper.SetEnvPrefix("REDACTOR")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug(rootCmd.Context(), "using config file", "path", used)
	}

	return cfg, logger, nil
}
