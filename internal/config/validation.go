package config

import (
	"fmt"
	"net"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/redactor/internal/logging"
	"github.com/conneroisu/redactor/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// validateConfig returns the first validation error, if any.
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if result.HasErrors() {
		return &result.Errors[0]
	}
	return nil
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateLintConfigDetails(&config.Lint, result)
	validateWatchConfigDetails(&config.Watch, result)
	validateServerConfigDetails(&config.Server, result)
	validateLogConfigDetails(&config.Log, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateLintConfigDetails(config *LintConfig, result *ValidationResult) {
	for _, path := range config.ScanPaths {
		if err := validation.ValidatePath(path); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "lint.scan_paths",
				Value:   path,
				Message: err.Error(),
				Suggestions: []string{
					"Use relative paths inside the project, e.g. ./docs",
					"Avoid '..' and shell metacharacters",
				},
			})
		}
	}

	for _, ext := range config.Extensions {
		if err := validation.ValidateExtensionSyntax(ext); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:       "lint.extensions",
				Value:       ext,
				Message:     err.Error(),
				Suggestions: []string{"Write extensions with a leading dot, e.g. .txt"},
			})
		}
	}

	for _, pattern := range config.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:       "lint.exclude_patterns",
				Value:       pattern,
				Message:     fmt.Sprintf("invalid glob pattern: %v", err),
				Suggestions: []string{"Patterns use filepath.Match syntax, e.g. *.bak or draft-*"},
			})
		}
	}

	if config.CatalogFile != "" {
		if err := validation.ValidatePath(config.CatalogFile); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "lint.catalog_file",
				Value:   config.CatalogFile,
				Message: err.Error(),
			})
		}
	}

	if !contains(FailOnValues, config.FailOn) {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "lint.fail_on",
			Value:       config.FailOn,
			Message:     fmt.Sprintf("unknown severity threshold '%s'", config.FailOn),
			Suggestions: []string{"Use one of: " + strings.Join(FailOnValues, ", ")},
		})
	}

	if config.Workers < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "lint.workers",
			Value:       config.Workers,
			Message:     "worker count cannot be negative",
			Suggestions: []string{"Use 0 to pick one worker per CPU"},
		})
	} else if config.Workers > 64 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "lint.workers",
			Value:   config.Workers,
			Message: "very high worker count",
			Suggestions: []string{
				"Linting is CPU bound; more workers than CPUs rarely helps",
			},
		})
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	if config.DebounceMS <= 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "watch.debounce_ms",
			Value:       config.DebounceMS,
			Message:     "debounce must be positive",
			Suggestions: []string{"300ms works well for editors that write files in bursts"},
		})
	} else if config.DebounceMS > 10000 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   config.DebounceMS,
			Message: "debounce above 10s delays feedback noticeably",
		})
	}
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			Suggestions: []string{
				"Use a port between 1024-65535 for non-privileged access",
				"Port 0 allows system to assign an available port",
			},
		})
	} else if config.Port > 0 && config.Port < 1024 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: "port below 1024 requires elevated privileges",
			Suggestions: []string{
				"Consider using a port above 1024 for development",
			},
		})
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "server.host",
				Value:   config.Host,
				Message: err.Error(),
				Suggestions: []string{
					"Use 'localhost' for local development",
					"Use '0.0.0.0' to bind to all interfaces",
				},
			})
		}
	}

	for _, origin := range config.AllowedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:       "server.allowed_origins",
				Value:       origin,
				Message:     "origin without scheme only matches by host",
				Suggestions: []string{"Write full origins, e.g. http://localhost:3000"},
			})
		}
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log.level",
			Value:   config.Level,
			Message: err.Error(),
		})
	}

	if config.Format != "text" && config.Format != "json" {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "log.format",
			Value:       config.Format,
			Message:     fmt.Sprintf("unknown log format '%s'", config.Format),
			Suggestions: []string{"Use 'text' for terminals or 'json' for log collectors"},
		})
	}
}

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
