package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// AddFlagValidation wraps a flag so that invalid values are rejected while
// the command line is parsed.
func AddFlagValidation(flags *pflag.FlagSet, flagName string, validator func(string) error) {
	flag := flags.Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: flag.Value.Set,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateChoice accepts only the listed values, compared case-insensitively.
func ValidateChoice(choices ...string) func(string) error {
	return func(val string) error {
		for _, choice := range choices {
			if strings.EqualFold(val, choice) {
				return nil
			}
		}
		return fmt.Errorf("invalid value %q (allowed: %s)", val, strings.Join(choices, ", "))
	}
}

// ValidateOffset accepts non-negative integers.
func ValidateOffset(val string) error {
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid offset: %s", val)
	}
	if n < 0 {
		return fmt.Errorf("offset must not be negative, got %d", n)
	}
	return nil
}

// ValidateFileExists accepts empty values and paths that exist.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}
