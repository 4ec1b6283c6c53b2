package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// FuzzLoadConfig feeds arbitrary YAML through LoadFrom. Loading may fail but
// must not panic, and a successful load must pass validation.
func FuzzLoadConfig(f *testing.F) {
	f.Add(`lint:
  scan_paths:
    - ./docs`)
	f.Add(`server:
  port: "invalid_port"`)
	f.Add(`server:
  port: 65536`)
	f.Add(`watch:
  debounce_ms: -5`)
	f.Add(`lint:
  fail_on: never
  exclude_patterns: ["[", "*.tmp"]`)
	f.Add(`malformed: yaml: content`)
	f.Add(``)

	f.Fuzz(func(t *testing.T, content string) {
		if len(content) > 10000 {
			t.Skip()
		}

		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(content)); err != nil {
			return
		}

		cfg, err := LoadFrom(v)
		if err != nil {
			return
		}

		if result := ValidateConfigWithDetails(cfg); !result.Valid {
			t.Errorf("loaded config failed validation: %s", result.String())
		}
	})
}
