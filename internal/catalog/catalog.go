// Package catalog loads the reference catalogs that feed cross-reference
// checks: bibliography keys, figure ids and table ids.
//
// A catalog file is YAML:
//
//	bibliography: [smith2020, doe2019]
//	figures: [fig-arch]
//	tables: [tab-results]
//
// Missing sections are empty, and an empty section disables the check for
// that tag kind.
package catalog

import (
	"os"
	"sort"
	"strings"

	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/markup"
	"gopkg.in/yaml.v3"
)

// Catalog holds the known reference ids.
type Catalog struct {
	Bibliography []string `yaml:"bibliography" json:"bibliography"`
	Figures      []string `yaml:"figures" json:"figures"`
	Tables       []string `yaml:"tables" json:"tables"`
}

// Parse decodes a YAML catalog. Ids are trimmed; blanks and duplicates are dropped.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, rerrors.NewValidationError(rerrors.ErrCodeCatalogInvalid, "invalid catalog").
			WithContext("cause", err.Error())
	}

	c.Bibliography = clean(c.Bibliography)
	c.Figures = clean(c.Figures)
	c.Tables = clean(c.Tables)

	return &c, nil
}

// Load reads a catalog file. An empty path yields an empty catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerrors.ErrReadFailed(path, err)
	}

	c, err := Parse(data)
	if err != nil {
		if re, ok := err.(*rerrors.RedactorError); ok {
			re.FilePath = path
		}
		return nil, err
	}

	return c, nil
}

// LintContext converts the catalog for use with markup.LintTags.
func (c *Catalog) LintContext() *markup.LintContext {
	if c == nil {
		return nil
	}
	return markup.NewLintContext(c.Bibliography, c.Figures, c.Tables)
}

// Empty reports whether no ids are known at all.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.Bibliography)+len(c.Figures)+len(c.Tables) == 0
}

// Marshal encodes the catalog back to YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func clean(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}
