//go:build property

package markup

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// fragments biases generated documents toward tag syntax.
var fragments = []interface{}{
	"[[", "]]", "/", ":", " ", "\n", "\n\n", "\r\n", "- ", "* ", "• ", "text",
	"caja", "alerta", "info", "destacado", "cita", "figura", "tabla", "math",
	"ecuacion", "nota", "foo", "Ó",
}

func genDocument() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(fragments...)).Map(func(parts []string) string {
		return strings.Join(parts, "")
	})
}

// genBalanced produces well-nested block structures with titled openers.
func genBalanced() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf("caja", "alerta", "info", "destacado")).Map(func(names []string) string {
		var b strings.Builder
		for _, name := range names {
			b.WriteString("[[" + name + ":T]]\nbody\n")
		}
		for i := len(names) - 1; i >= 0; i-- {
			b.WriteString("[[/" + names[i] + "]]\n")
		}
		return b.String()
	})
}

func TestScanTagsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("tokens are ordered, disjoint and in bounds", prop.ForAll(
		func(text string) bool {
			tokens, _ := ScanTags(text)
			prevEnd := 0
			for _, tok := range tokens {
				if tok.From < prevEnd || tok.From > tok.To || tok.To > len(text) {
					return false
				}
				if text[tok.From:tok.To] != tok.Raw {
					return false
				}
				prevEnd = tok.To
			}
			return true
		},
		genDocument(),
	))

	properties.Property("issues stay in bounds", prop.ForAll(
		func(text string) bool {
			for _, issue := range LintTags(text, nil) {
				if issue.From < 0 || issue.From > issue.To || issue.To > len(text) {
					return false
				}
			}
			return true
		},
		genDocument(),
	))

	properties.Property("balanced blocks have no errors", prop.ForAll(
		func(text string) bool {
			return !HasErrors(LintTags(text, nil))
		},
		genBalanced(),
	))

	properties.TestingRun(t)
}

func TestNormalizeOnSaveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("idempotent", prop.ForAll(
		func(text string) bool {
			once := NormalizeOnSave(text)
			return NormalizeOnSave(once) == once
		},
		genDocument(),
	))

	properties.Property("idempotent on arbitrary strings", prop.ForAll(
		func(text string) bool {
			once := NormalizeOnSave(text)
			return NormalizeOnSave(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("no carriage returns survive", prop.ForAll(
		func(text string) bool {
			return !strings.Contains(NormalizeOnSave(text), "\r")
		},
		genDocument(),
	))

	properties.TestingRun(t)
}

func TestTransformProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("inline selection points at payload", prop.ForAll(
		func(text string, a, b int) bool {
			r := ApplyInlineTag(text, a, b, "nota", InlineOptions{})
			if r.SelectionStart < 0 || r.SelectionEnd > len(r.Text) || r.SelectionStart > r.SelectionEnd {
				return false
			}
			return strings.HasSuffix(r.Text[:r.SelectionStart], "[[nota:") &&
				strings.HasPrefix(r.Text[r.SelectionEnd:], "]]")
		},
		gen.AlphaString(),
		gen.IntRange(-20, 60),
		gen.IntRange(-20, 60),
	))

	properties.Property("block selection covers placeholder", prop.ForAll(
		func(text string, cursor int) bool {
			r := InsertBlockTag(text, cursor, "caja", "T")
			return r.Text[r.SelectionStart:r.SelectionEnd] == DefaultPlaceholder &&
				strings.Contains(r.Text, "[[caja:T]]") &&
				strings.Contains(r.Text, "[[/caja]]")
		},
		gen.AnyString(),
		gen.IntRange(-20, 60),
	))

	properties.TestingRun(t)
}
