package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cita", "cita"},
		{"  CITA ", "cita"},
		{"Ecuación", "ecuacion"},
		{"ÉCUACIÓN", "ecuacion"},
		{"", ""},
		{"   ", ""},
		{"niño", "nino"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizeName(tc.input), tc.input)
	}
}

func TestLookupKind(t *testing.T) {
	for _, k := range InlineKinds() {
		assert.True(t, k.IsInline(), k.String())
		assert.False(t, k.IsBlock(), k.String())
		assert.Equal(t, k, LookupKind(k.String()))
	}
	for _, k := range BlockKinds() {
		assert.True(t, k.IsBlock(), k.String())
		assert.False(t, k.IsInline(), k.String())
		assert.Equal(t, k, LookupKind(k.String()))
	}

	assert.Equal(t, KindAlerta, LookupKind(" ALERTA"))
	assert.Equal(t, KindEcuacion, LookupKind("ecuación"))
	assert.Equal(t, KindUnknown, LookupKind("box"))
	assert.False(t, KindUnknown.IsInline())
	assert.False(t, KindUnknown.IsBlock())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestIsReference(t *testing.T) {
	assert.True(t, KindCita.IsReference())
	assert.True(t, KindFigura.IsReference())
	assert.True(t, KindTabla.IsReference())
	assert.False(t, KindNota.IsReference())
	assert.False(t, KindCaja.IsReference())
}

func TestPosition(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		offset int
		line   int
		col    int
	}{
		{"start", "abc", 0, 1, 1},
		{"second line", "ab\ncd", 4, 2, 2},
		{"after newline", "ab\ncd", 3, 2, 1},
		{"runes counted", "ñb", 2, 1, 2},
		{"clamped low", "x", -5, 1, 1},
		{"clamped high", "a\nb", 50, 2, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line, col := Position(tc.text, tc.offset)
			assert.Equal(t, tc.line, line)
			assert.Equal(t, tc.col, col)
		})
	}
}
