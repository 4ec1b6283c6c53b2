package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanTags(t *testing.T) {
	text := "a [[cita:x]] b [[/caja]]"

	tokens, issues := ScanTags(text)
	require.Empty(t, issues)
	require.Len(t, tokens, 2)

	assert.Equal(t, Token{
		Raw:      "[[cita:x]]",
		From:     2,
		To:       12,
		Name:     "cita",
		Payload:  "x",
		HasColon: true,
	}, tokens[0])

	assert.Equal(t, Token{
		Raw:       "[[/caja]]",
		From:      15,
		To:        24,
		IsClosing: true,
		Name:      "caja",
	}, tokens[1])
	assert.Equal(t, "[[/caja]]", text[tokens[1].From:tokens[1].To])
}

func TestScanTagsNameAndPayload(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		tagName  string
		payload  string
		hasColon bool
		closing  bool
	}{
		{"bare opener", "[[nota]]", "nota", "", false, false},
		{"payload kept verbatim", "[[ Cita : a b ]]", "cita", " a b ", true, false},
		{"accents stripped", "[[ECUACIÓN:x]]", "ecuacion", "x", true, false},
		{"split at first colon", "[[math:a:b]]", "math", "a:b", true, false},
		{"empty payload", "[[tabla:]]", "tabla", "", true, false},
		{"closer", "[[/ Alerta ]]", "alerta", "", false, true},
		{"empty tag", "[[]]", "", "", false, false},
		{"nested opener in payload", "[[cita:a[[b]]", "cita", "a[[b", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens, issues := ScanTags(tc.input)
			require.Empty(t, issues)
			require.Len(t, tokens, 1)

			tok := tokens[0]
			assert.Equal(t, tc.tagName, tok.Name)
			assert.Equal(t, tc.payload, tok.Payload)
			assert.Equal(t, tc.hasColon, tok.HasColon)
			assert.Equal(t, tc.closing, tok.IsClosing)
			assert.Equal(t, 0, tok.From)
			assert.Equal(t, len(tc.input), tok.To)
		})
	}
}

func TestScanTagsUnclosedMarker(t *testing.T) {
	text := "texto [[figura"

	tokens, issues := ScanTags(text)
	assert.Empty(t, tokens)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Type)
	assert.Equal(t, CodeUnclosedMarker, issues[0].Code)
	assert.Equal(t, 6, issues[0].From)
	assert.Equal(t, len(text), issues[0].To)
}

func TestScanTagsStopsAtUnclosedMarker(t *testing.T) {
	tokens, issues := ScanTags("[[a]] [[b [[c]]")
	// "[[b [[c]]" is a single token: the scan pairs the first [[ with the next ]].
	require.Len(t, tokens, 2)
	assert.Empty(t, issues)

	tokens, issues = ScanTags("[[a]] x [[b")
	require.Len(t, tokens, 1)
	require.Len(t, issues, 1)
	assert.Equal(t, 8, issues[0].From)
}

func TestScanTagsNoTags(t *testing.T) {
	for _, input := range []string{"", "plain text", "]] stray", "[ [not] ]"} {
		tokens, issues := ScanTags(input)
		assert.Empty(t, tokens, input)
		assert.Empty(t, issues, input)
	}
}

func TestTokenKind(t *testing.T) {
	tokens, _ := ScanTags("[[Destacado]][[foo:x]][[dorado:y]]")
	require.Len(t, tokens, 3)
	assert.Equal(t, KindDestacado, tokens[0].Kind())
	assert.Equal(t, KindUnknown, tokens[1].Kind())
	assert.Equal(t, KindDorado, tokens[2].Kind())
}
