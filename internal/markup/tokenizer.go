package markup

import "strings"

const (
	openMarker  = "[["
	closeMarker = "]]"
)

// Token is a single [[...]] span found in the source text.
// From and To are byte offsets of the full span, To exclusive.
type Token struct {
	Raw       string
	From      int
	To        int
	IsClosing bool
	Name      string
	Payload   string
	HasColon  bool
}

// Kind classifies the token name.
func (t Token) Kind() TagKind {
	return kindsByName[t.Name]
}

// ScanTags finds every tag span in text, left to right.
//
// An opening marker with no closing marker after it ends the scan with a
// single error covering the rest of the text. Any other input keeps scanning.
func ScanTags(text string) ([]Token, []Issue) {
	var (
		tokens []Token
		issues []Issue
	)

	pos := 0
	for pos < len(text) {
		rel := strings.Index(text[pos:], openMarker)
		if rel < 0 {
			break
		}
		start := pos + rel

		relEnd := strings.Index(text[start+len(openMarker):], closeMarker)
		if relEnd < 0 {
			issues = append(issues, Issue{
				Type:    SeverityError,
				Code:    CodeUnclosedMarker,
				Message: "unclosed tag: missing ]]",
				From:    start,
				To:      len(text),
			})
			break
		}

		innerStart := start + len(openMarker)
		innerEnd := innerStart + relEnd
		end := innerEnd + len(closeMarker)

		tokens = append(tokens, newToken(text[start:end], text[innerStart:innerEnd], start, end))
		pos = end
	}

	return tokens, issues
}

func newToken(raw, inner string, from, to int) Token {
	tok := Token{Raw: raw, From: from, To: to}

	if strings.HasPrefix(inner, "/") {
		tok.IsClosing = true
		tok.Name = NormalizeName(inner[1:])
		return tok
	}

	name, payload, found := strings.Cut(inner, ":")
	tok.Name = NormalizeName(name)
	tok.Payload = payload
	tok.HasColon = found

	return tok
}
