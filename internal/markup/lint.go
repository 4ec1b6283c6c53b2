package markup

import (
	"fmt"
	"strings"
)

// Severity is the level of a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityHint    Severity = "hint"
)

// Rank orders severities so callers can compare thresholds. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityHint:
		return 1
	default:
		return 0
	}
}

// Issue codes. Codes are stable and safe to match on; messages are not.
const (
	CodeUnclosedMarker   = "unclosed-marker"
	CodeInvalidCloser    = "invalid-closer"
	CodeOrphanCloser     = "orphan-closer"
	CodeMismatchedCloser = "mismatched-closer"
	CodeUnclosedBlock    = "unclosed-block"
	CodeUnknownTag       = "unknown-tag"
	CodeMissingTitle     = "missing-title"
	CodeMissingArgument  = "missing-argument"
	CodeNestedPayload    = "nested-payload"
	CodeEmptyReference   = "empty-reference"
	CodePaddedReference  = "padded-reference"
	CodeUnknownReference = "unknown-reference"
	CodeEmptyMath        = "empty-math"
	CodeMultilineMath    = "multiline-math"
	CodeEmptyEquation    = "empty-equation"
)

// Issue is a single diagnostic. Offsets refer to the text passed to LintTags.
type Issue struct {
	Type    Severity `json:"type" yaml:"type"`
	Code    string   `json:"code" yaml:"code"`
	Message string   `json:"message" yaml:"message"`
	From    int      `json:"from" yaml:"from"`
	To      int      `json:"to" yaml:"to"`
}

// LintContext carries reference catalogs for cross-reference checks. A nil
// or empty set disables the check for that kind.
type LintContext struct {
	BibliographyKeys map[string]struct{}
	FigureIDs        map[string]struct{}
	TableIDs         map[string]struct{}
}

// NewLintContext builds a context from plain id lists.
func NewLintContext(bibliography, figures, tables []string) *LintContext {
	return &LintContext{
		BibliographyKeys: toSet(bibliography),
		FigureIDs:        toSet(figures),
		TableIDs:         toSet(tables),
	}
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// idsFor returns the catalog matching an inline reference kind.
func (c *LintContext) idsFor(kind TagKind) map[string]struct{} {
	if c == nil {
		return nil
	}
	switch kind {
	case KindCita:
		return c.BibliographyKeys
	case KindFigura:
		return c.FigureIDs
	case KindTabla:
		return c.TableIDs
	default:
		return nil
	}
}

type frame struct {
	name string
	from int
	to   int
	// mismatched is set once a wrong closer has been reported against the
	// frame; that report already covers the missing closer.
	mismatched bool
}

// linter holds the state of a single LintTags pass.
type linter struct {
	ctx    *LintContext
	stack  []frame
	issues []Issue
}

func (l *linter) report(sev Severity, code string, tok Token, format string, args ...interface{}) {
	l.issues = append(l.issues, Issue{
		Type:    sev,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		From:    tok.From,
		To:      tok.To,
	})
}

// LintTags validates the tag structure of text and returns every issue found.
// It never stops at the first problem; ctx may be nil.
func LintTags(text string, ctx *LintContext) []Issue {
	tokens, scanIssues := ScanTags(text)

	l := &linter{ctx: ctx}
	l.issues = append(l.issues, scanIssues...)

	for _, tok := range tokens {
		if tok.IsClosing {
			l.closer(tok)
			continue
		}

		kind := tok.Kind()
		switch {
		case kind.IsBlock():
			l.openBlock(tok, kind)
		case kind.IsInline():
			l.inline(tok, kind)
		default:
			l.report(SeverityHint, CodeUnknownTag, tok, "unknown tag [[%s]]", tok.Name)
		}
	}

	for i := len(l.stack) - 1; i >= 0; i-- {
		f := l.stack[i]
		if f.mismatched {
			continue
		}
		l.issues = append(l.issues, Issue{
			Type:    SeverityError,
			Code:    CodeUnclosedBlock,
			Message: fmt.Sprintf("unclosed block: missing [[/%s]]", f.name),
			From:    f.from,
			To:      f.to,
		})
	}

	return l.issues
}

func (l *linter) closer(tok Token) {
	if !tok.Kind().IsBlock() {
		l.report(SeverityError, CodeInvalidCloser, tok,
			"invalid closer [[/%s]], not a supported block", tok.Name)
		return
	}

	if len(l.stack) == 0 {
		l.report(SeverityError, CodeOrphanCloser, tok,
			"closer [[/%s]] without matching opener", tok.Name)
		return
	}

	// A mismatch leaves the frame in place so later closers are still
	// checked against the block that is actually open.
	top := &l.stack[len(l.stack)-1]
	if top.name != tok.Name {
		top.mismatched = true
		l.report(SeverityError, CodeMismatchedCloser, tok,
			"mismatched closer, expected [[/%s]] found [[/%s]]", top.name, tok.Name)
		return
	}

	l.stack = l.stack[:len(l.stack)-1]
}

func (l *linter) openBlock(tok Token, kind TagKind) {
	l.stack = append(l.stack, frame{name: tok.Name, from: tok.From, to: tok.To})

	if (kind == KindAlerta || kind == KindInfo) && (!tok.HasColon || strings.TrimSpace(tok.Payload) == "") {
		l.report(SeverityWarning, CodeMissingTitle, tok,
			"[[%s]] should include a title, e.g. [[%s:Title]]", tok.Name, tok.Name)
	}
}

func (l *linter) inline(tok Token, kind TagKind) {
	if !tok.HasColon {
		l.report(SeverityError, CodeMissingArgument, tok,
			"inline tag [[%s]] missing ':' argument", tok.Name)
		return
	}

	if strings.Contains(tok.Payload, openMarker) {
		l.report(SeverityError, CodeNestedPayload, tok,
			"nesting not permitted inside inline payload of [[%s]]", tok.Name)
	}

	switch kind {
	case KindCita:
		l.reference(tok, kind, SeverityError, "citation key", "bibliography")
	case KindFigura:
		l.reference(tok, kind, SeverityWarning, "figure id", "figure catalog")
	case KindTabla:
		l.reference(tok, kind, SeverityWarning, "table id", "table catalog")
	case KindMath:
		if strings.TrimSpace(tok.Payload) == "" {
			l.report(SeverityHint, CodeEmptyMath, tok, "inline math is empty")
		}
		if strings.Contains(tok.Payload, "\n") {
			l.report(SeverityWarning, CodeMultilineMath, tok,
				"inline math should not span lines; use ecuacion")
		}
	case KindEcuacion:
		if strings.TrimSpace(tok.Payload) == "" {
			l.report(SeverityHint, CodeEmptyEquation, tok, "equation is empty")
		}
	}
}

// reference checks the id-bearing inline tags. paddedSev is the severity used
// when the id carries surrounding whitespace.
func (l *linter) reference(tok Token, kind TagKind, paddedSev Severity, label, catalog string) {
	key := strings.TrimSpace(tok.Payload)
	if key == "" {
		l.report(SeverityError, CodeEmptyReference, tok, "%s is empty in [[%s]]", label, tok.Name)
		return
	}

	if tok.Payload != key {
		l.report(paddedSev, CodePaddedReference, tok,
			"%s %q has leading or trailing whitespace", label, tok.Payload)
	}

	ids := l.ctx.idsFor(kind)
	if len(ids) == 0 {
		return
	}
	if _, ok := ids[key]; !ok {
		l.report(SeverityWarning, CodeUnknownReference, tok, "%s %q not found in %s", label, key, catalog)
	}
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Type == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity tallies issues per severity.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, issue := range issues {
		counts[issue.Type]++
	}
	return counts
}
