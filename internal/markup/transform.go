package markup

import (
	"strings"
	"unicode/utf8"
)

// DefaultPlaceholder fills a tag when neither an explicit value nor a
// selection is available.
const DefaultPlaceholder = "..."

// ApplyResult is the outcome of a transform: the full new text and the
// selection the caller should apply to its editor, as offsets into Text.
type ApplyResult struct {
	Text           string `json:"text"`
	SelectionStart int    `json:"selectionStart"`
	SelectionEnd   int    `json:"selectionEnd"`
}

// InlineOptions controls how ApplyInlineTag picks the payload.
//
// Value, when non-nil, is used verbatim and wins over the selection.
// Placeholder is used when there is neither a value nor a selection;
// it defaults to DefaultPlaceholder.
type InlineOptions struct {
	Value       *string
	Placeholder string
}

func (o InlineOptions) placeholder() string {
	if o.Placeholder == "" {
		return DefaultPlaceholder
	}
	return o.Placeholder
}

// ApplyInlineTag replaces the selection [selStart, selEnd) with
// [[name:payload]] and selects the payload.
//
// Out-of-range offsets are clamped and reversed selections reordered.
// Reference tags (cita, figura, tabla) treat the selection as an id and trim
// it; every other inline tag wraps the selection as-is.
func ApplyInlineTag(text string, selStart, selEnd int, tagName string, opts InlineOptions) ApplyResult {
	from, to := clampRange(text, selStart, selEnd)
	name := NormalizeName(tagName)
	selected := text[from:to]

	var payload string
	switch {
	case opts.Value != nil:
		payload = *opts.Value
	case LookupKind(name).IsReference() && strings.TrimSpace(selected) != "":
		payload = strings.TrimSpace(selected)
	case !LookupKind(name).IsReference() && selected != "":
		payload = selected
	default:
		payload = opts.placeholder()
	}

	head := openMarker + name + ":"
	var b strings.Builder
	b.Grow(len(text) - len(selected) + len(head) + len(payload) + len(closeMarker))
	b.WriteString(text[:from])
	b.WriteString(head)
	b.WriteString(payload)
	b.WriteString(closeMarker)
	b.WriteString(text[to:])

	start := from + len(head)
	return ApplyResult{
		Text:           b.String(),
		SelectionStart: start,
		SelectionEnd:   start + len(payload),
	}
}

// InsertBlockTag inserts an empty block at cursor and selects its body
// placeholder. A trimmed, non-empty title becomes the opening payload.
//
// The block is kept one blank line apart from surrounding text. Nothing is
// added on a side where the document is empty.
func InsertBlockTag(text string, cursor int, tagName, title string) ApplyResult {
	pos := clampOffset(text, cursor)
	name := NormalizeName(tagName)
	before, after := text[:pos], text[pos:]

	opening := openMarker + name + closeMarker
	if t := strings.TrimSpace(title); t != "" {
		opening = openMarker + name + ":" + t + closeMarker
	}
	closing := openMarker + "/" + name + closeMarker

	prefix := blankLineBefore(before)
	suffix := blankLineAfter(after)

	var b strings.Builder
	b.WriteString(before)
	b.WriteString(prefix)
	b.WriteString(opening)
	b.WriteString("\n")
	b.WriteString(DefaultPlaceholder)
	b.WriteString("\n")
	b.WriteString(closing)
	b.WriteString(suffix)
	b.WriteString(after)

	start := len(before) + len(prefix) + len(opening) + 1
	return ApplyResult{
		Text:           b.String(),
		SelectionStart: start,
		SelectionEnd:   start + len(DefaultPlaceholder),
	}
}

func blankLineBefore(before string) string {
	switch {
	case before == "", strings.HasSuffix(before, "\n\n"):
		return ""
	case strings.HasSuffix(before, "\n"):
		return "\n"
	default:
		return "\n\n"
	}
}

func blankLineAfter(after string) string {
	switch {
	case after == "", strings.HasPrefix(after, "\n\n"):
		return ""
	case strings.HasPrefix(after, "\n"):
		return "\n"
	default:
		return "\n\n"
	}
}

// clampRange orders a selection and clamps both ends into text.
func clampRange(text string, a, b int) (int, int) {
	a, b = clampOffset(text, a), clampOffset(text, b)
	if a > b {
		a, b = b, a
	}
	return a, b
}

// clampOffset clamps off into [0, len(text)] and backs it up to the start
// of a UTF-8 sequence so slicing never splits a rune.
func clampOffset(text string, off int) int {
	if off < 0 {
		return 0
	}
	if off >= len(text) {
		return len(text)
	}
	for off > 0 && !utf8.RuneStart(text[off]) {
		off--
	}
	return off
}
