package markup

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	listItemRe = regexp.MustCompile(`^[-*•]\s+`)
	tagStartRe = regexp.MustCompile(`^\s*\[\[([^\]/:]+?)\s*(?::|\]\])`)
)

// structuralKinds are the tags that must stand apart from list content.
var structuralKinds = map[TagKind]bool{
	KindCaja:      true,
	KindAlerta:    true,
	KindInfo:      true,
	KindDestacado: true,
	KindFigura:    true,
	KindTabla:     true,
	KindEcuacion:  true,
}

// IsListItem reports whether line is a bullet list item. Indentation is
// any Unicode space, matching what the final document trim removes.
func IsListItem(line string) bool {
	return listItemRe.MatchString(strings.TrimLeftFunc(line, unicode.IsSpace))
}

// IsStructuralTagLine reports whether line starts with the opening marker
// of a block or reference tag. Closing markers do not count.
func IsStructuralTagLine(line string) bool {
	m := tagStartRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return structuralKinds[LookupKind(m[1])]
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// NormalizeOnSave cleans up whitespace before a document is persisted.
// Applying it to its own output returns the output unchanged.
func NormalizeOnSave(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	lines = dropBlankBetweenListItems(lines)
	lines = separateTagsFromLists(lines)
	lines = collapseBlankRuns(lines, 2)

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// dropBlankBetweenListItems removes a single blank line sitting between two
// list items.
func dropBlankBetweenListItems(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if isBlank(line) && i > 0 && i+1 < len(lines) &&
			IsListItem(lines[i-1]) && IsListItem(lines[i+1]) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// separateTagsFromLists inserts a blank line between a list item and a
// structural tag that follows it directly.
func separateTagsFromLists(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && IsStructuralTagLine(line) && IsListItem(lines[i-1]) {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return out
}

// collapseBlankRuns keeps at most max consecutive blank lines.
func collapseBlankRuns(lines []string, max int) []string {
	out := make([]string, 0, len(lines))
	run := 0
	for _, line := range lines {
		if isBlank(line) {
			run++
			if run > max {
				continue
			}
		} else {
			run = 0
		}
		out = append(out, line)
	}
	return out
}
