package markup

import (
	"strings"
	"unicode/utf8"
)

// Position converts a byte offset into a 1-based line and column. Columns
// count runes. The offset is clamped into the text first.
func Position(text string, offset int) (line, col int) {
	offset = clampOffset(text, offset)
	prefix := text[:offset]

	line = strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	col = utf8.RuneCountInString(prefix[lineStart:]) + 1

	return line, col
}
