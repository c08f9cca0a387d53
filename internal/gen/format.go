package gen

import "strings"

const (
	docCommentPrefix = "//"
	lineLength       = 80
)

// FormatDocComments reformats docs (without comment markers) into one or
// more "//"-prefixed lines, breaking at the first space after a line passes
// lineLength columns (a word is never split), suitable for emission
// directly above a declaration. If indent is true, lines are indented with
// a tab after the comment marker (used for comments nested inside a type or
// function body).
func FormatDocComments(docs string, indent bool) string {
	if docs == "" {
		return ""
	}
	space := byte(' ')
	if indent {
		space = '\t'
	}
	var b strings.Builder
	col := 0
	for i := 0; i < len(docs); i++ {
		c := docs[i]
		if col == 0 {
			b.WriteString(docCommentPrefix)
			col = len(docCommentPrefix)
		}
		switch c {
		case '\n':
			b.WriteByte('\n')
			col = 0
			continue
		case ' ':
			if col == len(docCommentPrefix) {
				continue // collapse leading spaces
			}
			if col > lineLength {
				b.WriteByte('\n')
				col = 0
				continue
			}
		default:
			if col == len(docCommentPrefix) {
				b.WriteByte(space)
				col++
			}
		}
		b.WriteByte(c)
		col++
	}
	if col != 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

// Comment renders lines as a "//"-prefixed block comment, one marker per
// line, the way license headers and instruction-stream annotations are
// emitted.
func Comment(lines ...string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(docCommentPrefix)
		if line != "" {
			b.WriteByte(' ')
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
