package gen

import (
	"strings"
	"unicode"
)

// Role selects one of the three identifier-rendering policies described by
// the renderer's case-policy machine: Public identifiers are exported,
// Private identifiers are unexported file/package-scoped helpers, and Local
// identifiers are unexported local variables that are never subject to
// export-collision renaming.
type Role int

const (
	Public Role = iota
	Private
	Local
)

// CaseName renders a WIT identifier (kebab-case or snake_case, per the
// Component Model's naming convention) into a Go identifier under role.
//
// Each '-', '_', or space separator consumes the following character and
// uppercases it. For [Public], the first character is uppercased; for
// [Private] and [Local], it is lowercased. Known initialisms (see
// [Initialisms]) are rendered in all caps regardless of position, and a few
// WASI-specific compounds in [CommonWords] are special-cased the same way.
func CaseName(name string, role Role) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	for i, word := range words {
		lower := strings.ToLower(word)
		switch {
		case CommonWords[lower] != "":
			b.WriteString(CommonWords[lower])
		case Initialisms[lower]:
			b.WriteString(strings.ToUpper(lower))
		case i == 0 && role != Public:
			b.WriteString(lower)
		default:
			runes := []rune(lower)
			runes[0] = unicode.ToUpper(runes[0])
			b.WriteString(string(runes))
		}
	}
	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "f" + out
	}
	return out
}

func splitWords(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
}

// SnakeName renders name as snake_case, used for wire-protocol symbols
// (module names, export names) that must match the WIT source verbatim in
// lowercase-hyphen form translated to underscores.
func SnakeName(name string) string {
	return strings.Join(splitWords(strings.ToLower(name)), "_")
}

// CommonWords maps a few compound WIT words to an opinionated Go rendering,
// the way the teacher's generator special-cases "datetime" and "ipv4".
var CommonWords = map[string]string{
	"cabi":     "CABI",
	"datetime": "DateTime",
	"filesize": "FileSize",
	"ipv4":     "IPv4",
	"ipv6":     "IPv6",
}
