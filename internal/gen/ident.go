package gen

import "strings"

// ParseSelector parses s into a package import path and a short local name.
// Examples:
//
//	"io"                       -> "io", "io"
//	"encoding/json"            -> "encoding/json", "json"
//	"encoding/json#Decoder"    -> "encoding/json", "Decoder"
func ParseSelector(s string) (path, name string) {
	path, name, _ = strings.Cut(s, "#")
	if name == "" {
		if i := strings.LastIndex(path, "/"); i >= 0 && i < len(path)-1 {
			name = path[i+1:]
		} else {
			name = path
		}
	}
	return path, name
}
