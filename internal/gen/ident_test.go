package gen

import "testing"

func TestParseSelector(t *testing.T) {
	tests := []struct {
		sel      string
		wantPath string
		wantName string
	}{
		{"io", "io", "io"},
		{"encoding/json", "encoding/json", "json"},
		{"encoding/json#Decoder", "encoding/json", "Decoder"},
		{"github.com/org/repo/internal/host", "github.com/org/repo/internal/host", "host"},
	}
	for _, tt := range tests {
		path, name := ParseSelector(tt.sel)
		if path != tt.wantPath || name != tt.wantName {
			t.Errorf("ParseSelector(%q) = (%q, %q), want (%q, %q)", tt.sel, path, name, tt.wantPath, tt.wantName)
		}
	}
}
