package gen

import "testing"

func TestFileHasContent(t *testing.T) {
	pkg := NewPackage("example/pkg")

	positives := []*File{
		{Name: "comment.go", Package: pkg, Content: []byte("// Comment\n")},
		{Name: "package_docs.go", Package: pkg, PackageDocs: "package documentation"},
		{Name: "header.go", Package: pkg, Header: "// Header\n"},
		{Name: "trailer.go", Package: pkg, Trailer: "// Trailer\n"},
		{Name: "blank_imports.go", Package: pkg, Imports: map[string]string{"unsafe": "_"}},
		{Name: "assembly.s", Package: pkg, Content: []byte("// Comment\n")},
	}
	for _, f := range positives {
		if !f.HasContent() {
			t.Errorf("%s: HasContent() = false, want true", f.Name)
		}
	}

	negatives := []*File{
		{Name: "empty.go", Package: pkg, GeneratedBy: "package testing"},
		{Name: "build_tag_only.go", Package: pkg, GoBuild: "!wasip1"},
		{Name: "named_imports.go", Package: pkg, Imports: map[string]string{"unsafe": "unsafe"}},
		{Name: "assembly.s", Package: pkg, Content: nil},
	}
	for _, f := range negatives {
		if f.HasContent() {
			t.Errorf("%s: HasContent() = true, want false", f.Name)
		}
	}
}

func TestFileBytes(t *testing.T) {
	pkg := NewPackage("wasm/wasi/clocks/wallclock")
	f := pkg.File("wallclock.wit.go")
	if !f.IsGo() {
		t.Fatalf("IsGo() = false, want true")
	}
	f.Import("encoding/json")
	f.Import("io")
	if _, err := f.Bytes(); err != nil {
		t.Fatalf("Bytes(): %v", err)
	}
}

func TestFileAddImport(t *testing.T) {
	pkg := NewPackage("wasm/wasi/clocks/wallclock")
	f := pkg.File("wallclock.wit.go")

	tests := []struct {
		path string
		name string
	}{
		{"encoding/json", "json"},
		{"encoding/xml", "xml"},
		{"example/error", "error_"},
		{"example/error", "error_"},
		{"example/foo#example_foo", "example_foo"},
		{"example/foo#example_foo2", "example_foo"},
		{"example/chan", "chan_"},
		{"example/chan", "chan_"},
	}
	for _, tt := range tests {
		if got := f.Import(tt.path); got != tt.name {
			t.Errorf("Import(%q) = %q, want %q", tt.path, got, tt.name)
		}
	}
}
