package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
)

// File represents a single generated Go source file within a [Package].
// It accumulates imports and a body token stream, and renders itself to
// formatted Go source on demand.
type File struct {
	// Name is the file's base name, e.g. "instance.gen.go".
	Name string

	// Package is the owning package.
	Package *Package

	// GoBuild, if non-empty, is emitted as a "//go:build" constraint.
	GoBuild string

	// GeneratedBy, if non-empty, is emitted as a "// Code generated by ...
	// DO NOT EDIT." header comment.
	GeneratedBy string

	// PackageDocs, if non-empty, is emitted as the package-level doc
	// comment. Only one file per package should set this.
	PackageDocs string

	// Header is raw text emitted immediately after the package clause,
	// before the import block (license banners, "this file exists for..."
	// notes).
	Header string

	// Trailer is raw text emitted after Content.
	Trailer string

	// Imports maps an import path to its local symbol. A local symbol of
	// "_" denotes a blank import.
	Imports map[string]string

	// Content is the accumulated body of the file.
	Content []byte

	scope map[string]bool
}

// IsGo reports whether f is a Go source file, as opposed to an embedded
// asset (e.g. a ".wasm" payload) tracked alongside it.
func (f *File) IsGo() bool {
	return strings.HasSuffix(f.Name, ".go")
}

// HasContent reports whether f would render to anything beyond an empty
// package clause: a non-empty body, package docs, header, trailer, or at
// least one blank import.
func (f *File) HasContent() bool {
	if len(f.Content) > 0 || f.PackageDocs != "" || f.Header != "" || f.Trailer != "" {
		return true
	}
	if !f.IsGo() {
		return len(f.Content) > 0
	}
	for _, sym := range f.Imports {
		if sym == "_" {
			return true
		}
	}
	return false
}

// HasName reports whether name is declared in this file or an ancestor
// scope (the owning package, then Go's reserved words).
func (f *File) HasName(name string) bool {
	return f.scope[name] || f.Package.HasName(name)
}

// DeclareName mangles name if necessary and declares it at file scope,
// returning the name actually declared.
func (f *File) DeclareName(name string) string {
	name = UniqueName(name, f.HasName)
	f.scope[name] = true
	return name
}

// Import registers an import of the package named by selector (e.g.
// "encoding/json" or "wasi/clocks/wall#DateTime") and returns the local
// symbol to use at call sites. Repeated calls with the same import path
// collapse to the symbol chosen on first registration.
func (f *File) Import(selector string) string {
	path, name := ParseSelector(selector)
	if sym, ok := f.Imports[path]; ok {
		return sym
	}
	sym := f.DeclareName(name)
	f.Imports[path] = sym
	return sym
}

// RelativeName returns the Go expression for referring to name declared in
// pkg, importing pkg into f if it is not f's own package.
func (f *File) RelativeName(pkg *Package, name string) string {
	if pkg == f.Package {
		return name
	}
	sym := f.Import(pkg.Path)
	return sym + "." + name
}

// Embed emits a "//go:embed" directive binding the package-level variable
// varName to path, the target language's compile-time file-inclusion
// mechanism for the core-bytes payload.
func (f *File) Embed(path, varName string) {
	f.Import("embed")
	fmt.Fprintf(f, "//go:embed %s\n", path)
	fmt.Fprintf(f, "var %s []byte\n\n", varName)
}

// Write appends p to the file's content, implementing io.Writer so callers
// can use fmt.Fprintf directly against a *File.
func (f *File) Write(p []byte) (int, error) {
	f.Content = append(f.Content, p...)
	return len(p), nil
}

// Bytes renders f to formatted Go source. If gofmt fails (e.g. because the
// body contains a syntax error), it still returns the unformatted bytes
// alongside the error so callers can inspect what was generated.
func (f *File) Bytes() ([]byte, error) {
	var b bytes.Buffer
	if f.GoBuild != "" {
		fmt.Fprintf(&b, "//go:build %s\n\n", f.GoBuild)
	}
	if f.GeneratedBy != "" {
		fmt.Fprintf(&b, "// Code generated by %s. DO NOT EDIT.\n\n", f.GeneratedBy)
	}
	if f.PackageDocs != "" {
		b.WriteString(FormatDocComments(f.PackageDocs, false))
	}
	fmt.Fprintf(&b, "package %s\n\n", f.Package.Name)

	if f.Header != "" {
		b.WriteString(f.Header)
		b.WriteString("\n")
	}

	if len(f.Imports) > 0 {
		paths := make([]string, 0, len(f.Imports))
		for path := range f.Imports {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		b.WriteString("import (\n")
		for _, path := range paths {
			sym := f.Imports[path]
			localName, shortName := ParseSelector(path)
			_ = localName
			if sym == shortName {
				fmt.Fprintf(&b, "\t%q\n", path)
			} else {
				fmt.Fprintf(&b, "\t%s %q\n", sym, path)
			}
		}
		b.WriteString(")\n\n")
	}

	b.Write(f.Content)

	if f.Trailer != "" {
		b.WriteString(f.Trailer)
	}

	out, err := format.Source(b.Bytes())
	if err != nil {
		return b.Bytes(), err
	}
	return out, nil
}
