// Package gen provides a buffered, append-only token stream for emitting
// Go source, along with the identifier-casing and import-table machinery
// used to render WIT names into idiomatic Go.
package gen

import "github.com/wit-hostgen/wit-hostgen-go/internal/ordkeys"

// Package represents a Go package, containing zero or more files of
// generated code.
type Package struct {
	// Path is the Go import path, e.g. "github.com/org/repo/internal/host".
	Path string

	// Name is the short Go package name, e.g. "host".
	Name string

	// Files is the list of Go source files in this package, keyed by file name.
	Files map[string]*File

	// Declared tracks package-scoped identifiers already in use, so that
	// distinct WIT names never collide after case conversion.
	Declared map[string]bool
}

// NewPackage returns a newly initialized Package for path.
// The local package name may optionally be specified with a "#name" suffix.
func NewPackage(path string) *Package {
	p := &Package{
		Files:    make(map[string]*File),
		Declared: make(map[string]bool),
	}
	p.Path, p.Name = ParseSelector(path)
	return p
}

// File finds or creates the file named name within pkg.
func (pkg *Package) File(name string) *File {
	if f, ok := pkg.Files[name]; ok {
		return f
	}
	f := &File{
		Name:    name,
		Package: pkg,
		Imports: make(map[string]string),
		scope:   make(map[string]bool),
	}
	pkg.Files[name] = f
	return f
}

// HasContent reports whether pkg contains at least one [File] with
// non-empty content.
func (pkg *Package) HasContent() bool {
	for _, f := range pkg.Files {
		if f.HasContent() {
			return true
		}
	}
	return false
}

// SortedFileNames returns the names of pkg's files in deterministic order,
// so repeated generation runs emit files in the same order.
func (pkg *Package) SortedFileNames() []string {
	return ordkeys.Sorted(pkg.Files)
}

// HasName reports whether name is already declared at package scope or in
// any ancestor [Scope] (the reserved-word scope).
func (pkg *Package) HasName(name string) bool {
	return pkg.Declared[name] || Reserved().HasName(name)
}

// DeclareName declares name at package scope, mangling it if necessary to
// avoid a collision, and returns the name actually declared.
func (pkg *Package) DeclareName(name string) string {
	name = UniqueName(name, pkg.HasName)
	pkg.Declared[name] = true
	return name
}
