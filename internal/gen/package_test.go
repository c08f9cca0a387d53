package gen

import "testing"

func TestNewPackage(t *testing.T) {
	pkg := NewPackage("github.com/org/repo/internal/host#hostgen")
	if pkg.Path != "github.com/org/repo/internal/host" {
		t.Errorf("Path = %q", pkg.Path)
	}
	if pkg.Name != "hostgen" {
		t.Errorf("Name = %q, want %q", pkg.Name, "hostgen")
	}
}

func TestPackageFileIsStable(t *testing.T) {
	pkg := NewPackage("example/pkg")
	a := pkg.File("a.go")
	b := pkg.File("a.go")
	if a != b {
		t.Error("File() returned distinct instances for the same name")
	}
}

func TestPackageDeclareNameCollides(t *testing.T) {
	pkg := NewPackage("example/pkg")
	first := pkg.DeclareName("Factory")
	second := pkg.DeclareName("Factory")
	if first == second {
		t.Errorf("DeclareName did not mangle a repeated declaration: %q", first)
	}
}

func TestPackageHasContent(t *testing.T) {
	pkg := NewPackage("example/pkg")
	if pkg.HasContent() {
		t.Error("HasContent() = true for an empty package")
	}
	f := pkg.File("a.go")
	f.Write([]byte("var x int\n"))
	if !pkg.HasContent() {
		t.Error("HasContent() = false after writing content")
	}
}

func TestPackageSortedFileNames(t *testing.T) {
	pkg := NewPackage("example/pkg")
	pkg.File("z.go")
	pkg.File("a.go")
	pkg.File("m.go")
	names := pkg.SortedFileNames()
	want := []string{"a.go", "m.go", "z.go"}
	if len(names) != len(want) {
		t.Fatalf("SortedFileNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("SortedFileNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
