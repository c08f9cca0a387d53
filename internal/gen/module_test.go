package gen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPackagePath(t *testing.T) {
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/widget\n\ngo 1.22\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "internal", "host")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := PackagePath(sub)
	if err != nil {
		t.Fatal(err)
	}
	want := "example.com/widget/internal/host"
	if got != want {
		t.Errorf("PackagePath() = %q, want %q", got, want)
	}
}

func TestPackagePathNoModule(t *testing.T) {
	root := t.TempDir()
	if _, err := PackagePath(root); err == nil {
		t.Error("PackagePath() on a directory with no go.mod ancestor: want error, got nil")
	}
}
