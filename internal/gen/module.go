package gen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// PackagePath returns the Go import path for directory dir, derived from
// the nearest ancestor go.mod file's module directive plus the relative
// path from that module root to dir.
func PackagePath(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("gen: not a directory: %s", dir)
	}

	var modPath string
	var subdirs string
	for {
		modFile := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(modFile); err != nil {
			parent, rest := filepath.Split(dir)
			if parent == "" || filepath.Clean(parent) == dir {
				return "", errors.New("gen: unable to locate a go.mod file")
			}
			dir = filepath.Clean(parent)
			subdirs = path.Join(rest, subdirs)
			continue
		}
		modPath = modFile
		break
	}

	f, err := os.Open(modPath)
	if err != nil {
		return "", fmt.Errorf("gen: unable to open %s: %w", modPath, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	module := modfile.ModulePath(data)
	if module == "" {
		return "", fmt.Errorf("gen: no module path in %s", modPath)
	}
	return path.Join(module, subdirs), nil
}
