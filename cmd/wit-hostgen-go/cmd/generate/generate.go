package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytecodealliance/wasm-tools-go/wit"
	"github.com/urfave/cli/v3"

	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
	"github.com/wit-hostgen/wit-hostgen-go/internal/host"
	"github.com/wit-hostgen/wit-hostgen-go/internal/oci"
	"github.com/wit-hostgen/wit-hostgen-go/internal/witcli"
)

// Command is the CLI command for generate.
var Command = &cli.Command{
	Name:    "generate",
	Aliases: []string{"go"},
	Usage:   "generate Go host bindings from a compiled WebAssembly component",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "world",
			Aliases:  []string{"w"},
			Value:    "",
			OnlyOnce: true,
			Config:   cli.StringConfig{TrimSpace: true},
			Usage:    "WIT world to generate, otherwise the component's sole or last world",
		},
		&cli.StringFlag{
			Name:      "out",
			Aliases:   []string{"o"},
			Value:     ".",
			TakesFile: true,
			OnlyOnce:  true,
			Config:    cli.StringConfig{TrimSpace: true},
			Usage:     "output directory",
		},
		&cli.StringFlag{
			Name:     "package-root",
			Aliases:  []string{"p"},
			Value:    "",
			OnlyOnce: true,
			Config:   cli.StringConfig{TrimSpace: true},
			Usage:    "Go package root, e.g. github.com/org/repo/internal",
		},
		&cli.StringFlag{
			Name:     "wasm-file",
			Value:    "",
			OnlyOnce: true,
			Config:   cli.StringConfig{TrimSpace: true},
			Usage:    "sibling asset name for the guest bytes, defaults to <world>.wasm",
		},
		&cli.BoolFlag{
			Name:  "inline-wasm",
			Usage: "embed the guest bytes into the generated package with //go:embed",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "do not write files; print to stdout",
		},
	},
	Action: action,
}

type config struct {
	dryRun     bool
	out        string
	outPerm    os.FileMode
	pkgRoot    string
	world      string
	wasmFile   string
	inlineWasm bool
	forceWIT   bool
	path       string
}

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := parseFlags(cmd)
	if err != nil {
		return err
	}

	res, core, err := loadComponent(ctx, cfg)
	if err != nil {
		return err
	}

	pkg, err := host.Generate(res, core, host.Options{
		World:        cfg.world,
		PackagePath:  cfg.pkgRoot,
		GeneratedBy:  cmd.Root().Name,
		InlineWasm:   cfg.inlineWasm,
		WasmFileName: cfg.wasmFile,
	})
	if err != nil {
		return err
	}

	return writeGoPackage(pkg, core, cfg)
}

func parseFlags(cmd *cli.Command) (*config, error) {
	dryRun := cmd.Bool("dry-run")
	out := cmd.String("out")

	info, err := os.Stat(out)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", out)
	}
	fmt.Fprintf(os.Stderr, "Output dir: %s\n", out)
	outPerm := info.Mode().Perm()

	pkgRoot := cmd.String("package-root")
	if !cmd.IsSet("package-root") {
		pkgRoot, err = gen.PackagePath(out)
		if err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(os.Stderr, "Package root: %s\n", pkgRoot)

	path, err := witcli.LoadPath(cmd.Args().Slice()...)
	if err != nil {
		return nil, err
	}

	return &config{
		dryRun:     dryRun,
		out:        out,
		outPerm:    outPerm,
		pkgRoot:    pkgRoot,
		world:      cmd.String("world"),
		wasmFile:   cmd.String("wasm-file"),
		inlineWasm: cmd.Bool("inline-wasm"),
		forceWIT:   cmd.Bool("force-wit"),
		path:       path,
	}, nil
}

// loadComponent resolves the world(s) embedded in the compiled component at
// cfg.path and returns the component's own raw bytes, the payload
// internal/host embeds or ships alongside the generated package.
func loadComponent(ctx context.Context, cfg *config) (*wit.Resolve, []byte, error) {
	if oci.IsOCIPath(cfg.path) {
		fmt.Fprintf(os.Stderr, "Fetching OCI artifact %s\n", cfg.path)
		buf, err := oci.PullWIT(ctx, cfg.path)
		if err != nil {
			return nil, nil, err
		}
		core := buf.Bytes()
		res, err := wit.LoadWITFromBuffer(core)
		if err != nil {
			return nil, nil, err
		}
		return res, core, nil
	}

	core, err := os.ReadFile(cfg.path)
	if err != nil {
		return nil, nil, err
	}
	res, err := witcli.LoadWIT(ctx, cfg.forceWIT, cfg.path)
	if err != nil {
		return nil, nil, err
	}
	return res, core, nil
}

func writeGoPackage(pkg *gen.Package, core []byte, cfg *config) error {
	if !pkg.HasContent() {
		fmt.Fprintf(os.Stderr, "Skipping empty package: %s\n", pkg.Path)
		return nil
	}
	fmt.Fprintf(os.Stderr, "Generated package: %s\n", pkg.Path)

	var pkgDir string
	for _, filename := range pkg.SortedFileNames() {
		file := pkg.Files[filename]
		dir := filepath.Join(cfg.out, strings.TrimPrefix(file.Package.Path, cfg.pkgRoot))
		pkgDir = dir
		path := filepath.Join(dir, file.Name)

		if !file.HasContent() {
			fmt.Fprintf(os.Stderr, "Skipping empty file: %s\n", path)
			continue
		}

		if err := os.MkdirAll(dir, cfg.outPerm); err != nil {
			return err
		}

		content, err := file.Bytes()
		if err != nil {
			if content == nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Error formatting file: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Generated file: %s\n", path)
		}

		if cfg.dryRun {
			fmt.Println(string(content))
			fmt.Println()
			continue
		}

		if err := os.WriteFile(path, content, cfg.outPerm); err != nil {
			return err
		}
	}

	if cfg.dryRun || pkgDir == "" {
		return nil
	}

	wasmFile := cfg.wasmFile
	if wasmFile == "" {
		// host.Generate names its Go file "<world>.gen.go"; the generated
		// loader expects the asset as "<world>.wasm".
		for _, filename := range pkg.SortedFileNames() {
			if base, ok := strings.CutSuffix(filename, ".gen.go"); ok {
				wasmFile = base + ".wasm"
			}
		}
	}
	if wasmFile == "" {
		wasmFile = pkg.Name + ".wasm"
	}
	wasmPath := filepath.Join(pkgDir, wasmFile)
	fmt.Fprintf(os.Stderr, "Generated WIT asset: %s\n", wasmPath)
	return os.WriteFile(wasmPath, core, cfg.outPerm)
}
