package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/urfave/cli/v3"

	"github.com/wit-hostgen/wit-hostgen-go/cmd/wit-hostgen-go/cmd/describe"
	"github.com/wit-hostgen/wit-hostgen-go/cmd/wit-hostgen-go/cmd/generate"
	"github.com/wit-hostgen/wit-hostgen-go/cmd/wit-hostgen-go/cmd/print"
)

var (
	version  = ""
	revision = ""
)

func init() {
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = build.Main.Version
	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		}
	}
	if version == "" {
		version = revision
	}
	if version == "" {
		version = "(none)"
	}
}

// Command is the root CLI command, exported so tests can drive it directly.
var Command = &cli.Command{
	Name:  "wit-hostgen-go",
	Usage: "generate Go host bindings for a compiled WebAssembly component",
	Commands: []*cli.Command{
		generate.Command,
		describe.Command,
		print.Command,
	},
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "force-wit",
			Usage: "force loading WIT via wasm-tools",
		},
	},
	Version: version,
}

func main() {
	if err := Command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
