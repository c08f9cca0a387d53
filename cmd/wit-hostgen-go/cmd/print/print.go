package print

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wit-hostgen/wit-hostgen-go/internal/witcli"
)

// Command is the CLI command for print.
var Command = &cli.Command{
	Name:   "print",
	Usage:  "prints counts and top-level names from a compiled WebAssembly component",
	Action: action,
}

func action(ctx context.Context, cmd *cli.Command) error {
	path, err := witcli.LoadPath(cmd.Args().Slice()...)
	if err != nil {
		return err
	}
	res, err := witcli.LoadWIT(ctx, cmd.Bool("force-wit"), path)
	if err != nil {
		return err
	}

	fmt.Printf("%d package(s), %d world(s), %d interface(s), %d type(s)\n",
		len(res.Packages), len(res.Worlds), len(res.Interfaces), len(res.TypeDefs))

	for _, pkg := range res.Packages {
		fmt.Printf("package %s\n", pkg.Name.String())
	}
	for _, w := range res.Worlds {
		fmt.Printf("world %s/%s: %d import(s), %d export(s)\n",
			w.Package.Name.String(), w.Name, w.Imports.Len(), w.Exports.Len())
	}
	for _, i := range res.Interfaces {
		name := "<inline>"
		if i.Name != nil {
			name = *i.Name
		}
		fmt.Printf("interface %s/%s: %d function(s), %d type(s)\n",
			i.Package.Name.String(), name, i.Functions.Len(), i.TypeDefs.Len())
	}

	return nil
}
