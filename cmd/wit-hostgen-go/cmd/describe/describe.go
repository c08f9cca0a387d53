package describe

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytecodealliance/wasm-tools-go/wit"
	"github.com/urfave/cli/v3"

	"github.com/wit-hostgen/wit-hostgen-go/internal/witcli"
)

// Command is the CLI command for describe.
var Command = &cli.Command{
	Name:   "describe",
	Usage:  "describes the world(s) embedded in a compiled WebAssembly component",
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

	p := &printer{w: os.Stdout}
	for i, w := range res.Worlds {
		if i > 0 {
			p.Println()
		}
		printWorld(p, w)
	}
	return nil
}

func printWorld(p *printer, w *wit.World) {
	name := w.Package.Name.String() + "/" + w.Name
	if w.Imports.Len() == 0 && w.Exports.Len() == 0 {
		p.Printf("world %s {}\n", name)
		return
	}
	p.Printf("world %s {", name)
	p.Println()
	ip := p.Indent()
	n := 0
	w.Imports.All()(func(name string, item wit.WorldItem) bool {
		if n > 0 {
			ip.Println()
		}
		ip.Print("import ")
		printWorldItem(ip, name, item)
		n++
		return true
	})
	w.Exports.All()(func(name string, item wit.WorldItem) bool {
		if n > 0 {
			ip.Println()
		}
		ip.Print("export ")
		printWorldItem(ip, name, item)
		n++
		return true
	})
	p.Println("}")
}

func printWorldItem(p *printer, name string, item wit.WorldItem) {
	switch v := item.(type) {
	case *wit.InterfaceRef:
		printInterface(p, name, v.Interface)
	case *wit.TypeDef:
		printTypeDef(p, name, v)
	case *wit.Function:
		printFunction(p, name, v)
	}
}

func printInterface(p *printer, name string, i *wit.Interface) {
	if i.Name != nil {
		name = i.Package.Name.String() + "/" + *i.Name
	}
	p.Printf("%s {", name)
	if i.TypeDefs.Len() > 0 || i.Functions.Len() > 0 {
		p.Println()
		ip := p.Indent()
		n := 0
		i.TypeDefs.All()(func(name string, t *wit.TypeDef) bool {
			if n > 0 {
				ip.Println()
			}
			printTypeDef(ip, name, t)
			n++
			return true
		})
		i.Functions.All()(func(name string, f *wit.Function) bool {
			if n > 0 {
				ip.Println()
			}
			printFunction(ip, name, f)
			n++
			return true
		})
	}
	p.Println("}")
}

func printTypeDef(p *printer, name string, t *wit.TypeDef) {
	if t.Name != nil {
		name = *t.Name
	}
	p.Printf("type %s = ", name)
	printType(p, t)
	p.Println()
}

func printType(p *printer, t wit.Type) {
	switch t := t.(type) {
	case *wit.TypeDef:
		if t.Name != nil {
			p.Printf("%s", *t.Name)
			return
		}
		p.Printf("%T", t.Kind)
	default:
		p.Printf("%T", t)
	}
}

func printFunction(p *printer, name string, f *wit.Function) {
	p.Printf("%s: func(", name)
	printParams(p, f.Params)
	p.Printf(")")
	if len(f.Results) > 0 {
		p.Printf(" -> ")
		printParams(p, f.Results)
	}
	p.Println()
}

func printParams(p *printer, params []wit.Param) {
	for i, param := range params {
		if i > 0 {
			p.Print(", ")
		}
		if param.Name != "" {
			p.Printf("%s: ", param.Name)
		}
		printType(p, param.Type)
	}
}

// printer renders nested WIT syntax with tab indentation, matching the
// teacher's own gen.File token-stream style of building text incrementally
// rather than through a template.
type printer struct {
	w        io.Writer
	depth    int
	indented int
}

func (p *printer) Indent() *printer {
	pi := *p
	pi.depth++
	return &pi
}

func (p *printer) Print(a ...any) {
	p.print(fmt.Sprint(a...))
}

func (p *printer) Println(a ...any) {
	p.print(fmt.Sprintln(a...))
}

func (p *printer) Printf(format string, a ...any) {
	p.print(fmt.Sprintf(format, a...))
}

func (p *printer) print(s string) {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			return
		}
		fmt.Fprint(p.w, strings.Repeat("\t", p.depth-p.indented))
		p.indented = p.depth
		fmt.Fprint(p.w, line)
		if i < len(lines)-1 {
			fmt.Fprint(p.w, "\n")
			p.indented = 0
		}
	}
}
