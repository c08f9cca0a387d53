package host

import (
	"fmt"

	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
)

// emitFactory renders the Factory/Instance scaffolding original §4.4.1 and
// §4.4.4 describe: the core-bytes payload (inline //go:embed or a sibling
// on-disk asset located via internal/callerfs), the Factory struct and its
// constructor (one parameter per imported interface, the import_chains
// built by emitImports spliced in declaration order), Factory.Instantiate,
// Factory.Close, the Instance struct, and Instance.Close.
func (g *generator) emitFactory(core []byte) error {
	factoryName := g.worldName + "Factory"
	instanceName := g.instanceName()
	wasmVar := "compiledWasm"

	if err := g.emitCoreBytes(wasmVar); err != nil {
		return err
	}

	fmt.Fprintf(g.file, "// %s holds the compiled %q guest and the host-side\n", factoryName, g.world.Name)
	fmt.Fprintf(g.file, "// implementations of its imports. Instantiate it once per guest lifetime;\n")
	fmt.Fprintf(g.file, "// each %s.Instantiate call yields an independent %s.\n", factoryName, instanceName)
	fmt.Fprintf(g.file, "type %s struct {\n", factoryName)
	fmt.Fprintf(g.file, "\truntime  wazero.Runtime\n")
	fmt.Fprintf(g.file, "\tcompiled wazero.CompiledModule\n")
	fmt.Fprintf(g.file, "\thandles  map[string][]any\n")
	fmt.Fprint(g.file, "}\n\n")

	fmt.Fprintf(g.file, "func New%s(ctx context.Context", factoryName)
	for _, p := range g.interfaceParams {
		fmt.Fprintf(g.file, ", %s %s", p.paramName, p.ifaceType)
	}
	fmt.Fprintf(g.file, ") (*%s, error) {\n", factoryName)
	fmt.Fprint(g.file, "\truntime := wazero.NewRuntime(ctx)\n")
	fmt.Fprint(g.file, "\tif _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {\n")
	fmt.Fprint(g.file, "\t\truntime.Close(ctx)\n\t\treturn nil, err\n\t}\n\n")

	for _, chain := range g.importChains {
		fmt.Fprint(g.file, indentLines(chain, "\t"))
		fmt.Fprintln(g.file)
	}

	fmt.Fprint(g.file, "\t// Compiling the module takes a long time, so the Factory does it once\n")
	fmt.Fprint(g.file, "\t// and holds onto the result for every Instantiate call.\n")
	fmt.Fprintf(g.file, "\tcompiled, err := runtime.CompileModule(ctx, %s)\n", wasmVar)
	fmt.Fprint(g.file, "\tif err != nil {\n\t\truntime.Close(ctx)\n\t\treturn nil, err\n\t}\n\n")
	fmt.Fprintf(g.file, "\treturn &%s{runtime: runtime, compiled: compiled, handles: map[string][]any{}}, nil\n", factoryName)
	fmt.Fprint(g.file, "}\n\n")

	fmt.Fprintf(g.file, "func (f *%s) Instantiate(ctx context.Context) (*%s, error) {\n", factoryName, instanceName)
	fmt.Fprint(g.file, "\tmod, err := f.runtime.InstantiateModule(ctx, f.compiled, wazero.NewModuleConfig())\n")
	fmt.Fprint(g.file, "\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(g.file, "\treturn &%s{module: mod}, nil\n", instanceName)
	fmt.Fprint(g.file, "}\n\n")

	fmt.Fprintf(g.file, "func (f *%s) Close(ctx context.Context) error {\n", factoryName)
	fmt.Fprint(g.file, "\treturn f.runtime.Close(ctx)\n")
	fmt.Fprint(g.file, "}\n\n")

	fmt.Fprintf(g.file, "// %s wraps one instantiation of the %q guest.\n", instanceName, g.world.Name)
	fmt.Fprintf(g.file, "type %s struct {\n\tmodule api.Module\n}\n\n", instanceName)
	fmt.Fprintf(g.file, "func (i *%s) Close(ctx context.Context) error {\n", instanceName)
	fmt.Fprint(g.file, "\treturn i.module.Close(ctx)\n")
	fmt.Fprint(g.file, "}\n\n")

	g.emitWriteStringHelper()

	g.file.Import("context")
	g.file.Import("github.com/tetratelabs/wazero")
	g.file.Import("github.com/tetratelabs/wazero/api")
	g.file.Import("github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1")
	return nil
}

// emitCoreBytes declares the package-level variable named varName holding
// the guest's compiled bytes, per original §4.4.1: InlineWasm selects
// //go:embed directly against a sibling asset file; otherwise the bytes are
// read from a sibling file at runtime, located relative to the generated
// source via internal/callerfs so the binary need not be run from the
// package's own directory.
func (g *generator) emitCoreBytes(varName string) error {
	assetName := g.wasmFileName()
	if g.opts.InlineWasm {
		g.file.Embed(assetName, varName)
		return nil
	}
	fmt.Fprintf(g.file, "var %s = mustReadCore(%q)\n\n", varName, assetName)
	fmt.Fprint(g.file, "func mustReadCore(name string) []byte {\n")
	fmt.Fprint(g.file, "\tb, err := os.ReadFile(callerfs.Path(name))\n")
	fmt.Fprint(g.file, "\tif err != nil {\n\t\tpanic(err)\n\t}\n")
	fmt.Fprint(g.file, "\treturn b\n")
	fmt.Fprint(g.file, "}\n\n")
	g.file.Import("os")
	g.file.Import("github.com/wit-hostgen/wit-hostgen-go/internal/callerfs")
	return nil
}

// emitWriteStringHelper renders the writeString package function original
// §4.4.1 pairs with every guest call that lowers a Go string: it puts s
// into the guest's linear memory following Component Model calling
// conventions, allocating space via the guest's own cabi_realloc export.
func (g *generator) emitWriteStringHelper() {
	fmt.Fprint(g.file, gen.FormatDocComments(
		"writeString puts s into the guest's linear memory following the Component Model calling conventions, allocating space with the guest's own realloc export.", false))
	fmt.Fprint(g.file, "func writeString(ctx context.Context, s string, memory api.Memory, realloc api.Function) (uint64, uint64, error) {\n")
	fmt.Fprint(g.file, "\tif len(s) == 0 {\n\t\treturn 1, 0, nil\n\t}\n\n")
	fmt.Fprint(g.file, "\tresults, err := realloc.Call(ctx, 0, 0, 1, uint64(len(s)))\n")
	fmt.Fprint(g.file, "\tif err != nil {\n\t\treturn 1, 0, err\n\t}\n")
	fmt.Fprint(g.file, "\tptr := results[0]\n")
	fmt.Fprint(g.file, "\tif ok := memory.Write(uint32(ptr), []byte(s)); !ok {\n")
	fmt.Fprint(g.file, "\t\treturn 1, 0, fmt.Errorf(\"failed to write string to wasm memory\")\n\t}\n")
	fmt.Fprint(g.file, "\treturn ptr, uint64(len(s)), nil\n")
	fmt.Fprint(g.file, "}\n\n")
	g.file.Import("fmt")
}

func indentLines(s, prefix string) string {
	out := prefix
	for i := 0; i < len(s); i++ {
		out += string(s[i])
		if s[i] == '\n' && i != len(s)-1 {
			out += prefix
		}
	}
	return out
}
