package host

import (
	"fmt"

	"github.com/bytecodealliance/wasm-tools-go/wit"

	"github.com/wit-hostgen/wit-hostgen-go/internal/abi"
	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
	"github.com/wit-hostgen/wit-hostgen-go/internal/witabi"
)

// emitExports walks the world's exported interfaces and freestanding
// functions, per original §4.4.4, emitting one *Instance method per export
// whose body lowers arguments, calls the guest's core export, and lifts the
// result, via witabi.Driver.WalkExport.
func (g *generator) emitExports() error {
	driver := witabi.Driver{Resolver: g.resolver}

	var funcs []*wit.Function
	g.world.Exports.All()(func(_ string, item wit.WorldItem) bool {
		switch v := item.(type) {
		case *wit.InterfaceRef:
			v.Interface.Functions.All()(func(_ string, f *wit.Function) bool {
				if f.IsFreestanding() {
					funcs = append(funcs, f)
				}
				return true
			})
		case *wit.Function:
			if v.IsFreestanding() {
				funcs = append(funcs, v)
			}
		case *wit.TypeDef:
			// Exported standalone types need no Instance method of their
			// own. This generator emits no declaration for them:
			// htype.TypeDecl is not called from this package.
		}
		return true
	})

	for _, f := range funcs {
		if err := g.emitExportMethod(driver, f); err != nil {
			return fmt.Errorf("export %q: %w", f.Name, err)
		}
	}
	return nil
}

func (g *generator) emitExportMethod(driver witabi.Driver, f *wit.Function) error {
	fb, err := g.newFuncBuild(f, abi.ExportCaller)
	if err != nil {
		return err
	}

	params, err := goParamList(g.resolver, f)
	if err != nil {
		return err
	}
	resultSig := goResultSignature(fb.Result)
	goName := gen.CaseName(f.BaseName(), gen.Public)

	if doc := docsOf(f); doc != "" {
		fmt.Fprint(g.file, gen.FormatDocComments(doc, false))
	}

	sig := fmt.Sprintf("func (i *%s) %s(ctx context.Context, %s)", g.instanceName(), goName, params)
	if resultSig != "" {
		sig += " " + resultSig
	}
	fb.Emitf("%s {\n", sig)
	fb.Emitf("mod := i.module\n")

	needsString, needsList := memoryNeeds(f)
	emitMemoryPrologue(fb, g.file, "mod", needsString, needsList)

	if err := driver.WalkExport(fb, f); err != nil {
		return err
	}
	fb.Emitf("}\n\n")

	g.file.Import("context")
	return fb.Flush()
}

func (g *generator) instanceName() string {
	return g.worldName + "Instance"
}

func docsOf(f *wit.Function) string {
	if f.Docs.Contents == nil {
		return ""
	}
	return *f.Docs.Contents
}
