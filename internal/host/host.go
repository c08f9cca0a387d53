// Package host implements the World generator (original §4.4): given a
// resolved WIT world and the compiled guest bytes backing it, it emits a
// Factory/Instance pair that wraps the guest behind Go methods, wiring
// imports as wazero host-module-builder chains and exports as *Instance
// methods. It is the last stage of the pipeline internal/witabi and
// internal/abi feed: this package never emits an ABI instruction itself,
// it only decides which function gets a body and hands a *abi.FuncBuild to
// the witabi.Driver to fill it in.
package host

import (
	"fmt"

	"github.com/bytecodealliance/wasm-tools-go/wit"

	"github.com/wit-hostgen/wit-hostgen-go/internal/abi"
	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
	"github.com/wit-hostgen/wit-hostgen-go/internal/htype"
)

// Options configures Generate.
type Options struct {
	// World selects a world by name. Empty selects the sole world, or the
	// last declared world if res has more than one, matching the teacher's
	// own defineWorlds default in wit/bindgen/generator.go.
	World string

	// PackagePath is the Go import path of the output package, e.g.
	// "github.com/org/repo/internal/greeter".
	PackagePath string

	// GeneratedBy is stamped into each file's "Code generated by ..."
	// header. Typically the invoking binary's name.
	GeneratedBy string

	// InlineWasm selects //go:embed for the guest bytes. When false, the
	// guest bytes are read from a sibling file at runtime, located via
	// internal/callerfs relative to the generated source file.
	InlineWasm bool

	// WasmFileName names the sibling asset file carrying core, in either
	// mode. Defaults to "<world>.wasm".
	WasmFileName string
}

// generator carries the state one Generate call threads through the
// factory/imports/exports emitters, mirroring the teacher's own
// *generator receiver in wit/bindgen/generator.go.
type generator struct {
	res       *wit.Resolve
	world     *wit.World
	opts      Options
	pkg       *gen.Package
	file      *gen.File
	worldName string
	resolver  htype.Resolver

	// interfaceParams accumulates one (Go identifier, Go interface type
	// name, module wire name) tuple per imported interface, in
	// declaration order, feeding NewFactory's parameter list.
	interfaceParams []importParam

	// importChains holds one rendered host-module-builder chain per entry
	// in interfaceParams, in the same order, spliced into NewFactory's body
	// by emitFactory.
	importChains []string
}

type importParam struct {
	paramName string // e.g. "logger"
	ifaceType string // e.g. "IGreeterLogger"
	wireName  string // wazero host module name, e.g. "docs:greeter/logger"
}

// Generate drives original §4.4's imports-then-exports walk over the
// selected world, returning a single-package rendering of its Factory,
// Instance, and the host-module-builder chains and exported methods the
// wazero-linked guest needs.
func Generate(res *wit.Resolve, core []byte, opts Options) (*gen.Package, error) {
	w, err := selectWorld(res, opts.World)
	if err != nil {
		return nil, err
	}

	pkg := gen.NewPackage(opts.PackagePath)
	worldName := gen.CaseName(w.Name, gen.Public)
	file := pkg.File(gen.SnakeName(w.Name) + ".gen.go")
	file.GeneratedBy = opts.GeneratedBy
	file.PackageDocs = fmt.Sprintf("Package %s hosts the %q world's compiled guest behind a Factory/Instance pair.", pkg.Name, w.Name)

	g := &generator{
		res:       res,
		world:     w,
		opts:      opts,
		pkg:       pkg,
		file:      file,
		worldName: worldName,
	}

	if err := g.emitImports(); err != nil {
		return nil, fmt.Errorf("host: imports: %w", err)
	}
	if err := g.emitFactory(core); err != nil {
		return nil, fmt.Errorf("host: factory: %w", err)
	}
	if err := g.emitExports(); err != nil {
		return nil, fmt.Errorf("host: exports: %w", err)
	}

	return pkg, nil
}

// selectWorld mirrors the teacher's matchWorld: an exact world name, an
// exact "pkg/world" identifier, or (when name == "") the sole or final
// world in res, the way wit/bindgen/generator.go's defineWorlds defaults.
func selectWorld(res *wit.Resolve, name string) (*wit.World, error) {
	if len(res.Worlds) == 0 {
		return nil, fmt.Errorf("host: resolve contains no worlds")
	}
	if name == "" {
		return res.Worlds[len(res.Worlds)-1], nil
	}
	for i, w := range res.Worlds {
		if w.Name == name {
			return res.Worlds[i], nil
		}
		id := w.Package.Name
		id.Extension = w.Name
		if id.String() == name {
			return res.Worlds[i], nil
		}
	}
	return nil, fmt.Errorf("host: no world named %q", name)
}

// wasmFileName returns the configured or default sibling asset name for g's
// world.
func (g *generator) wasmFileName() string {
	if g.opts.WasmFileName != "" {
		return g.opts.WasmFileName
	}
	return gen.SnakeName(g.world.Name) + ".wasm"
}

// moduleWireName returns the wazero host module name a given imported
// interface registers under: its fully qualified WIT identifier, matching
// the Canonical ABI's own flattening of an interface onto a core import
// module name.
func moduleWireName(iface *wit.Interface) string {
	if iface.Name == nil {
		return ""
	}
	id := iface.Package.Name
	id.Extension = *iface.Name
	return id.String()
}

// newFuncBuild returns a FuncBuild for f in dir, with a ResultDescriptor
// derived from f's WIT result shape via the shared htype.Resolver, per
// original §4.3.2's error-propagation policy.
func (g *generator) newFuncBuild(f *wit.Function, dir abi.Direction) (*abi.FuncBuild, error) {
	result, err := g.resultDescriptor(f)
	if err != nil {
		return nil, err
	}
	return abi.NewFuncBuild(g.file, dir, result), nil
}

func (g *generator) resultDescriptor(f *wit.Function) (abi.ResultDescriptor, error) {
	switch len(f.Results) {
	case 0:
		return abi.ResultDescriptor{Kind: abi.ResultEmpty}, nil
	case 1:
		ht, err := g.resolver.Resolve(f.Results[0].Type)
		if err != nil {
			return abi.ResultDescriptor{}, err
		}
		return abi.ResultDescriptor{Kind: abi.ResultAnon, Type: ht}, nil
	default:
		return abi.ResultDescriptor{}, &abi.UnsupportedTypeError{Kind: "multiple named results (use a record)"}
	}
}

// goResultSignature renders f's result as a Go return-type list (without
// parens and without a leading "func..."), matching exactly what
// abi.Engine's OpReturn case will emit for this ResultDescriptor: a void
// function for ResultEmpty (abi.FuncBuild.errorPolicy can only abort on
// failure for that shape, per original open question (d)), a bare "error"
// for a pure-failure result, a (value, error) pair for ValueOrError, a
// (value, bool) pair for an option result, and a single value otherwise.
func goResultSignature(result abi.ResultDescriptor) string {
	switch {
	case result.Kind == abi.ResultEmpty, result.Type.Kind == htype.Unit:
		return ""
	case result.Type.Kind == htype.Error:
		return "error"
	case result.Type.Kind == htype.ValueOrError:
		return fmt.Sprintf("(%s, error)", htype.GoTypeRef(*result.Type.Elem))
	case result.Type.Kind == htype.ValueOrFlag:
		return fmt.Sprintf("(%s, bool)", htype.GoTypeRef(*result.Type.Elem))
	default:
		return htype.GoTypeRef(result.Type)
	}
}

// goParamList renders f's WIT parameters as a Go parameter list (without
// the leading "ctx context.Context,"), using argN for the Nth parameter so
// the names line up with what internal/witabi's OpGetArg instruction emits.
func goParamList(resolver htype.Resolver, f *wit.Function) (string, error) {
	var out string
	for i, p := range f.Params {
		ht, err := resolver.Resolve(p.Type)
		if err != nil {
			return "", fmt.Errorf("param %q: %w", p.Name, err)
		}
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("arg%d %s", i, htype.GoTypeRef(ht))
	}
	return out, nil
}

// memoryNeeds reports whether f's params or results touch a String or List
// anywhere in their type graph: the only two abi.Engine instructions
// (OpStringLower/Lift, OpListLower) that reference the generated function's
// "mem" or "cabi_realloc" locals. Both directions walk both params and
// results (export lowers params/lifts result, import lifts params/lowers
// result), so scanning the full signature regardless of direction is a safe
// superset.
func memoryNeeds(f *wit.Function) (needsString, needsList bool) {
	for _, p := range f.Params {
		s, l := typeTouches(p.Type)
		needsString = needsString || s
		needsList = needsList || l
	}
	for _, r := range f.Results {
		s, l := typeTouches(r.Type)
		needsString = needsString || s
		needsList = needsList || l
	}
	return needsString, needsList
}

func typeTouches(t wit.Type) (hasString, hasList bool) {
	switch kind := t.(type) {
	case wit.String:
		return true, false
	case *wit.TypeDef:
		return typeDefTouches(kind)
	default:
		return false, false
	}
}

func typeDefTouches(t *wit.TypeDef) (hasString, hasList bool) {
	switch kind := t.Kind.(type) {
	case *wit.TypeDef:
		return typeDefTouches(kind)
	case *wit.Record:
		for _, f := range kind.Fields {
			s, l := typeTouches(f.Type)
			hasString, hasList = hasString || s, hasList || l
		}
		return hasString, hasList
	case *wit.Tuple:
		for _, et := range kind.Types {
			s, l := typeTouches(et)
			hasString, hasList = hasString || s, hasList || l
		}
		return hasString, hasList
	case *wit.List:
		s, _ := typeTouches(kind.Type)
		return s, true
	case *wit.Option:
		return typeTouches(kind.Type)
	case *wit.Result:
		var s1, l1, s2, l2 bool
		if kind.OK != nil {
			s1, l1 = typeTouches(kind.OK)
		}
		if kind.Err != nil {
			s2, l2 = typeTouches(kind.Err)
		}
		return s1 || s2, l1 || l2
	case *wit.Variant:
		for _, c := range kind.Cases {
			if c.Type == nil {
				continue
			}
			s, l := typeTouches(c.Type)
			hasString, hasList = hasString || s, hasList || l
		}
		return hasString, hasList
	default:
		return false, false
	}
}

// emitMemoryPrologue declares the locals abi.Engine's string/list
// instructions assume are already in scope: "mem" (an api.Memory) and
// "cabi_realloc" (the guest's realloc export, an api.Function), derived
// from a module expression already bound to modExpr (e.g. "mod" or
// "i.module").
func emitMemoryPrologue(fb *abi.FuncBuild, file *gen.File, modExpr string, needsString, needsList bool) {
	if !needsString && !needsList {
		return
	}
	if needsString {
		fb.Emitf("mem := %s.Memory()\n", modExpr)
	}
	fb.Emitf("cabi_realloc := %s.ExportedFunction(\"cabi_realloc\")\n", modExpr)
	if needsList {
		fb.Emitf("malloc := func(ctx context.Context, size, align uint64) (uint64, error) {\n")
		fb.Emitf("\tresults, err := cabi_realloc.Call(ctx, 0, 0, align, size)\n")
		fb.Emitf("\tif err != nil {\n\t\treturn 0, err\n\t}\n")
		fb.Emitf("\treturn results[0], nil\n")
		fb.Emitf("}\n")
		file.Import("context")
	}
}
