package host

import (
	"fmt"

	"github.com/bytecodealliance/wasm-tools-go/wit"
	"github.com/coreos/go-semver/semver"

	"github.com/wit-hostgen/wit-hostgen-go/internal/abi"
	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
	"github.com/wit-hostgen/wit-hostgen-go/internal/witabi"
)

// importGroup is one imported interface (or, for bare world-level imported
// functions, a synthesized root group), matching original §4.4.2's
// per-interface host-module-builder chain and the constructor parameter
// that supplies its implementation.
type importGroup struct {
	wireName  string
	ifaceType string
	paramName string
	version   *semver.Version
	funcs     []*wit.Function
}

// emitImports walks the world's imported interfaces and freestanding
// functions, per original §4.4.2: for each, it declares the Go interface a
// caller of NewFactory must implement and records the host-module-builder
// chain text NewFactory will splice in, via emitFactory.
func (g *generator) emitImports() error {
	var groups []importGroup
	var rootFuncs []*wit.Function

	g.world.Imports.All()(func(name string, item wit.WorldItem) bool {
		switch v := item.(type) {
		case *wit.InterfaceRef:
			groups = append(groups, g.importGroupFor(v.Interface))
		case *wit.Function:
			if v.IsFreestanding() {
				rootFuncs = append(rootFuncs, v)
			}
		case *wit.TypeDef:
			// Imported standalone types get no declaration: this
			// generator does not call htype.TypeDecl, for these or for
			// types referenced from function signatures.
		}
		_ = name
		return true
	})

	if len(rootFuncs) > 0 {
		groups = append(groups, importGroup{
			wireName:  g.rootModuleName(),
			ifaceType: g.worldName + "Imports",
			paramName: "imports",
			funcs:     rootFuncs,
		})
	}

	groups = disambiguateVersions(groups)

	driver := witabi.Driver{Resolver: g.resolver}
	for _, grp := range groups {
		if err := g.emitInterfaceType(grp); err != nil {
			return err
		}
		chain, err := g.buildImportChain(driver, grp)
		if err != nil {
			return err
		}
		g.interfaceParams = append(g.interfaceParams, importParam{
			paramName: grp.paramName,
			ifaceType: grp.ifaceType,
			wireName:  grp.wireName,
		})
		g.importChains = append(g.importChains, chain)
	}
	return nil
}

func (g *generator) rootModuleName() string {
	id := g.world.Package.Name
	id.Extension = g.world.Name
	return id.String()
}

func (g *generator) importGroupFor(iface *wit.Interface) importGroup {
	var funcs []*wit.Function
	iface.Functions.All()(func(_ string, f *wit.Function) bool {
		if f.IsFreestanding() {
			funcs = append(funcs, f)
		}
		return true
	})
	ifaceName := ""
	if iface.Name != nil {
		ifaceName = *iface.Name
	}
	return importGroup{
		wireName:  moduleWireName(iface),
		ifaceType: "I" + g.worldName + gen.CaseName(ifaceName, gen.Public),
		paramName: gen.CaseName(ifaceName, gen.Local),
		version:   iface.Package.Name.Version,
		funcs:     funcs,
	}
}

// disambiguateVersions resolves a Go symbol collision between two imported
// interfaces that share a name but differ by WIT package version (wazero
// itself never collides on this, since moduleWireName already embeds the
// version in the wire string; the collision is in the Go identifiers
// NewFactory's constructor would otherwise declare twice). The higher
// semver version keeps the plain ifaceType/paramName; every older version
// is suffixed with its major version, so both remain separately
// addressable NewFactory parameters.
func disambiguateVersions(groups []importGroup) []importGroup {
	byIfaceType := map[string][]int{}
	for i, g := range groups {
		byIfaceType[g.ifaceType] = append(byIfaceType[g.ifaceType], i)
	}
	for _, idxs := range byIfaceType {
		if len(idxs) < 2 {
			continue
		}
		sortByVersionDesc(groups, idxs)
		for _, i := range idxs[1:] {
			if groups[i].version == nil {
				continue
			}
			suffix := fmt.Sprintf("V%d", groups[i].version.Major)
			groups[i].ifaceType += suffix
			groups[i].paramName += suffix
		}
	}
	return groups
}

func sortByVersionDesc(groups []importGroup, idxs []int) {
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0; j-- {
			a, b := groups[idxs[j-1]].version, groups[idxs[j]].version
			if a != nil && b != nil && a.LessThan(*b) {
				idxs[j-1], idxs[j] = idxs[j], idxs[j-1]
				continue
			}
			break
		}
	}
}

// emitInterfaceType declares the Go interface a NewFactory caller must
// implement to back grp's imports, per original §4.4.3's
// generate_interface_type.
func (g *generator) emitInterfaceType(grp importGroup) error {
	fmt.Fprintf(g.file, "// %s is the host implementation a caller of New%sFactory supplies for\n", grp.ifaceType, g.worldName)
	fmt.Fprintf(g.file, "// the %q import.\n", grp.wireName)
	fmt.Fprintf(g.file, "type %s interface {\n", grp.ifaceType)
	for _, f := range grp.funcs {
		params, err := goParamList(g.resolver, f)
		if err != nil {
			return fmt.Errorf("interface %s method %q: %w", grp.ifaceType, f.Name, err)
		}
		result, err := g.resultDescriptor(f)
		if err != nil {
			return err
		}
		sig := goResultSignature(result)
		line := fmt.Sprintf("\t%s(ctx context.Context, %s)", gen.CaseName(f.BaseName(), gen.Public), params)
		if sig != "" {
			line += " " + sig
		}
		fmt.Fprintln(g.file, line)
	}
	fmt.Fprint(g.file, "}\n\n")
	g.file.Import("context")
	return nil
}

// buildImportChain renders the host-module-builder chain that registers
// grp's functions under grp.wireName, per original §4.4.2's
// generate_host_function_builder: one NewFunctionBuilder().WithFunc(...)
// per function, closing over grp.paramName (the NewFactory parameter
// holding the caller's implementation).
func (g *generator) buildImportChain(driver witabi.Driver, grp importGroup) (string, error) {
	errName := g.file.DeclareName("err" + gen.CaseName(grp.paramName, gen.Public))
	chain := fmt.Sprintf("_, %s := runtime.NewHostModuleBuilder(%q).\n", errName, grp.wireName)

	for _, f := range grp.funcs {
		body, err := g.buildWithFuncClosure(driver, grp, f)
		if err != nil {
			return "", fmt.Errorf("import %s.%s: %w", grp.wireName, f.Name, err)
		}
		chain += body
		chain += fmt.Sprintf("\tExport(%q).\n", witabi.CoreExportName(f))
	}
	chain += "\tInstantiate(ctx)\n"
	chain += fmt.Sprintf("if %s != nil {\n\treturn nil, %s\n}\n", errName, errName)
	return chain, nil
}

func (g *generator) buildWithFuncClosure(driver witabi.Driver, grp importGroup, f *wit.Function) (string, error) {
	fb, err := g.newFuncBuild(f, abi.ImportTrampoline)
	if err != nil {
		return "", err
	}
	fb.InterfaceParam = grp.paramName

	var sig string
	sig += "\tNewFunctionBuilder().\n"
	sig += "\tWithFunc(func(ctx context.Context, mod api.Module"
	for i, p := range f.Params {
		sig += fmt.Sprintf(", arg%d %s", i, coreGoType(p.Type))
	}
	sig += ")"
	if resType := coreResultType(f); resType != "" {
		sig += " " + resType
	}
	sig += " {\n"

	needsString, needsList := memoryNeeds(f)
	emitMemoryPrologue(fb, g.file, "mod", needsString, needsList)

	if err := driver.WalkImport(fb, f); err != nil {
		return "", err
	}

	g.file.Import("context")
	g.file.Import("github.com/tetratelabs/wazero/api")
	return sig + fb.Body() + "\t}).\n", nil
}

// coreGoType picks the Go numeric type a WithFunc closure parameter must
// declare for t, per wazero's host-function restriction to
// uint32/uint64/float32/float64. Aggregate and string types still resolve
// to a single uint32 slot: internal/witabi's param walk emits one OpGetArg
// per high-level wit.Param rather than per flattened core value, so a
// multi-slot parameter at the import-trampoline boundary is a known v1
// limitation (see DESIGN.md) rather than something this function works
// around.
func coreGoType(t wit.Type) string {
	switch t.(type) {
	case wit.U64, wit.S64:
		return "uint64"
	case wit.F32:
		return "float32"
	case wit.F64:
		return "float64"
	default:
		return "uint32"
	}
}

// coreResultType mirrors coreGoType for f's single result, returning "" for
// a function with no declared result.
func coreResultType(f *wit.Function) string {
	if len(f.Results) == 0 {
		return ""
	}
	return coreGoType(f.Results[0].Type)
}
