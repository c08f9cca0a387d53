package htype

import (
	"fmt"

	"github.com/bytecodealliance/wasm-tools-go/wit"

	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
)

// GoTypeRef renders t as a Go type expression. UserDefined and Resource
// resolve to a bare identifier, OwnedHandle and BorrowedHandle to uint32; callers
// emitting a field or parameter that crosses packages are responsible for
// importing the owning package themselves via [gen.File.RelativeName].
func GoTypeRef(t HType) string {
	switch t.Kind {
	case Bool:
		return "bool"
	case U8:
		return "uint8"
	case U16:
		return "uint16"
	case U32:
		return "uint32"
	case U64:
		return "uint64"
	case S8:
		return "int8"
	case S16:
		return "int16"
	case S32:
		return "int32"
	case S64:
		return "int64"
	case F32:
		return "float32"
	case F64:
		return "float64"
	case String:
		return "string"
	case Error:
		return "error"
	case Unit:
		return "struct{}"
	case OpaqueInterface:
		return t.Name
	case Pointer:
		return "*" + GoTypeRef(*t.Elem)
	case ValueOrFlag:
		// Rendered as a nullable pointer, the record-field form. Function
		// result signatures do not use this arm: host.goResultSignature
		// renders the element type and a separate bool itself.
		return "*" + GoTypeRef(*t.Elem)
	case ValueOrError:
		return GoTypeRef(*t.Elem)
	case Slice:
		return "[]" + GoTypeRef(*t.Elem)
	case UserDefined, Resource:
		return gen.CaseName(t.Name, gen.Public)
	case OwnedHandle, BorrowedHandle:
		return "uint32"
	}
	return "any"
}

// TypeDecl emits the host-language declaration for a named WIT TypeDef
// into file, registering goName in pkg's scope. It is not idempotent: a
// second call for the same TypeDef declares a mangled name and emits a
// second declaration.
func TypeDecl(file *gen.File, pkg *gen.Package, td *wit.TypeDef) (string, error) {
	name := td.TypeName()
	if name == "" {
		return "", fmt.Errorf("htype: TypeDecl requires a named TypeDef")
	}
	goName := pkg.DeclareName(gen.CaseName(name, gen.Public))

	switch kind := td.Kind.(type) {
	case *wit.Record:
		return goName, emitRecord(file, goName, kind)
	case *wit.Enum:
		return goName, emitEnum(file, goName, kind)
	case *wit.Variant:
		if e := kind.Enum(); e != nil {
			return goName, emitEnum(file, goName, e)
		}
		return goName, emitVariant(file, goName, kind)
	case *wit.Tuple:
		return goName, emitTupleAsRecord(file, goName, kind)
	case *wit.TypeDef:
		return goName, emitAlias(file, goName, kind)
	case wit.Type:
		return goName, emitPrimitiveAlias(file, goName, kind)
	}
	return "", &UnsupportedTypeError{Kind: fmt.Sprintf("%T", td.Kind)}
}

func emitRecord(file *gen.File, goName string, rec *wit.Record) error {
	fmt.Fprintf(file, "type %s struct {\n", goName)
	for _, f := range rec.Fields {
		ht, err := (Resolver{}).Resolve(f.Type)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		fieldName := gen.CaseName(f.Name, gen.Public)
		if f.Docs.Contents != nil && *f.Docs.Contents != "" {
			fmt.Fprint(file, gen.FormatDocComments(*f.Docs.Contents, false))
		}
		fmt.Fprintf(file, "\t%s %s\n", fieldName, GoTypeRef(ht))
	}
	fmt.Fprint(file, "}\n\n")
	return nil
}

func emitTupleAsRecord(file *gen.File, goName string, t *wit.Tuple) error {
	fmt.Fprintf(file, "type %s struct {\n", goName)
	for i, typ := range t.Types {
		ht, err := (Resolver{}).Resolve(typ)
		if err != nil {
			return fmt.Errorf("tuple field f%d: %w", i, err)
		}
		fmt.Fprintf(file, "\tF%d %s\n", i, GoTypeRef(ht))
	}
	fmt.Fprint(file, "}\n\n")
	return nil
}

func emitEnum(file *gen.File, goName string, e *wit.Enum) error {
	disc := wit.Discriminant(len(e.Cases))
	ht, err := (Resolver{}).Resolve(disc)
	if err != nil {
		return err
	}
	fmt.Fprintf(file, "type %s %s\n\n", goName, GoTypeRef(ht))
	fmt.Fprint(file, "const (\n")
	for i, c := range e.Cases {
		caseName := file.DeclareName(goName + gen.CaseName(c.Name, gen.Public))
		if i == 0 {
			fmt.Fprintf(file, "\t%s %s = iota\n", caseName, goName)
		} else {
			fmt.Fprintf(file, "\t%s\n", caseName)
		}
	}
	fmt.Fprint(file, ")\n\n")

	namesVar := file.DeclareName(goName + "Names")
	fmt.Fprintf(file, "var %s = [%d]string{\n", namesVar, len(e.Cases))
	for _, c := range e.Cases {
		fmt.Fprintf(file, "\t%q,\n", c.Name)
	}
	fmt.Fprint(file, "}\n\n")

	fmt.Fprint(file, gen.FormatDocComments("String implements fmt.Stringer, returning the WIT case name of e.", true))
	fmt.Fprintf(file, "func (e %s) String() string {\n\treturn %s[e]\n}\n\n", goName, namesVar)
	return nil
}

// emitVariant renders v as a sealed interface with one constructor type per
// case, each implementing a private tag method, per original §9's
// "tagged variants vs inheritance" note. Variant lifting (guest -> host) is
// unsupported in v1 (original open question b); only lowering (host ->
// guest) is required, so a variant's host representation need only
// identify which case is present and expose its payload, not reconstruct
// one from a wire discriminant.
func emitVariant(file *gen.File, goName string, v *wit.Variant) error {
	tagMethod := "is" + goName

	fmt.Fprintf(file, "// %s is a closed sum type; its cases are the %s* constructors below.\n", goName, goName)
	fmt.Fprintf(file, "type %s interface {\n\t%s()\n}\n\n", goName, tagMethod)

	for _, c := range v.Cases {
		caseGoName := file.DeclareName(goName + gen.CaseName(c.Name, gen.Public))
		if c.Type == nil {
			fmt.Fprintf(file, "type %s struct{}\n\n", caseGoName)
		} else {
			ht, err := (Resolver{}).Resolve(c.Type)
			if err != nil {
				return fmt.Errorf("variant case %q: %w", c.Name, err)
			}
			fmt.Fprintf(file, "type %s struct {\n\tValue %s\n}\n\n", caseGoName, GoTypeRef(ht))
		}
		fmt.Fprintf(file, "func (%s) %s() {}\n\n", caseGoName, tagMethod)
	}
	return nil
}

func emitAlias(file *gen.File, goName string, target *wit.TypeDef) error {
	fmt.Fprintf(file, "type %s = %s\n\n", goName, gen.CaseName(target.TypeName(), gen.Public))
	return nil
}

func emitPrimitiveAlias(file *gen.File, goName string, target wit.Type) error {
	ht, err := (Resolver{}).Resolve(target)
	if err != nil {
		return err
	}
	fmt.Fprintf(file, "type %s = %s\n\n", goName, GoTypeRef(ht))
	return nil
}
