// Package witabi drives internal/abi's Engine over a resolved wit.Function,
// translating the function's WIT parameter and result types into the flat
// instruction stream the engine expects. It plays the role original §4.5
// assigns an external ABI driver: the engine never inspects a wit.Type
// itself, and this package never emits Go source itself — it only walks
// the type graph and hands engine.Emit the next instruction.
package witabi

import (
	"fmt"

	"github.com/bytecodealliance/wasm-tools-go/wit"

	"github.com/wit-hostgen/wit-hostgen-go/internal/abi"
	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
	"github.com/wit-hostgen/wit-hostgen-go/internal/htype"
)

// CoreExportName returns the core Wasm export name a resolved guest
// binary registers for f: f's WIT name unchanged, for interface functions
// as well as freestanding ones. No interface prefix is added.
func CoreExportName(f *wit.Function) string {
	return f.Name
}

// PostReturnName returns the cabi_post_ export name paired with f's core
// export, used to reclaim guest allocations after an export call whose
// result needs cleanup.
func PostReturnName(f *wit.Function) string {
	return "cabi_post_" + CoreExportName(f)
}

// Driver walks wit.Function signatures against a fixed Engine and type
// resolver, maintaining no state of its own between calls.
type Driver struct {
	Engine   abi.Engine
	Resolver htype.Resolver
}

// WalkExport emits an *Instance method body that lowers args, calls the
// guest's core export, and lifts the result, per original §4.3's export
// walk order: lower every parameter left to right, issue the call, lift
// the result.
func (d Driver) WalkExport(fb *abi.FuncBuild, f *wit.Function) error {
	var callArgs []abi.Operand
	for i, p := range f.Params {
		arg, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpGetArg, N: i}, nil)
		if err != nil {
			return err
		}
		lowered, err := d.lower(fb, p.Type, arg[0])
		if err != nil {
			return fmt.Errorf("lowering param %q: %w", p.Name, err)
		}
		callArgs = append(callArgs, lowered...)
	}

	needsCleanup, resultType, err := d.resultShape(f)
	if err != nil {
		return err
	}

	callResult, err := d.Engine.Emit(fb, abi.Instruction{
		Op:             abi.OpCallWasm,
		WasmName:       CoreExportName(f),
		PostReturnName: PostReturnName(f),
		NeedsCleanup:   needsCleanup,
	}, callArgs)
	if err != nil {
		return err
	}

	if resultType == nil {
		_, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpReturn, N: 0}, nil)
		return err
	}

	lifted, err := d.lift(fb, resultType, callResult[0])
	if err != nil {
		return fmt.Errorf("lifting result: %w", err)
	}
	_, err = d.Engine.Emit(fb, abi.Instruction{Op: abi.OpReturn, N: 1}, lifted)
	return err
}

// WalkImport emits a host-module-builder trampoline body that lifts the
// guest's raw core arguments, invokes the user-supplied interface method,
// and lowers its result back across the boundary: the mirror image of
// WalkExport, per original §4.3's import walk order.
func (d Driver) WalkImport(fb *abi.FuncBuild, f *wit.Function) error {
	var callArgs []abi.Operand
	for i, p := range f.Params {
		raw, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpGetArg, N: i}, nil)
		if err != nil {
			return err
		}
		lifted, err := d.lift(fb, p.Type, raw[0])
		if err != nil {
			return fmt.Errorf("lifting param %q: %w", p.Name, err)
		}
		callArgs = append(callArgs, lifted...)
	}

	callResult, err := d.Engine.Emit(fb, abi.Instruction{
		Op:       abi.OpCallInterface,
		FuncName: gen.CaseName(f.BaseName(), gen.Public),
	}, callArgs)
	if err != nil {
		return err
	}

	_, resultType, err := d.resultShape(f)
	if err != nil {
		return err
	}
	if resultType == nil {
		_, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpReturn, N: 0}, nil)
		return err
	}

	lowered, err := d.lower(fb, resultType, callResult[0])
	if err != nil {
		return fmt.Errorf("lowering result: %w", err)
	}
	_, err = d.Engine.Emit(fb, abi.Instruction{Op: abi.OpReturn, N: 1}, lowered)
	return err
}

// resultShape reports whether f's result needs a post-return cleanup call
// and, when f has exactly one anonymous result, that result's wit.Type.
// Functions with more than one named result are rejected with
// UnsupportedTypeError; no record or tuple is synthesized for them.
func (d Driver) resultShape(f *wit.Function) (needsCleanup bool, resultType wit.Type, err error) {
	switch len(f.Results) {
	case 0:
		return false, nil, nil
	case 1:
		t := f.Results[0].Type
		ht, err := d.Resolver.Resolve(t)
		if err != nil {
			return false, nil, err
		}
		return ht.NeedsCleanup(), t, nil
	default:
		return false, nil, &abi.UnsupportedTypeError{Kind: "multiple named results (use a record)"}
	}
}

// lower walks t, emitting the instructions to push t's guest-bound
// representation from the host Operand value holds, in the order original
// §4.3.4 documents for each aggregate kind.
func (d Driver) lower(fb *abi.FuncBuild, t wit.Type, value abi.Operand) ([]abi.Operand, error) {
	switch kind := t.(type) {
	case wit.String:
		return d.Engine.Emit(fb, abi.Instruction{Op: abi.OpStringLower, ReallocName: "cabi_realloc"}, []abi.Operand{value})
	case *wit.TypeDef:
		return d.lowerTypeDef(fb, kind, value)
	default:
		// Primitive numerics cross the boundary as-is; the memory width
		// conversion, if any, happens inside CallWasm's generated call
		// expression rather than as a separate instruction here.
		return []abi.Operand{value}, nil
	}
}

func (d Driver) lowerTypeDef(fb *abi.FuncBuild, t *wit.TypeDef, value abi.Operand) ([]abi.Operand, error) {
	switch kind := t.Kind.(type) {
	case *wit.TypeDef:
		return d.lowerTypeDef(fb, kind, value)
	case *wit.Record:
		fields, err := d.recordFieldNames(t)
		if err != nil {
			return nil, err
		}
		flat, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpRecordLower, FieldNames: fields}, []abi.Operand{value})
		if err != nil {
			return nil, err
		}
		return d.lowerFlatFields(fb, kind.Fields, flat)
	case *wit.Tuple:
		fields := tupleFieldNames(len(kind.Types))
		flat, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpTupleLower, FieldNames: fields}, []abi.Operand{value})
		if err != nil {
			return nil, err
		}
		tupleFields := make([]wit.Field, len(kind.Types))
		for i, et := range kind.Types {
			tupleFields[i] = wit.Field{Name: fields[i], Type: et}
		}
		return d.lowerFlatFields(fb, tupleFields, flat)
	case *wit.List:
		elemSize, elemAlign := coreSizeAlign(kind.Type)
		fb.PushBlock()
		elemOut, err := d.lower(fb, kind.Type, abi.Single("e"))
		if err != nil {
			return nil, err
		}
		if err := fb.FinishBlock(elemOut); err != nil {
			return nil, err
		}
		return d.Engine.Emit(fb, abi.Instruction{
			Op: abi.OpListLower, ElemSize: elemSize, ElemAlign: elemAlign,
			ReallocName: "cabi_realloc",
		}, []abi.Operand{value})
	case *wit.Option:
		fb.PushBlock()
		if err := fb.FinishBlock(nil); err != nil {
			return nil, err
		}
		someOut, err := d.lower(fb, kind.Type, abi.Single("variantPayload"))
		if err != nil {
			return nil, err
		}
		fb.PushBlock()
		if err := fb.FinishBlock(someOut); err != nil {
			return nil, err
		}
		return d.Engine.Emit(fb, abi.Instruction{Op: abi.OpOptionLower}, []abi.Operand{value, Lit("present")})
	case *wit.Own:
		return d.Engine.Emit(fb, abi.Instruction{Op: abi.OpHandleLower}, []abi.Operand{value})
	case *wit.Borrow:
		return d.Engine.Emit(fb, abi.Instruction{Op: abi.OpHandleLower}, []abi.Operand{value})
	case *wit.Variant:
		return nil, &abi.UnsupportedTypeError{Kind: "variant lower from host-constructed value needs case metadata the generator, not the driver, supplies"}
	case *wit.Enum:
		return d.Engine.Emit(fb, abi.Instruction{Op: abi.OpEnumLower}, []abi.Operand{value})
	default:
		return nil, &abi.UnsupportedTypeError{Kind: fmt.Sprintf("%T", kind)}
	}
}

func (d Driver) lowerFlatFields(fb *abi.FuncBuild, fields []wit.Field, flat []abi.Operand) ([]abi.Operand, error) {
	var out []abi.Operand
	for i, f := range fields {
		lowered, err := d.lower(fb, f.Type, flat[i])
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}
	return out, nil
}

// lift walks t, emitting the instructions to reconstruct t's host
// representation from the flat operand(s) value holds.
func (d Driver) lift(fb *abi.FuncBuild, t wit.Type, value abi.Operand) (abi.Operand, error) {
	switch kind := t.(type) {
	case wit.String:
		out, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpStringLift}, []abi.Operand{value})
		return first(out), err
	case *wit.TypeDef:
		return d.liftTypeDef(fb, kind, value)
	default:
		return value, nil
	}
}

func (d Driver) liftTypeDef(fb *abi.FuncBuild, t *wit.TypeDef, value abi.Operand) (abi.Operand, error) {
	switch kind := t.Kind.(type) {
	case *wit.TypeDef:
		return d.liftTypeDef(fb, kind, value)
	case *wit.Record:
		name, err := requireName(t)
		if err != nil {
			return abi.Operand{}, err
		}
		fields, err := d.recordFieldNames(t)
		if err != nil {
			return abi.Operand{}, err
		}
		out, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpRecordLift, FieldNames: fields, TargetName: gen.CaseName(name, gen.Public)}, []abi.Operand{value})
		return first(out), err
	case *wit.List:
		elemSize, _ := coreSizeAlign(kind.Type)
		fb.PushBlock()
		elemOut, err := d.lift(fb, kind.Type, abi.Single("e"))
		if err != nil {
			return abi.Operand{}, err
		}
		if err := fb.FinishBlock([]abi.Operand{elemOut}); err != nil {
			return abi.Operand{}, err
		}
		// value already carries the call's (ptr, len) pair as a single
		// Operand's Text(); ListLift re-splits it by addressing ptr and
		// len through value's own rendering on both engine parameters.
		out, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpListLift, ElemSize: elemSize}, []abi.Operand{value, value})
		return first(out), err
	case *wit.Own:
		out, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpHandleLift}, []abi.Operand{value})
		return first(out), err
	case *wit.Borrow:
		out, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpHandleLift}, []abi.Operand{value})
		return first(out), err
	case *wit.Variant:
		return abi.Operand{}, &abi.UnsupportedTypeError{Kind: "variant lift (v1 supports lowering only)"}
	case *wit.Enum:
		name, err := requireName(t)
		if err != nil {
			return abi.Operand{}, err
		}
		out, err := d.Engine.Emit(fb, abi.Instruction{Op: abi.OpEnumLift, TargetName: gen.CaseName(name, gen.Public)}, []abi.Operand{value})
		return first(out), err
	default:
		return abi.Operand{}, &abi.UnsupportedTypeError{Kind: fmt.Sprintf("%T", kind)}
	}
}

func (d Driver) recordFieldNames(t *wit.TypeDef) ([]string, error) {
	rec, ok := t.Kind.(*wit.Record)
	if !ok {
		return nil, &abi.UnsupportedTypeError{Kind: "expected record"}
	}
	names := make([]string, len(rec.Fields))
	for i, f := range rec.Fields {
		names[i] = gen.CaseName(f.Name, gen.Public)
	}
	return names, nil
}

func tupleFieldNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("F%d", i)
	}
	return names
}

func requireName(t *wit.TypeDef) (string, error) {
	if t.Name == nil || *t.Name == "" {
		return "", &abi.UnsupportedTypeError{Kind: "anonymous named type"}
	}
	return *t.Name, nil
}

func first(ops []abi.Operand) abi.Operand {
	if len(ops) == 0 {
		return abi.Operand{}
	}
	return ops[0]
}

// Lit is a re-export convenience so driver code reads symmetrically with
// the engine's own operand constructors.
func Lit(text string) abi.Operand { return abi.Lit(text) }

// coreSizeAlign returns the flattened core size and alignment of elem,
// used to compute a list's per-element stride. Aggregate element types
// are out of scope for v1 list support; only types with a fixed 4- or
// 8-byte Canonical ABI representation are handled.
func coreSizeAlign(elem wit.Type) (size, align uint64) {
	switch elem.(type) {
	case wit.U64, wit.S64, wit.F64:
		return 8, 8
	default:
		return 4, 4
	}
}
