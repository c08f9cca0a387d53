package htype

import (
	"fmt"

	"github.com/bytecodealliance/wasm-tools-go/wit"
)

// UnsupportedTypeError reports a WIT type kind the resolver does not
// handle in v1.
type UnsupportedTypeError struct {
	Kind string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("htype: unsupported type: %s", e.Kind)
}

// Resolver maps WIT types and core-wasm value types onto HType, the way
// the teacher's generator.typeRep/primitiveRep family maps WIT types onto
// Go source strings, but targeting a value description instead of text.
//
// A Resolver is stateless; it is a thin value type rather than holding a
// *wit.Resolve, because every lookup it needs (sizes, field lists, case
// lists) is already reachable from the wit.Type value passed in.
type Resolver struct{}

// Resolve maps t onto its host type descriptor.
func (Resolver) Resolve(t wit.Type) (HType, error) {
	switch t := t.(type) {
	case wit.Bool:
		return TBool, nil
	case wit.U8:
		return TU8, nil
	case wit.U16:
		return TU16, nil
	case wit.U32:
		return TU32, nil
	case wit.U64:
		return TU64, nil
	case wit.S8:
		return TS8, nil
	case wit.S16:
		return TS16, nil
	case wit.S32:
		return TS32, nil
	case wit.S64:
		return TS64, nil
	case wit.F32:
		return TF32, nil
	case wit.F64:
		return TF64, nil
	case wit.String:
		return TString, nil
	case wit.Char:
		return HType{}, &UnsupportedTypeError{Kind: "char"}
	case *wit.TypeDef:
		return Resolver{}.resolveTypeDef(t)
	}
	return HType{}, &UnsupportedTypeError{Kind: fmt.Sprintf("%T", t)}
}

func (res Resolver) resolveTypeDef(t *wit.TypeDef) (HType, error) {
	name := t.TypeName()

	switch kind := t.Kind.(type) {
	case *wit.TypeDef:
		// Alias to another named type: resolve through to the target's
		// declared name, not its structural kind, so the alias renders
		// as a transparent rename.
		if target := kind.TypeName(); target != "" {
			return NewUserDefined(target), nil
		}
		return res.resolveTypeDef(kind)

	case *wit.Record:
		if name == "" {
			return HType{}, &UnsupportedTypeError{Kind: "anonymous record"}
		}
		return NewUserDefined(name), nil

	case *wit.Enum:
		if name == "" {
			return HType{}, &UnsupportedTypeError{Kind: "anonymous enum"}
		}
		return NewUserDefined(name), nil

	case *wit.Variant:
		return NewOpaqueInterface(), nil

	case *wit.Option:
		elem, err := res.Resolve(kind.Type)
		if err != nil {
			return HType{}, err
		}
		return NewValueOrFlag(elem), nil

	case *wit.Result:
		return res.resolveResult(kind)

	case *wit.List:
		elem, err := res.Resolve(kind.Type)
		if err != nil {
			return HType{}, err
		}
		return NewSlice(elem), nil

	case *wit.Tuple:
		if name == "" {
			return HType{}, &UnsupportedTypeError{Kind: "anonymous tuple without synthesized name"}
		}
		return NewUserDefined(name), nil

	case *wit.Own:
		return NewOwnedHandle(kind.Type.TypeName()), nil

	case *wit.Borrow:
		return NewBorrowedHandle(kind.Type.TypeName()), nil

	case *wit.Resource:
		return NewResource(name), nil

	case *wit.Flags:
		return HType{}, &UnsupportedTypeError{Kind: "flags"}

	case *wit.Future:
		return HType{}, &UnsupportedTypeError{Kind: "future"}

	case *wit.Stream:
		return HType{}, &UnsupportedTypeError{Kind: "stream"}

	// Primitive kinds reached through a named alias TypeDef, e.g.
	// `type byte-count = u32`.
	case wit.Type:
		return res.Resolve(kind)
	}

	return HType{}, &UnsupportedTypeError{Kind: fmt.Sprintf("%T", t.Kind)}
}

func (res Resolver) resolveResult(r *wit.Result) (HType, error) {
	switch {
	case r.OK != nil && r.Err != nil:
		if _, ok := r.Err.(wit.String); !ok {
			return HType{}, &UnsupportedTypeError{Kind: "non-string error"}
		}
		ok, err := res.Resolve(r.OK)
		if err != nil {
			return HType{}, err
		}
		return NewValueOrError(ok), nil

	case r.OK == nil && r.Err != nil:
		if _, ok := r.Err.(wit.String); !ok {
			return HType{}, &UnsupportedTypeError{Kind: "non-string error"}
		}
		return TError, nil

	case r.OK != nil && r.Err == nil:
		return res.Resolve(r.OK)

	default: // r.OK == nil && r.Err == nil
		return TUnit, nil
	}
}

// CoreType identifies a core-wasm value type the way the Canonical ABI
// names them, decoupled from wazero's api.ValueType so this package does
// not need to import a runtime library just to name integers.
type CoreType int

const (
	CoreI32 CoreType = iota
	CoreI64
	CoreF32
	CoreF64
	CorePointer
	CorePointerOrI64
	CoreLength
)

// WasmResolve maps a core-wasm value type onto its host representation,
// per the fixed table: I32->U32, I64->U64, F32->F32, F64->F64,
// Pointer->U64, PointerOrI64->U64, Length->U64.
func (Resolver) WasmResolve(t CoreType) HType {
	switch t {
	case CoreI32:
		return TU32
	case CoreI64:
		return TU64
	case CoreF32:
		return TF32
	case CoreF64:
		return TF64
	case CorePointer, CorePointerOrI64, CoreLength:
		return TU64
	}
	return TU64
}
