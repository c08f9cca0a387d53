package htype

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bytecodealliance/wasm-tools-go/wit"
)

func mustResolve(t *testing.T, wt wit.Type) HType {
	t.Helper()
	ht, err := Resolver{}.Resolve(wt)
	if err != nil {
		t.Fatalf("Resolve(%T): %v", wt, err)
	}
	return ht
}

func TestResolvePrimitives(t *testing.T) {
	tests := []struct {
		in   wit.Type
		want HType
	}{
		{wit.Bool{}, TBool},
		{wit.U8{}, TU8},
		{wit.U32{}, TU32},
		{wit.S64{}, TS64},
		{wit.F32{}, TF32},
		{wit.F64{}, TF64},
		{wit.String{}, TString},
	}
	for _, tt := range tests {
		if got := mustResolve(t, tt.in); got != tt.want {
			t.Errorf("Resolve(%T) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveChar(t *testing.T) {
	_, err := Resolver{}.Resolve(wit.Char{})
	var uerr *UnsupportedTypeError
	if !errors.As(err, &uerr) {
		t.Fatalf("Resolve(Char{}): got %v, want UnsupportedTypeError", err)
	}
}

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func TestResolveRecord(t *testing.T) {
	rec := named("point", &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "y", Type: wit.S32{}},
	}})
	got := mustResolve(t, rec)
	want := NewUserDefined("point")
	if got != want {
		t.Errorf("Resolve(record) = %v, want %v", got, want)
	}
	if got.NeedsCleanup() != true {
		t.Error("UserDefined.NeedsCleanup() = false, want true")
	}
}

func TestResolveVariantIsOpaqueInterface(t *testing.T) {
	v := named("msg", &wit.Variant{Cases: []wit.Case{
		{Name: "text", Type: wit.String{}},
		{Name: "empty"},
	}})
	got := mustResolve(t, v)
	if got.Kind != OpaqueInterface {
		t.Errorf("Resolve(variant).Kind = %v, want OpaqueInterface", got.Kind)
	}
}

func TestResolveOption(t *testing.T) {
	opt := named("", &wit.Option{Type: wit.String{}})
	got := mustResolve(t, opt)
	want := NewValueOrFlag(TString)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve(option<string>) = %v, want %v", got, want)
	}
	if !got.NeedsCleanup() {
		t.Error("ValueOrFlag(String).NeedsCleanup() = false, want true (inherits from String)")
	}
}

func TestResolveOptionOfIntDoesNotNeedCleanup(t *testing.T) {
	opt := named("", &wit.Option{Type: wit.U32{}})
	got := mustResolve(t, opt)
	if got.NeedsCleanup() {
		t.Error("ValueOrFlag(U32).NeedsCleanup() = true, want false")
	}
}

func TestResolveResultShapes(t *testing.T) {
	str := wit.Type(wit.String{})

	tests := []struct {
		name string
		r    *wit.Result
		want HType
	}{
		{"ok-and-err", &wit.Result{OK: wit.String{}, Err: str}, NewValueOrError(TString)},
		{"err-only", &wit.Result{Err: str}, TError},
		{"ok-only", &wit.Result{OK: wit.U32{}}, TU32},
		{"neither", &wit.Result{}, TUnit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustResolve(t, named("", tt.r))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestResolveResultNonStringErrorFails(t *testing.T) {
	_, err := Resolver{}.Resolve(named("", &wit.Result{OK: wit.U32{}, Err: wit.U32{}}))
	var uerr *UnsupportedTypeError
	if !errors.As(err, &uerr) {
		t.Fatalf("Resolve(result<u32, u32>): got %v, want UnsupportedTypeError", err)
	}
}

func TestResolveList(t *testing.T) {
	got := mustResolve(t, named("", &wit.List{Type: wit.F32{}}))
	want := NewSlice(TF32)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve(list<f32>) = %v, want %v", got, want)
	}
}

func TestResolveHandles(t *testing.T) {
	res := named("file", &wit.Resource{})
	own := mustResolve(t, named("", &wit.Own{Type: res}))
	if want := NewOwnedHandle("file"); own != want {
		t.Errorf("Resolve(own<file>) = %v, want %v", own, want)
	}
	borrow := mustResolve(t, named("", &wit.Borrow{Type: res}))
	if want := NewBorrowedHandle("file"); borrow != want {
		t.Errorf("Resolve(borrow<file>) = %v, want %v", borrow, want)
	}
}

func TestResolveAlias(t *testing.T) {
	target := named("byte-count", &wit.Record{})
	alias := named("", target)
	got := mustResolve(t, alias)
	if want := NewUserDefined("byte-count"); got != want {
		t.Errorf("Resolve(alias) = %v, want %v", got, want)
	}
}

func TestWasmResolve(t *testing.T) {
	tests := []struct {
		in   CoreType
		want HType
	}{
		{CoreI32, TU32},
		{CoreI64, TU64},
		{CoreF32, TF32},
		{CoreF64, TF64},
		{CorePointer, TU64},
		{CorePointerOrI64, TU64},
		{CoreLength, TU64},
	}
	for _, tt := range tests {
		if got := (Resolver{}).WasmResolve(tt.in); got != tt.want {
			t.Errorf("WasmResolve(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
