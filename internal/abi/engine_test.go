package abi

import (
	"strings"
	"testing"

	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
	"github.com/wit-hostgen/wit-hostgen-go/internal/htype"
)

func newTestFuncBuild(t *testing.T, dir Direction, result ResultDescriptor) *FuncBuild {
	t.Helper()
	pkg := gen.NewPackage("example.com/gen/testpkg#testpkg")
	file := pkg.File("test.go")
	return NewFuncBuild(file, dir, result)
}

func TestEngineGetArgAndReturn(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultAnon, Type: htype.TU32})
	var e Engine

	out, err := e.Emit(fb, Instruction{Op: OpGetArg, N: 0}, nil)
	if err != nil {
		t.Fatalf("GetArg: %v", err)
	}
	if len(out) != 1 || out[0].Text() != "arg0" {
		t.Fatalf("unexpected GetArg result: %v", out)
	}

	if _, err := e.Emit(fb, Instruction{Op: OpReturn, N: 1}, out); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if !strings.Contains(fb.Body(), "return arg0") {
		t.Fatalf("body missing return statement: %q", fb.Body())
	}
}

func TestEngineArityMismatch(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	_, err := e.Emit(fb, Instruction{Op: OpI32FromBool}, nil)
	if err == nil {
		t.Fatal("expected arity error, got nil")
	}
	if _, ok := err.(*MalformedStreamError); !ok {
		t.Fatalf("expected *MalformedStreamError, got %T: %v", err, err)
	}
}

func TestEngineListLowerRequiresPushedBlock(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	_, err := e.Emit(fb, Instruction{Op: OpListLower, ElemSize: 4, ElemAlign: 4}, []Operand{Single("xs")})
	if err == nil {
		t.Fatal("expected MalformedStreamError for missing finished block")
	}
}

func TestEngineListLowerConsumesBlock(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	fb.PushBlock()
	fb.Emitf("store(base, e)\n")
	if err := fb.FinishBlock(nil); err != nil {
		t.Fatalf("FinishBlock: %v", err)
	}

	out, err := e.Emit(fb, Instruction{Op: OpListLower, ElemSize: 4, ElemAlign: 4}, []Operand{Single("xs")})
	if err != nil {
		t.Fatalf("ListLower: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected (ptr, len) operands, got %v", out)
	}
	if !strings.Contains(fb.Body(), "range xs") {
		t.Fatalf("body missing element loop: %q", fb.Body())
	}
}

func TestEngineVariantLiftUnsupported(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	_, err := e.Emit(fb, Instruction{Op: OpVariantLift}, []Operand{Single("tag")})
	if err == nil {
		t.Fatal("expected UnsupportedInstructionError")
	}
	if _, ok := err.(*UnsupportedInstructionError); !ok {
		t.Fatalf("expected *UnsupportedInstructionError, got %T: %v", err, err)
	}
}

func TestEngineGuestDeallocateUnsupported(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	_, err := e.Emit(fb, Instruction{Op: OpGuestDeallocate}, nil)
	if _, ok := err.(*UnsupportedInstructionError); !ok {
		t.Fatalf("expected *UnsupportedInstructionError, got %T: %v", err, err)
	}
}

func TestEngineErrorPolicyValueOrError(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultAnon, Type: htype.NewValueOrError(htype.TU32)})
	var e Engine

	if _, err := e.Emit(fb, Instruction{Op: OpGetArg, N: 0}, nil); err != nil {
		t.Fatalf("GetArg: %v", err)
	}
	if _, err := e.Emit(fb, Instruction{
		Op:       OpCallWasm,
		WasmName: "guest-fn",
	}, []Operand{Single("arg0")}); err != nil {
		t.Fatalf("CallWasm: %v", err)
	}
	body := fb.Body()
	if !strings.Contains(body, "fmt.Errorf(\"call guest-fn: %w\", err)") {
		t.Fatalf("expected wrapped-error return in body, got %q", body)
	}
	if !strings.Contains(body, "return 0,") {
		t.Fatalf("expected zero-valued return pairing with error, got %q", body)
	}
}

func TestEngineErrorPolicyAbortsWithoutCarrier(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	if _, err := e.Emit(fb, Instruction{Op: OpGetArg, N: 0}, nil); err != nil {
		t.Fatalf("GetArg: %v", err)
	}
	if _, err := e.Emit(fb, Instruction{
		Op:       OpCallWasm,
		WasmName: "guest-fn",
	}, []Operand{Single("arg0")}); err != nil {
		t.Fatalf("CallWasm: %v", err)
	}
	body := fb.Body()
	if !strings.Contains(body, "panic(fmt.Sprintf(") {
		t.Fatalf("expected abort on a carrier-less result shape, got %q", body)
	}
}

func TestEngineCallWasmCleanupBracketsPostReturn(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	_, err := e.Emit(fb, Instruction{
		Op:             OpCallWasm,
		WasmName:       "make-thing",
		PostReturnName: "cabi_post_make-thing",
		NeedsCleanup:   true,
	}, nil)
	if err != nil {
		t.Fatalf("CallWasm: %v", err)
	}
	body := fb.Body()
	if !strings.Contains(body, "defer func()") || !strings.Contains(body, "cabi_post_make-thing") {
		t.Fatalf("expected deferred post-return call, got %q", body)
	}
}

func TestEngineRecordLowerLift(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	out, err := e.Emit(fb, Instruction{Op: OpRecordLower, FieldNames: []string{"X", "Y"}}, []Operand{Single("pt")})
	if err != nil {
		t.Fatalf("RecordLower: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 field operands, got %v", out)
	}

	out2, err := e.Emit(fb, Instruction{Op: OpRecordLift, FieldNames: []string{"X", "Y"}, TargetName: "Point"}, out)
	if err != nil {
		t.Fatalf("RecordLift: %v", err)
	}
	if len(out2) != 1 {
		t.Fatalf("expected single record operand, got %v", out2)
	}
	if !strings.Contains(fb.Body(), "Point{") {
		t.Fatalf("expected Point{...} literal, got %q", fb.Body())
	}
}

func TestEngineFlushRejectsUnfinishedBlocks(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	fb.PushBlock()
	if err := fb.Flush(); err == nil {
		t.Fatal("expected Flush to reject an unfinished block")
	}
}

func TestEngineBoolConversionsRoundTrip(t *testing.T) {
	fb := newTestFuncBuild(t, ExportCaller, ResultDescriptor{Kind: ResultEmpty})
	var e Engine

	out, err := e.Emit(fb, Instruction{Op: OpI32FromBool}, []Operand{Lit("true")})
	if err != nil {
		t.Fatalf("I32FromBool: %v", err)
	}
	if _, err := e.Emit(fb, Instruction{Op: OpBoolFromI32}, out); err != nil {
		t.Fatalf("BoolFromI32: %v", err)
	}
	body := fb.Body()
	if !strings.Contains(body, "!= 0") {
		t.Fatalf("expected bool-from-i32 comparison, got %q", body)
	}
}
