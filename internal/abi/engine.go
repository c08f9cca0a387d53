package abi

import (
	"fmt"
	"strings"
)

// Engine implements the visitor over a flat Instruction stream described
// by original §4.3. The block callbacks of §4.5 live on FuncBuild
// (PushBlock/FinishBlock). It is
// stateless; all per-function state lives on the FuncBuild passed to
// Emit, so one Engine value can drive every function in a generation run.
type Engine struct{}

func arityErr(op Op, want, got int) error {
	return &MalformedStreamError{Reason: fmt.Sprintf("%s expects %d operand(s), got %d", op, want, got)}
}

// Emit pops the operands instruction.arity_in requires from operands,
// appends the resulting Go source to fb's body stream, and returns the
// pushed result operands.
func (e Engine) Emit(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	switch inst.Op {
	case OpGetArg:
		name := fmt.Sprintf("arg%d", inst.N)
		fb.ArgNames = append(fb.ArgNames, name)
		return []Operand{Single(name)}, nil

	case OpConstZero:
		out := make([]Operand, inst.N)
		for i := range out {
			out[i] = Lit("0")
		}
		return out, nil

	case OpI32Const:
		return []Operand{Lit(inst.Literal)}, nil

	case OpNumericConv:
		return e.numericConv(fb, inst, operands)

	case OpI32FromBool:
		if len(operands) != 1 {
			return nil, arityErr(inst.Op, 1, len(operands))
		}
		name := fb.Fresh("b2i")
		fb.Emitf("var %s int32\nif %s {\n\t%s = 1\n}\n", name, operands[0].Text(), name)
		return []Operand{Single(name)}, nil

	case OpBoolFromI32:
		if len(operands) != 1 {
			return nil, arityErr(inst.Op, 1, len(operands))
		}
		name := fb.Fresh("i2b")
		fb.Emitf("%s := %s != 0\n", name, operands[0].Text())
		return []Operand{Single(name)}, nil

	case OpMemLoad:
		return e.memLoad(fb, inst, operands)

	case OpMemStore:
		return e.memStore(fb, inst, operands)

	case OpStringLower:
		return e.stringLower(fb, inst, operands)

	case OpStringLift:
		return e.stringLift(fb, inst, operands)

	case OpListLower:
		return e.listLower(fb, inst, operands)

	case OpListLift:
		return e.listLift(fb, inst, operands)

	case OpCallWasm:
		return e.callWasm(fb, inst, operands)

	case OpCallInterface:
		return e.callInterface(fb, inst, operands)

	case OpResultLower:
		return e.resultLower(fb, inst, operands)

	case OpResultLift:
		return e.resultLift(fb, inst, operands)

	case OpOptionLower:
		return e.optionLower(fb, inst, operands)

	case OpOptionLift:
		return e.optionLift(fb, inst, operands)

	case OpRecordLower:
		return e.recordLower(fb, inst, operands)

	case OpRecordLift:
		return e.recordLift(fb, inst, operands)

	case OpTupleLower:
		return e.recordLower(fb, inst, operands) // identical shape, synthetic f0..fN names

	case OpTupleLift:
		return e.recordLift(fb, inst, operands)

	case OpVariantLower:
		return e.variantLower(fb, inst, operands)

	case OpVariantLift:
		return nil, &UnsupportedInstructionError{Instruction: "VariantLift (v1 supports lowering only, host -> guest)"}

	case OpEnumLower:
		return e.enumLower(fb, inst, operands)

	case OpEnumLift:
		return e.enumLift(fb, inst, operands)

	case OpHandleLower:
		return e.handleLower(fb, inst, operands)

	case OpHandleLift:
		return e.handleLift(fb, inst, operands)

	case OpMalloc:
		return e.malloc(fb, inst, operands)

	case OpVariantPayloadName:
		return []Operand{Single("variantPayload")}, nil

	case OpIterElem:
		return []Operand{Single("e")}, nil

	case OpIterBasePointer:
		return []Operand{Single("base")}, nil

	case OpReturn:
		if inst.N == 0 {
			return nil, nil
		}
		if len(operands) < 1 {
			return nil, arityErr(inst.Op, 1, len(operands))
		}
		fb.Emitf("return %s\n", operands[0].Text())
		return nil, nil

	case OpFlush:
		if len(operands) < inst.N {
			return nil, arityErr(inst.Op, inst.N, len(operands))
		}
		return append([]Operand(nil), operands[:inst.N]...), nil

	case OpBitcast:
		return operands, nil

	case OpGuestDeallocate:
		return nil, &UnsupportedInstructionError{Instruction: "GuestDeallocate (host generator never emits guest deallocation helpers)"}

	case OpAsyncFeature:
		return nil, &UnsupportedInstructionError{Instruction: "async/future/stream/error-context"}
	}
	return nil, &UnsupportedInstructionError{Instruction: inst.Op.String()}
}

func (e Engine) numericConv(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	goType, ok := convTargetType[inst.Conv]
	if !ok {
		return nil, &UnsupportedInstructionError{Instruction: "NumericConv:" + inst.Conv}
	}
	// I32FromU32 in import direction is a pass-through: the host runtime
	// already hands a u32 across the boundary, so there is nothing to
	// encode; export direction still routes through the conversion to
	// widen into the call's i32 slot.
	if inst.Conv == "I32FromU32" && fb.Direction == ImportTrampoline {
		return []Operand{operands[0]}, nil
	}
	name := fb.Fresh("v")
	fb.Emitf("%s := %s(%s)\n", name, goType, operands[0].Text())
	return []Operand{Single(name)}, nil
}

var convTargetType = map[string]string{
	"I32FromU8": "int32", "I32FromS8": "int32",
	"I32FromU16": "int32", "I32FromS16": "int32",
	"I32FromU32": "int32", "I32FromS32": "int32",
	"U32FromI32": "uint32", "S32FromI32": "int32",
	"U8FromI32": "uint8", "S8FromI32": "int8",
	"U16FromI32": "uint16", "S16FromI32": "int16",
	"F32FromI32": "float32", "I32FromF32": "int32",
	"F64FromI64": "float64", "I64FromF64": "int64",
	"U64FromI64": "uint64", "S64FromI64": "int64",
	"I64FromU64": "int64", "I64FromS64": "int64",
}

func (e Engine) memLoad(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	base := operands[0].Text()
	reader, goType := memReader(inst.MemKind, inst.Arch)
	ok := fb.Fresh("ok")
	val := fb.Fresh("v")
	fb.Emitf("%s, %s := mem.%s(uint32(%s) + %s)\n", val, ok, reader, base, inst.Offset)
	fb.Emitf("if !%s {\n\t%s\n}\n", ok, fb.errorPolicy("memory read out of bounds", `"short read"`, zeroOf(goType)))
	return []Operand{Single(val)}, nil
}

func (e Engine) memStore(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 2 {
		return nil, arityErr(inst.Op, 2, len(operands))
	}
	value, ptr := operands[0].Text(), operands[1].Text()
	writer, goType := memWriter(inst.MemKind, inst.Arch)
	_ = goType
	ok := fb.Fresh("ok")
	fb.Emitf("%s := mem.%s(uint32(%s) + %s, %s)\n", ok, writer, ptr, inst.Offset, value)
	fb.Emitf("if !%s {\n\t%s\n}\n", ok, fb.errorPolicy("memory write out of bounds", `"short write"`, ""))
	return nil, nil
}

func memReader(k MemKind, arch Arch) (method, goType string) {
	switch k {
	case MemI32:
		return "ReadUint32Le", "uint32"
	case MemI32_8U:
		return "ReadByte", "byte"
	case MemI64, MemPointer, MemLength:
		if arch == Arch32 {
			return "ReadUint32Le", "uint32"
		}
		return "ReadUint64Le", "uint64"
	case MemF32:
		return "ReadFloat32Le", "float32"
	case MemF64:
		return "ReadFloat64Le", "float64"
	}
	return "ReadUint32Le", "uint32"
}

func memWriter(k MemKind, arch Arch) (method, goType string) {
	switch k {
	case MemI32:
		return "WriteUint32Le", "uint32"
	case MemI32_8U:
		return "WriteByte", "byte"
	case MemI64, MemPointer, MemLength:
		if arch == Arch32 {
			return "WriteUint32Le", "uint32"
		}
		return "WriteUint64Le", "uint64"
	case MemF32:
		return "WriteFloat32Le", "float32"
	case MemF64:
		return "WriteFloat64Le", "float64"
	}
	return "WriteUint32Le", "uint32"
}

func zeroOf(goType string) string {
	switch goType {
	case "uint32", "uint64", "int32", "int64", "byte", "float32", "float64":
		return "0"
	case "bool":
		return "false"
	case "string":
		return `""`
	default:
		return "nil"
	}
}

func (e Engine) stringLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	ptr, ln := fb.Fresh("ptr"), fb.Fresh("len")
	fb.Emitf("%s, %s, err := writeString(ctx, %s, mem, %s)\n", ptr, ln, operands[0].Text(), inst.ReallocName)
	fb.Emitf("if err != nil {\n\t%s\n}\n", fb.errorPolicy("string lower", "err", "0, 0"))
	return []Operand{Single(ptr), Single(ln)}, nil
}

func (e Engine) stringLift(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 2 {
		return nil, arityErr(inst.Op, 2, len(operands))
	}
	ptr, ln := operands[0].Text(), operands[1].Text()
	name := fb.Fresh("s")
	buf := fb.Fresh("b")
	ok := fb.Fresh("ok")
	fb.Emitf("%s, %s := mem.Read(uint32(%s), uint32(%s))\n", buf, ok, ptr, ln)
	fb.Emitf("if !%s {\n\t%s\n}\n", ok, fb.errorPolicy("string lift", `"short read"`, `""`))
	fb.Emitf("%s := string(%s)\n", name, buf)
	return []Operand{Single(name)}, nil
}

func (e Engine) listLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	blocks, err := fb.popBlocks(1)
	if err != nil {
		return nil, err
	}
	elemBlock := blocks[0]
	vec := operands[0].Text()
	ptr, ln, base := fb.Fresh("ptr"), fb.Fresh("len"), fb.Fresh("base")
	fb.Emitf("%s := uint32(len(%s))\n", ln, vec)
	fb.Emitf("%s, err := malloc(ctx, uint64(%s)*%d, %d)\n", ptr, ln, inst.ElemSize, inst.ElemAlign)
	fb.Emitf("if err != nil {\n\t%s\n}\n", fb.errorPolicy("list lower alloc", "err", "0, 0"))
	fb.Emitf("for i, e := range %s {\n", vec)
	fb.Emitf("\t%s := %s + uint32(i)*%d\n", base, ptr, inst.ElemSize)
	fb.Emitf("\t%s\n", elemBlock.body)
	fb.Emitf("}\n")
	return []Operand{Single(ptr), Single(ln)}, nil
}

func (e Engine) listLift(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 2 {
		return nil, arityErr(inst.Op, 2, len(operands))
	}
	blocks, err := fb.popBlocks(1)
	if err != nil {
		return nil, err
	}
	elemBlock := blocks[0]
	ptr, ln := operands[0].Text(), operands[1].Text()
	slice := fb.Fresh("items")
	base := fb.Fresh("base")
	fb.Emitf("%s := make([]any, 0, %s)\n", slice, ln)
	fb.Emitf("for i := uint32(0); i < %s; i++ {\n", ln)
	fb.Emitf("\t%s := %s + i*%d\n", base, ptr, inst.ElemSize)
	fb.Emitf("\t%s\n", elemBlock.body)
	elemResult := "e"
	if len(elemBlock.operands) == 1 {
		elemResult = elemBlock.operands[0].Text()
	}
	fb.Emitf("\t%s = append(%s, %s)\n", slice, slice, elemResult)
	fb.Emitf("}\n")
	return []Operand{Single(slice)}, nil
}

func (e Engine) callWasm(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	names := make([]string, len(operands))
	for i, op := range operands {
		names[i] = op.Text()
	}
	results := fb.Fresh("results")
	fb.Emitf("%s, err := mod.ExportedFunction(%q).Call(ctx, %s)\n", results, inst.WasmName, strings.Join(names, ", "))
	fb.Emitf("if err != nil {\n\t%s\n}\n", fb.errorPolicy("call "+inst.WasmName, "err", "0"))
	if inst.NeedsCleanup && inst.PostReturnName != "" {
		fb.Emitf("if postFn := mod.ExportedFunction(%q); postFn != nil {\n", inst.PostReturnName)
		fb.Emitf("\tdefer func() {\n")
		fb.Emitf("\t\tif _, perr := postFn.Call(ctx, %s...); perr != nil {\n", results)
		fb.Emitf("\t\t\tpanic(fmt.Sprintf(%q, perr))\n", inst.PostReturnName+": post-return failed: %v")
		fb.Emitf("\t\t}\n")
		fb.Emitf("\t}()\n")
		fb.Emitf("}\n")
		fb.File.Import("fmt")
	}
	return []Operand{Single(results)}, nil
}

func (e Engine) callInterface(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	names := make([]string, len(operands))
	for i, op := range operands {
		names[i] = op.Text()
	}
	if inst.IsResourceCall && len(names) > 0 {
		self := fb.Fresh("self")
		fb.Emitf("%s := %s[%s]\n", self, inst.HandleTable, names[0])
		names = append([]string{self}, names[1:]...)
	}
	out := fb.Fresh("out")
	fb.Emitf("%s, err := %s.%s(%s)\n", out, fb.InterfaceParam, inst.FuncName, strings.Join(names, ", "))
	fb.Emitf("if err != nil {\n\t%s\n}\n", fb.errorPolicy("call "+inst.FuncName, "err", "0"))
	if inst.IsConstructor {
		handle := fb.Fresh("handle")
		fb.Emitf("%s := len(%s)\n", handle, inst.HandleTable)
		fb.Emitf("%s = append(%s, %s)\n", inst.HandleTable, inst.HandleTable, out)
		return []Operand{Single(handle)}, nil
	}
	return []Operand{Single(out)}, nil
}

func (e Engine) resultLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	blocks, err := fb.popBlocks(2)
	if err != nil {
		return nil, err
	}
	errBlock, okBlock := blocks[0], blocks[1]
	value := operands[0].Text()
	fb.Emitf("variantPayload := %s\n", value)
	fb.Emitf("if err, isErr := any(variantPayload).(error); isErr && err != nil {\n%s\n} else {\n%s\n}\n", errBlock.body, okBlock.body)
	return mergeResultOperands(okBlock.operands, errBlock.operands), nil
}

func (e Engine) resultLift(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	blocks, err := fb.popBlocks(2)
	if err != nil {
		return nil, err
	}
	errBlock, okBlock := blocks[0], blocks[1]
	tag := operands[0].Text()
	fb.Emitf("switch %s {\n", tag)
	fb.Emitf("case 0:\n%s\n", okBlock.body)
	fb.Emitf("case 1:\n%s\n", errBlock.body)
	fb.Emitf("default:\n\t%s\n", fb.abortStmt("result lift: invalid discriminant", tag))
	fb.Emitf("}\n")
	return mergeResultOperands(okBlock.operands, errBlock.operands), nil
}

func mergeResultOperands(ok, errs []Operand) []Operand {
	if len(ok) > 0 {
		return ok
	}
	return errs
}

func (e Engine) optionLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 2 {
		return nil, arityErr(inst.Op, 2, len(operands))
	}
	blocks, err := fb.popBlocks(2)
	if err != nil {
		return nil, err
	}
	noneBlock, someBlock := blocks[0], blocks[1]
	value, flag := operands[0].Text(), operands[1].Text()
	fb.Emitf("if %s {\n\tvariantPayload := %s\n%s\n} else {\n%s\n}\n", flag, value, someBlock.body, noneBlock.body)
	return mergeResultOperands(someBlock.operands, noneBlock.operands), nil
}

func (e Engine) optionLift(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	blocks, err := fb.popBlocks(2)
	if err != nil {
		return nil, err
	}
	noneBlock, someBlock := blocks[0], blocks[1]
	tag := operands[0].Text()
	value, ok := fb.Fresh("value"), fb.Fresh("ok")
	fb.Emitf("var %s any\nvar %s bool\n", value, ok)
	fb.Emitf("if %s == 0 {\n%s\n\t%s = false\n} else {\n%s\n\t%s = true\n", tag, noneBlock.body, ok, someBlock.body, ok)
	if len(someBlock.operands) == 1 {
		fb.Emitf("\t%s = %s\n", value, someBlock.operands[0].Text())
	}
	fb.Emitf("}\n")
	return []Operand{Pair(value, ok)}, nil
}

func (e Engine) recordLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	rec := operands[0].Text()
	out := make([]Operand, 0, len(inst.FieldNames))
	for _, field := range inst.FieldNames {
		name := fb.Fresh("f")
		fb.Emitf("%s := %s.%s\n", name, rec, field)
		out = append(out, Single(name))
	}
	return out, nil
}

func (e Engine) recordLift(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != len(inst.FieldNames) {
		return nil, arityErr(inst.Op, len(inst.FieldNames), len(operands))
	}
	name := fb.Fresh("rec")
	fb.Emitf("%s := %s{\n", name, inst.TargetName)
	for i, field := range inst.FieldNames {
		fb.Emitf("\t%s: %s,\n", field, operands[i].Text())
	}
	fb.Emitf("}\n")
	return []Operand{Single(name)}, nil
}

func (e Engine) variantLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	blocks, err := fb.popBlocks(len(inst.Cases))
	if err != nil {
		return nil, err
	}
	value := operands[0].Text()
	fb.Emitf("switch variantPayload := %s.(type) {\n", value)
	var resultVars []string
	for i, c := range inst.Cases {
		caseType := fmt.Sprintf("%s%s", inst.TargetName, c.Name)
		fb.Emitf("case %s:\n", caseType)
		if c.HasPayload {
			fb.Emitf("\t_ = variantPayload\n")
		}
		fb.Emitf("%s\n", blocks[i].body)
		if resultVars == nil && len(blocks[i].operands) > 0 {
			for range blocks[i].operands {
				resultVars = append(resultVars, fb.Fresh("r"))
			}
		}
	}
	fb.Emitf("default:\n\t%s\n", fb.abortStmt("variant lower: unrecognized case", "variantPayload"))
	fb.Emitf("}\n")
	out := make([]Operand, len(resultVars))
	for i, v := range resultVars {
		out[i] = Single(v)
	}
	return out, nil
}

func (e Engine) enumLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	name := fb.Fresh("disc")
	fb.Emitf("%s := uint32(%s)\n", name, operands[0].Text())
	return []Operand{Single(name)}, nil
}

func (e Engine) enumLift(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	name := fb.Fresh("e")
	fb.Emitf("%s := %s(%s)\n", name, inst.TargetName, operands[0].Text())
	return []Operand{Single(name)}, nil
}

func (e Engine) handleLower(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	if inst.IsConstructor {
		idx := fb.Fresh("idx")
		fb.Emitf("%s := uint32(len(%s))\n", idx, inst.HandleTable)
		fb.Emitf("%s = append(%s, %s)\n", inst.HandleTable, inst.HandleTable, operands[0].Text())
		return []Operand{Single(idx)}, nil
	}
	name := fb.Fresh("h")
	fb.Emitf("%s := uint32(%s)\n", name, operands[0].Text())
	return []Operand{Single(name)}, nil
}

func (e Engine) handleLift(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	if len(operands) != 1 {
		return nil, arityErr(inst.Op, 1, len(operands))
	}
	if inst.HandleTable != "" {
		name := fb.Fresh("v")
		fb.Emitf("%s := %s[%s]\n", name, inst.HandleTable, operands[0].Text())
		return []Operand{Single(name)}, nil
	}
	name := fb.Fresh("handle")
	fb.Emitf("%s := %s(%s)\n", name, inst.TargetName, operands[0].Text())
	return []Operand{Single(name)}, nil
}

func (e Engine) malloc(fb *FuncBuild, inst Instruction, operands []Operand) ([]Operand, error) {
	ptr := fb.Fresh("ptr")
	fb.Emitf("%s, err := malloc(ctx, %d, %d)\n", ptr, inst.ElemSize, inst.ElemAlign)
	fb.Emitf("if err != nil {\n\t%s\n}\n", fb.errorPolicy("malloc", "err", "0"))
	return []Operand{Single(ptr)}, nil
}
