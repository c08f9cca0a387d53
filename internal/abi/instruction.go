package abi

// Op names an instruction class from original §4.3.4.
type Op int

const (
	OpGetArg Op = iota
	OpConstZero
	OpI32Const
	OpNumericConv
	OpI32FromBool
	OpBoolFromI32
	OpMemLoad
	OpMemStore
	OpStringLower
	OpStringLift
	OpListLower
	OpListLift
	OpCallWasm
	OpCallInterface
	OpResultLower
	OpResultLift
	OpOptionLower
	OpOptionLift
	OpRecordLower
	OpRecordLift
	OpTupleLower
	OpTupleLift
	OpVariantLower
	OpVariantLift
	OpEnumLower
	OpEnumLift
	OpHandleLower
	OpHandleLift
	OpMalloc
	OpVariantPayloadName
	OpIterElem
	OpIterBasePointer
	OpReturn
	OpFlush
	OpBitcast
	OpGuestDeallocate
	OpAsyncFeature
)

func (op Op) String() string {
	names := [...]string{
		"GetArg", "ConstZero", "I32Const", "NumericConv", "I32FromBool",
		"BoolFromI32", "MemLoad", "MemStore", "StringLower", "StringLift",
		"ListLower", "ListLift", "CallWasm", "CallInterface", "ResultLower",
		"ResultLift", "OptionLower", "OptionLift", "RecordLower",
		"RecordLift", "TupleLower", "TupleLift", "VariantLower",
		"VariantLift", "EnumLower", "EnumLift", "HandleLower", "HandleLift",
		"Malloc", "VariantPayloadName", "IterElem", "IterBasePointer",
		"Return", "Flush", "Bitcast", "GuestDeallocate", "AsyncFeature",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "Op(?)"
}

// Arch selects the pointer width a memory instruction addresses.
type Arch int

const (
	Arch32 Arch = iota
	Arch64
	ArchDynamic // memReader/memWriter treat it as Arch64; no runtime dispatch is emitted
)

// MemKind names the load/store width and sign-extension of a memory
// instruction.
type MemKind int

const (
	MemI32 MemKind = iota
	MemI32_8U
	MemI64
	MemF32
	MemF64
	MemPointer
	MemLength
)

// CaseShape describes one case of a variant/enum/result for the
// aggregate lower/lift instructions: its name and, for variant, whether it
// carries a payload.
type CaseShape struct {
	Name       string
	HasPayload bool
}

// Instruction is the closed union of ABI instruction classes an external
// driver (internal/witabi) emits against the engine. Only the fields
// relevant to Op are populated; the engine never reads a field outside
// its instruction's documented shape.
type Instruction struct {
	Op Op

	// GetArg, ConstZero, Return, Flush
	N int

	// I32Const
	Literal string

	// NumericConv: the conversion name, e.g. "I32FromU8", "F32FromI32".
	Conv string

	// MemLoad / MemStore
	MemKind MemKind
	Offset  string // byte offset expression, already formatted by the driver
	Arch    Arch

	// StringLower / ListLower / Malloc
	ReallocName string
	ElemSize    uint64
	ElemAlign   uint64

	// CallWasm
	WasmName       string
	PostReturnName string
	NeedsCleanup   bool

	// CallInterface
	FuncName        string
	IsConstructor   bool
	IsResourceCall  bool
	LeadingResource bool

	// Result/Option/Record/Tuple/Variant/Enum lower+lift, Handle lower+lift
	Cases       []CaseShape
	FieldNames  []string
	HandleTable string
	TargetName  string // resource/interface-qualified name for HandleLift

	// Bitcast
	BitcastKinds []MemKind
}
