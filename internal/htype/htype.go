// Package htype maps WIT types onto the host-language type descriptors the
// ABI engine and World generator need: the size/alignment/cleanup metadata
// a Go binding must carry for every WIT type it crosses, without walking
// the full definition at every use site.
package htype

import "fmt"

// Kind discriminates the arms of HType.
type Kind int

const (
	Bool Kind = iota
	U8
	U16
	U32
	U64
	S8
	S16
	S32
	S64
	F32
	F64
	String
	Error
	OpaqueInterface
	Pointer
	ValueOrFlag
	ValueOrError
	Slice
	UserDefined
	Resource
	OwnedHandle
	BorrowedHandle
	Unit
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "Bool"
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U32:
		return "U32"
	case U64:
		return "U64"
	case S8:
		return "S8"
	case S16:
		return "S16"
	case S32:
		return "S32"
	case S64:
		return "S64"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case String:
		return "String"
	case Error:
		return "Error"
	case OpaqueInterface:
		return "OpaqueInterface"
	case Pointer:
		return "Pointer"
	case ValueOrFlag:
		return "ValueOrFlag"
	case ValueOrError:
		return "ValueOrError"
	case Slice:
		return "Slice"
	case UserDefined:
		return "UserDefined"
	case Resource:
		return "Resource"
	case OwnedHandle:
		return "OwnedHandle"
	case BorrowedHandle:
		return "BorrowedHandle"
	case Unit:
		return "Unit"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// HType is the host-language type descriptor for a WIT type: a closed
// tagged union carrying just enough shape to drive Go source emission and
// the §4.3.2 error-propagation policy. Elem holds the payload type for the
// unary arms (Pointer, ValueOrFlag, ValueOrError, Slice); Name holds the
// declared identifier for the named arms (UserDefined, Resource,
// OwnedHandle, BorrowedHandle).
type HType struct {
	Kind Kind
	Elem *HType
	Name string
}

func prim(k Kind) HType { return HType{Kind: k} }

var (
	TBool   = prim(Bool)
	TU8     = prim(U8)
	TU16    = prim(U16)
	TU32    = prim(U32)
	TU64    = prim(U64)
	TS8     = prim(S8)
	TS16    = prim(S16)
	TS32    = prim(S32)
	TS64    = prim(S64)
	TF32    = prim(F32)
	TF64    = prim(F64)
	TString = prim(String)
	TError  = prim(Error)
	TUnit   = prim(Unit)
)

// NewPointer, NewValueOrFlag, NewValueOrError, and NewSlice construct the
// unary HType arms over elem.
func NewPointer(elem HType) HType      { return HType{Kind: Pointer, Elem: &elem} }
func NewValueOrFlag(elem HType) HType  { return HType{Kind: ValueOrFlag, Elem: &elem} }
func NewValueOrError(elem HType) HType { return HType{Kind: ValueOrError, Elem: &elem} }
func NewSlice(elem HType) HType        { return HType{Kind: Slice, Elem: &elem} }

// NewUserDefined, NewResource, NewOwnedHandle, and NewBorrowedHandle
// construct the named HType arms.
func NewUserDefined(name string) HType    { return HType{Kind: UserDefined, Name: name} }
func NewResource(name string) HType       { return HType{Kind: Resource, Name: name} }
func NewOwnedHandle(name string) HType    { return HType{Kind: OwnedHandle, Name: name} }
func NewBorrowedHandle(name string) HType { return HType{Kind: BorrowedHandle, Name: name} }
func NewOpaqueInterface() HType           { return prim(OpaqueInterface) }

// NeedsCleanup reports whether a value of this type, when returned from a
// guest export, leaves allocations in the guest's linear memory that must
// be reclaimed via a post-return call. Numeric primitives, resources,
// handles, and Unit never do; String/Slice/Error/ValueOrError/UserDefined/
// OpaqueInterface/Pointer always do (aggregate names are treated
// conservatively, since the engine does not walk the full record
// definition to prove the absence of an interior string or list);
// ValueOrFlag inherits its payload's answer.
func (t HType) NeedsCleanup() bool {
	switch t.Kind {
	case String, Slice, Error, ValueOrError, UserDefined, OpaqueInterface, Pointer:
		return true
	case ValueOrFlag:
		return t.Elem.NeedsCleanup()
	default:
		return false
	}
}

func (t HType) String() string {
	switch t.Kind {
	case Pointer, ValueOrFlag, ValueOrError, Slice:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Elem)
	case UserDefined, Resource, OwnedHandle, BorrowedHandle:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Name)
	default:
		return t.Kind.String()
	}
}
