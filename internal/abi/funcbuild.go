package abi

import (
	"bytes"
	"fmt"

	"github.com/wit-hostgen/wit-hostgen-go/internal/gen"
	"github.com/wit-hostgen/wit-hostgen-go/internal/htype"
)

// Direction selects which side of the boundary a FuncBuild is generating
// code for.
type Direction int

const (
	// ExportCaller generates an *Instance method that calls a guest export.
	ExportCaller Direction = iota
	// ImportTrampoline generates a host-module-builder function that
	// invokes a user-supplied interface implementation.
	ImportTrampoline
)

// ResultKind discriminates FuncBuild's result descriptor.
type ResultKind int

const (
	ResultEmpty ResultKind = iota
	ResultAnon
)

// ResultDescriptor governs §4.3.2's error-propagation policy: Empty and
// Anon(Unit)-equivalent functions can only abort on failure; Anon(Error)
// and Anon(ValueOrError) functions can return the failure typed.
type ResultDescriptor struct {
	Kind ResultKind
	Type htype.HType
}

// ResourceContext is present on a FuncBuild generating a resource
// constructor or method: the interface and resource names that name the
// per-resource handle table, and the table's host symbol.
type ResourceContext struct {
	Interface   string
	Resource    string
	HandleTable string
}

type finishedBlock struct {
	body     string
	operands []Operand
}

// FuncBuild accumulates the state of one function's ABI walk: the
// direction, the growing list of formal argument names, the current body
// token stream, the stack of saved bodies for nested blocks, the list of
// finished blocks waiting to be consumed by an aggregate instruction, a
// per-function temporary-name counter, the result descriptor, and an
// optional resource context. It lives for the duration of one function's
// walk and is then flushed into the parent *gen.File.
type FuncBuild struct {
	Direction         Direction
	InterfaceParam    string
	Result            ResultDescriptor
	Resource          *ResourceContext
	File              *gen.File
	ArgNames          []string
	body              bytes.Buffer
	blockStorage      []bytes.Buffer
	finishedBlocks    []finishedBlock
	tmp               int
	operandStackDepth int
}

// NewFuncBuild returns a new function builder writing into file.
func NewFuncBuild(file *gen.File, dir Direction, result ResultDescriptor) *FuncBuild {
	return &FuncBuild{Direction: dir, Result: result, File: file}
}

// Fresh returns a unique variable name of the form "<role><counter>",
// satisfying invariant §3.3.3 (temporary uniqueness within a function).
func (fb *FuncBuild) Fresh(role string) string {
	name := fmt.Sprintf("%s%d", role, fb.tmp)
	fb.tmp++
	return name
}

// Write appends to the current body stream (the function's own body, or
// the innermost open block's body if one is pushed).
func (fb *FuncBuild) Write(p []byte) (int, error) {
	return fb.body.Write(p)
}

// Emitf is a formatting convenience over Write.
func (fb *FuncBuild) Emitf(format string, args ...any) {
	fmt.Fprintf(fb, format, args...)
}

// PushBlock saves the current body stream and starts a fresh one, per
// §4.3.3's block protocol.
func (fb *FuncBuild) PushBlock() {
	fb.blockStorage = append(fb.blockStorage, fb.body)
	fb.body = bytes.Buffer{}
}

// FinishBlock pops the innermost saved body, restores it as the current
// body, and records the just-finished block's text and result operands
// for later consumption by an aggregate-consuming instruction.
func (fb *FuncBuild) FinishBlock(operands []Operand) error {
	if len(fb.blockStorage) == 0 {
		return &MalformedStreamError{Reason: "finish_block called with no matching push_block"}
	}
	n := len(fb.blockStorage) - 1
	finished := finishedBlock{body: fb.body.String(), operands: operands}
	fb.finishedBlocks = append(fb.finishedBlocks, finished)
	fb.body = fb.blockStorage[n]
	fb.blockStorage = fb.blockStorage[:n]
	return nil
}

// popBlocks pops the last n finished blocks in reverse declaration order
// (the most recently finished block is logically the last declared case),
// returning them in declaration order.
func (fb *FuncBuild) popBlocks(n int) ([]finishedBlock, error) {
	if len(fb.finishedBlocks) < n {
		return nil, &MalformedStreamError{Reason: fmt.Sprintf("need %d finished blocks, have %d", n, len(fb.finishedBlocks))}
	}
	start := len(fb.finishedBlocks) - n
	popped := append([]finishedBlock(nil), fb.finishedBlocks[start:]...)
	fb.finishedBlocks = fb.finishedBlocks[:start]
	return popped, nil
}

// Flush validates that the block stacks are empty (§3.3 invariant 2) and
// appends the accumulated body to file. The operand stack is not tracked,
// so invariant 1 is not checked here.
func (fb *FuncBuild) Flush() error {
	if len(fb.blockStorage) != 0 {
		return &MalformedStreamError{Reason: fmt.Sprintf("%d unfinished block(s) at function end", len(fb.blockStorage))}
	}
	if len(fb.finishedBlocks) != 0 {
		return &MalformedStreamError{Reason: fmt.Sprintf("%d unconsumed finished block(s) at function end", len(fb.finishedBlocks))}
	}
	_, err := fb.File.Write(fb.body.Bytes())
	return err
}

// Body returns the current body text without flushing, for tests that
// inspect a function's emitted source directly.
func (fb *FuncBuild) Body() string {
	return fb.body.String()
}

// abortStmt renders the §4.3.2 fallback for a fallible site in a function
// whose result shape cannot carry the error: an unconditional abort whose
// message starts with site. Callers pass the kind of operation as site, so
// two sites of the same kind share a message.
func (fb *FuncBuild) abortStmt(site, errExpr string) string {
	fb.File.Import("fmt")
	return fmt.Sprintf("panic(fmt.Sprintf(%q, %s))\n", site+": %v", errExpr)
}

// errorPolicy renders the §4.3.2 fallible-site policy for fb's result
// shape, given the Go expression holding the error and the zero-value
// expression to pair with it when the shape needs one.
func (fb *FuncBuild) errorPolicy(site, errExpr, zeroExpr string) string {
	switch {
	case fb.Result.Kind == ResultAnon && fb.Result.Type.Kind == htype.ValueOrError:
		fb.File.Import("fmt")
		return fmt.Sprintf("return %s, fmt.Errorf(\"%s: %%w\", %s)\n", zeroExpr, site, errExpr)
	case fb.Result.Kind == ResultAnon && fb.Result.Type.Kind == htype.Error:
		fb.File.Import("fmt")
		return fmt.Sprintf("return fmt.Errorf(\"%s: %%w\", %s)\n", site, errExpr)
	default:
		return fb.abortStmt(site, errExpr)
	}
}
