// Package codegen lowers an analyzed AST into a bytecode.Chunk: one-byte
// opcodes with inline operands, laid out per spec.md §4.4, with constant-pool
// deduplication and a save-index/patch-later idiom for jump targets.
package codegen

import (
	"encoding/binary"

	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/bytecode"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
)

// nativeIndex assigns each VM builtin a stable CallNative index. print_value
// is the single builtin spec.md §4.5 mandates.
var nativeIndex = map[string]byte{
	"print_value": 0,
}

type scope struct {
	slots map[string]int
}

// Emitter walks a type-checked Program and produces a single Chunk. Top-level
// `let` bindings compile to global storage (LoadGlobal/StoreGlobal); function
// parameters and bindings inside a function body compile to frame-relative
// local slots (LoadLocal/StoreLocal).
type Emitter struct {
	registry *types.Registry
	table    *symbols.Table
	chunk    *bytecode.Chunk

	constIndex map[bytecode.Constant]int

	globals     map[string]int
	funcIndex   map[string]int
	funcResults map[string]types.ID

	locals    []*scope
	slotCount int
	maxSlot   int
	lastLine  uint32
	haveLine  bool
}

// Generate compiles prog into a Chunk. registry and table must be the exact
// Registry and Table populated by the semantic analyzer for prog, so that
// struct/function type IDs and symbol lookups line up.
func Generate(prog *ast.Program, registry *types.Registry, table *symbols.Table) *bytecode.Chunk {
	e := &Emitter{
		registry:    registry,
		table:       table,
		chunk:       &bytecode.Chunk{},
		constIndex:  make(map[bytecode.Constant]int),
		globals:     make(map[string]int),
		funcIndex:   make(map[string]int),
		funcResults: make(map[string]types.ID),
	}
	e.prescan(prog)

	jumpOverFuncs := e.emitJumpPlaceholder(bytecode.OpJump)
	for _, item := range prog.Items {
		if fd, ok := item.(*ast.FuncDecl); ok {
			e.emitFunc(fd)
		}
	}
	e.patchJump(jumpOverFuncs)

	for _, item := range prog.Items {
		switch s := item.(type) {
		case *ast.FuncDecl, *ast.StructDef:
			// already emitted / registry-only, respectively.
		default:
			e.emitStmt(s)
		}
	}
	e.emit(bytecode.OpNil)
	e.emit(bytecode.OpReturn)

	return e.chunk
}

// prescan assigns global slots, function table slots and user-type entries
// before any code is emitted, so forward references (a function calling one
// declared later, or a global referenced before its textual declaration's
// body runs) resolve during the single emission pass.
func (e *Emitter) prescan(prog *ast.Program) {
	for _, item := range prog.Items {
		switch s := item.(type) {
		case *ast.StructDef:
			sym := e.table.Lookup(s.Name)
			info := e.registry.Lookup(types.ID(sym.TypeID))
			e.chunk.UserTypes = append(e.chunk.UserTypes, bytecode.UserType{
				ID: info.ID, Name: info.Name, Fields: info.Fields,
			})
		case *ast.FuncDecl:
			idx := len(e.chunk.Functions)
			e.funcIndex[s.Name] = idx
			sym := e.table.Lookup(s.Name)
			info := e.registry.Lookup(types.ID(sym.TypeID))
			e.funcResults[s.Name] = info.Result
			e.chunk.Functions = append(e.chunk.Functions, bytecode.FunctionEntry{
				Name:       s.Name,
				ParamCount: uint8(len(s.Params)),
				ResultType: info.Result,
			})
		case *ast.Let:
			e.globals[s.Name] = len(e.globals)
		}
	}
}

func (e *Emitter) emitFunc(fd *ast.FuncDecl) {
	idx := e.funcIndex[fd.Name]
	e.chunk.Functions[idx].EntryOffset = uint32(len(e.chunk.Code))

	e.locals = append(e.locals, &scope{slots: make(map[string]int)})
	e.slotCount = 0
	e.maxSlot = 0
	for _, p := range fd.Params {
		e.declareLocal(p.Name)
	}

	e.emitBlockValue(fd.Body)
	e.emit(bytecode.OpReturn)

	e.chunk.Functions[idx].LocalCount = uint16(e.maxSlot)
	e.locals = e.locals[:len(e.locals)-1]
}

// --- low-level emission helpers ---

func (e *Emitter) emit(op bytecode.Op) {
	e.chunk.Code = append(e.chunk.Code, byte(op))
}

func (e *Emitter) emitByteOperand(op bytecode.Op, v byte) {
	e.chunk.Code = append(e.chunk.Code, byte(op), v)
}

func (e *Emitter) emitTwoByteOperand(op bytecode.Op, a, b byte) {
	e.chunk.Code = append(e.chunk.Code, byte(op), a, b)
}

func (e *Emitter) emitWideOperand(op bytecode.Op, v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	e.chunk.Code = append(e.chunk.Code, byte(op), buf[0], buf[1])
}

func (e *Emitter) emitMakeStruct(typeID uint16, fieldCount byte) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], typeID)
	e.chunk.Code = append(e.chunk.Code, byte(bytecode.OpMakeStruct), buf[0], buf[1], fieldCount)
}

// emitJumpPlaceholder emits op with a zeroed offset16 operand and returns the
// offset of the operand's first byte, to be filled in later by patchJump.
func (e *Emitter) emitJumpPlaceholder(op bytecode.Op) int {
	pos := len(e.chunk.Code)
	e.chunk.Code = append(e.chunk.Code, byte(op), 0, 0)
	return pos
}

func (e *Emitter) patchJump(operandPos int) {
	target := uint16(len(e.chunk.Code))
	binary.BigEndian.PutUint16(e.chunk.Code[operandPos+1:operandPos+3], target)
}

func (e *Emitter) addConstant(c bytecode.Constant) int {
	if idx, ok := e.constIndex[c]; ok {
		return idx
	}
	idx := len(e.chunk.Constants)
	e.chunk.Constants = append(e.chunk.Constants, c)
	e.constIndex[c] = idx
	return idx
}

func (e *Emitter) emitConstant(c bytecode.Constant) {
	idx := e.addConstant(c)
	e.emitWideOperand(bytecode.OpConstant, uint16(idx))
}

// --- variable storage resolution ---

func (e *Emitter) declareLocal(name string) int {
	slot := e.slotCount
	e.slotCount++
	if e.slotCount > e.maxSlot {
		e.maxSlot = e.slotCount
	}
	e.locals[len(e.locals)-1].slots[name] = slot
	return slot
}

func (e *Emitter) pushScope() {
	e.locals = append(e.locals, &scope{slots: make(map[string]int)})
}

func (e *Emitter) popScope() {
	e.locals = e.locals[:len(e.locals)-1]
}

// resolveLocal searches the open function's scope stack innermost-out.
func (e *Emitter) resolveLocal(name string) (int, bool) {
	for i := len(e.locals) - 1; i >= 0; i-- {
		if slot, ok := e.locals[i].slots[name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (e *Emitter) emitLoad(name string) {
	if slot, ok := e.resolveLocal(name); ok {
		e.emitByteOperand(bytecode.OpLoadLocal, byte(slot))
		return
	}
	idx := e.globals[name]
	e.emitWideOperand(bytecode.OpLoadGlobal, uint16(idx))
}

func (e *Emitter) emitStore(name string) {
	if slot, ok := e.resolveLocal(name); ok {
		e.emitByteOperand(bytecode.OpStoreLocal, byte(slot))
		return
	}
	idx := e.globals[name]
	e.emitWideOperand(bytecode.OpStoreGlobal, uint16(idx))
}

// declareBinding resolves where a `let` stores its value: a fresh local slot
// inside a function body, or a global slot at top level. Top-level lets
// inside a nested block (not a direct Program Item) aren't seen by prescan,
// so the global slot is allocated here on first use rather than assumed
// already present.
func (e *Emitter) declareBinding(name string) {
	if len(e.locals) > 0 {
		slot := e.declareLocal(name)
		e.emitByteOperand(bytecode.OpStoreLocal, byte(slot))
		return
	}
	idx, ok := e.globals[name]
	if !ok {
		idx = len(e.globals)
		e.globals[name] = idx
	}
	e.emitWideOperand(bytecode.OpStoreGlobal, uint16(idx))
}
