package codegen

import (
	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/bytecode"
	"github.com/FrederikTobner/slang/pkg/span"
	"github.com/FrederikTobner/slang/pkg/types"
)

// recordLine appends a line-table entry only when the source line actually
// changes, matching spec.md §4.4's run-length encoding.
func (e *Emitter) recordLine(sp span.Span) {
	line := uint32(sp.Start.Line)
	if e.haveLine && line == e.lastLine {
		return
	}
	e.chunk.LineTable = append(e.chunk.LineTable, bytecode.LineEntry{
		Offset: uint32(len(e.chunk.Code)),
		Line:   line,
	})
	e.lastLine = line
	e.haveLine = true
}

// emitBlockValue emits b's statements followed by its tail expression (or an
// implicit unit), leaving exactly one value on the stack.
func (e *Emitter) emitBlockValue(b *ast.Block) {
	e.pushScope()
	defer e.popScope()

	for _, s := range b.Stmts {
		e.emitStmt(s)
	}
	if b.Tail != nil {
		e.emitExpr(b.Tail)
	} else {
		e.emit(bytecode.OpNil)
	}
}

func (e *Emitter) emitStmt(s ast.Stmt) {
	e.recordLine(s.Span())
	switch st := s.(type) {
	case *ast.Let:
		e.emitExpr(st.Init)
		e.declareBinding(st.Name)
	case *ast.Return:
		if st.Value != nil {
			e.emitExpr(st.Value)
		} else {
			e.emit(bytecode.OpNil)
		}
		e.emit(bytecode.OpReturn)
	case *ast.ExprStmt:
		e.emitExpr(st.Expr)
		e.emit(bytecode.OpPop)
	}
}

// emitExpr emits ex, leaving exactly one value on the stack: ex's result.
func (e *Emitter) emitExpr(ex ast.Expr) {
	e.recordLine(ex.Span())
	switch x := ex.(type) {
	case *ast.IntLiteral:
		e.emitConstant(e.intConstant(x))
	case *ast.FloatLiteral:
		e.emitConstant(e.floatConstant(x))
	case *ast.BoolLiteral:
		e.emitConstant(bytecode.BoolConstant(x.Value))
	case *ast.StringLiteral:
		e.emitConstant(bytecode.StringConstant(x.Value))
	case *ast.UnitLiteral:
		e.emit(bytecode.OpNil)
	case *ast.Identifier:
		e.emitLoad(x.Name)
	case *ast.Assign:
		e.emitExpr(x.Value)
		e.emitStore(x.Name)
		e.emit(bytecode.OpNil)
	case *ast.Unary:
		e.emitUnary(x)
	case *ast.Binary:
		e.emitBinary(x)
	case *ast.Call:
		e.emitCall(x)
	case *ast.StructLiteral:
		e.emitStructLiteral(x)
	case *ast.FieldAccess:
		e.emitFieldAccess(x)
	case *ast.Block:
		e.emitBlockValue(x)
	case *ast.If:
		e.emitIf(x)
	}
}

func (e *Emitter) emitUnary(x *ast.Unary) {
	if x.Op == ast.UnaryNot {
		e.emitExpr(x.Expr)
		e.emit(bytecode.OpNot)
		return
	}
	// Negation has no dedicated opcode; lowered to 0 - x using the same
	// per-type Sub opcode arithmetic already uses.
	t := x.Expr.Type()
	e.emitConstant(e.zeroConstantFor(t))
	e.emitExpr(x.Expr)
	e.emit(e.subOpFor(t))
}

func (e *Emitter) emitBinary(x *ast.Binary) {
	switch x.Op {
	case ast.BinAnd:
		e.emitExpr(x.Left)
		jf := e.emitJumpPlaceholder(bytecode.OpJumpIfFalse)
		e.emitExpr(x.Right)
		jend := e.emitJumpPlaceholder(bytecode.OpJump)
		e.patchJump(jf)
		e.emitConstant(bytecode.BoolConstant(false))
		e.patchJump(jend)
		return
	case ast.BinOr:
		e.emitExpr(x.Left)
		jf := e.emitJumpPlaceholder(bytecode.OpJumpIfFalse)
		e.emitConstant(bytecode.BoolConstant(true))
		jend := e.emitJumpPlaceholder(bytecode.OpJump)
		e.patchJump(jf)
		e.emitExpr(x.Right)
		e.patchJump(jend)
		return
	}

	e.emitExpr(x.Left)
	e.emitExpr(x.Right)
	switch x.Op {
	case ast.BinEq:
		e.emit(bytecode.OpEq)
	case ast.BinNe:
		e.emit(bytecode.OpNe)
	case ast.BinLt:
		e.emit(bytecode.OpLt)
	case ast.BinLe:
		e.emit(bytecode.OpLe)
	case ast.BinGt:
		e.emit(bytecode.OpGt)
	case ast.BinGe:
		e.emit(bytecode.OpGe)
	default:
		e.emit(e.arithOpFor(x.Op, x.Left.Type()))
	}
}

func (e *Emitter) emitCall(x *ast.Call) {
	if idx, ok := nativeIndex[x.Callee]; ok {
		for _, a := range x.Args {
			e.emitExpr(a)
		}
		e.emitTwoByteOperand(bytecode.OpCallNative, idx, byte(len(x.Args)))
		return
	}

	fnIdx := e.funcIndex[x.Callee]
	e.emitConstant(bytecode.FunctionConstant(fnIdx))
	for _, a := range x.Args {
		e.emitExpr(a)
	}
	e.emitByteOperand(bytecode.OpCall, byte(len(x.Args)))
}

// emitStructLiteral emits MakeStruct(type_id, field_count). Field values
// must be pushed in the struct's declared field order (not the literal's
// written order) so GetField's positional index lines up at every use site.
func (e *Emitter) emitStructLiteral(x *ast.StructLiteral) {
	structID := x.Type()
	info := e.registry.Lookup(structID)
	byName := make(map[string]ast.Expr, len(x.Fields))
	for _, f := range x.Fields {
		byName[f.Name] = f.Value
	}
	for _, fd := range info.Fields {
		e.emitExpr(byName[fd.Name])
	}
	e.emitMakeStruct(uint16(structID), byte(len(info.Fields)))
}

func (e *Emitter) emitFieldAccess(x *ast.FieldAccess) {
	e.emitExpr(x.Target)
	info := e.registry.Lookup(x.Target.Type())
	idx := 0
	for i, fd := range info.Fields {
		if fd.Name == x.Field {
			idx = i
			break
		}
	}
	e.emitByteOperand(bytecode.OpGetField, byte(idx))
}

func (e *Emitter) emitIf(x *ast.If) {
	e.emitExpr(x.Cond)
	jelse := e.emitJumpPlaceholder(bytecode.OpJumpIfFalse)
	e.emitBlockValue(x.Then)
	jend := e.emitJumpPlaceholder(bytecode.OpJump)
	e.patchJump(jelse)
	if x.Else != nil {
		e.emitExpr(x.Else)
	} else {
		e.emit(bytecode.OpNil)
	}
	e.patchJump(jend)
}

// arithOpFor and subOpFor pick the per-width/signedness opcode variant for
// a resolved numeric type, mirroring spec.md §4.4's split opcode set.
func (e *Emitter) arithOpFor(op ast.BinaryOp, t types.ID) bytecode.Op {
	family := [...]map[types.ID]bytecode.Op{
		ast.BinAdd: {types.I32: bytecode.OpAddI32, types.I64: bytecode.OpAddI64, types.U32: bytecode.OpAddU32, types.U64: bytecode.OpAddU64, types.F32: bytecode.OpAddF32, types.F64: bytecode.OpAddF64},
		ast.BinSub: {types.I32: bytecode.OpSubI32, types.I64: bytecode.OpSubI64, types.U32: bytecode.OpSubU32, types.U64: bytecode.OpSubU64, types.F32: bytecode.OpSubF32, types.F64: bytecode.OpSubF64},
		ast.BinMul: {types.I32: bytecode.OpMulI32, types.I64: bytecode.OpMulI64, types.U32: bytecode.OpMulU32, types.U64: bytecode.OpMulU64, types.F32: bytecode.OpMulF32, types.F64: bytecode.OpMulF64},
		ast.BinDiv: {types.I32: bytecode.OpDivI32, types.I64: bytecode.OpDivI64, types.U32: bytecode.OpDivU32, types.U64: bytecode.OpDivU64, types.F32: bytecode.OpDivF32, types.F64: bytecode.OpDivF64},
		ast.BinMod: {types.I32: bytecode.OpRemI32, types.I64: bytecode.OpRemI64, types.U32: bytecode.OpRemU32, types.U64: bytecode.OpRemU64},
	}
	return family[op][t]
}

func (e *Emitter) subOpFor(t types.ID) bytecode.Op {
	return e.arithOpFor(ast.BinSub, t)
}

// intConstant and floatConstant pick the width-tagged Constant matching a
// literal's resolved static type (sema has already range-checked it).
func (e *Emitter) intConstant(x *ast.IntLiteral) bytecode.Constant {
	switch x.Type() {
	case types.I32:
		return bytecode.I32Constant(int32(x.Value))
	case types.U32:
		return bytecode.U32Constant(uint32(x.Value))
	case types.U64:
		if x.UValue != 0 {
			return bytecode.U64Constant(x.UValue)
		}
		return bytecode.U64Constant(uint64(x.Value))
	default:
		return bytecode.I64Constant(x.Value)
	}
}

func (e *Emitter) floatConstant(x *ast.FloatLiteral) bytecode.Constant {
	if x.Type() == types.F32 {
		return bytecode.F32Constant(float32(x.Value))
	}
	return bytecode.F64Constant(x.Value)
}

func (e *Emitter) zeroConstantFor(t types.ID) bytecode.Constant {
	switch t {
	case types.I32:
		return bytecode.I32Constant(0)
	case types.U32:
		return bytecode.U32Constant(0)
	case types.U64:
		return bytecode.U64Constant(0)
	case types.F32:
		return bytecode.F32Constant(0)
	case types.F64:
		return bytecode.F64Constant(0)
	default:
		return bytecode.I64Constant(0)
	}
}
