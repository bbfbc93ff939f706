// Package ast defines Slang's abstract syntax tree. Nodes are exclusively
// owned by their parents (no cycles); traversal uses Go type switches
// rather than virtual dispatch. Every node carries a full source Span(),
// not just a start offset.
package ast

import (
	"github.com/FrederikTobner/slang/pkg/span"
	"github.com/FrederikTobner/slang/pkg/types"
)

// Node is implemented by every AST node.
type Node interface {
	Span() span.Span
}

// Expr is implemented by every expression node. After semantic analysis,
// Type() returns the expression's result type (spec.md invariant 1).
type Expr interface {
	Node
	exprNode()
	Type() types.ID
	SetType(types.ID)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

type exprBase struct {
	Sp  span.Span
	Typ types.ID
}

func newExprBase(sp span.Span) exprBase {
	return exprBase{Sp: sp, Typ: types.Unresolved}
}

func (e *exprBase) Span() span.Span    { return e.Sp }
func (e *exprBase) exprNode()          {}
func (e *exprBase) Type() types.ID     { return e.Typ }
func (e *exprBase) SetType(t types.ID) { e.Typ = t }

type stmtBase struct {
	Sp span.Span
}

func (s *stmtBase) Span() span.Span { return s.Sp }
func (s *stmtBase) stmtNode()       {}

// ---- Expressions ----

type IntLiteral struct {
	exprBase
	Text   string // original digits, for width-suffix resolution
	Suffix string // "", "i32", "i64", "u32", "u64"
	Value  int64
	UValue uint64 // populated alongside Value when the literal exceeds int64
}

func NewIntLiteral(sp span.Span, text, suffix string, value int64, uvalue uint64) *IntLiteral {
	return &IntLiteral{exprBase: newExprBase(sp), Text: text, Suffix: suffix, Value: value, UValue: uvalue}
}

type FloatLiteral struct {
	exprBase
	Text   string
	Suffix string // "", "f32", "f64"
	Value  float64
}

func NewFloatLiteral(sp span.Span, text, suffix string, value float64) *FloatLiteral {
	return &FloatLiteral{exprBase: newExprBase(sp), Text: text, Suffix: suffix, Value: value}
}

type BoolLiteral struct {
	exprBase
	Value bool
}

func NewBoolLiteral(sp span.Span, value bool) *BoolLiteral {
	return &BoolLiteral{exprBase: newExprBase(sp), Value: value}
}

type StringLiteral struct {
	exprBase
	Value string // already unescaped
}

func NewStringLiteral(sp span.Span, value string) *StringLiteral {
	return &StringLiteral{exprBase: newExprBase(sp), Value: value}
}

// UnitLiteral has no source syntax (spec.md has no unit literal). The
// parser creates one only as a placeholder where an expression was
// expected but missing, after reporting ExpectedExpression. A tail-less
// block (nil Tail) and a bare `return;` (nil Value) do not use it; codegen
// emits Nil for those directly.
type UnitLiteral struct {
	exprBase
}

func NewUnitLiteral(sp span.Span) *UnitLiteral {
	return &UnitLiteral{exprBase: newExprBase(sp)}
}

type Identifier struct {
	exprBase
	Name string
}

func NewIdentifier(sp span.Span, name string) *Identifier {
	return &Identifier{exprBase: newExprBase(sp), Name: name}
}

type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

type Unary struct {
	exprBase
	Op   UnaryOp
	Expr Expr
}

func NewUnary(sp span.Span, op UnaryOp, expr Expr) *Unary {
	return &Unary{exprBase: newExprBase(sp), Op: op, Expr: expr}
}

type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
)

type Binary struct {
	exprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func NewBinary(sp span.Span, op BinaryOp, left, right Expr) *Binary {
	return &Binary{exprBase: newExprBase(sp), Op: op, Left: left, Right: right}
}

// Assign is `name = expr`. Not part of spec.md §3's expression grammar
// list, but required by §7's AssignToImmutable diagnostic and the
// StoreLocal/StoreGlobal opcodes in §4.4, which only make sense if a
// variable can be written after its `let` binding. Modeled as an
// expression of type unit, parsed only in statement position (see
// pkg/parser).
type Assign struct {
	exprBase
	Name  string
	Value Expr
}

func NewAssign(sp span.Span, name string, value Expr) *Assign {
	return &Assign{exprBase: newExprBase(sp), Name: name, Value: value}
}

// FieldInit is one `name: value` entry inside a StructLiteral.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLiteral constructs a value of the named struct type. The parser
// only recognizes `Name { ... }` outside a restricted context (an if
// condition), avoiding the block-vs-literal ambiguity an unrestricted
// grammar would have with `if x { ... }`.
type StructLiteral struct {
	exprBase
	Name   string
	Fields []FieldInit
}

func NewStructLiteral(sp span.Span, name string, fields []FieldInit) *StructLiteral {
	return &StructLiteral{exprBase: newExprBase(sp), Name: name, Fields: fields}
}

// FieldAccess is `target.field`.
type FieldAccess struct {
	exprBase
	Target Expr
	Field  string
}

func NewFieldAccess(sp span.Span, target Expr, field string) *FieldAccess {
	return &FieldAccess{exprBase: newExprBase(sp), Target: target, Field: field}
}

type Call struct {
	exprBase
	Callee string
	Args   []Expr
}

func NewCall(sp span.Span, callee string, args []Expr) *Call {
	return &Call{exprBase: newExprBase(sp), Callee: callee, Args: args}
}

// Block is a sequence of statements optionally terminated by a tail
// expression with no trailing semicolon; absent a tail, the block's value
// is unit. This node is also used as a function body.
type Block struct {
	exprBase
	Stmts []Stmt
	Tail  Expr // nil if absent
}

func NewBlock(sp span.Span, stmts []Stmt, tail Expr) *Block {
	return &Block{exprBase: newExprBase(sp), Stmts: stmts, Tail: tail}
}

// If appears in both statement and expression position; semantic analysis
// resolves which. Else is nil for a statement-position if with no else
// clause.
type If struct {
	exprBase
	Cond Expr
	Then *Block
	Else Expr // *Block, or nested *If, or nil
}

func NewIf(sp span.Span, cond Expr, then *Block, els Expr) *If {
	return &If{exprBase: newExprBase(sp), Cond: cond, Then: then, Else: els}
}

// ---- Statements ----

type Let struct {
	stmtBase
	Name         string
	DeclaredType string // "" if omitted; resolved against the type registry by sema
	Mutable      bool
	Init         Expr
}

func NewLet(sp span.Span, name, declaredType string, mutable bool, init Expr) *Let {
	return &Let{stmtBase: stmtBase{Sp: sp}, Name: name, DeclaredType: declaredType, Mutable: mutable, Init: init}
}

type ExprStmt struct {
	stmtBase
	Expr Expr
}

func NewExprStmt(sp span.Span, expr Expr) *ExprStmt {
	return &ExprStmt{stmtBase: stmtBase{Sp: sp}, Expr: expr}
}

type FieldDecl struct {
	Name string
	Type string
}

type StructDef struct {
	stmtBase
	Name   string
	Fields []FieldDecl
}

func NewStructDef(sp span.Span, name string, fields []FieldDecl) *StructDef {
	return &StructDef{stmtBase: stmtBase{Sp: sp}, Name: name, Fields: fields}
}

type Param struct {
	Name string
	Type string
}

type FuncDecl struct {
	stmtBase
	Name       string
	Params     []Param
	ResultType string // "" means unit
	Body       *Block
}

func NewFuncDecl(sp span.Span, name string, params []Param, resultType string, body *Block) *FuncDecl {
	return &FuncDecl{stmtBase: stmtBase{Sp: sp}, Name: name, Params: params, ResultType: resultType, Body: body}
}

type Return struct {
	stmtBase
	Value Expr // nil for bare `return;`
}

func NewReturn(sp span.Span, value Expr) *Return {
	return &Return{stmtBase: stmtBase{Sp: sp}, Value: value}
}
