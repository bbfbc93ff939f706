package sema

import (
	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
)

// analyzeBody is pass 2: a depth-first walk assigning a resolved type to
// every expression and checking every statement-level rule in spec.md
// §4.3. Top-level bare statements (spec.md's end-to-end scenarios execute
// `let`/expression statements directly) are analyzed in the global scope
// alongside function bodies.
func (a *Analyzer) analyzeBody(prog *ast.Program) {
	for _, item := range prog.Items {
		switch s := item.(type) {
		case *ast.FuncDecl:
			a.analyzeFuncBody(s)
		case *ast.StructDef:
			// already fully handled in pass 1.
		default:
			a.analyzeStmt(item)
		}
	}
}

func (a *Analyzer) analyzeFuncBody(fd *ast.FuncDecl) {
	info := a.funcInfo(fd.Name)
	outer := a.funcCtx
	a.funcCtx = &funcContext{name: fd.Name, resultType: info.Result}
	defer func() { a.funcCtx = outer }()

	a.table.Push()
	defer a.table.Pop()

	for i, p := range fd.Params {
		sym := &symbols.Symbol{Name: p.Name, Kind: symbols.KindVariable, TypeID: uint32(info.Params[i]), Mutable: false, Span: fd.Span(), Slot: i}
		if !a.table.Declare(sym) {
			a.bag.Addf(diag.DuplicateSymbol, fd.Span(), "duplicate parameter %q", p.Name)
		}
	}

	blockType := a.analyzeBlock(fd.Body, info.Result)

	// spec.md §4.3: "the final statement... must have the result type;
	// falling off the end is an error unless the result type is unit" —
	// but a block that unconditionally returns on every path also
	// satisfies this even if its own tail type differs; a full
	// reachability analysis is out of scope, so we accept either an
	// exact-matching tail type or a body whose last top-level statement
	// is a return.
	if info.Result != types.Unit && blockType != info.Result && !blockEndsInReturn(fd.Body) {
		a.bag.Addf(diag.MissingReturn, fd.Span(), "function %q must return a value of type %s", fd.Name, a.registry.Name(info.Result))
	}
}

func blockEndsInReturn(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.Return)
	return ok
}

func (a *Analyzer) funcInfo(name string) *types.Info {
	sym := a.table.Lookup(name)
	if sym == nil {
		return &types.Info{Result: types.Unit}
	}
	return a.registry.Lookup(types.ID(sym.TypeID))
}

// analyzeBlock pushes a fresh scope, analyzes every statement, then
// analyzes the tail expression (hinted with expected, the type the block
// is used in context of — e.g. a function's result type) and returns the
// block's resulting type: the tail's type, or Unit if absent.
func (a *Analyzer) analyzeBlock(b *ast.Block, expected types.ID) types.ID {
	a.table.Push()
	defer a.table.Pop()

	for _, s := range b.Stmts {
		a.analyzeStmt(s)
	}

	if b.Tail == nil {
		b.SetType(types.Unit)
		return types.Unit
	}
	t := a.analyzeExprHinted(b.Tail, expected)
	b.SetType(t)
	return t
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Let:
		a.analyzeLet(st)
	case *ast.ExprStmt:
		a.analyzeExpr(st.Expr)
	case *ast.Return:
		a.analyzeReturn(st)
	}
}

func (a *Analyzer) analyzeLet(s *ast.Let) {
	declared := types.Unresolved
	if s.DeclaredType != "" {
		declared = a.resolveTypeName(s.DeclaredType, s.Span())
	}
	initType := a.analyzeExprHinted(s.Init, declared)

	var finalType types.ID
	if declared != types.Unresolved {
		if declared != initType {
			a.bag.Addf(diag.TypeMismatch, s.Span(), "cannot assign %s to %s in let binding for %q",
				a.registry.Name(initType), a.registry.Name(declared), s.Name)
		}
		finalType = declared
	} else {
		finalType = initType
	}

	sym := &symbols.Symbol{Name: s.Name, Kind: symbols.KindVariable, TypeID: uint32(finalType), Mutable: s.Mutable, Span: s.Span()}
	if !a.table.Declare(sym) {
		a.bag.Addf(diag.DuplicateSymbol, s.Span(), "variable %q already defined in this scope", s.Name)
	}
}

func (a *Analyzer) analyzeReturn(s *ast.Return) {
	if a.funcCtx == nil {
		a.bag.Addf(diag.InvalidStatement, s.Span(), "return statement outside function")
		return
	}
	if s.Value == nil {
		if a.funcCtx.resultType != types.Unit {
			a.bag.Addf(diag.MissingReturn, s.Span(), "bare return requires function %q's result type to be unit", a.funcCtx.name)
		}
		return
	}
	vt := a.analyzeExprHinted(s.Value, a.funcCtx.resultType)
	if vt != a.funcCtx.resultType {
		a.bag.Addf(diag.TypeMismatch, s.Span(), "return type %s does not match function %q's declared result %s",
			a.registry.Name(vt), a.funcCtx.name, a.registry.Name(a.funcCtx.resultType))
	}
}
