// Package sema implements Slang's semantic analyzer: two-pass scoped name
// resolution and static type checking over the parsed AST, per spec.md
// §4.3. Plain functions operate over an explicit analyzer struct rather
// than a visitor hierarchy.
package sema

import (
	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/span"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
)

var primitiveNames = map[string]types.ID{
	"bool":   types.Bool,
	"i32":    types.I32,
	"i64":    types.I64,
	"u32":    types.U32,
	"u64":    types.U64,
	"f32":    types.F32,
	"f64":    types.F64,
	"string": types.String,
	"unit":   types.Unit,
}

// nativeSig describes a VM builtin's calling convention for type-checking
// purposes. print_value is the one builtin spec.md §4.5 mandates; it
// accepts any single argument type and returns unit.
type nativeSig struct {
	arity  int
	anyArg bool
	result types.ID
}

var natives = map[string]nativeSig{
	"print_value": {arity: 1, anyArg: true, result: types.Unit},
}

// Analyzer walks a parsed Program, annotating every expression with a
// resolved type and populating a shared type registry and symbol table.
type Analyzer struct {
	registry *types.Registry
	table    *symbols.Table
	bag      *diag.Bag

	funcCtx *funcContext // non-nil while analyzing a function body
}

// funcContext tracks state local to one function body: its name and
// declared result type (for `return` checking).
type funcContext struct {
	name       string
	resultType types.ID
}

func New(registry *types.Registry, table *symbols.Table, bag *diag.Bag) *Analyzer {
	return &Analyzer{registry: registry, table: table, bag: bag}
}

// Analyze runs both passes over prog. If declaration collection produced
// any diagnostics, body analysis is skipped entirely (spec.md §7:
// "If any phase produced errors, subsequent phases are skipped" — applied
// here at the sub-pass level since both passes belong to the same phase).
func (a *Analyzer) Analyze(prog *ast.Program) {
	a.collectDeclarations(prog)
	if a.bag.HasErrors() {
		return
	}
	a.analyzeBody(prog)
}

func (a *Analyzer) resolveTypeName(name string, sp span.Span) types.ID {
	if id, ok := primitiveNames[name]; ok {
		return id
	}
	if sym := a.table.Lookup(name); sym != nil && sym.Kind == symbols.KindType {
		return types.ID(sym.TypeID)
	}
	a.bag.Addf(diag.UndefinedType, sp, "undefined type %q", name)
	return types.Unresolved
}
