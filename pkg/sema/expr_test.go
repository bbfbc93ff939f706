package sema

import (
	"testing"

	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/lexer"
	"github.com/FrederikTobner/slang/pkg/parser"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
)

func analyzeSource(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag("test.slang")
	toks := lexer.New([]byte(src), bag).Tokenize()
	prog := parser.New(toks, bag).Parse()
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Diagnostics())
	}
	registry := types.NewRegistry()
	table := symbols.NewTable()
	New(registry, table, bag).Analyze(prog)
	return prog, bag
}

func TestStructLiteralHappyPath(t *testing.T) {
	_, bag := analyzeSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { x: 1, y: 2 };
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
}

func TestStructLiteralFieldOrderIndependent(t *testing.T) {
	_, bag := analyzeSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { y: 2, x: 1 };
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
}

func TestStructLiteralUnknownFieldReported(t *testing.T) {
	_, bag := analyzeSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { x: 1, y: 2, z: 3 };
	`)
	if !bag.HasErrors() {
		t.Fatalf("expected an error for unknown field")
	}
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.UnknownField {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want one with code UnknownField", bag.Diagnostics())
	}
}

func TestStructLiteralMissingFieldReported(t *testing.T) {
	_, bag := analyzeSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { x: 1 };
	`)
	if !bag.HasErrors() {
		t.Fatalf("expected an error for missing field")
	}
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.ArityMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want one with code ArityMismatch", bag.Diagnostics())
	}
}

func TestStructLiteralFieldTypeMismatchReported(t *testing.T) {
	_, bag := analyzeSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { x: true, y: 2 };
	`)
	if !bag.HasErrors() {
		t.Fatalf("expected an error for a field type mismatch")
	}
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want one with code TypeMismatch", bag.Diagnostics())
	}
}

func TestFieldAccessOnNonStructReported(t *testing.T) {
	_, bag := analyzeSource(t, `
		let x = 5;
		let y = x.field;
	`)
	if !bag.HasErrors() {
		t.Fatalf("expected an error for field access on a non-struct")
	}
}

func TestFieldAccessResolvesDeclaredType(t *testing.T) {
	prog, bag := analyzeSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { x: 1, y: 2 };
		let n = p.x;
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	let := prog.Items[2].(*ast.Let)
	access := let.Init.(*ast.FieldAccess)
	if access.Type() != types.I32 {
		t.Errorf("FieldAccess.Type() = %v, want types.I32", access.Type())
	}
}
