package parser

import (
	"testing"

	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/lexer"
)

func parseSource(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag("test.slang")
	toks := lexer.New([]byte(src), bag).Tokenize()
	prog := New(toks, bag).Parse()
	return prog, bag
}

func TestParseStructLiteral(t *testing.T) {
	prog, bag := parseSource(t, `let p = Point { x: 1, y: 2 };`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	let, ok := prog.Items[0].(*ast.Let)
	if !ok {
		t.Fatalf("Items[0] = %T, want *ast.Let", prog.Items[0])
	}
	lit, ok := let.Init.(*ast.StructLiteral)
	if !ok {
		t.Fatalf("Init = %T, want *ast.StructLiteral", let.Init)
	}
	if lit.Name != "Point" {
		t.Errorf("Name = %q, want %q", lit.Name, "Point")
	}
	if len(lit.Fields) != 2 || lit.Fields[0].Name != "x" || lit.Fields[1].Name != "y" {
		t.Errorf("Fields = %+v, want [x y]", lit.Fields)
	}
}

func TestParseFieldAccess(t *testing.T) {
	prog, bag := parseSource(t, `let n = p.x;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	let := prog.Items[0].(*ast.Let)
	access, ok := let.Init.(*ast.FieldAccess)
	if !ok {
		t.Fatalf("Init = %T, want *ast.FieldAccess", let.Init)
	}
	if access.Field != "x" {
		t.Errorf("Field = %q, want %q", access.Field, "x")
	}
	if _, ok := access.Target.(*ast.Identifier); !ok {
		t.Errorf("Target = %T, want *ast.Identifier", access.Target)
	}
}

func TestChainedFieldAccess(t *testing.T) {
	prog, bag := parseSource(t, `let n = p.a.b;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	let := prog.Items[0].(*ast.Let)
	outer, ok := let.Init.(*ast.FieldAccess)
	if !ok || outer.Field != "b" {
		t.Fatalf("outer access = %+v, want Field \"b\"", outer)
	}
	inner, ok := outer.Target.(*ast.FieldAccess)
	if !ok || inner.Field != "a" {
		t.Fatalf("inner access = %+v, want Field \"a\"", inner)
	}
}

// TestIfConditionDoesNotParseAsStructLiteral ensures `if cond { ... }`'s
// brace is recognized as the then-block, not a struct literal on cond, even
// when cond is a bare identifier that could name a struct type.
func TestIfConditionDoesNotParseAsStructLiteral(t *testing.T) {
	prog, bag := parseSource(t, `
		fn f(flag: bool) -> i32 {
			if flag {
				1
			} else {
				2
			}
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	fn := prog.Items[0].(*ast.FuncDecl)
	ifExpr, ok := fn.Body.Tail.(*ast.If)
	if !ok {
		t.Fatalf("Body.Tail = %T, want *ast.If", fn.Body.Tail)
	}
	if _, ok := ifExpr.Cond.(*ast.Identifier); !ok {
		t.Errorf("Cond = %T, want *ast.Identifier", ifExpr.Cond)
	}
}

// TestStructLiteralStillParsesOutsideIfCondition confirms noStructLiteral's
// restriction is scoped to if conditions only, not expression position
// generally.
func TestStructLiteralStillParsesOutsideIfCondition(t *testing.T) {
	prog, bag := parseSource(t, `
		fn f() -> i32 {
			let p = Point { x: 1, y: 2 };
			p.x
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	fn := prog.Items[0].(*ast.FuncDecl)
	let := fn.Body.Stmts[0].(*ast.Let)
	if _, ok := let.Init.(*ast.StructLiteral); !ok {
		t.Errorf("Init = %T, want *ast.StructLiteral", let.Init)
	}
}
