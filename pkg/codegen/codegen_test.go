package codegen

import (
	"testing"

	"github.com/FrederikTobner/slang/pkg/bytecode"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/lexer"
	"github.com/FrederikTobner/slang/pkg/parser"
	"github.com/FrederikTobner/slang/pkg/sema"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
)

func compileSource(t *testing.T, src string) *bytecode.Chunk {
	t.Helper()
	bag := diag.NewBag("test.slang")
	toks := lexer.New([]byte(src), bag).Tokenize()
	prog := parser.New(toks, bag).Parse()
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Diagnostics())
	}
	registry := types.NewRegistry()
	table := symbols.NewTable()
	sema.New(registry, table, bag).Analyze(prog)
	if bag.HasErrors() {
		t.Fatalf("sema errors: %v", bag.Diagnostics())
	}
	return Generate(prog, registry, table)
}

// TestStructLiteralEmitsFieldsInDeclaredOrder ensures MakeStruct's operand
// values are pushed in the struct's declaration order, not the literal's
// written order, so GetField's positional index stays valid.
func TestStructLiteralEmitsFieldsInDeclaredOrder(t *testing.T) {
	chunk := compileSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { y: 2, x: 1 };
	`)

	// The two constants should be pushed x-then-y (declared order): find the
	// two OpConstant operands feeding the OpMakeStruct and check their
	// pooled values in emission order.
	var pushedIndices []uint16
	code := chunk.Code
	for i := 0; i < len(code); {
		op := bytecode.Op(code[i])
		switch op {
		case bytecode.OpConstant:
			pushedIndices = append(pushedIndices, uint16(code[i+1])<<8|uint16(code[i+2]))
			i += 3
		case bytecode.OpMakeStruct:
			i = len(code) // stop scanning once we hit the struct construction
		default:
			i += 1 + op.OperandWidth()
		}
	}
	if len(pushedIndices) < 2 {
		t.Fatalf("expected at least 2 constants pushed before MakeStruct, got %d", len(pushedIndices))
	}
	first := chunk.Constants[pushedIndices[len(pushedIndices)-2]]
	second := chunk.Constants[pushedIndices[len(pushedIndices)-1]]
	if first.I != 1 || second.I != 2 {
		t.Errorf("pushed constants = (%d, %d), want (1, 2) — declared field order x,y", first.I, second.I)
	}
}

func TestMakeStructOperandEncoding(t *testing.T) {
	chunk := compileSource(t, `
		struct Point { x: i32, y: i32 }
		let p = Point { x: 1, y: 2 };
	`)
	found := false
	code := chunk.Code
	for i := 0; i < len(code); {
		op := bytecode.Op(code[i])
		if op == bytecode.OpMakeStruct {
			fieldCount := code[i+3]
			if fieldCount != 2 {
				t.Errorf("MakeStruct field count = %d, want 2", fieldCount)
			}
			found = true
			break
		}
		i += 1 + op.OperandWidth()
	}
	if !found {
		t.Fatalf("no MakeStruct instruction emitted")
	}
}

func TestFunctionCallEmitsCallOpcode(t *testing.T) {
	chunk := compileSource(t, `
		fn add(a: i32, b: i32) -> i32 { a + b }
		let x = add(1, 2);
	`)
	found := false
	code := chunk.Code
	for i := 0; i < len(code); {
		op := bytecode.Op(code[i])
		if op == bytecode.OpCall {
			if code[i+1] != 2 {
				t.Errorf("Call argc = %d, want 2", code[i+1])
			}
			found = true
			break
		}
		i += 1 + op.OperandWidth()
	}
	if !found {
		t.Fatalf("no Call instruction emitted")
	}
	if len(chunk.Functions) != 1 || chunk.Functions[0].Name != "add" {
		t.Errorf("Functions = %+v, want one entry named add", chunk.Functions)
	}
}
