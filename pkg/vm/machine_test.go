package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FrederikTobner/slang/pkg/compiler"
	"github.com/FrederikTobner/slang/pkg/config"
)

func runSource(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	if err := compiler.Run([]byte(src), "test.slang", config.Default(), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestArithmeticAndPrint(t *testing.T) {
	got := runSource(t, `
		let x = 40;
		let y = 2;
		print_value(x + y);
	`)
	if got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestIfElseBranching(t *testing.T) {
	got := runSource(t, `
		fn classify(n: i32) -> i32 {
			if n < 0 {
				0 - 1
			} else {
				1
			}
		}
		print_value(classify(-5));
		print_value(classify(5));
	`)
	if got != "-1\n1\n" {
		t.Errorf("output = %q, want %q", got, "-1\n1\n")
	}
}

func TestFunctionCallAndRecursion(t *testing.T) {
	got := runSource(t, `
		fn fib(n: i32) -> i32 {
			if n < 2 {
				n
			} else {
				fib(n - 1) + fib(n - 2)
			}
		}
		print_value(fib(10));
	`)
	if got != "55\n" {
		t.Errorf("output = %q, want %q", got, "55\n")
	}
}

func TestStructLiteralAndFieldAccess(t *testing.T) {
	got := runSource(t, `
		struct Point {
			x: i32,
			y: i32,
		}
		let p = Point { y: 2, x: 1 };
		print_value(p.x + p.y);
	`)
	if got != "3\n" {
		t.Errorf("output = %q, want %q", got, "3\n")
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	err := compiler.Run([]byte(`
		let z = 0;
		let x = 1 / z;
	`), "test.slang", config.Default(), &out)
	if err == nil {
		t.Fatalf("expected runtime division-by-zero error, got nil")
	}
}

func TestGasExhaustion(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.GasLimit = 3
	var out bytes.Buffer
	err := compiler.Run([]byte(`
		let x = 1 + 1;
		print_value(x);
	`), "test.slang", cfg, &out)
	if err == nil || !strings.Contains(err.Error(), "gas") {
		t.Fatalf("expected gas exhaustion error, got %v", err)
	}
}
