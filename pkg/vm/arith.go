package vm

import (
	"math"

	"github.com/FrederikTobner/slang/pkg/bytecode"
	"github.com/FrederikTobner/slang/pkg/core/value"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/span"
)

// zeroSpan is used for arithmetic diagnostics raised deep inside the
// dispatch loop, where mapping back to a source span would require passing
// the current instruction offset through every call; Machine.runtimeErr
// attaches the real line for errors raised at the dispatch loop's top level.
var zeroSpan = span.Span{}

// arith performs a's opcode-selected arithmetic against b, checking integer
// overflow and division/modulo by zero at runtime. The analyzer does not
// reject a literal zero divisor, so literal and variable zero divisors are
// both reported here.
func arith(op bytecode.Op, a, b value.Value) (value.Value, error) {
	switch op {
	case bytecode.OpAddI32:
		r := int64(a.AsI32()) + int64(b.AsI32())
		if r < minI32 || r > maxI32 {
			return value.Unit(), overflowErr()
		}
		return value.I32(int32(r)), nil
	case bytecode.OpAddI64:
		x, y := a.AsI64(), b.AsI64()
		r := x + y
		if (y > 0 && x > maxI64-y) || (y < 0 && x < minI64-y) {
			return value.Unit(), overflowErr()
		}
		return value.I64(r), nil
	case bytecode.OpAddU32:
		r := uint64(a.AsU32()) + uint64(b.AsU32())
		if r > maxU32 {
			return value.Unit(), overflowErr()
		}
		return value.U32(uint32(r)), nil
	case bytecode.OpAddU64:
		x, y := a.AsU64(), b.AsU64()
		r := x + y
		if r < x {
			return value.Unit(), overflowErr()
		}
		return value.U64(r), nil
	case bytecode.OpAddF32:
		return value.F32(a.AsF32() + b.AsF32()), nil
	case bytecode.OpAddF64:
		return value.F64(a.AsF64() + b.AsF64()), nil

	case bytecode.OpSubI32:
		r := int64(a.AsI32()) - int64(b.AsI32())
		if r < minI32 || r > maxI32 {
			return value.Unit(), overflowErr()
		}
		return value.I32(int32(r)), nil
	case bytecode.OpSubI64:
		x, y := a.AsI64(), b.AsI64()
		r := x - y
		if (y < 0 && x > maxI64+y) || (y > 0 && x < minI64+y) {
			return value.Unit(), overflowErr()
		}
		return value.I64(r), nil
	case bytecode.OpSubU32:
		x, y := a.AsU32(), b.AsU32()
		if y > x {
			return value.Unit(), overflowErr()
		}
		return value.U32(x - y), nil
	case bytecode.OpSubU64:
		x, y := a.AsU64(), b.AsU64()
		if y > x {
			return value.Unit(), overflowErr()
		}
		return value.U64(x - y), nil
	case bytecode.OpSubF32:
		return value.F32(a.AsF32() - b.AsF32()), nil
	case bytecode.OpSubF64:
		return value.F64(a.AsF64() - b.AsF64()), nil

	case bytecode.OpMulI32:
		r := int64(a.AsI32()) * int64(b.AsI32())
		if r < minI32 || r > maxI32 {
			return value.Unit(), overflowErr()
		}
		return value.I32(int32(r)), nil
	case bytecode.OpMulI64:
		x, y := a.AsI64(), b.AsI64()
		r := x * y
		if x != 0 && r/x != y {
			return value.Unit(), overflowErr()
		}
		return value.I64(r), nil
	case bytecode.OpMulU32:
		r := uint64(a.AsU32()) * uint64(b.AsU32())
		if r > maxU32 {
			return value.Unit(), overflowErr()
		}
		return value.U32(uint32(r)), nil
	case bytecode.OpMulU64:
		x, y := a.AsU64(), b.AsU64()
		r := x * y
		if x != 0 && r/x != y {
			return value.Unit(), overflowErr()
		}
		return value.U64(r), nil
	case bytecode.OpMulF32:
		return value.F32(a.AsF32() * b.AsF32()), nil
	case bytecode.OpMulF64:
		return value.F64(a.AsF64() * b.AsF64()), nil

	case bytecode.OpDivI32:
		y := b.AsI32()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.I32(a.AsI32() / y), nil
	case bytecode.OpDivI64:
		y := b.AsI64()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.I64(a.AsI64() / y), nil
	case bytecode.OpDivU32:
		y := b.AsU32()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.U32(a.AsU32() / y), nil
	case bytecode.OpDivU64:
		y := b.AsU64()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.U64(a.AsU64() / y), nil
	case bytecode.OpDivF32:
		return value.F32(a.AsF32() / b.AsF32()), nil
	case bytecode.OpDivF64:
		return value.F64(a.AsF64() / b.AsF64()), nil

	case bytecode.OpRemI32:
		y := b.AsI32()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.I32(a.AsI32() % y), nil
	case bytecode.OpRemI64:
		y := b.AsI64()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.I64(a.AsI64() % y), nil
	case bytecode.OpRemU32:
		y := b.AsU32()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.U32(a.AsU32() % y), nil
	case bytecode.OpRemU64:
		y := b.AsU64()
		if y == 0 {
			return value.Unit(), divZeroErr()
		}
		return value.U64(a.AsU64() % y), nil

	default:
		return value.Unit(), overflowErr()
	}
}

const (
	minI32 = int64(-1) << 31
	maxI32 = int64(1)<<31 - 1
	minI64 = math.MinInt64
	maxI64 = math.MaxInt64
	maxU32 = uint64(1)<<32 - 1
)

func overflowErr() error { return diag.New(diag.IntegerOverflow, "integer overflow", zeroSpan) }
func divZeroErr() error  { return diag.New(diag.DivisionByZero, "division by zero", zeroSpan) }

// compare implements the ordered relational opcodes against operands of
// identical static type (sema already enforced that), dispatching on the
// left operand's runtime kind.
func compare(op bytecode.Op, a, b value.Value) bool {
	switch a.Kind {
	case value.KindString:
		return compareOrdering(op, ordering(a.Str, b.Str))
	case value.KindI32:
		return compareOrdering(op, orderingInt(int64(a.AsI32()), int64(b.AsI32())))
	case value.KindI64:
		return compareOrdering(op, orderingInt(a.AsI64(), b.AsI64()))
	case value.KindU32:
		return compareOrdering(op, orderingUint(uint64(a.AsU32()), uint64(b.AsU32())))
	case value.KindU64:
		return compareOrdering(op, orderingUint(a.AsU64(), b.AsU64()))
	case value.KindF32:
		return compareOrdering(op, orderingFloat(float64(a.AsF32()), float64(b.AsF32())))
	case value.KindF64:
		return compareOrdering(op, orderingFloat(a.AsF64(), b.AsF64()))
	default:
		return false
	}
}

func compareOrdering(op bytecode.Op, o int) bool {
	switch op {
	case bytecode.OpLt:
		return o < 0
	case bytecode.OpLe:
		return o <= 0
	case bytecode.OpGt:
		return o > 0
	case bytecode.OpGe:
		return o >= 0
	default:
		return false
	}
}

func ordering(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderingInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderingUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderingFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
