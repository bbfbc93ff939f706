package value

import (
	"testing"

	"github.com/FrederikTobner/slang/pkg/types"
)

func TestNumericRoundTrip(t *testing.T) {
	if got := I32(-42).AsI32(); got != -42 {
		t.Errorf("I32 round-trip = %d, want -42", got)
	}
	if got := I64(-1 << 40).AsI64(); got != -1<<40 {
		t.Errorf("I64 round-trip = %d, want %d", got, int64(-1<<40))
	}
	if got := U32(4000000000).AsU32(); got != 4000000000 {
		t.Errorf("U32 round-trip = %d, want 4000000000", got)
	}
	if got := U64(1 << 63).AsU64(); got != 1<<63 {
		t.Errorf("U64 round-trip = %d, want %d", got, uint64(1<<63))
	}
	if got := F32(3.5).AsF32(); got != 3.5 {
		t.Errorf("F32 round-trip = %v, want 3.5", got)
	}
	if got := F64(2.71828).AsF64(); got != 2.71828 {
		t.Errorf("F64 round-trip = %v, want 2.71828", got)
	}
}

func TestTruthy(t *testing.T) {
	if !Bool(true).Truthy() {
		t.Errorf("Bool(true).Truthy() = false, want true")
	}
	if Bool(false).Truthy() {
		t.Errorf("Bool(false).Truthy() = true, want false")
	}
	if I32(1).Truthy() {
		t.Errorf("non-bool Value.Truthy() = true, want false")
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal ints", I32(5), I32(5), true},
		{"unequal ints", I32(5), I32(6), false},
		{"equal strings", String("hi"), String("hi"), true},
		{"unequal strings", String("hi"), String("bye"), false},
		{"mismatched kinds", I32(0), U32(0), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.want {
				t.Errorf("%v.Equal(%v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"unit", Unit(), "unit"},
		{"bool", Bool(true), "true"},
		{"i32", I32(-7), "-7"},
		{"u64", U64(18446744073709551615), "18446744073709551615"},
		{"string", String("hi"), "hi"},
		{"function", Function(3), "<function 3>"},
		{"struct", Struct(types.ID(1), []Value{I32(1), I32(2)}), "{1, 2}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Format(); got != c.want {
				t.Errorf("Format() = %q, want %q", got, c.want)
			}
		})
	}
}
