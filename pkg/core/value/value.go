// Package value implements Slang's runtime value representation: a tagged
// union carried on the VM's stack and in its constant pool, covering
// spec.md §3's fixed set of primitive and struct types.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/FrederikTobner/slang/pkg/types"
)

// Kind tags which primitive (or compound) shape a Value holds.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindI32
	KindI64
	KindU32
	KindU64
	KindF32
	KindF64
	KindString
	KindFunction
	KindStruct
)

// Value is Slang's tagged runtime value. Numeric and bool payloads live in
// Data (reinterpreted per Kind); strings live in Str; struct instances live
// in Fields, tagged with the struct's registry type ID.
type Value struct {
	Kind   Kind
	Data   uint64
	Str    string
	TypeID types.ID
	Fields []Value
}

func Unit() Value { return Value{Kind: KindUnit} }

func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Data: 1}
	}
	return Value{Kind: KindBool, Data: 0}
}

func I32(v int32) Value      { return Value{Kind: KindI32, Data: uint64(uint32(v))} }
func I64(v int64) Value      { return Value{Kind: KindI64, Data: uint64(v)} }
func U32(v uint32) Value     { return Value{Kind: KindU32, Data: uint64(v)} }
func U64(v uint64) Value     { return Value{Kind: KindU64, Data: v} }
func F32(v float32) Value    { return Value{Kind: KindF32, Data: uint64(math.Float32bits(v))} }
func F64(v float64) Value    { return Value{Kind: KindF64, Data: math.Float64bits(v)} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Function(idx int) Value { return Value{Kind: KindFunction, Data: uint64(idx)} }
func Struct(id types.ID, fields []Value) Value {
	return Value{Kind: KindStruct, TypeID: id, Fields: fields}
}

func (v Value) AsBool() bool         { return v.Data != 0 }
func (v Value) AsI32() int32         { return int32(uint32(v.Data)) }
func (v Value) AsI64() int64         { return int64(v.Data) }
func (v Value) AsU32() uint32        { return uint32(v.Data) }
func (v Value) AsU64() uint64        { return v.Data }
func (v Value) AsF32() float32       { return math.Float32frombits(uint32(v.Data)) }
func (v Value) AsF64() float64       { return math.Float64frombits(v.Data) }
func (v Value) AsFunctionIndex() int { return int(v.Data) }

// Truthy reports whether v is usable as a boolean condition (spec.md §4.3
// requires condition expressions to already be statically typed bool; this
// is a defensive check for a malformed chunk, not a language coercion).
func (v Value) Truthy() bool {
	return v.Kind == KindBool && v.AsBool()
}

// Equal implements the runtime equality used by OpEq/OpNe, valid only for
// operands the type checker already proved comparable (spec.md invariant:
// equality operands share an identical static type).
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindStruct:
		if v.TypeID != other.TypeID || len(v.Fields) != len(other.Fields) {
			return false
		}
		for i := range v.Fields {
			if !v.Fields[i].Equal(other.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return v.Data == other.Data
	}
}

// Format renders v the way print_value does (spec.md §4.5).
func (v Value) Format() string {
	switch v.Kind {
	case KindUnit:
		return "unit"
	case KindBool:
		return strconv.FormatBool(v.AsBool())
	case KindI32:
		return strconv.FormatInt(int64(v.AsI32()), 10)
	case KindI64:
		return strconv.FormatInt(v.AsI64(), 10)
	case KindU32:
		return strconv.FormatUint(uint64(v.AsU32()), 10)
	case KindU64:
		return strconv.FormatUint(v.AsU64(), 10)
	case KindF32:
		return strconv.FormatFloat(float64(v.AsF32()), 'g', -1, 32)
	case KindF64:
		return strconv.FormatFloat(v.AsF64(), 'g', -1, 64)
	case KindString:
		return v.Str
	case KindFunction:
		return fmt.Sprintf("<function %d>", v.AsFunctionIndex())
	case KindStruct:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.Format()
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	default:
		return "<invalid>"
	}
}
