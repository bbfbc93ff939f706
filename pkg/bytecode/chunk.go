package bytecode

import "github.com/FrederikTobner/slang/pkg/types"

// ConstKind tags the payload type of a pooled constant (spec.md §3/§6).
type ConstKind byte

const (
	// Integer and float constants are width-tagged (rather than one generic
	// int64/float64 kind) so the VM can recover a literal's exact runtime
	// type without having passed through a typed arithmetic opcode first —
	// otherwise a u32/u64 literal that is only ever stored and printed would
	// render as a signed i64 (see DESIGN.md).
	ConstI32 ConstKind = iota
	ConstI64
	ConstU32
	ConstU64
	ConstF32
	ConstF64
	ConstString
	ConstBool
	// ConstFunction holds a function_index (spec.md §3's Function(function_index)
	// runtime value). The calling convention pushes this constant, then
	// each argument, before Call(argc) — see DESIGN.md's Call resolution.
	ConstFunction
)

// Constant is one entry in a chunk's constant pool.
type Constant struct {
	Kind ConstKind
	I    int64 // raw bits for every integer/function kind
	F    float64
	S    string
	B    bool
}

func I32Constant(v int32) Constant      { return Constant{Kind: ConstI32, I: int64(v)} }
func I64Constant(v int64) Constant      { return Constant{Kind: ConstI64, I: v} }
func U32Constant(v uint32) Constant     { return Constant{Kind: ConstU32, I: int64(v)} }
func U64Constant(v uint64) Constant     { return Constant{Kind: ConstU64, I: int64(v)} }
func F32Constant(v float32) Constant    { return Constant{Kind: ConstF32, F: float64(v)} }
func F64Constant(v float64) Constant    { return Constant{Kind: ConstF64, F: v} }
func StringConstant(v string) Constant  { return Constant{Kind: ConstString, S: v} }
func BoolConstant(v bool) Constant      { return Constant{Kind: ConstBool, B: v} }
func FunctionConstant(idx int) Constant { return Constant{Kind: ConstFunction, I: int64(idx)} }

// LineEntry is one run-length-encoded (offset, line) pair: only offsets
// where the source line changes are recorded (spec.md §4.4).
type LineEntry struct {
	Offset uint32
	Line   uint32
}

// FunctionEntry describes one user-defined function's calling convention
// and code location within the shared code section.
type FunctionEntry struct {
	Name        string
	ParamCount  uint8
	ResultType  types.ID
	EntryOffset uint32
	LocalCount  uint16
}

// UserType mirrors a struct type from the registry for container
// round-tripping (spec.md §6's type_registry section covers user-defined
// types only; primitives are implicit and never serialized).
type UserType struct {
	ID     types.ID
	Name   string
	Fields []types.Field
}

// Chunk is a self-contained bytecode program unit: instructions, a
// constant pool, a function table, a line table, and the user-defined
// types it references.
type Chunk struct {
	Code      []byte
	Constants []Constant
	Functions []FunctionEntry
	LineTable []LineEntry
	UserTypes []UserType
}

// LineFor resolves the source line that produced the instruction at
// offset: it scans the run-length-encoded line table forward and returns
// the line of the last entry whose offset does not exceed it, or 0 if
// there is none (spec.md invariant 3: every table offset falls on an
// instruction boundary).
func (c *Chunk) LineFor(offset uint32) uint32 {
	line := uint32(0)
	for _, e := range c.LineTable {
		if e.Offset > offset {
			break
		}
		line = e.Line
	}
	return line
}
