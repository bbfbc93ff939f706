// Package types implements the Slang type registry: interning of primitive
// and user-defined types behind stable numeric identifiers, plus the
// numeric-range and function-type-dedup queries the rest of the compiler
// needs.
package types

import "fmt"

// ID is an opaque, stable handle into a Registry. IDs are never reused
// after registration (spec.md invariant 4).
type ID uint32

// Unresolved is the zero-value-free sentinel for "no type assigned yet",
// distinct from any registered ID so AST nodes can tell "untyped" apart
// from "typed as the first primitive".
const Unresolved ID = 1<<32 - 1

// Fixed IDs for built-in primitive types, pre-registered by NewRegistry.
const (
	Bool ID = iota
	I32
	I64
	U32
	U64
	F32
	F64
	String
	Unit
	firstUserID
)

// Kind tags the structural shape of a type.
type Kind int

const (
	KindBool Kind = iota
	KindInteger
	KindFloat
	KindString
	KindUnit
	KindStruct
	KindFunction
)

// Field is one named, typed member of a struct type.
type Field struct {
	Name string
	Type ID
}

// Info is the full description of a registered type.
type Info struct {
	ID     ID
	Name   string
	Kind   Kind
	Signed bool // meaningful for KindInteger
	Width  int  // bit width, meaningful for KindInteger/KindFloat
	Fields []Field
	Params []ID // meaningful for KindFunction
	Result ID   // meaningful for KindFunction
}

type funcKey struct {
	params string
	result ID
}

// Registry interns every type in one compilation context.
type Registry struct {
	byID   map[ID]*Info
	nextID ID
	funcs  map[funcKey]ID
}

// NewRegistry returns a Registry with every primitive type pre-registered
// at its fixed ID.
func NewRegistry() *Registry {
	r := &Registry{
		byID:   make(map[ID]*Info),
		nextID: firstUserID,
		funcs:  make(map[funcKey]ID),
	}
	r.registerPrimitive(Bool, "bool", Info{Kind: KindBool})
	r.registerPrimitive(I32, "i32", Info{Kind: KindInteger, Signed: true, Width: 32})
	r.registerPrimitive(I64, "i64", Info{Kind: KindInteger, Signed: true, Width: 64})
	r.registerPrimitive(U32, "u32", Info{Kind: KindInteger, Signed: false, Width: 32})
	r.registerPrimitive(U64, "u64", Info{Kind: KindInteger, Signed: false, Width: 64})
	r.registerPrimitive(F32, "f32", Info{Kind: KindFloat, Width: 32})
	r.registerPrimitive(F64, "f64", Info{Kind: KindFloat, Width: 64})
	r.registerPrimitive(String, "string", Info{Kind: KindString})
	r.registerPrimitive(Unit, "unit", Info{Kind: KindUnit})
	return r
}

func (r *Registry) registerPrimitive(id ID, name string, partial Info) {
	partial.ID = id
	partial.Name = name
	r.byID[id] = &partial
}

// RegisterStruct interns a new struct type and returns its ID.
func (r *Registry) RegisterStruct(name string, fields []Field) ID {
	id := r.nextID
	r.nextID++
	r.byID[id] = &Info{ID: id, Name: name, Kind: KindStruct, Fields: fields}
	return id
}

// RegisterFunction interns a function type, deduplicating identical
// signatures to the same ID.
func (r *Registry) RegisterFunction(params []ID, result ID) ID {
	key := funcKey{params: formatParamKey(params), result: result}
	if id, ok := r.funcs[key]; ok {
		return id
	}
	id := r.nextID
	r.nextID++
	name := r.formatFunctionName(params, result)
	r.byID[id] = &Info{ID: id, Name: name, Kind: KindFunction, Params: append([]ID(nil), params...), Result: result}
	r.funcs[key] = id
	return id
}

func formatParamKey(params []ID) string {
	b := make([]byte, 0, len(params)*5)
	for _, p := range params {
		b = append(b, []byte(fmt.Sprintf("%d,", p))...)
	}
	return string(b)
}

func (r *Registry) formatFunctionName(params []ID, result ID) string {
	names := make([]string, len(params))
	for i, p := range params {
		if info, ok := r.byID[p]; ok {
			names[i] = info.Name
		} else {
			names[i] = fmt.Sprintf("UnknownType(%d)", p)
		}
	}
	resultName := "?"
	if info, ok := r.byID[result]; ok {
		resultName = info.Name
	}
	paramList := ""
	for i, n := range names {
		if i > 0 {
			paramList += ", "
		}
		paramList += n
	}
	return fmt.Sprintf("fn(%s) -> %s", paramList, resultName)
}

// Lookup returns the Info for id, or nil if unregistered.
func (r *Registry) Lookup(id ID) *Info {
	return r.byID[id]
}

// Name is a convenience wrapper around Lookup for diagnostic messages.
func (r *Registry) Name(id ID) string {
	if info := r.Lookup(id); info != nil {
		return info.Name
	}
	return fmt.Sprintf("<type %d>", id)
}

// IsPrimitive reports whether id names one of the nine built-in types.
func (r *Registry) IsPrimitive(id ID) bool {
	return id < firstUserID
}

// IsFunction reports whether id names a function type.
func (r *Registry) IsFunction(id ID) bool {
	info := r.Lookup(id)
	return info != nil && info.Kind == KindFunction
}

// IsNumeric reports whether id names an integer or float type.
func (r *Registry) IsNumeric(id ID) bool {
	info := r.Lookup(id)
	return info != nil && (info.Kind == KindInteger || info.Kind == KindFloat)
}

// CheckIntInRange reports whether value fits within the declared width and
// signedness of the integer type id (spec.md invariant 5). For u64 it only
// checks value >= 0, since a signed int64 cannot represent the full u64
// range; the analyzer checks u64 literals with CheckUint64InRange instead
// (see SPEC_FULL.md).
func (r *Registry) CheckIntInRange(value int64, id ID) bool {
	info := r.Lookup(id)
	if info == nil || info.Kind != KindInteger {
		return false
	}
	switch {
	case info.Signed && info.Width == 32:
		return value >= int64(int32(-1<<31)) && value <= int64(int32(1<<31-1))
	case info.Signed && info.Width == 64:
		return true
	case !info.Signed && info.Width == 32:
		return value >= 0 && value <= int64(uint32(0xFFFFFFFF))
	case !info.Signed && info.Width == 64:
		return value >= 0
	default:
		return false
	}
}

// CheckUint64InRange reports whether an unsigned 64-bit literal fits id.
func (r *Registry) CheckUint64InRange(value uint64, id ID) bool {
	info := r.Lookup(id)
	if info == nil || info.Kind != KindInteger || info.Signed {
		return false
	}
	if info.Width == 32 {
		return value <= 0xFFFFFFFF
	}
	return true
}

// CheckFloatInRange reports whether value fits within f32/f64.
func (r *Registry) CheckFloatInRange(value float64, id ID) bool {
	info := r.Lookup(id)
	if info == nil || info.Kind != KindFloat {
		return false
	}
	if info.Width == 32 {
		return value >= -3.4028235e38 && value <= 3.4028235e38
	}
	return true
}
