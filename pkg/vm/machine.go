// Package vm implements Slang's stack-based bytecode interpreter: a value
// stack, a call-frame stack, and a dispatch loop over pkg/bytecode's
// instruction set. The gas-limited dispatch loop works on the Machine's
// IP/SP fields directly, with a panic-to-error safety net around
// Push/Pop; the value stack starts at a configured capacity and the frame
// stack is capped at a configured depth, rather than being fixed arrays,
// since spec.md §5's limits are configurable at startup.
package vm

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/FrederikTobner/slang/pkg/bytecode"
	"github.com/FrederikTobner/slang/pkg/core/value"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/span"
	"github.com/FrederikTobner/slang/pkg/types"
)

// Frame tracks one active call's stack window.
type Frame struct {
	Base       int // index of argument/local slot 0 within Stack
	ReturnBase int // index to truncate the stack to on return (the callee value's slot)
	ReturnIP   int // instruction offset to resume in the caller
}

// NativeFunc is a VM builtin. It receives its arguments (already popped off
// the stack, in call order) and returns its result value.
type NativeFunc func(m *Machine, args []value.Value) (value.Value, error)

// Machine executes one Chunk. Run does not reset its stacks, globals or
// instruction pointer, so a second Run starts from the state the first
// one left behind.
type Machine struct {
	Stack []value.Value
	SP    int

	Frames []Frame

	IP    int
	Chunk *bytecode.Chunk

	Globals []value.Value

	Natives []NativeFunc

	Out io.Writer

	MaxFrames int
}

// New builds a Machine ready to run chunk. out receives print_value's
// output; stackCapacity and maxFrames come from config.Limits.
func New(chunk *bytecode.Chunk, out io.Writer, stackCapacity, maxFrames int) *Machine {
	m := &Machine{
		Stack:     make([]value.Value, 0, stackCapacity),
		Chunk:     chunk,
		Globals:   make([]value.Value, countGlobals(chunk)),
		Out:       out,
		MaxFrames: maxFrames,
	}
	m.Natives = []NativeFunc{
		0: printValueNative,
	}
	return m
}

// countGlobals sizes the globals table: global slot indices are dense
// starting at 0, and the highest StoreGlobal/LoadGlobal operand in the
// code section bounds how many slots exist.
func countGlobals(chunk *bytecode.Chunk) int {
	max := -1
	offset := 0
	for offset < len(chunk.Code) {
		op := bytecode.Op(chunk.Code[offset])
		if op == bytecode.OpStoreGlobal || op == bytecode.OpLoadGlobal {
			idx := int(binary.BigEndian.Uint16(chunk.Code[offset+1:]))
			if idx > max {
				max = idx
			}
		}
		offset += 1 + op.OperandWidth()
	}
	return max + 1
}

func printValueNative(m *Machine, args []value.Value) (value.Value, error) {
	fmt.Fprintln(m.Out, args[0].Format())
	return value.Unit(), nil
}

func (m *Machine) push(v value.Value) {
	m.Stack = append(m.Stack, v)
	m.SP++
}

func (m *Machine) pop() value.Value {
	m.SP--
	v := m.Stack[m.SP]
	m.Stack = m.Stack[:m.SP]
	return v
}

func (m *Machine) runtimeErr(code diag.Code, format string, args ...any) error {
	return diag.Newf(code, m.currentSpan(), format, args...)
}

func (m *Machine) currentSpan() span.Span {
	line := 0
	if m.Chunk != nil {
		line = int(m.Chunk.LineFor(uint32(m.IP)))
	}
	return span.Span{Start: span.Position{Line: line}, End: span.Position{Line: line}}
}

// attachLine stamps a diagnostic raised outside the dispatch loop (arith,
// which has no Machine access) with the current instruction's source line.
func (m *Machine) attachLine(err error) error {
	if d, ok := err.(*diag.Diagnostic); ok {
		d.Span = m.currentSpan()
	}
	return err
}

// Run executes the chunk from its first instruction until the implicit
// top-level frame returns, gas runs out, or a runtime error occurs. gasLimit
// <= 0 means unlimited. It returns the value popped by the top-level
// Return; codegen ends top-level code with Nil, Return, so this is unit
// for compiled programs.
func (m *Machine) Run(gasLimit int) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	code := m.Chunk.Code
	steps := 0
	for {
		if gasLimit > 0 && steps >= gasLimit {
			return value.Unit(), fmt.Errorf("vm: gas exhausted after %d steps", steps)
		}
		steps++

		op := bytecode.Op(code[m.IP])
		switch op {
		case bytecode.OpConstant:
			idx := binary.BigEndian.Uint16(code[m.IP+1:])
			m.push(constantValue(m.Chunk.Constants[idx]))
			m.IP += 3

		case bytecode.OpPop:
			m.pop()
			m.IP++

		case bytecode.OpDup:
			m.push(m.Stack[m.SP-1])
			m.IP++

		case bytecode.OpNil:
			m.push(value.Unit())
			m.IP++

		case bytecode.OpLoadLocal:
			slot := int(code[m.IP+1])
			base := m.currentBase()
			m.push(m.Stack[base+slot])
			m.IP += 2

		case bytecode.OpStoreLocal:
			slot := int(code[m.IP+1])
			base := m.currentBase()
			m.Stack[base+slot] = m.pop()
			m.IP += 2

		case bytecode.OpLoadGlobal:
			idx := binary.BigEndian.Uint16(code[m.IP+1:])
			m.push(m.Globals[idx])
			m.IP += 3

		case bytecode.OpStoreGlobal:
			idx := binary.BigEndian.Uint16(code[m.IP+1:])
			m.Globals[idx] = m.pop()
			m.IP += 3

		case bytecode.OpAddI32, bytecode.OpAddI64, bytecode.OpAddU32, bytecode.OpAddU64, bytecode.OpAddF32, bytecode.OpAddF64,
			bytecode.OpSubI32, bytecode.OpSubI64, bytecode.OpSubU32, bytecode.OpSubU64, bytecode.OpSubF32, bytecode.OpSubF64,
			bytecode.OpMulI32, bytecode.OpMulI64, bytecode.OpMulU32, bytecode.OpMulU64, bytecode.OpMulF32, bytecode.OpMulF64,
			bytecode.OpDivI32, bytecode.OpDivI64, bytecode.OpDivU32, bytecode.OpDivU64, bytecode.OpDivF32, bytecode.OpDivF64,
			bytecode.OpRemI32, bytecode.OpRemI64, bytecode.OpRemU32, bytecode.OpRemU64:
			b := m.pop()
			a := m.pop()
			r, aerr := arith(op, a, b)
			if aerr != nil {
				return value.Unit(), m.attachLine(aerr)
			}
			m.push(r)
			m.IP++

		case bytecode.OpNot:
			m.push(value.Bool(!m.pop().AsBool()))
			m.IP++

		case bytecode.OpEq:
			b, a := m.pop(), m.pop()
			m.push(value.Bool(a.Equal(b)))
			m.IP++

		case bytecode.OpNe:
			b, a := m.pop(), m.pop()
			m.push(value.Bool(!a.Equal(b)))
			m.IP++

		case bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
			b, a := m.pop(), m.pop()
			m.push(value.Bool(compare(op, a, b)))
			m.IP++

		case bytecode.OpJump:
			target := binary.BigEndian.Uint16(code[m.IP+1:])
			m.IP = int(target)

		case bytecode.OpJumpIfFalse:
			target := binary.BigEndian.Uint16(code[m.IP+1:])
			cond := m.pop()
			if !cond.AsBool() {
				m.IP = int(target)
			} else {
				m.IP += 3
			}

		case bytecode.OpCall:
			argc := int(code[m.IP+1])
			if err := m.call(argc, m.IP+2); err != nil {
				return value.Unit(), err
			}

		case bytecode.OpReturn:
			rv := m.pop()
			if len(m.Frames) == 0 {
				return rv, nil
			}
			frame := m.Frames[len(m.Frames)-1]
			m.Frames = m.Frames[:len(m.Frames)-1]
			m.Stack = m.Stack[:frame.ReturnBase]
			m.SP = frame.ReturnBase
			m.push(rv)
			m.IP = frame.ReturnIP

		case bytecode.OpMakeStruct:
			typeID := binary.BigEndian.Uint16(code[m.IP+1:])
			fieldCount := int(code[m.IP+3])
			fields := make([]value.Value, fieldCount)
			for i := fieldCount - 1; i >= 0; i-- {
				fields[i] = m.pop()
			}
			m.push(value.Struct(types.ID(typeID), fields))
			m.IP += 4

		case bytecode.OpGetField:
			idx := int(code[m.IP+1])
			v := m.pop()
			m.push(v.Fields[idx])
			m.IP += 2

		case bytecode.OpCallNative:
			idx := int(code[m.IP+1])
			argc := int(code[m.IP+2])
			args := make([]value.Value, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i] = m.pop()
			}
			rv, nerr := m.Natives[idx](m, args)
			if nerr != nil {
				return value.Unit(), nerr
			}
			m.push(rv)
			m.IP += 3

		default:
			return value.Unit(), m.runtimeErr(diag.UndefinedBuiltin, "unknown opcode %d", op)
		}
	}
}

func (m *Machine) currentBase() int {
	if len(m.Frames) == 0 {
		return 0
	}
	return m.Frames[len(m.Frames)-1].Base
}

func (m *Machine) call(argc, returnIP int) error {
	if len(m.Frames) >= m.MaxFrames {
		return m.runtimeErr(diag.StackOverflow, "call stack exceeded %d frames", m.MaxFrames)
	}
	base := m.SP - argc
	calleeSlot := base - 1
	callee := m.Stack[calleeSlot]
	fn := m.Chunk.Functions[callee.AsFunctionIndex()]

	for i := argc; i < int(fn.LocalCount); i++ {
		m.push(value.Unit())
	}

	m.Frames = append(m.Frames, Frame{Base: base, ReturnBase: calleeSlot, ReturnIP: returnIP})
	m.IP = int(fn.EntryOffset)
	return nil
}

func constantValue(c bytecode.Constant) value.Value {
	switch c.Kind {
	case bytecode.ConstI32:
		return value.I32(int32(c.I))
	case bytecode.ConstI64:
		return value.I64(c.I)
	case bytecode.ConstU32:
		return value.U32(uint32(c.I))
	case bytecode.ConstU64:
		return value.U64(uint64(c.I))
	case bytecode.ConstF32:
		return value.F32(float32(c.F))
	case bytecode.ConstF64:
		return value.F64(c.F)
	case bytecode.ConstString:
		return value.String(c.S)
	case bytecode.ConstBool:
		return value.Bool(c.B)
	case bytecode.ConstFunction:
		return value.Function(int(c.I))
	default:
		return value.Unit()
	}
}
