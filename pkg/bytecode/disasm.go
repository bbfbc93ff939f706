package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble renders c's code section as human-readable text, one
// instruction per line, annotated with the source line from the line
// table. Not required by any spec.md invariant; a debugging aid that no
// code or test in this repository calls.
func (c *Chunk) Disassemble() string {
	var sb strings.Builder
	offset := uint32(0)
	for offset < uint32(len(c.Code)) {
		op := Op(c.Code[offset])
		width := op.OperandWidth()
		line := c.LineFor(offset)
		fmt.Fprintf(&sb, "%04d  line %-4d  %s", offset, line, op)
		switch op {
		case OpConstant, OpLoadGlobal, OpStoreGlobal:
			idx := binary.BigEndian.Uint16(c.Code[offset+1:])
			fmt.Fprintf(&sb, " %d", idx)
		case OpJump, OpJumpIfFalse:
			off := binary.BigEndian.Uint16(c.Code[offset+1:])
			fmt.Fprintf(&sb, " -> %d", off)
		case OpLoadLocal, OpStoreLocal, OpCall, OpGetField:
			fmt.Fprintf(&sb, " %d", c.Code[offset+1])
		case OpMakeStruct:
			typeID := binary.BigEndian.Uint16(c.Code[offset+1:])
			fieldCount := c.Code[offset+3]
			fmt.Fprintf(&sb, " type=%d fields=%d", typeID, fieldCount)
		case OpCallNative:
			fmt.Fprintf(&sb, " idx=%d argc=%d", c.Code[offset+1], c.Code[offset+2])
		}
		sb.WriteByte('\n')
		offset += uint32(1 + width)
	}
	return sb.String()
}
