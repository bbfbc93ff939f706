package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/FrederikTobner/slang/pkg/types"
)

// Magic identifies a Slang bytecode container (spec.md §6). The outer
// compressed .sip archive framing is an external collaborator's concern;
// this package only reads/writes the inner byte layout.
var Magic = [4]byte{'S', 'L', 'B', 'C'}

// Version is the current container format version.
const Version uint16 = 1

var order = binary.LittleEndian

// WriteContainer serializes chunks to w in the exact layout spec.md §6
// prescribes. Every length-prefixed string uses a u32 byte-length prefix,
// consistent with the u32 count fields used throughout the format (spec.md
// does not pin the prefix width explicitly).
func WriteContainer(w io.Writer, chunks []*Chunk) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, order, Version); err != nil {
		return err
	}
	if err := binary.Write(w, order, uint16(len(chunks))); err != nil {
		return err
	}
	for _, c := range chunks {
		if err := writeChunk(w, c); err != nil {
			return err
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, order, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, order, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeChunk(w io.Writer, c *Chunk) error {
	// constants
	if err := binary.Write(w, order, uint32(len(c.Constants))); err != nil {
		return err
	}
	for _, k := range c.Constants {
		if err := binary.Write(w, order, byte(k.Kind)); err != nil {
			return err
		}
		switch k.Kind {
		case ConstI32, ConstI64, ConstU32, ConstU64, ConstFunction:
			if err := binary.Write(w, order, k.I); err != nil {
				return err
			}
		case ConstF32, ConstF64:
			if err := binary.Write(w, order, k.F); err != nil {
				return err
			}
		case ConstString:
			if err := writeString(w, k.S); err != nil {
				return err
			}
		case ConstBool:
			b := byte(0)
			if k.B {
				b = 1
			}
			if err := binary.Write(w, order, b); err != nil {
				return err
			}
		}
	}

	// functions
	if err := binary.Write(w, order, uint32(len(c.Functions))); err != nil {
		return err
	}
	for _, f := range c.Functions {
		if err := writeString(w, f.Name); err != nil {
			return err
		}
		if err := binary.Write(w, order, f.ParamCount); err != nil {
			return err
		}
		if err := binary.Write(w, order, uint16(f.ResultType)); err != nil {
			return err
		}
		if err := binary.Write(w, order, f.EntryOffset); err != nil {
			return err
		}
		if err := binary.Write(w, order, f.LocalCount); err != nil {
			return err
		}
	}

	// code
	if err := binary.Write(w, order, uint32(len(c.Code))); err != nil {
		return err
	}
	if _, err := w.Write(c.Code); err != nil {
		return err
	}

	// line table
	if err := binary.Write(w, order, uint32(len(c.LineTable))); err != nil {
		return err
	}
	for _, e := range c.LineTable {
		if err := binary.Write(w, order, e.Offset); err != nil {
			return err
		}
		if err := binary.Write(w, order, e.Line); err != nil {
			return err
		}
	}

	// type registry (user-defined types only)
	if err := binary.Write(w, order, uint32(len(c.UserTypes))); err != nil {
		return err
	}
	for _, t := range c.UserTypes {
		if err := binary.Write(w, order, uint16(t.ID)); err != nil {
			return err
		}
		if err := writeString(w, t.Name); err != nil {
			return err
		}
		if err := binary.Write(w, order, uint8(len(t.Fields))); err != nil {
			return err
		}
		for _, f := range t.Fields {
			if err := writeString(w, f.Name); err != nil {
				return err
			}
			if err := binary.Write(w, order, uint16(f.Type)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadContainer deserializes chunks from r, verifying the magic and
// version header.
func ReadContainer(r io.Reader) ([]*Chunk, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("bytecode: bad magic %q, want %q", magic, Magic)
	}
	var version uint16
	if err := binary.Read(r, order, &version); err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("bytecode: unsupported version %d", version)
	}
	var count uint16
	if err := binary.Read(r, order, &count); err != nil {
		return nil, err
	}
	chunks := make([]*Chunk, count)
	for i := range chunks {
		c, err := readChunk(r)
		if err != nil {
			return nil, err
		}
		chunks[i] = c
	}
	return chunks, nil
}

func readChunk(r io.Reader) (*Chunk, error) {
	c := &Chunk{}

	var constCount uint32
	if err := binary.Read(r, order, &constCount); err != nil {
		return nil, err
	}
	c.Constants = make([]Constant, constCount)
	for i := range c.Constants {
		var kind byte
		if err := binary.Read(r, order, &kind); err != nil {
			return nil, err
		}
		k := Constant{Kind: ConstKind(kind)}
		switch k.Kind {
		case ConstI32, ConstI64, ConstU32, ConstU64, ConstFunction:
			if err := binary.Read(r, order, &k.I); err != nil {
				return nil, err
			}
		case ConstF32, ConstF64:
			if err := binary.Read(r, order, &k.F); err != nil {
				return nil, err
			}
		case ConstString:
			s, err := readString(r)
			if err != nil {
				return nil, err
			}
			k.S = s
		case ConstBool:
			var b byte
			if err := binary.Read(r, order, &b); err != nil {
				return nil, err
			}
			k.B = b != 0
		default:
			return nil, fmt.Errorf("bytecode: unknown constant kind %d", kind)
		}
		c.Constants[i] = k
	}

	var funcCount uint32
	if err := binary.Read(r, order, &funcCount); err != nil {
		return nil, err
	}
	c.Functions = make([]FunctionEntry, funcCount)
	for i := range c.Functions {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		f := FunctionEntry{Name: name}
		if err := binary.Read(r, order, &f.ParamCount); err != nil {
			return nil, err
		}
		var result uint16
		if err := binary.Read(r, order, &result); err != nil {
			return nil, err
		}
		f.ResultType = types.ID(result)
		if err := binary.Read(r, order, &f.EntryOffset); err != nil {
			return nil, err
		}
		if err := binary.Read(r, order, &f.LocalCount); err != nil {
			return nil, err
		}
		c.Functions[i] = f
	}

	var codeLen uint32
	if err := binary.Read(r, order, &codeLen); err != nil {
		return nil, err
	}
	c.Code = make([]byte, codeLen)
	if _, err := io.ReadFull(r, c.Code); err != nil {
		return nil, err
	}

	var lineCount uint32
	if err := binary.Read(r, order, &lineCount); err != nil {
		return nil, err
	}
	c.LineTable = make([]LineEntry, lineCount)
	for i := range c.LineTable {
		if err := binary.Read(r, order, &c.LineTable[i].Offset); err != nil {
			return nil, err
		}
		if err := binary.Read(r, order, &c.LineTable[i].Line); err != nil {
			return nil, err
		}
	}

	var typeCount uint32
	if err := binary.Read(r, order, &typeCount); err != nil {
		return nil, err
	}
	c.UserTypes = make([]UserType, typeCount)
	for i := range c.UserTypes {
		var id uint16
		if err := binary.Read(r, order, &id); err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		var fieldCount uint8
		if err := binary.Read(r, order, &fieldCount); err != nil {
			return nil, err
		}
		fields := make([]types.Field, fieldCount)
		for j := range fields {
			fname, err := readString(r)
			if err != nil {
				return nil, err
			}
			var ftype uint16
			if err := binary.Read(r, order, &ftype); err != nil {
				return nil, err
			}
			fields[j] = types.Field{Name: fname, Type: types.ID(ftype)}
		}
		c.UserTypes[i] = UserType{ID: types.ID(id), Name: name, Fields: fields}
	}

	return c, nil
}

// Equal reports whether two chunks are byte-for-byte and structurally
// identical, used by the round-trip property test (spec.md §8).
func (c *Chunk) Equal(other *Chunk) bool {
	if !bytes.Equal(c.Code, other.Code) {
		return false
	}
	if len(c.Constants) != len(other.Constants) || len(c.Functions) != len(other.Functions) ||
		len(c.LineTable) != len(other.LineTable) || len(c.UserTypes) != len(other.UserTypes) {
		return false
	}
	for i := range c.Constants {
		if c.Constants[i] != other.Constants[i] {
			return false
		}
	}
	for i := range c.Functions {
		if c.Functions[i] != other.Functions[i] {
			return false
		}
	}
	for i := range c.LineTable {
		if c.LineTable[i] != other.LineTable[i] {
			return false
		}
	}
	for i := range c.UserTypes {
		a, b := c.UserTypes[i], other.UserTypes[i]
		if a.ID != b.ID || a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for j := range a.Fields {
			if a.Fields[j] != b.Fields[j] {
				return false
			}
		}
	}
	return true
}
