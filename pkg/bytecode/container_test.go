package bytecode

import (
	"bytes"
	"testing"

	"github.com/FrederikTobner/slang/pkg/types"
)

func sampleChunk() *Chunk {
	return &Chunk{
		Code: []byte{byte(OpConstant), 0, 0, byte(OpConstant), 0, 1, byte(OpAddI32), byte(OpReturn)},
		Constants: []Constant{
			I32Constant(40),
			I32Constant(2),
			U64Constant(1<<64 - 1),
			StringConstant("hi"),
			BoolConstant(true),
			FunctionConstant(3),
		},
		Functions: []FunctionEntry{
			{Name: "add", ParamCount: 2, ResultType: types.I32, EntryOffset: 12, LocalCount: 2},
		},
		LineTable: []LineEntry{
			{Offset: 0, Line: 1},
			{Offset: 6, Line: 2},
		},
		UserTypes: []UserType{
			{ID: types.ID(9), Name: "Point", Fields: []types.Field{
				{Name: "x", Type: types.I32},
				{Name: "y", Type: types.I32},
			}},
		},
	}
}

func TestContainerRoundTrip(t *testing.T) {
	original := sampleChunk()

	var buf bytes.Buffer
	if err := WriteContainer(&buf, []*Chunk{original}); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}

	chunks, err := ReadContainer(&buf)
	if err != nil {
		t.Fatalf("ReadContainer: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !original.Equal(chunks[0]) {
		t.Errorf("round-tripped chunk does not match original")
	}
}

func TestReadContainerRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("nope")
	if _, err := ReadContainer(buf); err == nil {
		t.Errorf("expected error for bad magic, got nil")
	}
}

func TestReadContainerRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.Write([]byte{0xFF, 0xFF}) // bogus version
	buf.Write([]byte{0, 0})       // chunk count
	if _, err := ReadContainer(&buf); err == nil {
		t.Errorf("expected error for unsupported version, got nil")
	}
}

func TestLineForFallsBackToLastEntryAtOrBeforeOffset(t *testing.T) {
	c := &Chunk{LineTable: []LineEntry{{Offset: 0, Line: 1}, {Offset: 10, Line: 5}}}
	if got := c.LineFor(4); got != 1 {
		t.Errorf("LineFor(4) = %d, want 1", got)
	}
	if got := c.LineFor(10); got != 5 {
		t.Errorf("LineFor(10) = %d, want 5", got)
	}
	if got := c.LineFor(999); got != 5 {
		t.Errorf("LineFor(999) = %d, want 5", got)
	}
}
