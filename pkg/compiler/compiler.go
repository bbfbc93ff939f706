// Package compiler sequences Slang's front end into a single entry point:
// lex, parse, analyze, and emit, stopping at the first phase that reports a
// diagnostic (spec.md §9's phase-skip rule).
package compiler

import (
	"fmt"
	"io"

	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/bytecode"
	"github.com/FrederikTobner/slang/pkg/codegen"
	"github.com/FrederikTobner/slang/pkg/config"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/lexer"
	"github.com/FrederikTobner/slang/pkg/parser"
	"github.com/FrederikTobner/slang/pkg/sema"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
	"github.com/FrederikTobner/slang/pkg/vm"
)

// Result bundles a successful compilation's chunk with the registry and
// program it was emitted from, for callers that want to inspect them
// alongside the chunk.
type Result struct {
	Chunk    *bytecode.Chunk
	Program  *ast.Program
	Registry *types.Registry
}

// Compile runs the full front end over source, attributing diagnostics to
// path. It returns a *diag.BagError if any phase fails; lexing, parsing,
// and analysis share one bag, so a lexical error prevents parsing and a
// parse error prevents semantic analysis, but all errors within a single
// phase are collected before it halts (spec.md §9).
func Compile(source []byte, path string) (*Result, error) {
	bag := diag.NewBag(path)

	lx := lexer.New(source, bag)
	tokens := lx.Tokenize()
	if bag.HasErrors() {
		return nil, bag.Err()
	}

	p := parser.New(tokens, bag)
	prog := p.Parse()
	if bag.HasErrors() {
		return nil, bag.Err()
	}

	registry := types.NewRegistry()
	table := symbols.NewTable()
	analyzer := sema.New(registry, table, bag)
	analyzer.Analyze(prog)
	if bag.HasErrors() {
		return nil, bag.Err()
	}

	chunk := codegen.Generate(prog, registry, table)
	return &Result{Chunk: chunk, Program: prog, Registry: registry}, nil
}

// Run compiles source and executes it to completion on a fresh VM, writing
// print_value output to out. cfg supplies the VM's resource limits; pass
// config.Default() for the stock limits.
func Run(source []byte, path string, cfg *config.Config, out io.Writer) error {
	res, err := Compile(source, path)
	if err != nil {
		return err
	}
	m := vm.New(res.Chunk, out, cfg.Limits.StackCapacity, cfg.Limits.MaxFrames)
	_, err = m.Run(cfg.Limits.GasLimit)
	return err
}

// RunChunk executes an already-compiled chunk on a fresh VM, writing
// print_value output to out.
func RunChunk(chunk *bytecode.Chunk, cfg *config.Config, out io.Writer) error {
	m := vm.New(chunk, out, cfg.Limits.StackCapacity, cfg.Limits.MaxFrames)
	_, err := m.Run(cfg.Limits.GasLimit)
	return err
}

// WriteChunk serializes a single compiled chunk to w as a bytecode
// container (spec.md §6).
func WriteChunk(chunk *bytecode.Chunk, w io.Writer) error {
	return bytecode.WriteContainer(w, []*bytecode.Chunk{chunk})
}

// ReadChunk reads the first chunk out of a bytecode container.
func ReadChunk(r io.Reader) (*bytecode.Chunk, error) {
	chunks, err := bytecode.ReadContainer(r)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("compiler: container has no chunks")
	}
	return chunks[0], nil
}
