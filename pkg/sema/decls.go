package sema

import (
	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
)

// collectDeclarations is pass 1 (spec.md §4.3): registers struct types and
// function signatures at the top level, so forward references among
// top-level declarations resolve regardless of source order. Function
// bodies are not analyzed here.
func (a *Analyzer) collectDeclarations(prog *ast.Program) {
	for _, item := range prog.Items {
		if sd, ok := item.(*ast.StructDef); ok {
			a.declareStruct(sd)
		}
	}
	for _, item := range prog.Items {
		if fd, ok := item.(*ast.FuncDecl); ok {
			a.declareFunc(fd)
		}
	}
}

func (a *Analyzer) declareStruct(sd *ast.StructDef) {
	fields := make([]types.Field, 0, len(sd.Fields))
	for _, f := range sd.Fields {
		fields = append(fields, types.Field{Name: f.Name, Type: a.resolveTypeName(f.Type, sd.Span())})
	}
	id := a.registry.RegisterStruct(sd.Name, fields)
	sym := &symbols.Symbol{Name: sd.Name, Kind: symbols.KindType, TypeID: uint32(id), Span: sd.Span()}
	if !a.table.Declare(sym) {
		a.bag.Addf(diag.DuplicateSymbol, sd.Span(), "symbol %q already defined", sd.Name)
	}
}

func (a *Analyzer) declareFunc(fd *ast.FuncDecl) {
	paramTypes := make([]types.ID, 0, len(fd.Params))
	for _, p := range fd.Params {
		paramTypes = append(paramTypes, a.resolveTypeName(p.Type, fd.Span()))
	}
	resultType := types.Unit
	if fd.ResultType != "" {
		resultType = a.resolveTypeName(fd.ResultType, fd.Span())
	}
	funcTypeID := a.registry.RegisterFunction(paramTypes, resultType)
	sym := &symbols.Symbol{Name: fd.Name, Kind: symbols.KindFunction, TypeID: uint32(funcTypeID), Span: fd.Span()}
	if !a.table.Declare(sym) {
		a.bag.Addf(diag.DuplicateSymbol, fd.Span(), "symbol %q already defined", fd.Name)
	}
}
