package sema

import (
	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/symbols"
	"github.com/FrederikTobner/slang/pkg/types"
)

// analyzeExpr analyzes e with no contextual type hint.
func (a *Analyzer) analyzeExpr(e ast.Expr) types.ID {
	return a.analyzeExprHinted(e, types.Unresolved)
}

// analyzeExprHinted assigns e a resolved type and returns it. hint carries
// the expected type from e's context (let-binding declared type, function
// argument/return site, or a sibling binary operand's concrete type) and is
// used only to unify unsuffixed numeric literals (spec.md §4.3).
func (a *Analyzer) analyzeExprHinted(e ast.Expr, hint types.ID) types.ID {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return a.analyzeIntLiteral(ex, hint)
	case *ast.FloatLiteral:
		return a.analyzeFloatLiteral(ex, hint)
	case *ast.BoolLiteral:
		ex.SetType(types.Bool)
		return types.Bool
	case *ast.StringLiteral:
		ex.SetType(types.String)
		return types.String
	case *ast.UnitLiteral:
		ex.SetType(types.Unit)
		return types.Unit
	case *ast.Identifier:
		return a.analyzeIdentifier(ex)
	case *ast.Assign:
		return a.analyzeAssign(ex)
	case *ast.Unary:
		return a.analyzeUnary(ex, hint)
	case *ast.Binary:
		return a.analyzeBinary(ex, hint)
	case *ast.Call:
		return a.analyzeCall(ex)
	case *ast.StructLiteral:
		return a.analyzeStructLiteral(ex)
	case *ast.FieldAccess:
		return a.analyzeFieldAccess(ex)
	case *ast.Block:
		t := a.analyzeBlock(ex, hint)
		return t
	case *ast.If:
		return a.analyzeIf(ex, hint)
	default:
		return types.Unit
	}
}

func (a *Analyzer) analyzeIntLiteral(ex *ast.IntLiteral, hint types.ID) types.ID {
	target := types.Unresolved
	if ex.Suffix != "" {
		target = primitiveNames[ex.Suffix]
	} else if hint != types.Unresolved && a.registry.Lookup(hint) != nil && a.registry.Lookup(hint).Kind == types.KindInteger {
		target = hint
	} else {
		target = types.I32
	}

	info := a.registry.Lookup(target)
	inRange := false
	if info != nil && !info.Signed && info.Width == 64 {
		inRange = a.registry.CheckUint64InRange(ex.UValue, target)
	} else {
		inRange = a.registry.CheckIntInRange(ex.Value, target)
	}
	if !inRange {
		a.bag.Addf(diag.LiteralOutOfRange, ex.Span(), "integer literal %q out of range for %s", ex.Text, a.registry.Name(target))
	}
	ex.SetType(target)
	return target
}

func (a *Analyzer) analyzeFloatLiteral(ex *ast.FloatLiteral, hint types.ID) types.ID {
	target := types.Unresolved
	if ex.Suffix != "" {
		target = primitiveNames[ex.Suffix]
	} else if hint != types.Unresolved && a.registry.Lookup(hint) != nil && a.registry.Lookup(hint).Kind == types.KindFloat {
		target = hint
	} else {
		target = types.F64
	}
	if !a.registry.CheckFloatInRange(ex.Value, target) {
		a.bag.Addf(diag.LiteralOutOfRange, ex.Span(), "float literal %q out of range for %s", ex.Text, a.registry.Name(target))
	}
	ex.SetType(target)
	return target
}

func (a *Analyzer) analyzeIdentifier(ex *ast.Identifier) types.ID {
	sym := a.table.Lookup(ex.Name)
	if sym == nil || sym.Kind != symbols.KindVariable {
		a.bag.Addf(diag.UndefinedVariable, ex.Span(), "Undefined variable: %s", ex.Name)
		ex.SetType(types.Unit)
		return types.Unit
	}
	ex.SetType(types.ID(sym.TypeID))
	return types.ID(sym.TypeID)
}

func (a *Analyzer) analyzeAssign(ex *ast.Assign) types.ID {
	sym := a.table.Lookup(ex.Name)
	if sym == nil || sym.Kind != symbols.KindVariable {
		a.bag.Addf(diag.UndefinedVariable, ex.Span(), "Undefined variable: %s", ex.Name)
		ex.SetType(types.Unit)
		return types.Unit
	}
	if !sym.Mutable {
		a.bag.Addf(diag.AssignToImmutable, ex.Span(), "cannot assign to immutable variable %q", ex.Name)
	}
	valType := a.analyzeExprHinted(ex.Value, types.ID(sym.TypeID))
	if valType != types.ID(sym.TypeID) {
		a.bag.Addf(diag.TypeMismatch, ex.Span(), "cannot assign %s to variable %q of type %s",
			a.registry.Name(valType), ex.Name, a.registry.Name(types.ID(sym.TypeID)))
	}
	ex.SetType(types.Unit)
	return types.Unit
}

func (a *Analyzer) analyzeUnary(ex *ast.Unary, hint types.ID) types.ID {
	switch ex.Op {
	case ast.UnaryNeg:
		t := a.analyzeExprHinted(ex.Expr, hint)
		if !a.registry.IsNumeric(t) {
			a.bag.Addf(diag.TypeMismatch, ex.Span(), "unary '-' requires a numeric operand, found %s", a.registry.Name(t))
		}
		ex.SetType(t)
		return t
	default: // UnaryNot
		t := a.analyzeExprHinted(ex.Expr, types.Bool)
		if t != types.Bool {
			a.bag.Addf(diag.TypeMismatch, ex.Span(), "unary '!' requires a bool operand, found %s", a.registry.Name(t))
		}
		ex.SetType(types.Bool)
		return types.Bool
	}
}

func isUnsuffixedIntLiteral(e ast.Expr) bool {
	lit, ok := e.(*ast.IntLiteral)
	return ok && lit.Suffix == ""
}

// analyzeBinaryOperands resolves both operand types, unifying an
// unsuffixed integer literal operand against its sibling's concrete type
// when only one side is such a literal (spec.md §4.3: "both operands of a
// binary if the other is suffixed").
func (a *Analyzer) analyzeBinaryOperands(left, right ast.Expr, hint types.ID) (types.ID, types.ID) {
	switch {
	case isUnsuffixedIntLiteral(left) && !isUnsuffixedIntLiteral(right):
		rt := a.analyzeExprHinted(right, hint)
		lt := a.analyzeExprHinted(left, rt)
		return lt, rt
	case isUnsuffixedIntLiteral(right) && !isUnsuffixedIntLiteral(left):
		lt := a.analyzeExprHinted(left, hint)
		rt := a.analyzeExprHinted(right, lt)
		return lt, rt
	default:
		lt := a.analyzeExprHinted(left, hint)
		rt := a.analyzeExprHinted(right, hint)
		return lt, rt
	}
}

func (a *Analyzer) analyzeBinary(ex *ast.Binary, hint types.ID) types.ID {
	switch ex.Op {
	case ast.BinAnd, ast.BinOr:
		lt := a.analyzeExprHinted(ex.Left, types.Bool)
		rt := a.analyzeExprHinted(ex.Right, types.Bool)
		if lt != types.Bool || rt != types.Bool {
			a.bag.Addf(diag.TypeMismatch, ex.Span(), "logical operator requires bool operands")
		}
		ex.SetType(types.Bool)
		return types.Bool

	case ast.BinEq, ast.BinNe:
		lt, rt := a.analyzeBinaryOperands(ex.Left, ex.Right, hint)
		if lt != rt {
			a.bag.Addf(diag.TypeMismatch, ex.Span(), "equality operands must have identical types, found %s and %s",
				a.registry.Name(lt), a.registry.Name(rt))
		}
		ex.SetType(types.Bool)
		return types.Bool

	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		lt, rt := a.analyzeBinaryOperands(ex.Left, ex.Right, types.Unresolved)
		if lt != rt || !(a.registry.IsNumeric(lt) || lt == types.String) {
			a.bag.Addf(diag.TypeMismatch, ex.Span(), "relational operands must be matching numeric or string types, found %s and %s",
				a.registry.Name(lt), a.registry.Name(rt))
		}
		ex.SetType(types.Bool)
		return types.Bool

	default: // arithmetic: Add Sub Mul Div Mod
		lt, rt := a.analyzeBinaryOperands(ex.Left, ex.Right, hint)
		if lt != rt || !a.registry.IsNumeric(lt) {
			a.bag.Addf(diag.TypeMismatch, ex.Span(), "arithmetic operands must be the same numeric type, found %s and %s",
				a.registry.Name(lt), a.registry.Name(rt))
		}
		if ex.Op == ast.BinMod {
			if info := a.registry.Lookup(lt); info != nil && info.Kind == types.KindFloat {
				a.bag.Addf(diag.TypeMismatch, ex.Span(), "'%%' is not defined on floating-point types")
			}
		}
		ex.SetType(lt)
		return lt
	}
}

func (a *Analyzer) analyzeCall(ex *ast.Call) types.ID {
	if sig, ok := natives[ex.Callee]; ok {
		if len(ex.Args) != sig.arity {
			a.bag.Addf(diag.ArityMismatch, ex.Span(), "%q expects %d argument(s), found %d", ex.Callee, sig.arity, len(ex.Args))
		}
		for _, arg := range ex.Args {
			a.analyzeExpr(arg)
		}
		ex.SetType(sig.result)
		return sig.result
	}

	sym := a.table.Lookup(ex.Callee)
	if sym == nil || sym.Kind != symbols.KindFunction {
		a.bag.Addf(diag.UndefinedFunction, ex.Span(), "undefined function: %s", ex.Callee)
		for _, arg := range ex.Args {
			a.analyzeExpr(arg)
		}
		ex.SetType(types.Unit)
		return types.Unit
	}
	info := a.registry.Lookup(types.ID(sym.TypeID))
	if len(ex.Args) != len(info.Params) {
		a.bag.Addf(diag.ArityMismatch, ex.Span(), "function %q expects %d argument(s), found %d", ex.Callee, len(info.Params), len(ex.Args))
	}
	for i, arg := range ex.Args {
		var want types.ID = types.Unresolved
		if i < len(info.Params) {
			want = info.Params[i]
		}
		got := a.analyzeExprHinted(arg, want)
		if i < len(info.Params) && got != want {
			a.bag.Addf(diag.TypeMismatch, arg.Span(), "argument %d to %q: expected %s, found %s",
				i+1, ex.Callee, a.registry.Name(want), a.registry.Name(got))
		}
	}
	ex.SetType(info.Result)
	return info.Result
}

// analyzeStructLiteral resolves ex.Name against the symbol table's type
// scope, checks the field set matches the registered struct exactly (same
// names, no missing or extra fields), and analyzes each field value against
// its declared field type.
func (a *Analyzer) analyzeStructLiteral(ex *ast.StructLiteral) types.ID {
	sym := a.table.Lookup(ex.Name)
	if sym == nil || sym.Kind != symbols.KindType {
		a.bag.Addf(diag.UndefinedType, ex.Span(), "undefined struct type: %s", ex.Name)
		for _, f := range ex.Fields {
			a.analyzeExpr(f.Value)
		}
		ex.SetType(types.Unit)
		return types.Unit
	}
	structID := types.ID(sym.TypeID)
	info := a.registry.Lookup(structID)

	seen := make(map[string]bool, len(ex.Fields))
	for _, f := range ex.Fields {
		seen[f.Name] = true
		var want types.ID = types.Unresolved
		found := false
		for _, fd := range info.Fields {
			if fd.Name == f.Name {
				want = fd.Type
				found = true
				break
			}
		}
		if !found {
			a.bag.Addf(diag.UnknownField, f.Value.Span(), "struct %q has no field %q", ex.Name, f.Name)
			a.analyzeExpr(f.Value)
			continue
		}
		got := a.analyzeExprHinted(f.Value, want)
		if got != want {
			a.bag.Addf(diag.TypeMismatch, f.Value.Span(), "field %q of %q: expected %s, found %s",
				f.Name, ex.Name, a.registry.Name(want), a.registry.Name(got))
		}
	}
	for _, fd := range info.Fields {
		if !seen[fd.Name] {
			a.bag.Addf(diag.ArityMismatch, ex.Span(), "struct %q literal is missing field %q", ex.Name, fd.Name)
		}
	}

	ex.SetType(structID)
	return structID
}

// analyzeFieldAccess resolves ex.Target's type as a struct and checks
// ex.Field names one of its fields.
func (a *Analyzer) analyzeFieldAccess(ex *ast.FieldAccess) types.ID {
	targetType := a.analyzeExpr(ex.Target)
	info := a.registry.Lookup(targetType)
	if info == nil || info.Kind != types.KindStruct {
		a.bag.Addf(diag.TypeMismatch, ex.Span(), "%q is not a struct", a.registry.Name(targetType))
		ex.SetType(types.Unit)
		return types.Unit
	}
	for _, fd := range info.Fields {
		if fd.Name == ex.Field {
			ex.SetType(fd.Type)
			return fd.Type
		}
	}
	a.bag.Addf(diag.UnknownField, ex.Span(), "struct %q has no field %q", info.Name, ex.Field)
	ex.SetType(types.Unit)
	return types.Unit
}

func (a *Analyzer) analyzeIf(ex *ast.If, hint types.ID) types.ID {
	condType := a.analyzeExprHinted(ex.Cond, types.Bool)
	if condType != types.Bool {
		a.bag.Addf(diag.TypeMismatch, ex.Cond.Span(), "if condition must be bool, found %s", a.registry.Name(condType))
	}

	thenType := a.analyzeBlock(ex.Then, hint)
	if ex.Else == nil {
		ex.SetType(types.Unit)
		return types.Unit
	}

	elseType := a.analyzeExprHinted(ex.Else, hint)
	if thenType != elseType {
		a.bag.Addf(diag.IfBranchTypeMismatch, ex.Span(), "if branches have different types: %s and %s",
			a.registry.Name(thenType), a.registry.Name(elseType))
	}
	ex.SetType(thenType)
	return thenType
}
