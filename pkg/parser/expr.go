package parser

import (
	"strconv"

	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/lexer"
	"github.com/FrederikTobner/slang/pkg/span"
)

// binOp maps a token kind to its AST binary operator and precedence level
// (higher binds tighter). Levels follow spec.md §4.2, low to high:
// || , && , ==/!=, relational, +/-, */%.
func binOp(k lexer.Kind) (ast.BinaryOp, int, bool) {
	switch k {
	case lexer.OrOr:
		return ast.BinOr, 1, true
	case lexer.AndAnd:
		return ast.BinAnd, 2, true
	case lexer.EqEq:
		return ast.BinEq, 3, true
	case lexer.NotEq:
		return ast.BinNe, 3, true
	case lexer.Lt:
		return ast.BinLt, 4, true
	case lexer.Le:
		return ast.BinLe, 4, true
	case lexer.Gt:
		return ast.BinGt, 4, true
	case lexer.Ge:
		return ast.BinGe, 4, true
	case lexer.Plus:
		return ast.BinAdd, 5, true
	case lexer.Minus:
		return ast.BinSub, 5, true
	case lexer.Star:
		return ast.BinMul, 6, true
	case lexer.Slash:
		return ast.BinDiv, 6, true
	case lexer.Percent:
		return ast.BinMod, 6, true
	default:
		return 0, 0, false
	}
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(1)
}

// parseBinary implements precedence climbing: all binary operators are
// left-associative, so the recursive call for the right operand requires
// strictly higher precedence than the operator just consumed (prec+1).
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		op, prec, ok := binOp(p.cur().Kind)
		if !ok || prec < minPrec {
			return left
		}
		p.advance()
		right := p.parseBinary(prec + 1)
		left = ast.NewBinary(span.Join(left.Span(), right.Span()), op, left, right)
	}
}

// parseUnary is right-associative: `- - x` parses as `-(-x)`.
func (p *Parser) parseUnary() ast.Expr {
	switch p.cur().Kind {
	case lexer.Minus:
		start := p.cur().Span
		p.advance()
		operand := p.parseUnary()
		return ast.NewUnary(span.Join(start, operand.Span()), ast.UnaryNeg, operand)
	case lexer.Bang:
		start := p.cur().Span
		p.advance()
		operand := p.parseUnary()
		return ast.NewUnary(span.Join(start, operand.Span()), ast.UnaryNot, operand)
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression followed by any number of
// `.field` accesses.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for p.check(lexer.Dot) {
		p.advance()
		nameTok, ok := p.expect(lexer.Identifier, diag.ExpectedIdentifier, "field name")
		if !ok {
			break
		}
		expr = ast.NewFieldAccess(span.Join(expr.Span(), nameTok.Span), expr, nameTok.Text)
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case lexer.IntLiteral:
		p.advance()
		return p.makeIntLiteral(tok)
	case lexer.FloatLiteral:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Text, 64)
		return ast.NewFloatLiteral(tok.Span, tok.Text, tok.Suffix, v)
	case lexer.StringLiteral:
		p.advance()
		return ast.NewStringLiteral(tok.Span, tok.Text)
	case lexer.KwTrue:
		p.advance()
		return ast.NewBoolLiteral(tok.Span, true)
	case lexer.KwFalse:
		p.advance()
		return ast.NewBoolLiteral(tok.Span, false)
	case lexer.Identifier:
		p.advance()
		if p.check(lexer.LParen) {
			return p.parseCall(tok)
		}
		if p.check(lexer.LBrace) && !p.noStructLiteral {
			return p.parseStructLiteral(tok)
		}
		return ast.NewIdentifier(tok.Span, tok.Text)
	case lexer.LParen:
		p.advance()
		inner := p.parseExpr()
		p.expect(lexer.RParen, diag.UnclosedParen, "')'")
		return inner // parenthesized expressions are desugared (spec.md §3)
	case lexer.LBrace:
		return p.parseBlock()
	case lexer.KwIf:
		return p.parseIf()
	default:
		p.bag.Addf(diag.ExpectedExpression, tok.Span, "expected expression, found %q", tok.Text)
		p.advance()
		return ast.NewUnitLiteral(tok.Span)
	}
}

func (p *Parser) makeIntLiteral(tok lexer.Token) ast.Expr {
	if v, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
		return ast.NewIntLiteral(tok.Span, tok.Text, tok.Suffix, v, uint64(v))
	}
	uv, err := strconv.ParseUint(tok.Text, 10, 64)
	if err != nil {
		p.bag.Addf(diag.LiteralOutOfRange, tok.Span, "invalid integer literal %q", tok.Text)
		return ast.NewIntLiteral(tok.Span, tok.Text, tok.Suffix, 0, 0)
	}
	return ast.NewIntLiteral(tok.Span, tok.Text, tok.Suffix, int64(uv), uv)
}

func (p *Parser) parseCall(name lexer.Token) ast.Expr {
	p.advance() // '('
	var args []ast.Expr
	for !p.check(lexer.RParen) && !p.atEnd() {
		args = append(args, p.parseExpr())
		if !p.match(lexer.Comma) {
			break
		}
	}
	end := p.cur().Span
	p.expect(lexer.RParen, diag.UnclosedParen, "')'")
	return ast.NewCall(span.Join(name.Span, end), name.Text, args)
}

// parseStructLiteral parses `Name { field: expr, ... }`. Only reachable
// when noStructLiteral is false (see Parser.noStructLiteral).
func (p *Parser) parseStructLiteral(name lexer.Token) ast.Expr {
	p.advance() // '{'
	var fields []ast.FieldInit
	for !p.check(lexer.RBrace) && !p.atEnd() {
		fieldName, ok := p.expect(lexer.Identifier, diag.ExpectedIdentifier, "field name")
		if !ok {
			p.synchronize()
			break
		}
		if _, ok := p.expect(lexer.Colon, diag.UnexpectedToken, "':'"); !ok {
			p.synchronize()
			break
		}
		value := p.parseExpr()
		fields = append(fields, ast.FieldInit{Name: fieldName.Text, Value: value})
		if !p.match(lexer.Comma) {
			break
		}
	}
	end := p.cur().Span
	p.expect(lexer.RBrace, diag.UnclosedBrace, "'}'")
	return ast.NewStructLiteral(span.Join(name.Span, end), name.Text, fields)
}

// parseIf parses `if cond { ... } [else (if ... | { ... })]`. The parser
// produces a single If node regardless of grammatical position; semantic
// analysis resolves whether it is used as a statement or an expression
// (spec.md §4.2).
func (p *Parser) parseIf() ast.Expr {
	start := p.cur().Span
	p.advance() // 'if'
	saved := p.noStructLiteral
	p.noStructLiteral = true
	cond := p.parseExpr()
	p.noStructLiteral = saved
	then := p.parseBlock()
	var els ast.Expr
	end := then.Span()
	if p.match(lexer.KwElse) {
		if p.check(lexer.KwIf) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
		end = els.Span()
	}
	return ast.NewIf(span.Join(start, end), cond, then, els)
}
