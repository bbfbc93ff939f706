// Package parser turns a Slang token stream into an AST via recursive
// descent with Pratt-style operator-precedence climbing for binary
// expressions: two-token lookahead, one method per grammar construct, and
// statement-boundary error recovery.
package parser

import (
	"github.com/FrederikTobner/slang/pkg/ast"
	"github.com/FrederikTobner/slang/pkg/diag"
	"github.com/FrederikTobner/slang/pkg/lexer"
	"github.com/FrederikTobner/slang/pkg/span"
)

// Parser consumes a fixed token slice (produced up front by the lexer,
// per spec.md's lexer/parser phase split) and produces an AST plus
// diagnostics.
type Parser struct {
	toks []lexer.Token
	pos  int
	bag  *diag.Bag

	// noStructLiteral suppresses `Identifier { ... }` struct-literal
	// recognition while parsing an if condition, where the brace would
	// otherwise be ambiguous with the if's own then-block.
	noStructLiteral bool
}

func New(toks []lexer.Token, bag *diag.Bag) *Parser {
	return &Parser{toks: toks, bag: bag}
}

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) atEnd() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k or records a diagnostic and returns
// the current (unconsumed) token, ok=false.
func (p *Parser) expect(k lexer.Kind, code diag.Code, what string) (lexer.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.bag.Addf(code, p.cur().Span, "expected %s, found %q", what, p.cur().Text)
	return p.cur(), false
}

// Parse runs the whole recursive-descent pass and returns the AST plus
// whatever diagnostics were collected into the Parser's bag (spec.md §4.2:
// the AST is always returned even if errors occurred).
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for !p.atEnd() {
		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		}
	}
	return prog
}

func (p *Parser) parseItem() ast.Stmt {
	switch p.cur().Kind {
	case lexer.KwStruct:
		return p.parseStructDef()
	case lexer.KwFn:
		return p.parseFuncDecl()
	default:
		return p.parseStatement()
	}
}

// parseStatement parses one statement that may appear inside a block or at
// top level.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur().Kind {
	case lexer.KwLet:
		return p.parseLet()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwFn:
		p.bag.Addf(diag.InvalidStatement, p.cur().Span, "nested function definitions not allowed")
		p.synchronize()
		return nil
	case lexer.KwStruct:
		p.bag.Addf(diag.InvalidStatement, p.cur().Span, "struct definitions are only allowed at top level")
		p.synchronize()
		return nil
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLet() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'let'
	mutable := p.match(lexer.KwMut)
	nameTok, ok := p.expect(lexer.Identifier, diag.ExpectedIdentifier, "identifier")
	if !ok {
		p.synchronize()
		return nil
	}
	declared := ""
	if p.match(lexer.Colon) {
		tok, ok := p.expect(lexer.Identifier, diag.ExpectedType, "type name")
		if ok {
			declared = tok.Text
		}
	}
	if _, ok := p.expect(lexer.Assign, diag.UnexpectedToken, "'='"); !ok {
		p.synchronize()
		return nil
	}
	init := p.parseExpr()
	end := p.cur().Span
	if _, ok := p.expect(lexer.Semicolon, diag.UnexpectedToken, "';'"); !ok {
		p.synchronize()
	}
	return ast.NewLet(span.Join(start, end), nameTok.Text, declared, mutable, init)
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.cur().Span
	p.advance()
	var value ast.Expr
	if !p.check(lexer.Semicolon) {
		value = p.parseExpr()
	}
	end := p.cur().Span
	if _, ok := p.expect(lexer.Semicolon, diag.UnexpectedToken, "';'"); !ok {
		p.synchronize()
	}
	return ast.NewReturn(span.Join(start, end), value)
}

// parseExprOrAssign recognizes the statement-only `name = expr` form before
// falling back to a normal expression (see ast.Assign).
func (p *Parser) parseExprOrAssign() ast.Expr {
	if p.check(lexer.Identifier) && p.peekAt(1).Kind == lexer.Assign {
		name := p.advance()
		p.advance() // '='
		value := p.parseExpr()
		return ast.NewAssign(span.Join(name.Span, value.Span()), name.Text, value)
	}
	return p.parseExpr()
}

func (p *Parser) parseExprStatement() ast.Stmt {
	start := p.cur().Span
	expr := p.parseExprOrAssign()
	end := p.cur().Span
	// Block-like expressions (if, block) may terminate a statement without
	// a trailing semicolon.
	if p.check(lexer.Semicolon) {
		p.advance()
	} else if !isBlockLike(expr) {
		p.bag.Addf(diag.UnexpectedToken, p.cur().Span, "expected ';' after expression")
		p.synchronize()
	}
	return ast.NewExprStmt(span.Join(start, end), expr)
}

func isBlockLike(e ast.Expr) bool {
	switch e.(type) {
	case *ast.If, *ast.Block:
		return true
	default:
		return false
	}
}

func (p *Parser) parseStructDef() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'struct'
	nameTok, ok := p.expect(lexer.Identifier, diag.ExpectedIdentifier, "struct name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(lexer.LBrace, diag.UnexpectedToken, "'{'"); !ok {
		p.synchronize()
		return nil
	}
	var fields []ast.FieldDecl
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
		typeTok, ok := p.expect(lexer.Identifier, diag.ExpectedType, "field type")
		if !ok {
			p.synchronize()
			break
		}
		fields = append(fields, ast.FieldDecl{Name: fieldName.Text, Type: typeTok.Text})
		if !p.match(lexer.Comma) {
			break
		}
	}
	end := p.cur().Span
	p.expect(lexer.RBrace, diag.UnclosedBrace, "'}'")
	return ast.NewStructDef(span.Join(start, end), nameTok.Text, fields)
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	start := p.cur().Span
	p.advance() // 'fn'
	nameTok, ok := p.expect(lexer.Identifier, diag.ExpectedIdentifier, "function name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(lexer.LParen, diag.UnexpectedToken, "'('"); !ok {
		p.synchronize()
		return nil
	}
	var params []ast.Param
	for !p.check(lexer.RParen) && !p.atEnd() {
		pn, ok := p.expect(lexer.Identifier, diag.ExpectedIdentifier, "parameter name")
		if !ok {
			p.synchronize()
			break
		}
		if _, ok := p.expect(lexer.Colon, diag.UnexpectedToken, "':'"); !ok {
			p.synchronize()
			break
		}
		pt, ok := p.expect(lexer.Identifier, diag.ExpectedType, "parameter type")
		if !ok {
			p.synchronize()
			break
		}
		params = append(params, ast.Param{Name: pn.Text, Type: pt.Text})
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RParen, diag.UnclosedParen, "')'")
	resultType := ""
	if p.match(lexer.Arrow) {
		rt, ok := p.expect(lexer.Identifier, diag.ExpectedType, "result type")
		if ok {
			resultType = rt.Text
		}
	}
	body := p.parseBlock()
	end := body.Span()
	return ast.NewFuncDecl(span.Join(start, end), nameTok.Text, params, resultType, body)
}

// parseBlock parses `{ stmt* tail? }`. A tail expression is an expression
// with no trailing semicolon immediately before '}'.
func (p *Parser) parseBlock() *ast.Block {
	start := p.cur().Span
	if _, ok := p.expect(lexer.LBrace, diag.UnexpectedToken, "'{'"); !ok {
		return ast.NewBlock(start, nil, nil)
	}
	var stmts []ast.Stmt
	var tail ast.Expr
	for !p.check(lexer.RBrace) && !p.atEnd() {
		switch p.cur().Kind {
		case lexer.KwLet:
			stmts = append(stmts, p.parseLet())
		case lexer.KwReturn:
			stmts = append(stmts, p.parseReturn())
		case lexer.KwFn, lexer.KwStruct:
			p.bag.Addf(diag.InvalidStatement, p.cur().Span, "declarations are only allowed at top level")
			p.synchronize()
		default:
			exprStart := p.cur().Span
			expr := p.parseExprOrAssign()
			if p.check(lexer.Semicolon) {
				p.advance()
				stmts = append(stmts, ast.NewExprStmt(span.Join(exprStart, p.cur().Span), expr))
			} else if p.check(lexer.RBrace) {
				tail = expr
			} else if isBlockLike(expr) {
				stmts = append(stmts, ast.NewExprStmt(span.Join(exprStart, p.cur().Span), expr))
			} else {
				p.bag.Addf(diag.UnexpectedToken, p.cur().Span, "expected ';' after expression")
				p.synchronize()
			}
		}
	}
	end := p.cur().Span
	p.expect(lexer.RBrace, diag.UnclosedBrace, "'}'")
	return ast.NewBlock(span.Join(start, end), stmts, tail)
}

// synchronize implements spec.md §4.2's panic-mode recovery: skip tokens
// until the next ';' at the statement level or a '}' that would close the
// enclosing construct, tracking brace/paren balance so recovery does not
// exit early.
func (p *Parser) synchronize() {
	depth := 0
	for !p.atEnd() {
		switch p.cur().Kind {
		case lexer.LBrace, lexer.LParen:
			depth++
		case lexer.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case lexer.RParen:
			if depth > 0 {
				depth--
			}
		case lexer.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
