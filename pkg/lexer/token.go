// Package lexer tokenizes Slang source text with a single forward-pass
// byte scanner and a static keyword table, including nested block comments
// and escaped string literals.
package lexer

import "github.com/FrederikTobner/slang/pkg/span"

// Kind enumerates token categories per spec.md §3.
type Kind int

const (
	EOF Kind = iota
	Identifier

	// Keywords.
	KwLet
	KwMut
	KwFn
	KwReturn
	KwIf
	KwElse
	KwStruct
	KwTrue
	KwFalse

	// Literals.
	IntLiteral
	FloatLiteral
	StringLiteral

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Colon
	Semicolon
	Arrow
	Dot

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	Bang
	Lt
	Le
	Gt
	Ge
	EqEq
	NotEq
	AndAnd
	OrOr

	Invalid
)

var keywords = map[string]Kind{
	"let":    KwLet,
	"mut":    KwMut,
	"fn":     KwFn,
	"return": KwReturn,
	"if":     KwIf,
	"else":   KwElse,
	"struct": KwStruct,
	"true":   KwTrue,
	"false":  KwFalse,
}

// Token is one lexical unit with its exact source span and literal text.
type Token struct {
	Kind   Kind
	Text   string // raw lexeme (unescaped for strings)
	Suffix string // numeric width suffix, if any
	Span   span.Span
}

func (t Token) String() string {
	return t.Text
}
