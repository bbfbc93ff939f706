package lexer

import (
	"testing"

	"github.com/FrederikTobner/slang/pkg/diag"
)

func tokenize(t *testing.T, src string) ([]Token, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag("test.slang")
	toks := New([]byte(src), bag).Tokenize()
	return toks, bag
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestDotTokenizesSeparatelyFromNumericLiterals(t *testing.T) {
	toks, bag := tokenize(t, `p.x 3.5`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	got := kinds(toks)
	want := []Kind{Identifier, Dot, Identifier, FloatLiteral, EOF}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d kind = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFloatLiteralText(t *testing.T) {
	toks, bag := tokenize(t, `3.5`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	if toks[0].Kind != FloatLiteral || toks[0].Text != "3.5" {
		t.Errorf("token = %+v, want FloatLiteral %q", toks[0], "3.5")
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks, bag := tokenize(t, `let mut fn return if else struct true false foo`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	want := []Kind{KwLet, KwMut, KwFn, KwReturn, KwIf, KwElse, KwStruct, KwTrue, KwFalse, Identifier, EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d kind = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnterminatedStringReportsDiagnostic(t *testing.T) {
	_, bag := tokenize(t, `"unterminated`)
	if !bag.HasErrors() {
		t.Fatalf("expected an error for unterminated string")
	}
	if bag.Diagnostics()[0].Code != diag.UnterminatedString {
		t.Errorf("code = %v, want UnterminatedString", bag.Diagnostics()[0].Code)
	}
}
