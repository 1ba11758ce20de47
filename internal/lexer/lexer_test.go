package lexer_test

import (
	"testing"

	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/lexer"
	"github.com/cwbudde/protolang/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeFunctionDecl(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("func add(x: int, y: int) -> int { return x + y; }", bag)
	toks := l.Tokenize()

	want := []token.Kind{
		token.KEYWORD, token.IDENT, token.LPAREN,
		token.IDENT, token.COLON, token.IDENT, token.COMMA,
		token.IDENT, token.COLON, token.IDENT, token.RPAREN,
		token.ARROW, token.IDENT, token.LBRACE,
		token.KEYWORD, token.IDENT, token.OPERATOR, token.IDENT, token.SEMICOLON,
		token.RBRACE, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected lexer errors: %s", diag.FormatAll(bag.All()))
	}
}

func TestTokenizeIntAndFloatLiterals(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("42 3.14", bag)
	toks := l.Tokenize()

	if toks[0].Kind != token.INT || toks[0].IntVal != 42 {
		t.Errorf("token 0 = %+v, want INT(42)", toks[0])
	}
	if toks[1].Kind != token.FLOAT || toks[1].FltVal != 3.14 {
		t.Errorf("token 1 = %+v, want FLOAT(3.14)", toks[1])
	}
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("== != <= >=", bag)
	toks := l.Tokenize()

	want := []string{"==", "!=", "<=", ">="}
	for i, w := range want {
		if toks[i].Text != w {
			t.Errorf("token %d = %q, want %q", i, toks[i].Text, w)
		}
	}
}

func TestTokenizeSkipsLineComments(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("var x // this is ignored\n= 1;", bag)
	toks := l.Tokenize()

	want := []token.Kind{token.KEYWORD, token.IDENT, token.OPERATOR, token.INT, token.SEMICOLON, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeRedundantLeadingZeroReportsAmbiguousInt(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("01", bag)
	toks := l.Tokenize()

	if toks[0].Kind != token.INT || toks[0].IntVal != 1 {
		t.Errorf("token 0 = %+v, want INT(1)", toks[0])
	}
	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for the redundant leading zero")
	}
	if bag.All()[0].Kind != diag.KindAmbiguousInt {
		t.Errorf("got diagnostic kind %s, want %s", bag.All()[0].Kind, diag.KindAmbiguousInt)
	}
}

func TestTokenizeBareZeroIsNotAmbiguous(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("0", bag)
	l.Tokenize()

	if bag.HasErrors() {
		t.Errorf("unexpected diagnostic for a bare 0: %s", diag.FormatAll(bag.All()))
	}
}

func TestTokenizeOverflowingIntWrapsWithoutDiagnostic(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("18446744073709551616", bag) // 2^64, wraps to 0
	toks := l.Tokenize()

	if toks[0].Kind != token.INT || toks[0].IntVal != 0 {
		t.Errorf("token 0 = %+v, want INT(0) (wrapped)", toks[0])
	}
	if bag.HasErrors() {
		t.Errorf("unexpected diagnostic for 64-bit overflow: %s", diag.FormatAll(bag.All()))
	}
}

func TestTokenizeUnknownCharReportsDiagnostic(t *testing.T) {
	bag := diag.NewBag(nil)
	l := lexer.New("var x = 1 @ 2;", bag)
	l.Tokenize()

	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for the unknown '@' character")
	}
	if bag.All()[0].Kind != diag.KindUnknownChar {
		t.Errorf("got diagnostic kind %s, want %s", bag.All()[0].Kind, diag.KindUnknownChar)
	}
}
