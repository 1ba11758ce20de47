// Package lexer turns protolang source text into a token.Token stream.
//
// Grounded on the teacher's internal/lexer/lexer.go scanning style
// (position/readPosition/line/column/ch cursor, readChar/peekChar
// UTF-8-aware advancing, per-rune handle* dispatch, readIdentifier/
// readNumber helpers) narrowed to protolang's much smaller token set:
// identifiers, int/float literals, the three keywords (`var`, `func`,
// `return`), operators, and punctuation (spec §4.1's grammar never needs
// strings, hex/binary literal prefixes, or comment directives).
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/token"
)

var keywords = map[string]token.Kind{
	"var":    token.KEYWORD,
	"func":   token.KEYWORD,
	"return": token.KEYWORD,
}

// Lexer scans one source.File's text into tokens.
type Lexer struct {
	input        string
	bag          *diag.Bag
	position     int
	readPosition int
	row          int
	col          int
	ch           rune
}

// New creates a Lexer over input, reporting scan errors into bag.
func New(input string, bag *diag.Bag) *Lexer {
	l := &Lexer{input: input, bag: bag, row: 0, col: -1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if r == '\n' {
		l.row++
		l.col = -1
	} else {
		l.col++
	}
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Pos {
	return token.Pos{Row: l.row, Column: l.col}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// Tokenize scans the full input and returns every token, terminated by a
// single token.EOF. Lexical errors are reported into the bag and scanning
// continues so the parser sees a best-effort stream (spec §7 propagation
// policy).
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

// Next scans and returns the next token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()

	start := l.pos()

	if l.ch == 0 {
		return token.Token{Kind: token.EOF, Range: token.Range{Head: start, Tail: start}}
	}

	switch {
	case isLetter(l.ch):
		return l.readIdentOrKeyword(start)
	case isDigit(l.ch):
		return l.readNumber(start)
	}

	switch l.ch {
	case '(':
		return l.simple(token.LPAREN, "(", start)
	case ')':
		return l.simple(token.RPAREN, ")", start)
	case '{':
		return l.simple(token.LBRACE, "{", start)
	case '}':
		return l.simple(token.RBRACE, "}", start)
	case '[':
		return l.simple(token.LBRACKET, "[", start)
	case ']':
		return l.simple(token.RBRACKET, "]", start)
	case ',':
		return l.simple(token.COMMA, ",", start)
	case ':':
		return l.simple(token.COLON, ":", start)
	case ';':
		return l.simple(token.SEMICOLON, ";", start)
	case '.':
		return l.simple(token.DOT, ".", start)
	case '+', '*', '/', '%':
		ch := l.ch
		l.readChar()
		return token.Token{Kind: token.OPERATOR, Text: string(ch), Range: token.Range{Head: start, Tail: l.pos()}}
	case '-':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			return token.Token{Kind: token.ARROW, Text: "->", Range: token.Range{Head: start, Tail: l.pos()}}
		}
		return token.Token{Kind: token.OPERATOR, Text: "-", Range: token.Range{Head: start, Tail: l.pos()}}
	case '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.OPERATOR, Text: "==", Range: token.Range{Head: start, Tail: l.pos()}}
		}
		return token.Token{Kind: token.OPERATOR, Text: "=", Range: token.Range{Head: start, Tail: l.pos()}}
	case '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.OPERATOR, Text: "!=", Range: token.Range{Head: start, Tail: l.pos()}}
		}
		return token.Token{Kind: token.OPERATOR, Text: "!", Range: token.Range{Head: start, Tail: l.pos()}}
	case '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.OPERATOR, Text: "<=", Range: token.Range{Head: start, Tail: l.pos()}}
		}
		return token.Token{Kind: token.OPERATOR, Text: "<", Range: token.Range{Head: start, Tail: l.pos()}}
	case '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.OPERATOR, Text: ">=", Range: token.Range{Head: start, Tail: l.pos()}}
		}
		return token.Token{Kind: token.OPERATOR, Text: ">", Range: token.Range{Head: start, Tail: l.pos()}}
	}

	ch := l.ch
	l.readChar()
	end := l.pos()
	rng := token.Range{Head: start, Tail: end}
	if l.bag != nil {
		l.bag.Add(diag.KindUnknownChar, rng, "unexpected character %q", ch)
	}
	return token.Token{Kind: token.ILLEGAL, Text: string(ch), Range: rng}
}

func (l *Lexer) simple(kind token.Kind, text string, start token.Pos) token.Token {
	l.readChar()
	return token.Token{Kind: kind, Text: text, Range: token.Range{Head: start, Tail: l.pos()}}
}

func (l *Lexer) readIdentOrKeyword(start token.Pos) token.Token {
	begin := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	text := l.input[begin:l.position]
	rng := token.Range{Head: start, Tail: l.pos()}
	if kind, ok := keywords[text]; ok {
		return token.Token{Kind: kind, Text: text, Range: rng}
	}
	return token.Token{Kind: token.IDENT, Text: text, Range: rng}
}

func (l *Lexer) readNumber(start token.Pos) token.Token {
	begin := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	text := l.input[begin:l.position]
	rng := token.Range{Head: start, Tail: l.pos()}

	if isFloat {
		v := parseFloat(text)
		return token.Token{Kind: token.FLOAT, Text: text, FltVal: v, Range: rng}
	}

	if hasRedundantLeadingZero(text) && l.bag != nil {
		l.bag.Add(diag.KindAmbiguousInt, rng, "the preceding `0` in %q is redundant; use the `0o` prefix for an octal literal", text)
	}
	v := parseInt(text)
	return token.Token{Kind: token.INT, Text: text, IntVal: v, Range: rng}
}
