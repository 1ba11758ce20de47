// Package parser implements protolang's recursive-descent parser: it
// consumes a token.Token stream and produces an *ast.Program while
// registering every declaration into the scope tree (spec §4.1/§4.2).
//
// Grounded on original_source/src/parser.cpp's grammar (program/
// declaration/var_decl/func_decl/statement/compound_statement and the
// assignment→equality→comparison→term→factor→unary_pre→unary_post→
// member_access→primary ladder) and its EnvGuard-based scope push/pop
// (scope.h) — translated to Go as an explicit push/defer-pop helper
// instead of a destructor (SPEC_FULL.md supplemented feature #2). Error
// recovery (sync to next consumed '}') follows parser.cpp's
// declaration()/sync(), but is expressed as Go's idiomatic
// accumulate-and-return-ok pattern (teacher's internal/parser.go
// boolean-success style) rather than throw/catch.
package parser

import (
	"github.com/cwbudde/protolang/internal/ast"
	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/entity"
	"github.com/cwbudde/protolang/internal/scope"
	"github.com/cwbudde/protolang/internal/token"
)

// Parser turns a token stream into an ast.Program, reporting syntax
// errors into bag.
type Parser struct {
	toks []token.Token
	idx  int
	bag  *diag.Bag
	cur  *scope.Scope
}

// New creates a Parser over toks, starting in root (which the caller has
// already pre-populated with built-ins — spec §4.1 "Scope handling").
func New(toks []token.Token, bag *diag.Bag, root *scope.Scope) *Parser {
	return &Parser{toks: toks, bag: bag, cur: root}
}

// --- cursor helpers ---

func (p *Parser) at(i int) token.Token {
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) curr() token.Token { return p.at(p.idx) }
func (p *Parser) prev() token.Token { return p.at(p.idx - 1) }

func (p *Parser) atEOF() bool { return p.curr().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	t := p.curr()
	if !p.atEOF() {
		p.idx++
	}
	return t
}

func (p *Parser) checkKind(k token.Kind) bool { return p.curr().Kind == k }

func (p *Parser) checkKeyword(text string) bool {
	return p.curr().Kind == token.KEYWORD && p.curr().Text == text
}

func (p *Parser) checkOperator(texts ...string) bool {
	if p.curr().Kind != token.OPERATOR {
		return false
	}
	for _, t := range texts {
		if p.curr().Text == t {
			return true
		}
	}
	return false
}

func (p *Parser) matchOperator(texts ...string) (token.Token, bool) {
	if p.checkOperator(texts...) {
		return p.advance(), true
	}
	return token.Token{}, false
}

// expect consumes the current token if its kind matches, else reports
// UNEXPECTED_TOKEN and returns ok=false.
func (p *Parser) expect(k token.Kind, context string) (token.Token, bool) {
	if p.checkKind(k) {
		return p.advance(), true
	}
	p.bag.Add(diag.KindUnexpectedToken, p.curr().Range,
		"expected %s %s, found %s", k, context, p.curr().Kind)
	return token.Token{}, false
}

func (p *Parser) expectKeyword(text string) (token.Token, bool) {
	if p.checkKeyword(text) {
		return p.advance(), true
	}
	p.bag.Add(diag.KindUnexpectedToken, p.curr().Range,
		"expected keyword %q, found %s", text, p.curr().Kind)
	return token.Token{}, false
}

func (p *Parser) expectOperator(text string) (token.Token, bool) {
	if p.checkOperator(text) {
		return p.advance(), true
	}
	p.bag.Add(diag.KindUnexpectedToken, p.curr().Range,
		"expected %q, found %s", text, p.curr().Kind)
	return token.Token{}, false
}

func (p *Parser) expectIdent() (token.Token, bool) {
	if p.checkKind(token.IDENT) {
		return p.advance(), true
	}
	p.bag.Add(diag.KindUnexpectedToken, p.curr().Range,
		"expected identifier, found %s", p.curr().Kind)
	return token.Token{}, false
}

// sync advances past tokens until one consumed token was '}', or EOF is
// reached (original_source Parser::sync).
func (p *Parser) sync() {
	for !p.atEOF() {
		p.advance()
		if p.prev().Kind == token.RBRACE {
			return
		}
	}
}

// pushScope makes s the current scope and returns a restore closure; call
// via `defer p.pushScope(child)()` (EnvGuard translated to Go).
func (p *Parser) pushScope(s *scope.Scope) func() {
	old := p.cur
	p.cur = s
	return func() { p.cur = old }
}

func spanOf(head, tail token.Range) token.Range {
	return token.Range{Head: head.Head, Tail: tail.Tail}
}

// --- top level ---

// Parse runs the parser to completion, returning the program AST. Partial
// results are still returned alongside reported diagnostics (spec §7
// propagation policy: errors never silently mask later ones).
func (p *Parser) Parse() *ast.Program {
	root := p.cur
	var decls []ast.Decl
	for !p.atEOF() {
		d, ok := p.parseDecl()
		if ok {
			decls = append(decls, d)
		} else {
			p.sync()
		}
	}
	return &ast.Program{Decls: decls, Scope: root}
}

func (p *Parser) parseDecl() (ast.Decl, bool) {
	switch {
	case p.checkKeyword("var"):
		return p.parseVarDecl()
	case p.checkKeyword("func"):
		return p.parseFuncDecl()
	default:
		p.bag.Add(diag.KindUnexpectedToken, p.curr().Range,
			"expected %q or %q, found %s", "var", "func", p.curr().Kind)
		return nil, false
	}
}

// parseVarDecl handles `var IDENT : type_expr = expr ;`, used both as a
// top-level declaration and inside a block.
func (p *Parser) parseVarDecl() (*ast.VarDecl, bool) {
	kw, ok := p.expectKeyword("var")
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.COLON, "after variable name"); !ok {
		return nil, false
	}
	typeName, ok := p.expectIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expectOperator("="); !ok {
		return nil, false
	}
	init, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	semi, ok := p.expect(token.SEMICOLON, "after variable declaration")
	if !ok {
		return nil, false
	}

	decl := &ast.VarDecl{
		Name:     name.Text,
		TypeName: typeName.Text,
	}
	decl.Range_ = spanOf(kw.Range, semi.Range)
	decl.HomeScope = p.cur
	decl.Init = init

	pv := entity.NewPlainVar(name.Text, decl.Range_)
	if err := p.cur.Add(name.Text, pv); err != nil {
		p.bag.Add(diag.KindSymbolRedef, name.Range, "redefinition of %q", name.Text)
		return nil, false
	}
	decl.Resolved = pv
	return decl, true
}

func (p *Parser) parseFuncDecl() (*ast.FuncDecl, bool) {
	kw, ok := p.expectKeyword("func")
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LPAREN, "after function name"); !ok {
		return nil, false
	}

	bodyScope := p.cur.NewChild(name.Text)

	var params []*ast.ParamDecl
	for !p.checkKind(token.RPAREN) && !p.atEOF() {
		pname, ok := p.expectIdent()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.COLON, "after parameter name"); !ok {
			return nil, false
		}
		ptype, ok := p.expectIdent()
		if !ok {
			return nil, false
		}
		param := &ast.ParamDecl{Name: pname.Text, TypeName: ptype.Text}
		param.Range_ = spanOf(pname.Range, ptype.Range)
		param.HomeScope = bodyScope
		params = append(params, param)

		pv := entity.NewPlainVar(pname.Text, param.Range_)
		if err := bodyScope.Add(pname.Text, pv); err != nil {
			p.bag.Add(diag.KindSymbolRedef, pname.Range, "redefinition of parameter %q", pname.Text)
			return nil, false
		}
		param.Resolved = pv

		if !p.checkKind(token.RPAREN) {
			if _, ok := p.expect(token.COMMA, "between parameters"); !ok {
				return nil, false
			}
		}
	}
	if _, ok := p.expect(token.RPAREN, "after parameter list"); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.ARROW, "before return type"); !ok {
		return nil, false
	}
	retType, ok := p.expectIdent()
	if !ok {
		return nil, false
	}

	restore := p.pushScope(bodyScope)
	body, ok := p.parseBlockIn(bodyScope)
	restore()
	if !ok {
		return nil, false
	}

	decl := &ast.FuncDecl{
		Name:           name.Text,
		Params:         params,
		ReturnTypeName: retType.Text,
		Body:           body,
		Scope:          bodyScope,
	}
	decl.Range_ = spanOf(kw.Range, body.Range())
	decl.HomeScope = bodyScope.Parent()

	pf := entity.NewPlainFunc(name.Text, decl.Range_, len(params))
	for i, param := range params {
		pf.SetParamName(i, param.Name)
	}
	if err := decl.HomeScope.Add(name.Text, pf); err != nil {
		p.bag.Add(diag.KindSymbolRedef, name.Range, "redefinition of %q", name.Text)
		return nil, false
	}
	decl.Resolved = pf
	return decl, true
}

// --- statements ---

func (p *Parser) parseStatement() (ast.Stmt, bool) {
	switch {
	case p.checkKind(token.LBRACE):
		child := p.cur.NewChild("")
		restore := p.pushScope(child)
		defer restore()
		return p.parseBlockIn(child)
	case p.checkKeyword("return"):
		return p.parseReturnStmt()
	default:
		return p.parseExprStmt()
	}
}

// parseBlockIn parses `{ (var_decl | stmt)* }` assuming blockScope is
// already current (spec §4.1 "Scope handling": each block creates a new
// child scope and installs itself as current for the span of the block).
func (p *Parser) parseBlockIn(blockScope *scope.Scope) (*ast.CompoundStmt, bool) {
	lbrace, ok := p.expect(token.LBRACE, "to start a block")
	if !ok {
		return nil, false
	}

	var stmts []ast.Stmt
	for !p.checkKind(token.RBRACE) && !p.atEOF() {
		var s ast.Stmt
		var ok bool
		if p.checkKeyword("var") {
			s, ok = p.parseVarDecl()
		} else {
			s, ok = p.parseStatement()
		}
		if !ok {
			return nil, false
		}
		stmts = append(stmts, s)
	}
	rbrace, ok := p.expect(token.RBRACE, "to close a block")
	if !ok {
		return nil, false
	}

	block := &ast.CompoundStmt{Stmts: stmts, Scope: blockScope}
	block.Range_ = spanOf(lbrace.Range, rbrace.Range)
	block.HomeScope = blockScope.Parent()
	return block, true
}

func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, bool) {
	kw, ok := p.expectKeyword("return")
	if !ok {
		return nil, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	semi, ok := p.expect(token.SEMICOLON, "after return statement")
	if !ok {
		return nil, false
	}
	stmt := &ast.ReturnStmt{Value: value}
	stmt.Range_ = spanOf(kw.Range, semi.Range)
	stmt.HomeScope = p.cur
	return stmt, true
}

func (p *Parser) parseExprStmt() (*ast.ExprStmt, bool) {
	expr, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	semi, ok := p.expect(token.SEMICOLON, "after expression statement")
	if !ok {
		return nil, false
	}
	stmt := &ast.ExprStmt{X: expr}
	stmt.Range_ = spanOf(expr.Range(), semi.Range)
	stmt.HomeScope = p.cur
	return stmt, true
}

// --- expressions (spec §4.1 precedence ladder) ---

func (p *Parser) parseExpr() (ast.Expr, bool) { return p.parseAssign() }

func (p *Parser) parseAssign() (ast.Expr, bool) {
	left, ok := p.parseEquality()
	if !ok {
		return nil, false
	}
	if _, ok := p.matchOperator("="); ok {
		right, ok := p.parseAssign()
		if !ok {
			return nil, false
		}
		a := &ast.Assign{Target: left, Value: right}
		a.Range_ = spanOf(left.Range(), right.Range())
		a.HomeScope = p.cur
		return a, true
	}
	return left, true
}

func (p *Parser) binaryLadder(next func() (ast.Expr, bool), ops ...string) (ast.Expr, bool) {
	left, ok := next()
	if !ok {
		return nil, false
	}
	for {
		opTok, ok := p.matchOperator(ops...)
		if !ok {
			return left, true
		}
		right, ok := next()
		if !ok {
			return nil, false
		}
		b := &ast.Binary{Op: opTok.Text, Left: left, Right: right}
		b.Range_ = spanOf(left.Range(), right.Range())
		b.HomeScope = p.cur
		left = b
	}
}

func (p *Parser) parseEquality() (ast.Expr, bool) {
	return p.binaryLadder(p.parseCompare, "==", "!=")
}

func (p *Parser) parseCompare() (ast.Expr, bool) {
	return p.binaryLadder(p.parseTerm, "<", "<=", ">", ">=")
}

func (p *Parser) parseTerm() (ast.Expr, bool) {
	return p.binaryLadder(p.parseFactor, "+", "-")
}

func (p *Parser) parseFactor() (ast.Expr, bool) {
	return p.binaryLadder(p.parseUnary, "*", "/", "%")
}

func (p *Parser) parseUnary() (ast.Expr, bool) {
	if opTok, ok := p.matchOperator("!", "-"); ok {
		operand, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		u := &ast.Unary{Op: opTok.Text, Operand: operand}
		u.Range_ = spanOf(opTok.Range, operand.Range())
		u.HomeScope = p.cur
		return u, true
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, bool) {
	expr, ok := p.parseMember()
	if !ok {
		return nil, false
	}
	for {
		switch {
		case p.checkKind(token.LPAREN):
			p.advance()
			var args []ast.Expr
			for !p.checkKind(token.RPAREN) && !p.atEOF() {
				arg, ok := p.parseExpr()
				if !ok {
					return nil, false
				}
				args = append(args, arg)
				if !p.checkKind(token.RPAREN) {
					if _, ok := p.expect(token.COMMA, "between call arguments"); !ok {
						return nil, false
					}
				}
			}
			rparen, ok := p.expect(token.RPAREN, "to close call arguments")
			if !ok {
				return nil, false
			}
			call := &ast.Call{Callee: expr, Args: args}
			call.Range_ = spanOf(expr.Range(), rparen.Range)
			call.HomeScope = p.cur
			expr = call

		case p.checkKind(token.LBRACKET):
			p.advance()
			index, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			rbracket, ok := p.expect(token.RBRACKET, "to close subscript")
			if !ok {
				return nil, false
			}
			sub := &ast.Subscript{Receiver: expr, Index: index}
			sub.Range_ = spanOf(expr.Range(), rbracket.Range)
			sub.HomeScope = p.cur
			expr = sub

		default:
			return expr, true
		}
	}
}

func (p *Parser) parseMember() (ast.Expr, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for p.checkKind(token.DOT) {
		p.advance()
		name, ok := p.expectIdent()
		if !ok {
			return nil, false
		}
		m := &ast.Member{Receiver: expr, Name: name.Text}
		m.Range_ = spanOf(expr.Range(), name.Range)
		m.HomeScope = p.cur
		expr = m
	}
	return expr, true
}

func (p *Parser) parsePrimary() (ast.Expr, bool) {
	switch {
	case p.checkKind(token.IDENT):
		t := p.advance()
		id := &ast.Ident{Name: t.Text}
		id.Range_ = t.Range
		id.HomeScope = p.cur
		return id, true

	case p.checkKind(token.INT):
		t := p.advance()
		lit := &ast.IntLiteral{Value: t.IntVal}
		lit.Range_ = t.Range
		lit.HomeScope = p.cur
		return lit, true

	case p.checkKind(token.FLOAT):
		t := p.advance()
		lit := &ast.FloatLiteral{Value: t.FltVal}
		lit.Range_ = t.Range
		lit.HomeScope = p.cur
		return lit, true

	case p.checkKind(token.LPAREN):
		lparen := p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if p.checkKind(token.RPAREN) {
			rparen := p.advance()
			g := &ast.Grouped{Inner: inner}
			g.Range_ = spanOf(lparen.Range, rparen.Range)
			g.HomeScope = p.cur
			return g, true
		}
		p.bag.Add(diag.KindParenMismatch, lparen.Range, "unmatched '(' opened here")
		return nil, false

	case p.checkKind(token.RPAREN):
		p.bag.Add(diag.KindParenMismatch, p.curr().Range, "unexpected ')' with no matching '('")
		return nil, false

	default:
		p.bag.Add(diag.KindExprExpected, p.curr().Range, "expression expected, found %s", p.curr().Kind)
		return nil, false
	}
}
