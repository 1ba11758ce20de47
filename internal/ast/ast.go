// Package ast defines the Abstract Syntax Tree node types: expressions,
// statements, and declarations produced by internal/parser and annotated
// in place by internal/validator before internal/codegen consumes them.
//
// Grounded on the teacher's internal/ast/ast.go node shape (a small Node
// interface plus Expression/Statement sub-interfaces, each node carrying
// its own token/range and a String() for debugging) and on
// original_source/src/ast.h/ast_codegen.cpp for the node set itself:
// literal, identifier, binary, unary, grouped, call, subscript/member
// placeholders, compound, expression-statement, return, var/param/func
// declaration, program.
package ast

import (
	"strconv"
	"strings"

	"github.com/cwbudde/protolang/internal/entity"
	"github.com/cwbudde/protolang/internal/scope"
	"github.com/cwbudde/protolang/internal/token"
)

// Node is the base interface every AST node implements. Home is the
// scope the node was parsed in (spec §3.4 "every AST node carries its
// home Scope*"); the validator walks the tree using exactly this scope
// to resolve identifiers and run overload resolution.
type Node interface {
	Range() token.Range
	String() string
	Home() *scope.Scope
}

// Expr is any node that produces a value. The validator annotates
// ResolvedType in place once type checking succeeds (spec §4.5).
type Expr interface {
	Node
	exprNode()
	ResolvedType() entity.Type
	SetResolvedType(entity.Type)
}

// Stmt is any node that performs an action without itself producing a
// value.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a top-level or block-level declaration; every Decl is also a
// Stmt so a VarDecl can sit in a block's statement list. FuncDecls appear
// only at the top level (spec §4.1).
type Decl interface {
	Stmt
	declNode()
}

// exprBase factors the range + resolved-type bookkeeping shared by every
// expression node.
type exprBase struct {
	Range_       token.Range
	HomeScope    *scope.Scope
	resolvedType entity.Type
}

func (b *exprBase) Range() token.Range            { return b.Range_ }
func (b *exprBase) Home() *scope.Scope             { return b.HomeScope }
func (b *exprBase) exprNode()                     {}
func (b *exprBase) ResolvedType() entity.Type     { return b.resolvedType }
func (b *exprBase) SetResolvedType(t entity.Type) { b.resolvedType = t }

// IntLiteral is an integer literal token (spec §4.4: defaults to the
// 32-bit signed int type unless context requires otherwise).
type IntLiteral struct {
	exprBase
	Value int64
}

func (n *IntLiteral) String() string { return strconv.FormatInt(n.Value, 10) }

// FloatLiteral is a floating-point literal token (spec §4.4: defaults to
// double).
type FloatLiteral struct {
	exprBase
	Value float64
}

func (n *FloatLiteral) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// Ident is a name reference. Resolved is filled in by the validator: a
// Var for a variable/parameter reference, or the resolved Callable for a
// call's callee (spec §4.5 step 1).
type Ident struct {
	exprBase
	Name     string
	Resolved entity.Entity
}

func (n *Ident) String() string { return n.Name }

// Unary is a prefix operator expression (spec §4.1 "unary"). ResolvedOp is
// the builtin operator Callable chosen by overload resolution (spec
// §4.5 step 2).
type Unary struct {
	exprBase
	Op         string
	Operand    Expr
	ResolvedOp entity.Callable
}

func (n *Unary) String() string {
	return "(" + n.Op + n.Operand.String() + ")"
}

// Binary is an infix operator expression (spec §4.1 "term"/"factor"/
// "equality"/"compare"). LeftCast/RightCast record the implicit widening
// cast (if any) the validator determined is needed before the operator
// call (spec §4.4/§4.5 step 2/4).
type Binary struct {
	exprBase
	Op         string
	Left       Expr
	Right      Expr
	ResolvedOp entity.Callable
	LeftCast   entity.Type
	RightCast  entity.Type
}

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

// Assign is `target = value` (spec §4.1 "assign", right-associative).
// Target must resolve to a Var; Cast records the implicit cast (if any)
// from Value's type to Target's declared type.
type Assign struct {
	exprBase
	Target Expr
	Value  Expr
	Cast   entity.Type
}

func (n *Assign) String() string {
	return "(" + n.Target.String() + " = " + n.Value.String() + ")"
}

// Grouped is a parenthesized expression (spec §4.1 "primary").
type Grouped struct {
	exprBase
	Inner Expr
}

func (n *Grouped) String() string {
	switch n.Inner.(type) {
	case *Binary, *Unary, *Assign, *Grouped:
		// These already print their own enclosing parentheses.
		return n.Inner.String()
	}
	return "(" + n.Inner.String() + ")"
}

// Call is a function call (spec §4.1 "postfix"). ArgCasts[i] records the
// implicit cast (if any) applied to Args[i] before the call.
type Call struct {
	exprBase
	Callee   Expr
	Args     []Expr
	Resolved entity.Callable
	ArgCasts []entity.Type
}

func (n *Call) String() string {
	var sb strings.Builder
	sb.WriteString(n.Callee.String())
	sb.WriteString("(")
	for i, a := range n.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Subscript is a bracketed index expression (spec §4.1 "postfix": parsed,
// but rejected by the validator — spec §4.5/Open Question #4, no indexable
// type exists in this language).
type Subscript struct {
	exprBase
	Receiver Expr
	Index    Expr
}

func (n *Subscript) String() string {
	return n.Receiver.String() + "[" + n.Index.String() + "]"
}

// Member is a dotted member-access expression (spec §4.1 "member": parsed,
// but rejected by the validator — no aggregate type exists in this
// language, same as Subscript).
type Member struct {
	exprBase
	Receiver Expr
	Name     string
}

func (n *Member) String() string { return n.Receiver.String() + "." + n.Name }

// stmtBase factors the range shared by every statement node.
type stmtBase struct {
	Range_    token.Range
	HomeScope *scope.Scope
}

func (b *stmtBase) Range() token.Range  { return b.Range_ }
func (b *stmtBase) Home() *scope.Scope  { return b.HomeScope }
func (b *stmtBase) stmtNode()           {}

// ExprStmt is a bare expression used for its side effect (a call, in
// practice — spec §4.1 "expr_stmt").
type ExprStmt struct {
	stmtBase
	X Expr
}

func (n *ExprStmt) String() string { return n.X.String() + ";" }

// ReturnStmt returns Value. The parser always requires an expression after
// `return`, so only a hand-built node has a nil Value.
// Cast records the implicit cast from Value's type to the enclosing
// function's declared return type (spec §4.5 step 5).
type ReturnStmt struct {
	stmtBase
	Value Expr
	Cast  entity.Type
}

func (n *ReturnStmt) String() string {
	if n.Value == nil {
		return "return;"
	}
	return "return " + n.Value.String() + ";"
}

// CompoundStmt is a `{ ... }` block (spec §4.1 "block"). Scope is the
// child scope the parser opened for the block's own local declarations.
type CompoundStmt struct {
	stmtBase
	Stmts []Stmt
	Scope *scope.Scope
}

func (n *CompoundStmt) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range n.Stmts {
		sb.WriteString("  ")
		sb.WriteString(strings.ReplaceAll(s.String(), "\n", "\n  "))
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// declBase factors the range shared by every declaration node.
type declBase struct {
	stmtBase
}

func (b *declBase) declNode() {}

// VarDecl declares a local or global variable (spec §4.1 "var_decl").
// TypeName is the parsed type annotation; Resolved is the Var the parser
// registered, whose type the validator sets, and InitCast is filled in by
// the validator (spec §4.5 step 6).
type VarDecl struct {
	declBase
	Name     string
	TypeName string
	Init     Expr
	Resolved entity.Var
	InitCast entity.Type
}

func (n *VarDecl) String() string {
	s := "var " + n.Name + ": " + n.TypeName
	if n.Init != nil {
		s += " = " + n.Init.String()
	}
	return s + ";"
}

// ParamDecl declares one function parameter (spec §4.1 "param_list").
type ParamDecl struct {
	declBase
	Name     string
	TypeName string
	Resolved entity.Var
}

func (n *ParamDecl) String() string { return n.Name + ": " + n.TypeName }

// FuncDecl declares a function (spec §4.1 "func_decl"). Scope is the
// function-body scope the parser opened to hold Params and locals;
// Resolved is the Callable registered into the enclosing scope's overload
// set.
type FuncDecl struct {
	declBase
	Name           string
	Params         []*ParamDecl
	ReturnTypeName string
	Body           *CompoundStmt
	Scope          *scope.Scope
	Resolved       entity.Callable
}

func (n *FuncDecl) String() string {
	var sb strings.Builder
	sb.WriteString("func ")
	sb.WriteString(n.Name)
	sb.WriteString("(")
	for i, p := range n.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(") -> ")
	sb.WriteString(n.ReturnTypeName)
	sb.WriteString(" ")
	sb.WriteString(n.Body.String())
	return sb.String()
}

// Program is the root node: an ordered list of top-level declarations
// (spec §4.1 "program").
type Program struct {
	Decls []Decl
	Scope *scope.Scope
}

func (p *Program) Home() *scope.Scope { return p.Scope }

func (p *Program) Range() token.Range {
	if len(p.Decls) == 0 {
		return token.Range{}
	}
	return token.Range{Head: p.Decls[0].Range().Head, Tail: p.Decls[len(p.Decls)-1].Range().Tail}
}

func (p *Program) String() string {
	var sb strings.Builder
	for i, d := range p.Decls {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.String())
	}
	return sb.String()
}
