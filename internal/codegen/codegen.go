// Package codegen lowers a validated ast.Program into IR via the
// backend.Backend interface (spec §4.6). It assumes the validator has
// already run to completion successfully: every expression carries a
// ResolvedType, every Binary/Unary/Call carries a resolved Callable, and
// every implicit cast the lowering needs is already annotated. Generation
// itself never fails on a semantic error — only on a structural one
// (a duplicate mangled name, a global variable declaration, a missing
// resolved entity, or a function that fails verification) which spec §7
// classifies as fatal to the unit.
//
// Grounded on original_source/src/codegen.cpp's per-node codegen_value
// methods (LiteralExpr, IdentExpr, IVar::codegen_value for locals,
// alloca_for_local_var always targeting the entry block, gen_overload_call
// for Binary/Unary/Call) translated from a double-dispatch virtual method
// per AST node into a single type-switch, matching the teacher's
// internal/codegen package shape.
package codegen

import (
	"fmt"

	"github.com/cwbudde/protolang/internal/ast"
	"github.com/cwbudde/protolang/internal/codegen/backend"
	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/entity"
)

// Generator lowers one validated ast.Program into the module held by b.
type Generator struct {
	b   backend.Backend
	bag *diag.Bag
	fn  backend.Function // current function, for entry-block alloca placement
}

// New creates a Generator targeting module moduleName on b.
func New(b backend.Backend, moduleName string, bag *diag.Bag) *Generator {
	b.SetModuleName(moduleName)
	b.SetTargetToHost()
	return &Generator{b: b, bag: bag}
}

// Generate lowers every declaration in prog, returning false (and halting
// immediately) on the first fatal error (spec §7: "any error during code
// generation is fatal ... aborts further lowering for the current unit").
// Prototypes are declared in a first pass so forward calls resolve.
func (g *Generator) Generate(prog *ast.Program) bool {
	for _, d := range prog.Decls {
		fn, isFunc := d.(*ast.FuncDecl)
		if !isFunc {
			continue
		}
		if !g.declarePrototype(fn) {
			return false
		}
	}
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			if !g.genFuncBody(n) {
				return false
			}
		case *ast.VarDecl:
			g.bag.Add(diag.KindUnsupportedExpr, n.Range(), "global variables are not supported")
			return false
		}
	}
	return true
}

func (g *Generator) declarePrototype(n *ast.FuncDecl) bool {
	pf, ok := n.Resolved.(*entity.PlainFunc)
	if !ok {
		g.bag.Add(diag.KindInternal, n.Range(), "function %q has no resolved entity", n.Name)
		return false
	}
	if _, exists := g.b.LookupFunction(pf.MangledName()); exists {
		g.bag.Add(diag.KindFuncAlreadyExists, n.Range(), "function %q already declared", pf.MangledName())
		return false
	}

	params := make([]backend.Type, pf.ParamCount())
	for i := range params {
		params[i] = pf.ParamType(i).LLVMType(g.b)
	}
	fnType := g.b.FuncType(pf.ReturnType().LLVMType(g.b), params)
	fn := g.b.DeclareFunction(pf.MangledName(), fnType)

	pf.SetEmitter(func(b backend.Backend, args []backend.Value) backend.Value {
		return b.CreateCall(fn, args, "calltmp")
	})
	return true
}

func (g *Generator) genFuncBody(n *ast.FuncDecl) bool {
	pf, ok := n.Resolved.(*entity.PlainFunc)
	if !ok {
		g.bag.Add(diag.KindInternal, n.Range(), "function %q has no resolved entity", n.Name)
		return false
	}
	fn, _ := g.b.LookupFunction(pf.MangledName())

	prevFn := g.fn
	g.fn = fn
	defer func() { g.fn = prevFn }()

	entry := g.b.AppendBasicBlock(fn, "entry")
	g.b.SetInsertPoint(entry)

	for i, param := range n.Params {
		pv, isVar := param.Resolved.(*entity.PlainVar)
		if !isVar {
			g.bag.Add(diag.KindInternal, param.Range(), "parameter %q has no resolved entity", param.Name)
			return false
		}
		slot := g.b.CreateAlloca(entry, pv.VarType().LLVMType(g.b), param.Name)
		g.b.CreateStore(g.b.Param(fn, i), slot)
		pv.SetStackAddr(slot)
	}

	if !g.genStmt(n.Body) {
		return false
	}

	if err := g.b.VerifyFunction(fn); err != nil {
		g.bag.Add(diag.KindInternal, n.Range(), "function %q failed verification: %v", n.Name, err)
		return false
	}
	return true
}

func (g *Generator) genStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		for _, child := range n.Stmts {
			if !g.genStmt(child) {
				return false
			}
		}
		return true

	case *ast.VarDecl:
		return g.genLocalVarDecl(n)

	case *ast.ExprStmt:
		_, ok := g.genExpr(n.X)
		return ok

	case *ast.ReturnStmt:
		return g.genReturnStmt(n)

	default:
		g.bag.Add(diag.KindInternal, s.Range(), "unknown statement node %T", s)
		return false
	}
}

// genLocalVarDecl always allocates in the current function's entry block,
// regardless of where the VarDecl textually appears in the body (spec
// §4.6 "Locals").
func (g *Generator) genLocalVarDecl(n *ast.VarDecl) bool {
	pv, ok := n.Resolved.(*entity.PlainVar)
	if !ok {
		g.bag.Add(diag.KindInternal, n.Range(), "variable %q has no resolved entity", n.Name)
		return false
	}
	entry := g.b.EntryBlock(g.fn)
	slot := g.b.CreateAlloca(entry, pv.VarType().LLVMType(g.b), n.Name)
	pv.SetStackAddr(slot)

	if n.Init == nil {
		return true
	}
	val, ok := g.genExpr(n.Init)
	if !ok {
		return false
	}
	val = g.applyCast(n.InitCast, n.Init.ResolvedType(), val)
	g.b.CreateStore(val, slot)
	return true
}

func (g *Generator) genReturnStmt(n *ast.ReturnStmt) bool {
	if n.Value == nil {
		g.b.CreateRetVoid()
		return true
	}
	val, ok := g.genExpr(n.Value)
	if !ok {
		return false
	}
	val = g.applyCast(n.Cast, n.Value.ResolvedType(), val)
	g.b.CreateRet(val)
	return true
}

// applyCast lowers val (of type from) to target via target.CastNoCheck,
// or returns val unchanged if target is nil (no cast annotated).
func (g *Generator) applyCast(target entity.Type, from entity.Type, val backend.Value) backend.Value {
	if target == nil {
		return val
	}
	return target.CastNoCheck(g.b, val, from)
}

func (g *Generator) genExpr(e ast.Expr) (backend.Value, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return g.b.ConstInt(n.ResolvedType().LLVMType(g.b), n.Value), true

	case *ast.FloatLiteral:
		return g.b.ConstFloat(n.ResolvedType().LLVMType(g.b), n.Value), true

	case *ast.Ident:
		pv, ok := n.Resolved.(*entity.PlainVar)
		if !ok {
			g.bag.Add(diag.KindInternal, n.Range(), "identifier %q has no resolved variable", n.Name)
			return nil, false
		}
		return g.b.CreateLoad(pv.VarType().LLVMType(g.b), pv.StackAddr(), n.Name), true

	case *ast.Assign:
		return g.genAssign(n)

	case *ast.Unary:
		operand, ok := g.genExpr(n.Operand)
		if !ok {
			return nil, false
		}
		return n.ResolvedOp.EmitCall(g.b, []backend.Value{operand}), true

	case *ast.Binary:
		return g.genBinary(n)

	case *ast.Grouped:
		return g.genExpr(n.Inner)

	case *ast.Call:
		return g.genCall(n)

	default:
		g.bag.Add(diag.KindInternal, e.Range(), "unsupported expression node %T reached codegen", e)
		return nil, false
	}
}

func (g *Generator) genAssign(n *ast.Assign) (backend.Value, bool) {
	targetIdent, isIdent := n.Target.(*ast.Ident)
	if !isIdent {
		g.bag.Add(diag.KindInternal, n.Range(), "assignment target %T reached codegen unresolved", n.Target)
		return nil, false
	}
	pv, ok := targetIdent.Resolved.(*entity.PlainVar)
	if !ok {
		g.bag.Add(diag.KindInternal, n.Range(), "assignment target %q has no resolved variable", targetIdent.Name)
		return nil, false
	}
	val, ok := g.genExpr(n.Value)
	if !ok {
		return nil, false
	}
	val = g.applyCast(n.Cast, n.Value.ResolvedType(), val)
	g.b.CreateStore(val, pv.StackAddr())
	return val, true
}

func (g *Generator) genBinary(n *ast.Binary) (backend.Value, bool) {
	left, ok := g.genExpr(n.Left)
	if !ok {
		return nil, false
	}
	right, ok := g.genExpr(n.Right)
	if !ok {
		return nil, false
	}
	left = g.applyCast(n.LeftCast, n.Left.ResolvedType(), left)
	right = g.applyCast(n.RightCast, n.Right.ResolvedType(), right)
	return n.ResolvedOp.EmitCall(g.b, []backend.Value{left, right}), true
}

func (g *Generator) genCall(n *ast.Call) (backend.Value, bool) {
	args := make([]backend.Value, len(n.Args))
	for i, argExpr := range n.Args {
		val, ok := g.genExpr(argExpr)
		if !ok {
			return nil, false
		}
		if len(n.ArgCasts) > i {
			val = g.applyCast(n.ArgCasts[i], argExpr.ResolvedType(), val)
		}
		args[i] = val
	}
	return n.Resolved.EmitCall(g.b, args), true
}

// EmitObject finalizes the module and writes the target object file for
// the current host (spec §4.6 "After all bodies, emit the object file").
func (g *Generator) EmitObject(path string) error {
	if err := g.b.EmitObject(path); err != nil {
		return fmt.Errorf("emitting object %s: %w", path, err)
	}
	return nil
}
