// Package validator implements the pre-codegen semantic walk (spec §4.5):
// identifier resolution, operator/call overload resolution, implicit-cast
// annotation, and return/initializer type checking. It mutates the AST in
// place (ResolvedType, ResolvedOp, Resolved, *Cast fields) and never
// panics — every check accumulates into a diag.Bag, matching
// original_source's two-pass "validate fully, then generate code" pipeline
// (ast_codegen.cpp's validate_types methods) and the teacher's
// accumulate-errors-then-report analyzer shape.
package validator

import (
	"github.com/cwbudde/protolang/internal/ast"
	"github.com/cwbudde/protolang/internal/builtins"
	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/entity"
	"github.com/cwbudde/protolang/internal/scope"
	"github.com/cwbudde/protolang/internal/token"
)

// Validator walks a parsed ast.Program, reporting problems into bag.
type Validator struct {
	bag *diag.Bag
}

// New creates a Validator that reports into bag.
func New(bag *diag.Bag) *Validator {
	return &Validator{bag: bag}
}

// Validate runs every check over prog, returning false (and leaving
// prog's annotations partial) if any diagnostic was reported. Codegen
// must not run when this returns false (spec §4.5 "success is set false
// and code generation is skipped").
func (v *Validator) Validate(prog *ast.Program) bool {
	ok := true
	// Record every function signature before any body is checked, so a
	// call to a function declared later in the file sees its parameter and
	// return types. Unknown type names are left unset here and reported
	// once, by validateFuncDecl.
	for _, d := range prog.Decls {
		if fn, isFunc := d.(*ast.FuncDecl); isFunc {
			if pf, isPF := fn.Resolved.(*entity.PlainFunc); isPF {
				if t, found := builtins.Lookup(fn.Scope, fn.ReturnTypeName); found {
					pf.SetReturnType(t)
				}
				for i, param := range fn.Params {
					if t, found := builtins.Lookup(fn.Scope, param.TypeName); found {
						pf.SetParamType(i, t)
					}
				}
			}
		}
	}
	for _, d := range prog.Decls {
		if !v.validateDecl(d) {
			ok = false
		}
	}
	if !v.checkDuplicateSignatures(prog) {
		ok = false
	}
	return ok
}

// checkDuplicateSignatures implements the half of spec §8 boundary
// scenario 6 that scope.Add cannot: at registration time a function's
// parameter types are still bare type-name strings, so two `func h`
// overloads with identical resolved signatures are indistinguishable from
// a legitimate new overload until after type names are resolved here.
// Functions can only be declared at the top level (the grammar's block
// never admits a func_decl), so a single pass over prog.Decls suffices.
func (v *Validator) checkDuplicateSignatures(prog *ast.Program) bool {
	ok := true
	byName := make(map[string][]*ast.FuncDecl)
	for _, d := range prog.Decls {
		if fn, isFunc := d.(*ast.FuncDecl); isFunc {
			byName[fn.Name] = append(byName[fn.Name], fn)
		}
	}
	for _, group := range byName {
		for i := 0; i < len(group); i++ {
			pi, isPF := group[i].Resolved.(*entity.PlainFunc)
			if !isPF {
				continue
			}
			for j := i + 1; j < len(group); j++ {
				pj, isPF := group[j].Resolved.(*entity.PlainFunc)
				if !isPF {
					continue
				}
				if sameSignature(pi, pj) {
					v.bag.Add(diag.KindSymbolRedef, group[j].Range(),
						"redefinition of %q with an identical signature", group[j].Name)
					ok = false
				}
			}
		}
	}
	return ok
}

func sameSignature(a, b *entity.PlainFunc) bool {
	if a.ParamCount() != b.ParamCount() {
		return false
	}
	for i := 0; i < a.ParamCount(); i++ {
		if pa := a.ParamType(i); pa == nil || !pa.Equals(b.ParamType(i)) {
			return false
		}
	}
	return true
}

func (v *Validator) validateDecl(d ast.Decl) bool {
	switch n := d.(type) {
	case *ast.VarDecl:
		return v.validateVarDecl(n)
	case *ast.FuncDecl:
		return v.validateFuncDecl(n)
	default:
		v.bag.Add(diag.KindInternal, d.Range(), "unknown declaration node %T", d)
		return false
	}
}

func (v *Validator) resolveTypeName(s *scope.Scope, name string, at ast.Node) (entity.Type, bool) {
	t, ok := builtins.Lookup(s, name)
	if !ok {
		v.bag.Add(diag.KindUnknownType, at.Range(), "unknown type %q", name)
		return nil, false
	}
	return t, true
}

func (v *Validator) validateVarDecl(n *ast.VarDecl) bool {
	declaredType, ok := v.resolveTypeName(n.HomeScope, n.TypeName, n)
	if !ok {
		return false
	}
	if pv, ok := n.Resolved.(*entity.PlainVar); ok {
		pv.SetVarType(declaredType)
	}

	if n.Init == nil {
		return true
	}
	initType, ok := v.validateExpr(n.Init)
	if !ok {
		return false
	}
	if !declaredType.Accepts(initType) {
		v.bag.Add(diag.KindVarTypeMismatch, n.Init.Range(),
			"cannot initialize %q of type %q with value of type %q",
			n.Name, declaredType.TypeName(), initType.TypeName())
		return false
	}
	if !declaredType.Equals(initType) {
		n.InitCast = declaredType
	}
	return true
}

func (v *Validator) validateFuncDecl(n *ast.FuncDecl) bool {
	pf, ok := n.Resolved.(*entity.PlainFunc)
	if !ok {
		v.bag.Add(diag.KindInternal, n.Range(), "function %q has no resolved entity", n.Name)
		return false
	}

	ok = true
	retType, retOK := v.resolveTypeName(n.Scope, n.ReturnTypeName, n)
	if !retOK {
		ok = false
	} else {
		pf.SetReturnType(retType)
	}

	for i, param := range n.Params {
		pt, pOK := v.resolveTypeName(n.Scope, param.TypeName, param)
		if !pOK {
			ok = false
			continue
		}
		pf.SetParamType(i, pt)
		if pv, isVar := param.Resolved.(*entity.PlainVar); isVar {
			pv.SetVarType(pt)
		}
	}
	if !ok {
		return false
	}

	if !v.validateStmt(n.Body, n) {
		ok = false
	}
	return ok
}

func (v *Validator) validateStmt(s ast.Stmt, fn *ast.FuncDecl) bool {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		ok := true
		for _, child := range n.Stmts {
			if !v.validateStmt(child, fn) {
				ok = false
			}
		}
		return ok

	case *ast.VarDecl:
		return v.validateVarDecl(n)

	case *ast.ExprStmt:
		_, ok := v.validateExpr(n.X)
		return ok

	case *ast.ReturnStmt:
		return v.validateReturnStmt(n, fn)

	default:
		v.bag.Add(diag.KindInternal, s.Range(), "unknown statement node %T", s)
		return false
	}
}

func (v *Validator) validateReturnStmt(n *ast.ReturnStmt, fn *ast.FuncDecl) bool {
	pf, ok := fn.Resolved.(*entity.PlainFunc)
	if !ok {
		v.bag.Add(diag.KindInternal, n.Range(), "enclosing function %q has no resolved entity", fn.Name)
		return false
	}
	wantType := pf.ReturnType()

	if n.Value == nil {
		if wantType != nil && wantType.TypeName() != "void" {
			v.bag.Add(diag.KindReturnTypeMismatch, n.Range(),
				"missing return value, function %q returns %q", fn.Name, wantType.TypeName())
			return false
		}
		return true
	}

	gotType, ok := v.validateExpr(n.Value)
	if !ok {
		return false
	}
	if !wantType.Accepts(gotType) {
		v.bag.Add(diag.KindReturnTypeMismatch, n.Value.Range(),
			"function %q returns %q, got %q", fn.Name, wantType.TypeName(), gotType.TypeName())
		return false
	}
	if !wantType.Equals(gotType) {
		n.Cast = wantType
	}
	return true
}

// validateExpr resolves and type-checks e, annotating it in place, and
// returns its resolved type.
func (v *Validator) validateExpr(e ast.Expr) (entity.Type, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		t, ok := v.resolveTypeName(n.HomeScope, "int", n)
		if ok {
			n.SetResolvedType(t)
		}
		return t, ok

	case *ast.FloatLiteral:
		t, ok := v.resolveTypeName(n.HomeScope, "double", n)
		if ok {
			n.SetResolvedType(t)
		}
		return t, ok

	case *ast.Ident:
		return v.validateIdent(n)

	case *ast.Assign:
		return v.validateAssign(n)

	case *ast.Unary:
		return v.validateUnary(n)

	case *ast.Binary:
		return v.validateBinary(n)

	case *ast.Grouped:
		t, ok := v.validateExpr(n.Inner)
		if ok {
			n.SetResolvedType(t)
		}
		return t, ok

	case *ast.Call:
		return v.validateCall(n)

	case *ast.Subscript:
		v.bag.Add(diag.KindUnsupportedExpr, n.Range(), "subscript expressions are not supported")
		return nil, false

	case *ast.Member:
		v.bag.Add(diag.KindUnsupportedExpr, n.Range(), "member access expressions are not supported")
		return nil, false

	default:
		v.bag.Add(diag.KindInternal, e.Range(), "unknown expression node %T", e)
		return nil, false
	}
}

// validateIdent resolves a bare identifier reference to a local/parameter
// variable. Forward-reference to a not-yet-declared local in the same
// block is rejected; scope.GetNoForwardRef falls through to the ordinary
// (unrestricted) chain once the name isn't bound locally, so outer-scope
// locals are never subject to the check. Parameters share the function
// body's scope and are checked too, but always pass because they are
// declared before the body (spec §4.5 step 1).
func (v *Validator) validateIdent(n *ast.Ident) (entity.Type, bool) {
	pv, ok := scope.GetNoForwardRef[*entity.PlainVar](n.HomeScope, n.Name, n.Range().Head)
	if !ok {
		v.bag.Add(diag.KindUnsupportedExpr, n.Range(), "undefined variable %q", n.Name)
		return nil, false
	}
	n.Resolved = pv
	t := pv.VarType()
	if t == nil {
		// The variable's type name did not resolve; that was already reported.
		return nil, false
	}
	n.SetResolvedType(t)
	return t, true
}

func (v *Validator) validateAssign(n *ast.Assign) (entity.Type, bool) {
	targetIdent, ok := n.Target.(*ast.Ident)
	if !ok {
		v.bag.Add(diag.KindUnsupportedExpr, n.Target.Range(), "assignment target must be a variable")
		return nil, false
	}
	targetType, ok := v.validateIdent(targetIdent)
	if !ok {
		return nil, false
	}
	valueType, ok := v.validateExpr(n.Value)
	if !ok {
		return nil, false
	}
	if !targetType.Accepts(valueType) {
		v.bag.Add(diag.KindVarTypeMismatch, n.Value.Range(),
			"cannot assign value of type %q to %q of type %q",
			valueType.TypeName(), targetIdent.Name, targetType.TypeName())
		return nil, false
	}
	if !targetType.Equals(valueType) {
		n.Cast = targetType
	}
	n.SetResolvedType(targetType)
	return targetType, true
}

func (v *Validator) validateUnary(n *ast.Unary) (entity.Type, bool) {
	operandType, ok := v.validateExpr(n.Operand)
	if !ok {
		return nil, false
	}
	fn, ok := v.resolveOperator(n.HomeScope, n.Op, n.Range(), []entity.Type{operandType})
	if !ok {
		return nil, false
	}
	n.ResolvedOp = fn
	t := fn.ReturnType()
	n.SetResolvedType(t)
	return t, true
}

func (v *Validator) validateBinary(n *ast.Binary) (entity.Type, bool) {
	leftType, ok := v.validateExpr(n.Left)
	if !ok {
		return nil, false
	}
	rightType, ok := v.validateExpr(n.Right)
	if !ok {
		return nil, false
	}
	fn, ok := v.resolveOperator(n.HomeScope, n.Op, n.Range(), []entity.Type{leftType, rightType})
	if !ok {
		return nil, false
	}
	n.ResolvedOp = fn

	if pt := fn.ParamType(0); !pt.Equals(leftType) {
		n.LeftCast = pt
	}
	if pt := fn.ParamType(1); !pt.Equals(rightType) {
		n.RightCast = pt
	}

	t := fn.ReturnType()
	n.SetResolvedType(t)
	return t, true
}

func (v *Validator) validateCall(n *ast.Call) (entity.Type, bool) {
	callee, ok := n.Callee.(*ast.Ident)
	if !ok {
		v.bag.Add(diag.KindUnsupportedExpr, n.Callee.Range(), "call target must be a plain function name")
		return nil, false
	}

	argTypes := make([]entity.Type, len(n.Args))
	ok = true
	for i, arg := range n.Args {
		t, aOK := v.validateExpr(arg)
		if !aOK {
			ok = false
			continue
		}
		argTypes[i] = t
	}
	if !ok {
		return nil, false
	}

	fn, ok := v.resolveOverload(callee.HomeScope, callee.Name, n.Range(), argTypes)
	if !ok {
		return nil, false
	}
	n.Resolved = fn
	callee.Resolved = fn
	callee.SetResolvedType(fn)

	n.ArgCasts = make([]entity.Type, len(n.Args))
	for i, argType := range argTypes {
		pt := fn.ParamType(i)
		if !pt.Equals(argType) {
			n.ArgCasts[i] = pt
		}
	}

	t := fn.ReturnType()
	if t == nil {
		// The callee's return type name did not resolve; that was already reported.
		return nil, false
	}
	n.SetResolvedType(t)
	return t, true
}

// resolveOperator looks up the overload set bound to op starting at s and
// resolves it against argTypes (spec §4.5 step 2).
func (v *Validator) resolveOperator(s *scope.Scope, op string, rng token.Range, argTypes []entity.Type) (entity.Callable, bool) {
	return v.resolveOverloadAt(s, op, argTypes, rng)
}

// resolveOverload looks up the overload set named name starting at s and
// resolves it against argTypes (spec §4.5 step 3).
func (v *Validator) resolveOverload(s *scope.Scope, name string, rng token.Range, argTypes []entity.Type) (entity.Callable, bool) {
	return v.resolveOverloadAt(s, name, argTypes, rng)
}

func (v *Validator) resolveOverloadAt(s *scope.Scope, name string, argTypes []entity.Type, rng token.Range) (entity.Callable, bool) {
	set, ok := scope.Get[*entity.OverloadSet](s, name)
	if !ok {
		v.bag.Add(diag.KindNoMatchingOverload, rng, "no function or operator named %q", name)
		return nil, false
	}

	fn, err := scope.ResolveOverload(set, argTypes)
	if err == nil {
		return fn, true
	}

	switch err {
	case scope.ErrAmbiguousOverload:
		v.bag.Add(diag.KindAmbiguousOverload, rng, "ambiguous overload for %q", name)
	default:
		if !anyArityMatches(set, len(argTypes)) {
			v.bag.Add(diag.KindCallArity, rng, "no overload of %q takes %d argument(s)", name, len(argTypes))
		} else {
			v.bag.Add(diag.KindCallTypeMismatch, rng, "no overload of %q matches the given argument types", name)
		}
	}
	return nil, false
}

func anyArityMatches(set *entity.OverloadSet, n int) bool {
	for _, fn := range set.All() {
		if fn.ParamCount() == n {
			return true
		}
	}
	return false
}
