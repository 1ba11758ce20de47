package validator_test

import (
	"testing"

	"github.com/cwbudde/protolang/internal/ast"
	"github.com/cwbudde/protolang/internal/builtins"
	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/lexer"
	"github.com/cwbudde/protolang/internal/parser"
	"github.com/cwbudde/protolang/internal/scope"
	"github.com/cwbudde/protolang/internal/validator"
)

// run lexes, parses, and validates src into one shared diagnostic bag and
// reports whether the whole pipeline (parse + validate) produced zero
// diagnostics. Tests aiming at parse-time diagnostics (e.g. redefinition,
// which the parser itself reports while registering declarations) inspect
// the returned bag directly rather than relying on ok.
func run(t *testing.T, src string) (bool, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(nil)
	toks := lexer.New(src, bag).Tokenize()
	root := scope.NewRoot()
	builtins.Install(root)
	p := parser.New(toks, bag, root)
	prog := p.Parse()
	valOK := validator.New(bag).Validate(prog)
	return valOK && !bag.HasErrors(), bag
}

func hasKind(bag *diag.Bag, kind diag.Kind) bool {
	for _, d := range bag.All() {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Boundary scenario 1: integer literal in int context.
func TestIntLiteralInIntContextAccepted(t *testing.T) {
	ok, bag := run(t, "var a: int = 2;")
	if !ok {
		t.Fatalf("expected success, got: %s", diag.FormatAll(bag.All()))
	}
}

// Boundary scenario 2: overload by signature.
func TestOverloadResolutionBySignature(t *testing.T) {
	ok, bag := run(t, `
func add(x: int, y: int) -> int { return x + y; }
func add(x: double, y: double) -> double { return x + y; }
func useInts() -> int { return add(1, 2); }
func useDoubles() -> double { return add(1.0, 2.0); }
`)
	if !ok {
		t.Fatalf("expected success, got: %s", diag.FormatAll(bag.All()))
	}
}

// Boundary scenario 3: widening ambiguity.
func TestWideningAcceptsLooseMatch(t *testing.T) {
	ok, bag := run(t, `
func f(x: long) -> int { return 0; }
func useF() -> int { return f(1); }
`)
	if !ok {
		t.Fatalf("expected success (loose match via widening), got: %s", diag.FormatAll(bag.All()))
	}
}

func TestWideningPrefersStrictOverLoose(t *testing.T) {
	ok, bag := run(t, `
func f(x: int) -> int { return 0; }
func f(x: long) -> int { return 0; }
func useF() -> int { return f(1); }
`)
	if !ok {
		t.Fatalf("expected success (strict match should win), got: %s", diag.FormatAll(bag.All()))
	}
}

// Boundary scenario 4: type mismatch return.
func TestReturnTypeMismatchReported(t *testing.T) {
	ok, bag := run(t, "func g() -> int { return 1.0; }")
	if ok {
		t.Fatal("expected validation failure for return type mismatch")
	}
	if !hasKind(bag, diag.KindReturnTypeMismatch) {
		t.Errorf("expected RETURN_TYPE_MISMATCH, got: %s", diag.FormatAll(bag.All()))
	}
}

// Boundary scenario 5: forward local reference.
func TestForwardLocalReferenceRejected(t *testing.T) {
	ok, bag := run(t, `
func f() -> int {
  var a: int = b;
  var b: int = 1;
  return a;
}
`)
	if ok {
		t.Fatal("expected validation failure for forward reference to a local")
	}
	if !hasKind(bag, diag.KindUnsupportedExpr) {
		t.Errorf("expected an identifier-resolution error, got: %s", diag.FormatAll(bag.All()))
	}
}

func TestForwardReferenceToLaterFunctionAllowed(t *testing.T) {
	ok, bag := run(t, `
func caller() -> int { return callee(); }
func callee() -> int { return 1; }
`)
	if !ok {
		t.Fatalf("expected forward reference to a later function to be allowed, got: %s", diag.FormatAll(bag.All()))
	}
}

// Boundary scenario 6: redefinition.
func TestDuplicateVarInSameBlockIsRedef(t *testing.T) {
	_, bag := run(t, `
func f() -> int {
  var a: int = 1;
  var a: int = 2;
  return a;
}
`)
	if !hasKind(bag, diag.KindSymbolRedef) {
		t.Errorf("expected SYMBOL_REDEF, got: %s", diag.FormatAll(bag.All()))
	}
}

func TestIdenticalSignatureFuncsAreRedef(t *testing.T) {
	_, bag := run(t, `
func h(x: int) -> int { return x; }
func h(x: int) -> int { return x; }
`)
	if !hasKind(bag, diag.KindSymbolRedef) {
		t.Errorf("expected SYMBOL_REDEF for identical-signature overload, got: %s", diag.FormatAll(bag.All()))
	}
}

func TestDifferentSignatureFuncsAreNotRedef(t *testing.T) {
	ok, bag := run(t, `
func h(x: int) -> int { return x; }
func h(x: double) -> double { return x; }
`)
	if !ok {
		t.Fatalf("expected overload of size 2 to be accepted, got: %s", diag.FormatAll(bag.All()))
	}
}

func TestVarDeclInitializerTypeMismatch(t *testing.T) {
	ok, bag := run(t, "var a: int = 1.0;")
	if ok {
		t.Fatal("expected failure assigning a double literal to an int variable")
	}
	if !hasKind(bag, diag.KindVarTypeMismatch) {
		t.Errorf("expected VAR_TYPE_MISMATCH, got: %s", diag.FormatAll(bag.All()))
	}
}

func TestImplicitWideningCastAnnotated(t *testing.T) {
	bag := diag.NewBag(nil)
	toks := lexer.New("var a: long = 1;", bag).Tokenize()
	root := scope.NewRoot()
	builtins.Install(root)
	p := parser.New(toks, bag, root)
	prog := p.Parse()
	ok := validator.New(bag).Validate(prog)
	if !ok {
		t.Fatalf("expected success, got: %s", diag.FormatAll(bag.All()))
	}
	vd, isVarDecl := prog.Decls[0].(*ast.VarDecl)
	if !isVarDecl {
		t.Fatalf("expected a *ast.VarDecl, got %T", prog.Decls[0])
	}
	if vd.InitCast == nil {
		t.Error("expected an implicit widening cast from int to long to be annotated")
	} else if vd.InitCast.TypeName() != "long" {
		t.Errorf("expected InitCast to target long, got %q", vd.InitCast.TypeName())
	}
}

func TestAssignmentToUndeclaredVariableFails(t *testing.T) {
	_, bag := run(t, `
func f() -> int {
  x = 1;
  return 0;
}
`)
	if !hasKind(bag, diag.KindUnsupportedExpr) {
		t.Errorf("expected an identifier-resolution error for undeclared assignment target, got: %s", diag.FormatAll(bag.All()))
	}
}

func TestCallArityMismatchReported(t *testing.T) {
	_, bag := run(t, `
func f(x: int) -> int { return x; }
func useF() -> int { return f(1, 2); }
`)
	if !hasKind(bag, diag.KindCallArity) {
		t.Errorf("expected CALL_ARITY, got: %s", diag.FormatAll(bag.All()))
	}
}

func TestUndefinedFunctionCallReportsNoMatchingOverload(t *testing.T) {
	_, bag := run(t, `
func useF() -> int { return nope(1); }
`)
	if !hasKind(bag, diag.KindNoMatchingOverload) {
		t.Errorf("expected NO_MATCHING_OVERLOAD, got: %s", diag.FormatAll(bag.All()))
	}
}
