package scope_test

import (
	"errors"
	"testing"

	"github.com/cwbudde/protolang/internal/codegen/backend"
	"github.com/cwbudde/protolang/internal/entity"
	"github.com/cwbudde/protolang/internal/scope"
	"github.com/cwbudde/protolang/internal/token"
)

// fakeScalar is a minimal entity.Scalar for exercising Accepts/Equals
// without pulling in the builtins package.
type fakeScalar struct {
	entity.Base
	kind entity.ScalarKind
	bits int
}

func (s *fakeScalar) TypeName() string        { return s.Name_ }
func (s *fakeScalar) Kind() entity.ScalarKind  { return s.kind }
func (s *fakeScalar) Bits() int                { return s.bits }
func (s *fakeScalar) Equals(o entity.Type) bool {
	other, ok := o.(*fakeScalar)
	return ok && other.kind == s.kind && other.bits == s.bits
}
func (s *fakeScalar) Accepts(o entity.Type) bool {
	other, ok := o.(*fakeScalar)
	return ok && other.kind == s.kind && other.bits <= s.bits
}
func (s *fakeScalar) LLVMType(b backend.Backend) backend.Type { return nil }
func (s *fakeScalar) CastNoCheck(b backend.Backend, value backend.Value, from entity.Type) backend.Value {
	return value
}

func rng(row, col int) token.Range {
	p := token.Pos{Row: row, Column: col}
	return token.Range{Head: p, Tail: p}
}

// fakeFunc is a minimal entity.Callable.
type fakeFunc struct {
	entity.Base
	mangled string
	ret     entity.Type
	params  []entity.Type
}

func (f *fakeFunc) TypeName() string        { return f.Name_ }
func (f *fakeFunc) Equals(o entity.Type) bool { return f == o }
func (f *fakeFunc) Accepts(entity.Type) bool  { return false }
func (f *fakeFunc) ReturnType() entity.Type   { return f.ret }
func (f *fakeFunc) ParamCount() int           { return len(f.params) }
func (f *fakeFunc) ParamType(i int) entity.Type { return f.params[i] }
func (f *fakeFunc) ParamName(i int) string      { return "" }
func (f *fakeFunc) MangledName() string         { return f.mangled }
func (f *fakeFunc) SetMangledName(n string)     { f.mangled = n }
func (f *fakeFunc) LLVMType(b backend.Backend) backend.Type { return nil }
func (f *fakeFunc) CastNoCheck(b backend.Backend, value backend.Value, from entity.Type) backend.Value {
	return value
}
func (f *fakeFunc) EmitCall(b backend.Backend, args []backend.Value) backend.Value { return nil }

func i32() *fakeScalar { return &fakeScalar{Base: entity.Base{Name_: "int"}, kind: entity.Int, bits: 32} }
func i8() *fakeScalar  { return &fakeScalar{Base: entity.Base{Name_: "sbyte"}, kind: entity.Int, bits: 8} }
func f64() *fakeScalar { return &fakeScalar{Base: entity.Base{Name_: "double"}, kind: entity.Double, bits: 64} }

func newFunc(name string, params ...entity.Type) *fakeFunc {
	return &fakeFunc{Base: entity.Base{Name_: name, Range_: rng(0, 0)}, ret: i32(), params: params}
}

func TestAddMergesOverloadsAndAssignsIndices(t *testing.T) {
	root := scope.NewRoot()

	fnA := newFunc("add", i32())
	fnB := newFunc("add", f64())

	if err := root.Add("add", fnA); err != nil {
		t.Fatalf("unexpected error adding first overload: %v", err)
	}
	if err := root.Add("add", fnB); err != nil {
		t.Fatalf("unexpected error adding second overload: %v", err)
	}

	if fnA.MangledName() != "add#0" {
		t.Errorf("fnA mangled name = %q, want add#0", fnA.MangledName())
	}
	if fnB.MangledName() != "add#1" {
		t.Errorf("fnB mangled name = %q, want add#1", fnB.MangledName())
	}
}

func TestAddRejectsNonCallableRedefinition(t *testing.T) {
	root := scope.NewRoot()
	v1 := &fakeScalar{Base: entity.Base{Name_: "x"}, kind: entity.Int, bits: 32}
	v2 := &fakeScalar{Base: entity.Base{Name_: "x"}, kind: entity.Int, bits: 32}

	if err := root.Add("x", v1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := root.Add("x", v2)
	var redef *scope.RedefError
	if !errors.As(err, &redef) {
		t.Fatalf("expected RedefError, got %v", err)
	}
}

func TestNestedScopeInheritsOverloadNumbering(t *testing.T) {
	root := scope.NewRoot()
	outer := newFunc("f", i32())
	if err := root.Add("f", outer); err != nil {
		t.Fatal(err)
	}

	child := root.NewChild("inner")
	inner := newFunc("f", f64())
	if err := child.Add("f", inner); err != nil {
		t.Fatal(err)
	}

	if inner.MangledName() != "inner::f#1" {
		t.Errorf("inner mangled name = %q, want inner::f#1", inner.MangledName())
	}
}

func TestGetWalksParentChain(t *testing.T) {
	root := scope.NewRoot()
	v := &fakeScalar{Base: entity.Base{Name_: "g"}, kind: entity.Int, bits: 32}
	if err := root.Add("g", v); err != nil {
		t.Fatal(err)
	}

	child := root.NewChild("")
	got, ok := scope.Get[entity.Type](child, "g")
	if !ok || got != v {
		t.Fatalf("Get did not find outer binding: got=%v ok=%v", got, ok)
	}

	_, ok = scope.Get[entity.Type](child, "missing")
	if ok {
		t.Fatal("expected Get to fail for unknown name")
	}
}

// fakeVar is a minimal entity.Var, used to shadow a keyword type name with
// an ordinary (non-Type) symbol in TestGetFallsThroughToKeywordOnKindMismatch.
type fakeVar struct {
	entity.Base
	typ  entity.Type
	addr backend.Value
}

func (v *fakeVar) VarType() entity.Type         { return v.typ }
func (v *fakeVar) StackAddr() backend.Value     { return v.addr }
func (v *fakeVar) SetStackAddr(a backend.Value) { v.addr = a }

func TestGetFallsThroughToKeywordOnKindMismatch(t *testing.T) {
	root := scope.NewRoot()
	intType := i32()
	root.AddKeyword("int", intType)

	// "var int: int = 0;" binds the ordinary symbol "int" to a Var, not a
	// Type. Looking up the type name "int" must still resolve the keyword.
	v := &fakeVar{Base: entity.Base{Name_: "int"}, typ: intType}
	if err := root.Add("int", v); err != nil {
		t.Fatal(err)
	}

	gotType, ok := scope.Get[entity.Type](root, "int")
	if !ok || gotType != entity.Type(intType) {
		t.Fatalf("expected Get[entity.Type] to resolve the keyword despite the shadowing var, got=%v ok=%v", gotType, ok)
	}

	gotVar, ok := scope.Get[entity.Var](root, "int")
	if !ok || gotVar != v {
		t.Fatalf("expected Get[entity.Var] to still resolve the ordinary symbol, got=%v ok=%v", gotVar, ok)
	}
}

func TestGetNoForwardRefRejectsLaterDeclaration(t *testing.T) {
	root := scope.NewRoot()
	local := &fakeScalar{Base: entity.Base{Name_: "x", Range_: rng(5, 0)}, kind: entity.Int, bits: 32}
	if err := root.Add("x", local); err != nil {
		t.Fatal(err)
	}

	if _, ok := scope.GetNoForwardRef[entity.Type](root, "x", token.Pos{Row: 2, Column: 0}); ok {
		t.Fatal("expected forward reference to be rejected")
	}
	if _, ok := scope.GetNoForwardRef[entity.Type](root, "x", token.Pos{Row: 9, Column: 0}); !ok {
		t.Fatal("expected later reference to succeed")
	}
}

func TestResolveOverloadSingleLooseMatch(t *testing.T) {
	root := scope.NewRoot()
	fn := newFunc("f", i32())
	if err := root.Add("f", fn); err != nil {
		t.Fatal(err)
	}
	set, _ := scope.Get[*entity.OverloadSet](root, "f")

	got, err := scope.ResolveOverload(set, []entity.Type{i8()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fn {
		t.Fatalf("resolved wrong overload")
	}
}

func TestResolveOverloadPrefersStrictMatch(t *testing.T) {
	root := scope.NewRoot()
	narrow := newFunc("f", i8())
	wide := newFunc("f", i32())
	if err := root.Add("f", narrow); err != nil {
		t.Fatal(err)
	}
	if err := root.Add("f", wide); err != nil {
		t.Fatal(err)
	}
	set, _ := scope.Get[*entity.OverloadSet](root, "f")

	got, err := scope.ResolveOverload(set, []entity.Type{i32()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != wide {
		t.Fatalf("expected strict match (wide), got %v", got.MangledName())
	}
}

func TestResolveOverloadNoMatch(t *testing.T) {
	root := scope.NewRoot()
	fn := newFunc("f", f64())
	if err := root.Add("f", fn); err != nil {
		t.Fatal(err)
	}
	set, _ := scope.Get[*entity.OverloadSet](root, "f")

	_, err := scope.ResolveOverload(set, []entity.Type{i32()})
	if !errors.Is(err, scope.ErrNoMatchingOverload) {
		t.Fatalf("expected ErrNoMatchingOverload, got %v", err)
	}
}

func TestResolveOverloadAmbiguous(t *testing.T) {
	root := scope.NewRoot()
	a := newFunc("f", i32())
	b := newFunc("f", i32())
	if err := root.Add("f", a); err != nil {
		t.Fatal(err)
	}
	if err := root.Add("f", b); err != nil {
		t.Fatal(err)
	}
	set, _ := scope.Get[*entity.OverloadSet](root, "f")

	_, err := scope.ResolveOverload(set, []entity.Type{i32()})
	if !errors.Is(err, scope.ErrAmbiguousOverload) {
		t.Fatalf("expected ErrAmbiguousOverload, got %v", err)
	}
}
