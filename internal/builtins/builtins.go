// Package builtins installs protolang's primitive scalar types and their
// arithmetic operator overloads into the root scope.
//
// Grounded 1:1 on original_source/src/builtin.cpp: `IScalarType`'s
// can_accept/equal widening rule, `BuiltInIntType<bits, is_signed>`'s
// get_type_name mapping, `BuiltInArithmetic<ArithmaticType>`'s per-kind
// gen_call dispatch (including the UInt/Int split that keeps the NSW
// no-signed-wrap flag only on signed ops — DESIGN.md Open Question §9.2),
// and `scalar_cast`'s lowering table. Unlike the original, which only ever
// instantiated int32/int64/float/double, this installs the full scalar
// table of spec §4.4 (sbyte/short/int/long/byte/ushort/uint/ulong too).
package builtins

import (
	"fmt"

	"github.com/cwbudde/protolang/internal/codegen/backend"
	"github.com/cwbudde/protolang/internal/entity"
	"github.com/cwbudde/protolang/internal/scope"
)

// ScalarType is the concrete entity.Scalar for every primitive numeric
// type; a single record parameterized by kind+bits plays the role of
// original_source's BuiltInIntType<bits,is_signed>/BuiltInFloatType/
// BuiltInDoubleType template family (spec §9 capability-based variants,
// not a class per instantiation).
type ScalarType struct {
	entity.Base
	kind entity.ScalarKind
	bits int
}

func (t *ScalarType) TypeName() string       { return t.Name_ }
func (t *ScalarType) Kind() entity.ScalarKind { return t.kind }
func (t *ScalarType) Bits() int               { return t.bits }

// Equals requires identical kind and bit width.
func (t *ScalarType) Equals(other entity.Type) bool {
	o, ok := other.(*ScalarType)
	return ok && o.kind == t.kind && o.bits == t.bits
}

// Accepts implements the widening-only rule: same kind, and at least as
// wide as the source (spec §4.4).
func (t *ScalarType) Accepts(other entity.Type) bool {
	o, ok := other.(*ScalarType)
	return ok && o.kind == t.kind && t.bits >= o.bits
}

func (t *ScalarType) LLVMType(b backend.Backend) backend.Type {
	switch t.kind {
	case entity.Float:
		return b.FloatType()
	case entity.Double:
		return b.DoubleType()
	default:
		return b.IntType(t.bits)
	}
}

// CastNoCheck lowers value (of type from) to t without re-checking
// compatibility — the validator has already established some cast is
// legal. Mirrors original_source's scalar_cast, except that widening to
// an unsigned integer zero-extends (DESIGN.md Open Question 1).
func (t *ScalarType) CastNoCheck(b backend.Backend, value backend.Value, from entity.Type) backend.Value {
	src, ok := from.(*ScalarType)
	if !ok {
		return value
	}

	switch {
	case src.kind == entity.Double && t.kind == entity.Float:
		return b.CreateFPTrunc(value, t.LLVMType(b), "fptrunc")
	case src.kind == entity.Float && t.kind == entity.Double:
		return b.CreateFPExt(value, t.LLVMType(b), "fpext")
	case isIntKind(src.kind) && isIntKind(t.kind):
		switch {
		case src.bits < t.bits:
			if t.kind == entity.UInt {
				return b.CreateZExt(value, t.LLVMType(b), "zext")
			}
			return b.CreateSExt(value, t.LLVMType(b), "sext")
		case src.bits > t.bits:
			return b.CreateTrunc(value, t.LLVMType(b), "trunc")
		default:
			return b.CreateBitCast(value, t.LLVMType(b), "bitcast")
		}
	default:
		return b.CreatePointerCast(value, t.LLVMType(b), "ptrcast")
	}
}

func isIntKind(k entity.ScalarKind) bool { return k == entity.Int || k == entity.UInt }

// VoidType is the unique sentinel return type for functions with no
// result (original_source BuiltInVoidType).
type VoidType struct {
	entity.Base
}

func (t *VoidType) TypeName() string { return "void" }
func (t *VoidType) Equals(other entity.Type) bool {
	_, ok := other.(*VoidType)
	return ok
}
func (t *VoidType) Accepts(other entity.Type) bool { return t.Equals(other) }
func (t *VoidType) LLVMType(b backend.Backend) backend.Type { return b.VoidType() }
func (t *VoidType) CastNoCheck(b backend.Backend, value backend.Value, from entity.Type) backend.Value {
	return nil
}

// arithOp is a built-in binary arithmetic operator over one ScalarType
// (original_source BuiltInArithmetic<ArithmaticType>).
type arithOp struct {
	entity.Base
	op      string
	scalar  *ScalarType
	mangled string
}

func (a *arithOp) TypeName() string { return a.op + a.scalar.TypeName() }
func (a *arithOp) Equals(other entity.Type) bool { return a == other }
func (a *arithOp) Accepts(entity.Type) bool       { return false }
func (a *arithOp) LLVMType(b backend.Backend) backend.Type {
	return b.FuncType(a.scalar.LLVMType(b), []backend.Type{a.scalar.LLVMType(b), a.scalar.LLVMType(b)})
}
func (a *arithOp) CastNoCheck(b backend.Backend, value backend.Value, from entity.Type) backend.Value {
	return value
}
func (a *arithOp) ReturnType() entity.Type { return a.scalar }
func (a *arithOp) ParamCount() int         { return 2 }
func (a *arithOp) ParamType(i int) entity.Type { return a.scalar }
func (a *arithOp) ParamName(i int) string {
	if i == 0 {
		return "lhs"
	}
	return "rhs"
}
func (a *arithOp) MangledName() string     { return a.mangled }
func (a *arithOp) SetMangledName(n string) { a.mangled = n }

// EmitCall dispatches to the IR op matching a.op and the scalar's kind,
// following original_source's BuiltInArithmetic::gen_call switch:
// unsigned uses plain wrapping Add/Sub/Mul and UDiv, signed uses NSWAdd/
// NSWSub/NSWMul/SDiv, float/double use the F* family with no overflow flag.
func (a *arithOp) EmitCall(b backend.Backend, args []backend.Value) backend.Value {
	l, r := args[0], args[1]
	name := a.op + "tmp"

	switch a.scalar.kind {
	case entity.UInt:
		switch a.op {
		case "+":
			return b.CreateAdd(l, r, name)
		case "-":
			return b.CreateSub(l, r, name)
		case "*":
			return b.CreateMul(l, r, name)
		case "/":
			return b.CreateUDiv(l, r, name)
		}
	case entity.Int:
		switch a.op {
		case "+":
			return b.CreateNSWAdd(l, r, name)
		case "-":
			return b.CreateNSWSub(l, r, name)
		case "*":
			return b.CreateNSWMul(l, r, name)
		case "/":
			return b.CreateSDiv(l, r, name)
		}
	case entity.Float, entity.Double:
		switch a.op {
		case "+":
			return b.CreateFAdd(l, r, name)
		case "-":
			return b.CreateFSub(l, r, name)
		case "*":
			return b.CreateFMul(l, r, name)
		case "/":
			return b.CreateFDiv(l, r, name)
		}
	}
	panic(fmt.Sprintf("builtins: unhandled operator %q for scalar kind %v", a.op, a.scalar.kind))
}

// Install registers every primitive type and its arithmetic operators
// into root's keyword table and overload sets (original_source
// add_builtins/add_scalar_and_op).
func Install(root *scope.Scope) {
	scalars := []*ScalarType{
		{Base: entity.Base{Name_: "sbyte"}, kind: entity.Int, bits: 8},
		{Base: entity.Base{Name_: "short"}, kind: entity.Int, bits: 16},
		{Base: entity.Base{Name_: "int"}, kind: entity.Int, bits: 32},
		{Base: entity.Base{Name_: "long"}, kind: entity.Int, bits: 64},
		{Base: entity.Base{Name_: "byte"}, kind: entity.UInt, bits: 8},
		{Base: entity.Base{Name_: "ushort"}, kind: entity.UInt, bits: 16},
		{Base: entity.Base{Name_: "uint"}, kind: entity.UInt, bits: 32},
		{Base: entity.Base{Name_: "ulong"}, kind: entity.UInt, bits: 64},
		{Base: entity.Base{Name_: "float"}, kind: entity.Float, bits: 32},
		{Base: entity.Base{Name_: "double"}, kind: entity.Double, bits: 64},
	}

	root.AddKeyword("void", &VoidType{Base: entity.Base{Name_: "void"}})

	for _, sc := range scalars {
		root.AddKeyword(sc.Name_, sc)
		addOps(root, sc)
	}
}

func addOps(root *scope.Scope, sc *ScalarType) {
	for _, op := range []string{"+", "-", "*", "/"} {
		fn := &arithOp{Base: entity.Base{Name_: op}, op: op, scalar: sc}
		if err := root.Add(op, fn); err != nil {
			panic(fmt.Sprintf("builtins: %v", err))
		}
	}
}

// Lookup resolves a type annotation spelling (e.g. "int", "double", "void")
// to its Type, used by the parser/validator to turn a TypeName string into
// an entity.Type.
func Lookup(root *scope.Scope, name string) (entity.Type, bool) {
	return scope.Get[entity.Type](root, name)
}
