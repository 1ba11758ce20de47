// Package entity defines the capability-based taxonomy of nameable things
// (spec §3.3): anything a Scope can bind a name to. Rather than the deep
// class hierarchy of original_source's entity_system.h (IEntity -> IType ->
// IFuncType -> IFunc, IEntity -> IVar), each capability is its own small
// interface and concrete types implement exactly the set they need (spec
// §9 "capability-based variants").
package entity

import (
	"github.com/cwbudde/protolang/internal/codegen/backend"
	"github.com/cwbudde/protolang/internal/token"
)

// Entity is anything nameable in a Scope.
type Entity interface {
	EntityName() string
	Range() token.Range
}

// Type supports equality, implicit-cast acceptance, and lowering to an IR
// type/cast (spec §3.3 Type capability).
type Type interface {
	Entity
	TypeName() string
	Equals(other Type) bool
	// Accepts reports whether a value of type other may be implicitly
	// passed/assigned where this Type is expected (spec §3.3/§4.4).
	Accepts(other Type) bool
	LLVMType(b backend.Backend) backend.Type
	// CastNoCheck lowers value (of type from) to this Type without
	// re-checking compatibility; the validator has already established
	// that some cast is legal (spec §4.4).
	CastNoCheck(b backend.Backend, value backend.Value, from Type) backend.Value
}

// ScalarKind partitions scalar types for the widening-acceptance rule
// (spec §3.3 invariant): dst.accepts(src) iff same kind and dst.bits >= src.bits.
type ScalarKind int

const (
	UInt ScalarKind = iota
	Int
	Float
	Double
)

func (k ScalarKind) String() string {
	switch k {
	case UInt:
		return "UInt"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Double:
		return "Double"
	default:
		return "Unknown"
	}
}

// Scalar is a primitive numeric Type (spec §4.4 table).
type Scalar interface {
	Type
	Kind() ScalarKind
	Bits() int
}

// Var is a declared variable or parameter: a typed, named storage location.
// StackAddr is populated by the code generator when the slot is allocated
// (spec §3.3 "mutable stack_addr").
type Var interface {
	Entity
	VarType() Type
	StackAddr() backend.Value
	SetStackAddr(backend.Value)
}

// FuncType is a callable signature: a return type plus ordered parameters.
type FuncType interface {
	Type
	ReturnType() Type
	ParamCount() int
	ParamType(i int) Type
	ParamName(i int) string
}

// Callable is a FuncType with a mangled name and the ability to emit a
// call to itself, given already-cast argument values (spec §3.3).
type Callable interface {
	FuncType
	MangledName() string
	SetMangledName(name string)
	EmitCall(b backend.Backend, args []backend.Value) backend.Value
}

// Base implements the Entity capability and is embedded by concrete
// entities that need nothing more elaborate.
type Base struct {
	Name_  string
	Range_ token.Range
}

func (b Base) EntityName() string  { return b.Name_ }
func (b Base) Range() token.Range  { return b.Range_ }
