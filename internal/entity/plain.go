package entity

import (
	"github.com/cwbudde/protolang/internal/codegen/backend"
	"github.com/cwbudde/protolang/internal/token"
)

// PlainVar is the concrete entity.Var the parser registers for a variable
// or parameter declaration (original_source's IVar, spec §3.3). Its Typ is
// nil until the validator resolves the declared type name and calls
// SetVarType; codegen later calls SetStackAddr once the slot is allocated.
type PlainVar struct {
	Base
	Typ  Type
	addr backend.Value
}

// NewPlainVar creates an unresolved variable entity for name, declared at rng.
func NewPlainVar(name string, rng token.Range) *PlainVar {
	return &PlainVar{Base: Base{Name_: name, Range_: rng}}
}

func (v *PlainVar) VarType() Type                    { return v.Typ }
func (v *PlainVar) SetVarType(t Type)                { v.Typ = t }
func (v *PlainVar) StackAddr() backend.Value         { return v.addr }
func (v *PlainVar) SetStackAddr(a backend.Value)     { v.addr = a }

// PlainFunc is the concrete entity.Callable the parser registers for a
// function declaration (original_source's IFunc). Ret/Params are nil/empty
// until the validator resolves the declared type names.
type PlainFunc struct {
	Base
	Ret      Type
	Params   []Type
	ParamNames []string
	mangled  string
	emit     func(b backend.Backend, args []backend.Value) backend.Value
}

// NewPlainFunc creates an unresolved function entity for name at rng with
// paramCount placeholder parameter slots (filled in by the validator).
func NewPlainFunc(name string, rng token.Range, paramCount int) *PlainFunc {
	return &PlainFunc{
		Base:       Base{Name_: name, Range_: rng},
		Params:     make([]Type, paramCount),
		ParamNames: make([]string, paramCount),
	}
}

func (f *PlainFunc) ReturnType() Type        { return f.Ret }
func (f *PlainFunc) SetReturnType(t Type)    { f.Ret = t }
func (f *PlainFunc) ParamCount() int         { return len(f.Params) }
func (f *PlainFunc) ParamType(i int) Type    { return f.Params[i] }
func (f *PlainFunc) SetParamType(i int, t Type) { f.Params[i] = t }
func (f *PlainFunc) ParamName(i int) string  { return f.ParamNames[i] }
func (f *PlainFunc) SetParamName(i int, n string) { f.ParamNames[i] = n }

func (f *PlainFunc) MangledName() string     { return f.mangled }
func (f *PlainFunc) SetMangledName(n string) { f.mangled = n }

func (f *PlainFunc) TypeName() string {
	return f.Name_
}

func (f *PlainFunc) Equals(other Type) bool {
	o, ok := other.(*PlainFunc)
	return ok && o == f
}

func (f *PlainFunc) Accepts(other Type) bool { return f.Equals(other) }

func (f *PlainFunc) LLVMType(b backend.Backend) backend.Type { return nil }

func (f *PlainFunc) CastNoCheck(b backend.Backend, value backend.Value, from Type) backend.Value {
	return value
}

// SetEmitter installs the codegen callback used by EmitCall. The
// validator leaves this nil; internal/codegen sets it once the function's
// backend.Function handle exists (spec §4.5/§6 wiring order: validate
// fully, then generate code).
func (f *PlainFunc) SetEmitter(fn func(b backend.Backend, args []backend.Value) backend.Value) {
	f.emit = fn
}

func (f *PlainFunc) EmitCall(b backend.Backend, args []backend.Value) backend.Value {
	if f.emit == nil {
		return nil
	}
	return f.emit(b, args)
}
