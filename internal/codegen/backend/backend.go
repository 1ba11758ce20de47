// Package backend declares the IR-builder interface the semantic core code
// generator (C8) programs against, without depending on any particular SSA
// implementation. spec §6 calls this the "Backend IR interface" and treats
// the SSA backend itself as external; internal/codegen/llvmbackend is the
// concrete implementation over tinygo.org/x/go-llvm.
//
// Handles are opaque to callers above this package, the same way
// original_source/src/code_generator.h only ever hands out llvm::Value*/
// llvm::Type* without protolang's own entity/ast layers needing to link
// against LLVM headers directly.
package backend

// Value is an opaque SSA value handle (an LLVM register, constant, or
// pointer, depending on backend).
type Value any

// Type is an opaque IR type handle.
type Type any

// Function is an opaque IR function handle.
type Function any

// BasicBlock is an opaque IR basic-block handle.
type BasicBlock any

// Backend is the set of IR-construction operations the core code generator
// (internal/codegen) requires of its SSA collaborator. Every method name
// below has a direct counterpart in original_source's use of
// llvm::IRBuilder<>/llvm::Module/llvm::Function (see codegen.cpp,
// builtin.cpp).
type Backend interface {
	// Module setup.
	SetModuleName(name string)
	SetTargetToHost()

	// Scalar IR types.
	IntType(bits int) Type
	FloatType() Type
	DoubleType() Type
	VoidType() Type
	FuncType(ret Type, params []Type) Type

	// Constants.
	ConstInt(t Type, v int64) Value
	ConstFloat(t Type, v float64) Value

	// Functions.
	DeclareFunction(mangledName string, fnType Type) Function
	LookupFunction(mangledName string) (Function, bool)
	AppendBasicBlock(fn Function, name string) BasicBlock
	SetInsertPoint(bb BasicBlock)
	EntryBlock(fn Function) BasicBlock
	Param(fn Function, index int) Value
	VerifyFunction(fn Function) error

	// Memory.
	CreateAlloca(bb BasicBlock, t Type, name string) Value
	CreateLoad(t Type, addr Value, name string) Value
	CreateStore(val, addr Value)

	// Casts.
	CreateSExt(v Value, to Type, name string) Value
	CreateZExt(v Value, to Type, name string) Value
	CreateTrunc(v Value, to Type, name string) Value
	CreateFPExt(v Value, to Type, name string) Value
	CreateFPTrunc(v Value, to Type, name string) Value
	CreateBitCast(v Value, to Type, name string) Value
	CreatePointerCast(v Value, to Type, name string) Value

	// Arithmetic.
	CreateAdd(l, r Value, name string) Value
	CreateSub(l, r Value, name string) Value
	CreateMul(l, r Value, name string) Value
	CreateNSWAdd(l, r Value, name string) Value
	CreateNSWSub(l, r Value, name string) Value
	CreateNSWMul(l, r Value, name string) Value
	CreateUDiv(l, r Value, name string) Value
	CreateSDiv(l, r Value, name string) Value
	CreateFAdd(l, r Value, name string) Value
	CreateFSub(l, r Value, name string) Value
	CreateFMul(l, r Value, name string) Value
	CreateFDiv(l, r Value, name string) Value

	// Calls / control flow.
	CreateCall(fn Function, args []Value, name string) Value
	CreateRet(v Value)
	CreateRetVoid()

	// Finalization.
	EmitObject(path string) error
	String() string // textual IR dump, for debugging/snapshot tests
}
