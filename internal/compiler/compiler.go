// Package compiler bundles the full read -> lex -> parse -> validate ->
// codegen -> emit -> link pipeline for one translation unit behind a
// single Session, the way original_source/src/compiler.cpp's Compiler
// struct does, and the way the teacher's cmd/dwscript/cmd/compile.go
// drives its own (bytecode) pipeline from one Cobra command handler.
//
// Propagation follows spec §7: a read failure or an empty token stream is
// immediately fatal; parser diagnostics accumulate (one bad declaration is
// resynchronized past, per internal/parser's sync()) but any of them
// blocks validation; validator diagnostics likewise accumulate but any of
// them blocks code generation; a code-generation error is always fatal
// and aborts the rest of the unit, since by that point the program is
// assumed semantically sound and a codegen failure means the generator
// itself hit a case it cannot lower.
package compiler

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cwbudde/protolang/internal/builtins"
	"github.com/cwbudde/protolang/internal/codegen"
	"github.com/cwbudde/protolang/internal/codegen/llvmbackend"
	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/lexer"
	"github.com/cwbudde/protolang/internal/linker"
	"github.com/cwbudde/protolang/internal/parser"
	"github.com/cwbudde/protolang/internal/scope"
	"github.com/cwbudde/protolang/internal/source"
	"github.com/cwbudde/protolang/internal/token"
	"github.com/cwbudde/protolang/internal/validator"
)

// Result is the set of artifacts a successful Compile produced.
type Result struct {
	ObjectPath string
	ExePath    string
}

// Session owns the external collaborators (the linker's C-compiler driver)
// for one or more compiles. The zero Session is ready to use.
type Session struct {
	// CCPath overrides the linker's C-compiler driver; empty uses "cc".
	CCPath string
}

// Compile reads inputPath, compiles it to an object file, and links that
// object into an executable. outputStem (no extension) defaults to
// inputPath's base name with its extension stripped (spec §6 "optional
// output stem"). It returns the produced artifact paths, whether the
// whole pipeline succeeded, and every diagnostic collected along the way.
func (s *Session) Compile(ctx context.Context, inputPath, outputStem string) (*Result, bool, *diag.Bag) {
	file, err := source.Read(inputPath)
	if err != nil {
		bag := diag.NewBag(nil)
		bag.Add(diag.KindReadFail, token.Range{}, "reading %s: %v", inputPath, err)
		return nil, false, bag
	}

	if outputStem == "" {
		base := filepath.Base(inputPath)
		outputStem = strings.TrimSuffix(base, filepath.Ext(base))
	}

	bag := diag.NewBag(file)

	toks := lexer.New(file.Text, bag).Tokenize()
	if len(toks) <= 1 { // Tokenize always terminates with a trailing EOF
		bag.Add(diag.KindEmptyInput, token.Range{}, "%s has no declarations", inputPath)
		return nil, false, bag
	}

	root := scope.NewRoot()
	builtins.Install(root)
	p := parser.New(toks, bag, root)
	prog := p.Parse()
	if bag.HasErrors() {
		return nil, false, bag
	}

	if !validator.New(bag).Validate(prog) {
		return nil, false, bag
	}

	b := llvmbackend.New()
	defer b.Dispose()

	gen := codegen.New(b, filepath.Base(inputPath), bag)
	if !gen.Generate(prog) {
		return nil, false, bag
	}

	objPath := outputStem + ".o"
	if err := gen.EmitObject(objPath); err != nil {
		bag.Add(diag.KindInternal, token.Range{}, "emitting object file: %v", err)
		return nil, false, bag
	}

	d := linker.New(s.CCPath)
	exePath, err := d.Link(ctx, []string{objPath}, outputStem)
	if err != nil {
		bag.Add(diag.KindInternal, token.Range{}, "linking: %v", err)
		return &Result{ObjectPath: objPath}, false, bag
	}

	return &Result{ObjectPath: objPath, ExePath: exePath}, true, bag
}

// FormatDiagnostics is a thin convenience wrapper so CLI commands don't
// need to import internal/diag themselves just to print a Bag's contents.
func FormatDiagnostics(bag *diag.Bag) string {
	if bag == nil {
		return ""
	}
	return diag.FormatAll(bag.All())
}
