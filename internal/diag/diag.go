// Package diag formats compiler diagnostics with source context: a
// "Error in FILE:ROW:COL" header, the offending line, and a caret pointing
// at the column. Modeled directly on the teacher's internal/errors package.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/protolang/internal/source"
	"github.com/cwbudde/protolang/internal/token"
)

// Kind is the error taxonomy from spec §7.
type Kind string

const (
	KindReadFail              Kind = "READ_FAIL"
	KindEmptyInput            Kind = "EMPTY_INPUT"
	KindAmbiguousInt          Kind = "AMBIGUOUS_INT"
	KindUnknownChar           Kind = "UNKNOWN_CHAR"
	KindUnexpectedToken       Kind = "UNEXPECTED_TOKEN"
	KindParenMismatch         Kind = "PAREN_MISMATCH"
	KindExprExpected          Kind = "EXPR_EXPECTED"
	KindSymbolRedef           Kind = "SYMBOL_REDEF"
	KindNoMatchingOverload    Kind = "NO_MATCHING_OVERLOAD"
	KindAmbiguousOverload     Kind = "AMBIGUOUS_OVERLOAD"
	KindCallArity             Kind = "CALL_ARITY"
	KindCallTypeMismatch      Kind = "CALL_TYPE_MISMATCH"
	KindReturnTypeMismatch    Kind = "RETURN_TYPE_MISMATCH"
	KindFuncAlreadyExists     Kind = "FUNC_ALREADY_EXISTS"
	KindUnsupportedCast       Kind = "UNSUPPORTED_CAST"
	KindUnsupportedExpr       Kind = "UNSUPPORTED_EXPR"
	KindVarTypeMismatch       Kind = "VAR_TYPE_MISMATCH"
	KindUnknownType           Kind = "UNKNOWN_TYPE"
	KindInternal              Kind = "INTERNAL"
)

// Diagnostic is one reported problem, with enough context to render itself
// against the originating source file.
type Diagnostic struct {
	Kind    Kind
	Message string
	Range   token.Range
	file    *source.File
}

// New builds a Diagnostic bound to file, for rendering source context.
func New(kind Kind, rng token.Range, file *source.File, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Range:   rng,
		file:    file,
	}
}

func (d *Diagnostic) Error() string {
	return d.Format()
}

// Format renders "Error in FILE:ROW:COL\n   N | <source line>\n     ^\n[KIND] message".
func (d *Diagnostic) Format() string {
	var sb strings.Builder

	pos := d.Range.Head
	if d.file != nil && d.file.Path != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", d.file.Path, pos.Row+1, pos.Column+1)
	} else {
		fmt.Fprintf(&sb, "Error at %d:%d\n", pos.Row+1, pos.Column+1)
	}

	if d.file != nil && !d.Range.IsSynthetic() {
		line := d.file.Line(pos.Row)
		lineNumStr := fmt.Sprintf("%4d | ", pos.Row+1)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+pos.Column))
		sb.WriteString("^\n")
	}

	sb.WriteString("[")
	sb.WriteString(string(d.Kind))
	sb.WriteString("] ")
	sb.WriteString(d.Message)
	return sb.String()
}

// FormatAll renders a batch of diagnostics, each preceded by "[Error i of n]"
// once there is more than one, mirroring the teacher's FormatErrors.
func FormatAll(diags []*Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "compilation failed with %d error(s):\n\n", len(diags))
	for i, d := range diags {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(diags))
		sb.WriteString(d.Format())
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// Bag accumulates diagnostics across a compiler stage (parser or
// validator), the way the teacher's parser/analyzer gather []string errors
// rather than aborting on the first one (spec §7 propagation policy).
type Bag struct {
	diags []*Diagnostic
	file  *source.File
}

// NewBag creates an empty diagnostic bag bound to file.
func NewBag(file *source.File) *Bag {
	return &Bag{file: file}
}

// Add appends a new diagnostic of kind at rng.
func (b *Bag) Add(kind Kind, rng token.Range, format string, args ...any) *Diagnostic {
	d := New(kind, rng, b.file, format, args...)
	b.diags = append(b.diags, d)
	return d
}

// HasErrors reports whether any diagnostic has been recorded.
func (b *Bag) HasErrors() bool {
	return len(b.diags) > 0
}

// All returns every recorded diagnostic, in report order.
func (b *Bag) All() []*Diagnostic {
	return b.diags
}
