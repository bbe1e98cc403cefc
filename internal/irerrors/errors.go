// Package irerrors implements the error taxonomy of spec.md §7: the
// abstract error kinds raised by the lowering pass, each carrying a source
// position when one is available.
//
// Grounded on internal/errors/errors.go (position-carrying CompilerError
// with source-context formatting) and internal/semantic/errors.go
// (AnalysisError aggregating multiple errors behind a SemanticErrorType
// enum).
package irerrors

import (
	"fmt"

	"github.com/cwbudde/wdlgen/internal/wdlposition"
)

// Kind enumerates the abstract error kinds of spec.md §7.
type Kind string

const (
	KindUndefinedSymbol              Kind = "undefined_symbol"
	KindIllegalCallName              Kind = "illegal_call_name"
	KindUnsupportedConstruct         Kind = "unsupported_construct"
	KindMissingRequiredInput         Kind = "missing_required_input"
	KindWorkflowInputDefaultNotConst Kind = "workflow_input_default_not_constant"
	KindIllegalFragment              Kind = "illegal_generated_fragment"
	KindUnresolvedCallTarget         Kind = "unresolved_task_call_target"
)

// CompileError is a single fatal compilation error (spec §7: "Errors are
// raised eagerly at the site of detection and carry an AST position
// whenever possible. No partial Namespace is ever returned.").
type CompileError struct {
	Kind      Kind
	Message   string
	Pos       wdlposition.Position
	Offending string // the identifier/fragment/construct that triggered the error
}

func (e *CompileError) Error() string {
	if e.Offending != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", e.Pos, e.Kind, e.Message, e.Offending)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

// New constructs a CompileError.
func New(kind Kind, pos wdlposition.Position, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// WithOffending attaches the offending construct's text for debugging and
// returns the same error (spec §7: "Illegal generated fragment ... the
// offending fragment is surfaced for debugging").
func (e *CompileError) WithOffending(text string) *CompileError {
	e.Offending = text
	return e
}

// Diagnostics accumulates non-fatal warnings raised during compilation: the
// single recoverable kind in spec §7 is a missing required call input in an
// unlocked workflow, which is replaced with SArg.Empty rather than aborting
// the pass.
type Diagnostics struct {
	Warnings []string
}

// Warnf records a formatted warning.
func (d *Diagnostics) Warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// HasWarnings reports whether any warnings were recorded.
func (d *Diagnostics) HasWarnings() bool { return len(d.Warnings) > 0 }
