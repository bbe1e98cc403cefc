package symbols

import "github.com/cwbudde/wdlgen/internal/wdlvalue"

// SArgKind tags the variant of a stage argument (spec §3).
type SArgKind uint8

const (
	// SArgEmpty means no value is supplied; the platform must provide one
	// at runtime.
	SArgEmpty SArgKind = iota
	// SArgConstant is a compile-time constant literal.
	SArgConstant
	// SArgLink reads a named CVar from an earlier stage's outputs.
	SArgLink
	// SArgWorkflowInput is supplied as a workflow-level input.
	SArgWorkflowInput
)

// SArg is a stage argument: how one applet input is satisfied in the
// current scope (spec §3).
type SArg struct {
	kind SArgKind

	constant wdlvalue.Value

	linkStage string
	linkVar   CVar

	workflowInput CVar
}

// Empty constructs SArg.Empty.
func Empty() SArg { return SArg{kind: SArgEmpty} }

// Constant constructs SArg.Constant(literal).
func Constant(v wdlvalue.Value) SArg { return SArg{kind: SArgConstant, constant: v} }

// Link constructs SArg.Link(stageName, cVar).
func Link(stageName string, v CVar) SArg {
	return SArg{kind: SArgLink, linkStage: stageName, linkVar: v}
}

// WorkflowInput constructs SArg.WorkflowInput(cVar).
func WorkflowInput(v CVar) SArg {
	return SArg{kind: SArgWorkflowInput, workflowInput: v}
}

// Kind reports the SArg's variant.
func (a SArg) Kind() SArgKind { return a.kind }

// ConstantValue returns the constant payload; valid only when Kind() == SArgConstant.
func (a SArg) ConstantValue() wdlvalue.Value { return a.constant }

// LinkStageAndVar returns the link payload; valid only when Kind() == SArgLink.
func (a SArg) LinkStageAndVar() (string, CVar) { return a.linkStage, a.linkVar }

// WorkflowInputVar returns the workflow-input payload; valid only when
// Kind() == SArgWorkflowInput.
func (a SArg) WorkflowInputVar() CVar { return a.workflowInput }

// LinkedVar is the pair (CVar, SArg): the variable's declared shape
// together with how it is satisfied in the current scope (spec §3).
type LinkedVar struct {
	CVar CVar
	SArg SArg
}
