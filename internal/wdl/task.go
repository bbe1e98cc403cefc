package wdl

import "github.com/cwbudde/wdlgen/internal/wdlposition"

// RuntimeAttrs are the task's "runtime { ... }" section entries the Task
// Compiler inspects (spec §4.4). Each is an expression so it can be
// constant-evaluated; nil means the attribute was not declared.
type RuntimeAttrs struct {
	Memory       Expr
	Disks        Expr
	CPU          Expr
	InstanceName Expr // platform-specific instance-type-name attribute
	Docker       Expr
}

// Task is a leaf executable declaration: a flat list of (possibly
// unassigned) declarations plus an explicit output section, mirroring the
// WDL draft-2 task grammar dxWDL targeted.
type Task struct {
	NamePos  wdlposition.Position
	Name     string
	Decls    []*Decl // non-output declarations; inputs vs. internal is derived (§4.4)
	Outputs  []*Decl // output section, each with its Attrs.Default as the output expression
	Runtime  RuntimeAttrs
	Meta     map[string]string
	Command  string // opaque command template, embedded verbatim into the fragment
}

func (t *Task) Pos() wdlposition.Position { return t.NamePos }

// IsNative reports whether the task's meta block marks it as a passthrough
// to a pre-existing platform app (spec §4.4 Kind).
func (t *Task) IsNative() (id string, ok bool) {
	if t.Meta == nil {
		return "", false
	}
	if t.Meta["type"] != "native" {
		return "", false
	}
	id, ok = t.Meta["id"]
	return id, ok && id != ""
}

// Workflow is a directed composition of declarations, calls, scatters and
// conditionals, plus an explicit output section.
type Workflow struct {
	NamePos  wdlposition.Position
	Name     string
	Children []WorkflowChild
	Outputs  []*Decl // output section; each Decl.Attrs.Default is the selection expression
	Meta     map[string]string
}

func (w *Workflow) Pos() wdlposition.Position { return w.NamePos }

// Namespace is the validated input to the lowering pass: the tasks and
// workflows of one compiled WDL document (spec §1).
type Namespace struct {
	Tasks []*Task
	// Workflows holds every workflow defined in the namespace. Primary
	// names the one submitted for execution and the only one the lowering
	// pass compiles; any other workflow in this list is not lowered.
	Workflows []*Workflow
	Primary   string
}

// PrimaryWorkflow returns the namespace's primary workflow, or nil if the
// namespace has no workflow (a library of tasks only).
func (ns *Namespace) PrimaryWorkflow() *Workflow {
	for _, w := range ns.Workflows {
		if w.Name == ns.Primary {
			return w
		}
	}
	return nil
}
