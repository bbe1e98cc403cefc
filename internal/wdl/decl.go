package wdl

import "github.com/cwbudde/wdlgen/internal/wdlposition"

// Attrs carries declaration attributes beyond name/type: an optional
// default literal expression (spec §3 CVar.attrs).
type Attrs struct {
	// Default is the declaration's initializing/default expression, or nil
	// if the declaration is unassigned.
	Default Expr
}

// Decl is a single variable declaration, the unit the Block Partitioner and
// Closure Analyzer operate over. It is used for task parameters, workflow
// body declarations, and output-section entries.
type Decl struct {
	DeclPos  wdlposition.Position
	Name     string
	Type     WdlType
	Optional bool // true if Type is (or was declared as) an Optional[T]
	Attrs    Attrs
	// Synthetic marks a declaration the front end generated (not written by
	// the WDL author) whose only references lie within its own enclosing
	// block. Scatter/conditional lowering uses this to decide whether the
	// declaration's lifted output is exported from the block's applet
	// interface (spec §4.7 point 5, §9 Open Question 2).
	Synthetic bool
}

func (d *Decl) Pos() wdlposition.Position { return d.DeclPos }
func (*Decl) workflowChildNode()          {}

// HasExpr reports whether the declaration carries an initializing
// expression (assigned, as opposed to a bare unbound input declaration).
func (d *Decl) HasExpr() bool { return d.Attrs.Default != nil }

// WorkflowChild is implemented by every node that can appear directly in a
// workflow body: declarations, calls, scatters, and conditionals.
type WorkflowChild interface {
	wdlposition.Positioned
	workflowChildNode()
}

// CallInput is one "formalName = expr" entry in a call's input mapping.
type CallInput struct {
	Name string
	Expr Expr
}

// Call is a single call to a task (spec §4.5). Alias is the "as X" rename,
// empty when the call uses the task's own name as its stage name.
type Call struct {
	CallPos wdlposition.Position
	Task    string
	Alias   string
	Inputs  []CallInput
}

func (c *Call) Pos() wdlposition.Position { return c.CallPos }
func (*Call) workflowChildNode()          {}

// StageName returns the call's unique stage name: the alias if present,
// otherwise the task name (spec §4.5).
func (c *Call) StageName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Task
}

// Scatter is a "scatter (v in collection) { ... }" block. Precondition
// (spec §4.7): Collection must be a bare variable reference; the front end
// is required to have lifted complex collection expressions out.
type Scatter struct {
	ScatterPos wdlposition.Position
	Var        string
	Collection Expr
	Body       []WorkflowChild
}

func (s *Scatter) Pos() wdlposition.Position { return s.ScatterPos }
func (*Scatter) workflowChildNode()          {}

// Conditional is an "if (cond) { ... }" block.
type Conditional struct {
	IfPos     wdlposition.Position
	Condition Expr
	Body      []WorkflowChild
}

func (c *Conditional) Pos() wdlposition.Position { return c.IfPos }
func (*Conditional) workflowChildNode()          {}
