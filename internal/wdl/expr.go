// Package wdl defines the subset of WDL AST node types the lowering pass
// consumes: declarations, calls, scatter/conditional blocks, tasks,
// workflows and namespaces. The real WDL parser and type checker are
// external collaborators (spec §1); this package only has to represent
// their validated output.
package wdl

import (
	"fmt"
	"strings"

	"github.com/cwbudde/wdlgen/internal/wdlposition"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
	"github.com/cwbudde/wdlgen/internal/wdlvalue"
)

// Expr is the common interface for every expression node.
type Expr interface {
	wdlposition.Positioned
	// String renders the expression back to WDL source text, the form that
	// gets embedded into synthesized fragments. exprutil.RenameFreeVars and
	// TryConstEval walk the expression tree, not this text.
	String() string
	exprNode()
}

// Ident is a bare identifier reference, e.g. "ai" or the loop variable "k".
type Ident struct {
	NamePos wdlposition.Position
	Name    string
}

func (e *Ident) Pos() wdlposition.Position { return e.NamePos }
func (e *Ident) String() string            { return e.Name }
func (*Ident) exprNode()                   {}

// Member is a dotted member-access expression, e.g. "Add.result" or
// "A.B.C". Base is itself an Expr so chains nest left-associatively
// (((A.B).C)), matching how a recursive-descent parser would build it.
type Member struct {
	Base  Expr
	Field string
}

func (e *Member) Pos() wdlposition.Position { return e.Base.Pos() }
func (e *Member) String() string            { return e.Base.String() + "." + e.Field }
func (*Member) exprNode()                   {}

// Chain flattens a (possibly nested) Member expression into its dotted
// components, e.g. "A.B.C" -> ["A", "B", "C"]. Returns nil if base is not an
// Ident/Member chain (e.g. an index or call expression).
func Chain(e Expr) []string {
	switch v := e.(type) {
	case *Ident:
		return []string{v.Name}
	case *Member:
		base := Chain(v.Base)
		if base == nil {
			return nil
		}
		return append(append([]string{}, base...), v.Field)
	default:
		return nil
	}
}

// Literal wraps a compile-time constant value as an expression node, used
// both for literals written in source and for the result of constant
// folding.
type Literal struct {
	LitPos wdlposition.Position
	Value  wdlvalue.Value
}

func (e *Literal) Pos() wdlposition.Position { return e.LitPos }
func (e *Literal) String() string            { return e.Value.Literal() }
func (*Literal) exprNode()                   {}

// Index is a subscript expression, e.g. "nums[k]".
type Index struct {
	Base, Sub Expr
}

func (e *Index) Pos() wdlposition.Position { return e.Base.Pos() }
func (e *Index) String() string            { return e.Base.String() + "[" + e.Sub.String() + "]" }
func (*Index) exprNode()                   {}

// Apply is a function call expression, e.g. "length(nums)" or "range(n)".
// It covers both WDL standard-library functions and the platform-specific
// instance-name runtime attribute expressions.
type Apply struct {
	FnPos wdlposition.Position
	Func  string
	Args  []Expr
}

func (e *Apply) Pos() wdlposition.Position { return e.FnPos }
func (e *Apply) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Func + "(" + strings.Join(parts, ", ") + ")"
}
func (*Apply) exprNode() {}

// BinaryOp is a binary infix expression, e.g. "Add.result + 10" or
// "length(numbers) > 0".
type BinaryOp struct {
	Op       string
	Left, Right Expr
}

func (e *BinaryOp) Pos() wdlposition.Position { return e.Left.Pos() }
func (e *BinaryOp) String() string {
	return fmt.Sprintf("%s %s %s", e.Left.String(), e.Op, e.Right.String())
}
func (*BinaryOp) exprNode() {}

// UnaryOp is a prefix unary expression, e.g. "!done" or "-x".
type UnaryOp struct {
	OpPos wdlposition.Position
	Op    string
	X     Expr
}

func (e *UnaryOp) Pos() wdlposition.Position { return e.OpPos }
func (e *UnaryOp) String() string            { return e.Op + e.X.String() }
func (*UnaryOp) exprNode()                   {}

// ArrayLit is an array literal, e.g. "[1, 2, 3]".
type ArrayLit struct {
	LPos  wdlposition.Position
	Elems []Expr
}

func (e *ArrayLit) Pos() wdlposition.Position { return e.LPos }
func (e *ArrayLit) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (*ArrayLit) exprNode() {}

// WdlType pairs a resolved wdltypes.Type with its own position for
// declarations (kept separate from Expr since a type annotation is not
// itself evaluated).
type WdlType = wdltypes.Type
