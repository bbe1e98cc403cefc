// Package exprutil implements spec.md §4.1's expression utilities:
// RenameFreeVars, TryConstEval, and ReferencedNames.
package exprutil

import "github.com/cwbudde/wdlgen/internal/wdl"

// Renamer is anything that supplies a source name -> sanitized name
// mapping for RenameFreeVars. symbols.CVar satisfies this via RenameTable.
type Renamer interface {
	// Lookup returns the sanitized replacement for a free-variable FQN, and
	// whether one exists.
	Lookup(fqn string) (string, bool)
}

// MapRenamer is the simplest Renamer: a plain name -> name map.
type MapRenamer map[string]string

func (m MapRenamer) Lookup(fqn string) (string, bool) {
	v, ok := m[fqn]
	return v, ok
}

// RenameFreeVars returns a new expression equal to expr except that every
// maximal Ident/Member chain is rewritten against r by longest-matching-
// prefix (spec §4.1), mirroring CallEnv.TrailSearch (internal/symbols/
// env.go): the full dotted FQN is looked up first; if absent, one trailing
// field is stripped and retried, until a prefix hits or the chain is
// exhausted. A matched prefix is replaced by a single renamed Ident, and any
// stripped trailing fields are re-wrapped as a Member chain on top of it —
// this is the struct-navigation case (SPEC_FULL.md §4 "Struct literal WDL
// type"), where a closure key binds a struct-typed value and the reference
// navigates one or more fields deeper than the bound name.
//
// Spec §9 Open Question 1 flags that a naive textual implementation could
// mis-substitute inside string literals or when one name is a prefix of
// another. This implementation walks the actual expression tree instead of
// the serialized text, so it only ever rewrites genuine Ident/Member
// reference nodes — string Literal payloads and identifiers that merely
// share a prefix are untouched. This is the documented hardening decision
// (DESIGN.md, Open Question 1).
func RenameFreeVars(expr wdl.Expr, r Renamer) wdl.Expr {
	if expr == nil {
		return nil
	}
	if chain := wdl.Chain(expr); chain != nil {
		for n := len(chain); n >= 1; n-- {
			renamed, ok := r.Lookup(joinDots(chain[:n]))
			if !ok {
				continue
			}
			result := wdl.Expr(&wdl.Ident{NamePos: expr.Pos(), Name: renamed})
			for _, field := range chain[n:] {
				result = &wdl.Member{Base: result, Field: field}
			}
			return result
		}
		// No prefix of the chain is bound: leave it exactly as it is.
		return expr
	}

	switch e := expr.(type) {
	case *wdl.Index:
		return &wdl.Index{Base: RenameFreeVars(e.Base, r), Sub: RenameFreeVars(e.Sub, r)}
	case *wdl.Apply:
		args := make([]wdl.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = RenameFreeVars(a, r)
		}
		return &wdl.Apply{FnPos: e.FnPos, Func: e.Func, Args: args}
	case *wdl.BinaryOp:
		return &wdl.BinaryOp{Op: e.Op, Left: RenameFreeVars(e.Left, r), Right: RenameFreeVars(e.Right, r)}
	case *wdl.UnaryOp:
		return &wdl.UnaryOp{OpPos: e.OpPos, Op: e.Op, X: RenameFreeVars(e.X, r)}
	case *wdl.ArrayLit:
		elems := make([]wdl.Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = RenameFreeVars(el, r)
		}
		return &wdl.ArrayLit{LPos: e.LPos, Elems: elems}
	case *wdl.Literal:
		return e
	default:
		return expr
	}
}

func joinDots(chain []string) string {
	out := chain[0]
	for _, p := range chain[1:] {
		out += "." + p
	}
	return out
}
