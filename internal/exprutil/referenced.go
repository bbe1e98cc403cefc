package exprutil

import "github.com/cwbudde/wdlgen/internal/wdl"

// ReferencedNames returns the ordered tuple (memberAccessChains,
// plainIdentifiers) of free names in expr (spec §4.1). A name that appears
// as part of a longer dotted chain is only reported once, as that chain —
// e.g. "A.B.C" contributes ["A","B","C"] to the chain list and nothing to
// the plain-identifier list, even though "A" is itself a valid Ident node
// nested inside the Member tree.
func ReferencedNames(expr wdl.Expr) (chains [][]string, idents []string) {
	walkReferenced(expr, &chains, &idents)
	return
}

func walkReferenced(expr wdl.Expr, chains *[][]string, idents *[]string) {
	if expr == nil {
		return
	}
	if chain := wdl.Chain(expr); chain != nil {
		if len(chain) == 1 {
			*idents = append(*idents, chain[0])
		} else {
			*chains = append(*chains, chain)
		}
		return
	}

	switch e := expr.(type) {
	case *wdl.Index:
		walkReferenced(e.Base, chains, idents)
		walkReferenced(e.Sub, chains, idents)
	case *wdl.Apply:
		for _, a := range e.Args {
			walkReferenced(a, chains, idents)
		}
	case *wdl.BinaryOp:
		walkReferenced(e.Left, chains, idents)
		walkReferenced(e.Right, chains, idents)
	case *wdl.UnaryOp:
		walkReferenced(e.X, chains, idents)
	case *wdl.ArrayLit:
		for _, el := range e.Elems {
			walkReferenced(el, chains, idents)
		}
	case *wdl.Literal:
		// no free names
	}
}
