package irgen

import (
	"github.com/cwbudde/wdlgen/internal/exprutil"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
)

// ClosureOf computes the set of free variables that must be imported from
// env into a block's synthetic applet (spec §4.3).
//
// For each expression: plain identifiers bind directly if present in env;
// dotted chains are resolved by trail search (strip one trailing component
// at a time until a prefix hits); names that hit nothing at any prefix are
// treated as locally defined inside the block and are not added.
//
// The returned map is keyed by the matched FQN (env's key for a trail-search
// hit, which may be a strict prefix of the referenced chain).
func ClosureOf(expressions []wdl.Expr, env *symbols.CallEnv) map[string]symbols.LinkedVar {
	closure := make(map[string]symbols.LinkedVar)
	for _, expr := range expressions {
		chains, idents := exprutil.ReferencedNames(expr)
		for _, name := range idents {
			if lv, ok := env.Lookup(name); ok {
				closure[name] = lv
			}
		}
		for _, chain := range chains {
			if key, lv, ok := env.TrailSearch(chain); ok {
				closure[key] = lv
			}
		}
	}
	return closure
}

// ClosureKeysSorted returns the closure's keys, in the order env bound them
// (env.Names() order), so synthesized applet interfaces have a
// deterministic, reproducible input ordering (spec §5, invariant P6).
func ClosureKeysSorted(closure map[string]symbols.LinkedVar, env *symbols.CallEnv) []string {
	var out []string
	for _, name := range env.Names() {
		if _, ok := closure[name]; ok {
			out = append(out, name)
		}
	}
	// A closure key that is not among env.Names() is omitted. ClosureOf only
	// builds keys from env lookups, so for its output no key is dropped.
	return out
}
