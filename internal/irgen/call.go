package irgen

import (
	"github.com/cwbudde/wdlgen/internal/exprutil"
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
)

// CallArgs is the result of lowering one call's input mappings against a
// callee applet's input interface (spec §4.5).
type CallArgs struct {
	// Args is positionally aligned with the callee's Inputs (invariant P2).
	Args []symbols.SArg
	// Unsatisfied[i] is true when Args[i] is Empty because of a missing
	// required input in an unlocked workflow. The scatter/if
	// extra-propagated inputs are computed separately, by
	// requiredMissingInputs, not from this slice.
	Unsatisfied []bool
}

// LowerCallInputs implements spec §4.5 Call Lowering for a single call
// against its resolved callee interface. locked governs whether a missing
// required input is fatal (locked) or a recorded warning (unlocked) — the
// caller passes the locking mode of the *workflow currently being
// compiled* (CompileNamespace passes c.Locked for the primary workflow,
// the only workflow it lowers).
func (c *Compiler) LowerCallInputs(call *wdl.Call, calleeInputs []symbols.CVar, env *symbols.CallEnv, locked bool, diag *irerrors.Diagnostics) (CallArgs, error) {
	mapping := make(map[string]wdl.Expr, len(call.Inputs))
	for _, in := range call.Inputs {
		mapping[in.Name] = in.Expr
	}

	result := CallArgs{
		Args:        make([]symbols.SArg, len(calleeInputs)),
		Unsatisfied: make([]bool, len(calleeInputs)),
	}

	for i, formal := range calleeInputs {
		expr, present := mapping[formal.Name]
		if !present {
			isOptional := wdltypes.IsOptional(formal.Type) || formal.Attrs.HasDefault
			if isOptional {
				result.Args[i] = symbols.Empty()
				continue
			}
			if locked {
				return CallArgs{}, irerrors.New(irerrors.KindMissingRequiredInput, call.Pos(),
					"call %s: missing required input %q in a locked workflow", call.StageName(), formal.Name)
			}
			diag.Warnf("call %s: missing required input %q; workflow is unlocked, supplying no value", call.StageName(), formal.Name)
			result.Args[i] = symbols.Empty()
			result.Unsatisfied[i] = true
			continue
		}

		if chain := wdl.Chain(expr); chain != nil {
			key, lv, ok := env.TrailSearch(chain)
			if !ok {
				return CallArgs{}, irerrors.New(irerrors.KindUndefinedSymbol, expr.Pos(),
					"call %s: input %q references undefined symbol %q", call.StageName(), formal.Name, joinChainDot(chain))
			}
			_ = key
			result.Args[i] = lv.SArg
			continue
		}

		if lit, ok := exprutil.TryConstEval(expr); ok {
			result.Args[i] = symbols.Constant(lit)
			continue
		}

		return CallArgs{}, irerrors.New(irerrors.KindUnsupportedConstruct, expr.Pos(),
			"call %s: input %q is a non-constant, non-variable expression; the front end must lift these out", call.StageName(), formal.Name)
	}

	return result, nil
}

func joinChainDot(chain []string) string {
	out := chain[0]
	for _, p := range chain[1:] {
		out += "." + p
	}
	return out
}
