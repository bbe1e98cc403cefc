package irgen

import (
	"context"

	"github.com/cwbudde/wdlgen/internal/exprutil"
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdlfmt"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
)

// CompileIf lowers an IfBlock to a (Stage, Applet) pair (spec §4.8). It
// mirrors CompileScatter structurally, substituting the conditional's
// Optional output lift for the scatter's Array lift and dropping the
// Scatter/ScatterCollect distinction: a conditional applet is always tagged
// KindIf regardless of whether its outputs are natively representable.
func (c *Compiler) CompileIf(ctx context.Context, preDecls []*wdl.Decl, cond *wdl.Conditional, env *symbols.CallEnv, catalog TaskCatalog, locked bool) (Stage, *Applet, error) {
	bodyDecls, tail, err := splitBody(cond.Body)
	if err != nil {
		return Stage{}, nil, err
	}
	calls := flattenCalls(tail)

	exprs := make([]wdl.Expr, 0)
	for _, d := range preDecls {
		if d.HasExpr() {
			exprs = append(exprs, d.Attrs.Default)
		}
	}
	exprs = append(exprs, cond.Condition)
	for _, d := range bodyDecls {
		if d.HasExpr() {
			exprs = append(exprs, d.Attrs.Default)
		}
	}
	exprs = append(exprs, tailExprs(tail)...)

	closure := ClosureOf(exprs, env)
	keys := ClosureKeysSorted(closure, env)
	inputVars, stageArgs, renameTable := closureInputs(closure, keys)
	inputVars, collisions := symbols.SanitizeUnique(inputVars)
	if len(collisions) > 0 {
		return Stage{}, nil, irerrors.New(irerrors.KindUndefinedSymbol, cond.Pos(),
			"if stage: input names collide after dot-sanitization: %v", collisions)
	}

	var extras []extraPropagatedInput
	if !locked {
		existing := make(map[string]bool, len(inputVars))
		for _, v := range inputVars {
			existing[v.Name] = true
		}
		extras = collectExtraPropagated(calls, catalog, existing)
		for _, ex := range extras {
			inputVars = append(inputVars, ex.cvar)
			stageArgs = append(stageArgs, symbols.Empty())
		}
	}

	outputVars := make([]symbols.CVar, 0)
	for _, d := range preDecls {
		outputVars = append(outputVars, symbols.NewCVar(d.Name, d.Type))
	}
	for _, call := range calls {
		compiled, ok := catalog[call.Task]
		if !ok {
			return Stage{}, nil, irerrors.New(irerrors.KindUnresolvedCallTarget, call.Pos(),
				"conditional: task %q is not defined in this namespace", call.Task)
		}
		for _, o := range compiled.Outputs {
			outputVars = append(outputVars, symbols.CVar{
				Name:      call.StageName() + "." + o.Name,
				DxVarName: symbols.Sanitize(call.StageName() + "." + o.Name),
				Type:      wdltypes.LiftOptional(o.Type),
			})
		}
	}
	for _, d := range bodyDecls {
		if d.Synthetic {
			continue
		}
		outputVars = append(outputVars, symbols.CVar{
			Name:      d.Name,
			DxVarName: symbols.Sanitize(d.Name),
			Type:      wdltypes.LiftOptional(d.Type),
		})
	}

	callDict := make(map[string]string, len(calls))
	for _, call := range calls {
		callDict[call.StageName()] = call.Task
	}

	stageName := c.nextIfName()

	fragmentWorkflow := &wdl.Workflow{Name: stageName}
	for _, v := range inputVars {
		fragmentWorkflow.Children = append(fragmentWorkflow.Children, &wdl.Decl{Name: v.DxVarName, Type: v.Type})
	}
	for _, d := range preDecls {
		renamed := &wdl.Decl{DeclPos: d.DeclPos, Name: d.Name, Type: d.Type, Optional: d.Optional}
		if d.HasExpr() {
			renamed.Attrs = wdl.Attrs{Default: exprutil.RenameFreeVars(d.Attrs.Default, renameTable)}
		}
		fragmentWorkflow.Children = append(fragmentWorkflow.Children, renamed)
	}

	innerCond := &wdl.Conditional{
		IfPos:     cond.IfPos,
		Condition: exprutil.RenameFreeVars(cond.Condition, renameTable),
	}
	for _, d := range bodyDecls {
		renamed := &wdl.Decl{DeclPos: d.DeclPos, Name: d.Name, Type: d.Type, Optional: d.Optional, Synthetic: d.Synthetic}
		if d.HasExpr() {
			renamed.Attrs = wdl.Attrs{Default: exprutil.RenameFreeVars(d.Attrs.Default, renameTable)}
		}
		innerCond.Body = append(innerCond.Body, renamed)
	}
	innerCond.Body = append(innerCond.Body, renameTail(tail, renameTable, extras)...)
	fragmentWorkflow.Children = append(fragmentWorkflow.Children, innerCond)

	fragment := wdlfmt.RenderNamespace(&wdl.Namespace{
		Tasks:     uniqueStubTasks(calls, catalog),
		Workflows: []*wdl.Workflow{fragmentWorkflow},
	})
	if err := c.verifyFragment(ctx, fragment); err != nil {
		return Stage{}, nil, err
	}

	applet := &Applet{
		Name:         stageName,
		Inputs:       inputVars,
		Outputs:      outputVars,
		InstanceType: InstanceType{Kind: InstanceDefault},
		Docker:       Docker{Kind: DockerNone},
		Kind:         AppletKind{Tag: KindIf, CallDict: callDict},
		Fragment:     fragment,
		Verified:     true,
	}

	stage := Stage{
		Name:       stageName,
		StageID:    c.nextStageID(),
		AppletName: applet.Name,
		Inputs:     stageArgs,
		Outputs:    outputVars,
	}

	return stage, applet, nil
}
