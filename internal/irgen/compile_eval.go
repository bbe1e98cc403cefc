package irgen

import (
	"context"

	"github.com/cwbudde/wdlgen/internal/exprutil"
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdlfmt"
	"github.com/cwbudde/wdlgen/internal/wdlposition"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
	"github.com/cwbudde/wdlgen/internal/wdlvalue"
)

// CompileEval synthesizes an expression-evaluation applet for a run of
// declarations (spec §4.6).
func (c *Compiler) CompileEval(ctx context.Context, stageName string, decls []*wdl.Decl, env *symbols.CallEnv) (Stage, *Applet, error) {
	exprs := make([]wdl.Expr, 0, len(decls))
	for _, d := range decls {
		if d.HasExpr() {
			exprs = append(exprs, d.Attrs.Default)
		}
	}

	closure := ClosureOf(exprs, env)
	keys := ClosureKeysSorted(closure, env)

	inputVars := make([]symbols.CVar, 0, len(keys))
	stageArgs := make([]symbols.SArg, 0, len(keys))
	renameTable := make(exprutil.MapRenamer, len(keys))
	for _, key := range keys {
		lv := closure[key]
		v := symbols.NewCVar(key, lv.CVar.Type)
		inputVars = append(inputVars, v)
		stageArgs = append(stageArgs, lv.SArg)
		renameTable[key] = v.DxVarName
	}
	inputVars, collisions := symbols.SanitizeUnique(inputVars)
	if len(collisions) > 0 {
		return Stage{}, nil, irerrors.New(irerrors.KindUndefinedSymbol, wdlposition.Position{},
			"eval stage %s: input names collide after dot-sanitization: %v", stageName, collisions)
	}

	outputVars := make([]symbols.CVar, 0, len(decls))
	for _, d := range decls {
		outputVars = append(outputVars, symbols.NewCVar(d.Name, d.Type))
	}

	effectiveDecls := decls
	if len(effectiveDecls) == 0 {
		effectiveDecls = []*wdl.Decl{dummyIntDecl()}
		outputVars = []symbols.CVar{symbols.NewCVar(effectiveDecls[0].Name, effectiveDecls[0].Type)}
	}

	fragmentWorkflow := &wdl.Workflow{Name: stageName}
	for _, v := range inputVars {
		fragmentWorkflow.Children = append(fragmentWorkflow.Children, &wdl.Decl{
			Name: v.DxVarName,
			Type: v.Type,
		})
	}
	for _, d := range effectiveDecls {
		renamed := &wdl.Decl{DeclPos: d.DeclPos, Name: d.Name, Type: d.Type, Optional: d.Optional}
		if d.HasExpr() {
			renamed.Attrs = wdl.Attrs{Default: exprutil.RenameFreeVars(d.Attrs.Default, renameTable)}
		}
		fragmentWorkflow.Children = append(fragmentWorkflow.Children, renamed)
	}

	fragment := wdlfmt.RenderNamespace(&wdl.Namespace{Workflows: []*wdl.Workflow{fragmentWorkflow}})
	if err := c.verifyFragment(ctx, fragment); err != nil {
		return Stage{}, nil, err
	}

	applet := &Applet{
		Name:         stageName,
		Inputs:       inputVars,
		Outputs:      outputVars,
		InstanceType: InstanceType{Kind: InstanceDefault},
		Docker:       Docker{Kind: DockerNone},
		Kind:         AppletKind{Tag: KindEval},
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

func dummyIntDecl() *wdl.Decl {
	return &wdl.Decl{
		Name: "_unused",
		Type: wdltypes.NewPrim(wdltypes.Int),
		Attrs: wdl.Attrs{
			Default: &wdl.Literal{LitPos: wdlposition.Position{}, Value: wdlvalue.Int(0)},
		},
	}
}
