package irgen

import (
	"context"

	"github.com/cwbudde/wdlgen/internal/exprutil"
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdlfmt"
)

// splitWorkflowInputs separates a workflow's top-level children into the
// declarations that make up its external input surface (spec §3
// Workflow.inputs) and the remaining ordered body the block partitioner
// operates over. A top-level declaration is a workflow input if it is (a)
// unassigned, or (b) optionally-typed, mirroring the Task Compiler's
// classifyTaskDecls (spec §4.4) — this resolves the detail spec.md leaves
// implicit about where "workflow inputs" come from. Unlike a task
// declaration, an optional workflow input's default must be constant: spec
// §7 makes "Workflow-input default not constant" a fatal error, since an
// unlocked workflow's synthesized common stage (buildCommonStage) can only
// forward a value, not evaluate an arbitrary expression.
func splitWorkflowInputs(children []wdl.WorkflowChild) (inputs []*wdl.Decl, body []wdl.WorkflowChild, err error) {
	for _, c := range children {
		d, ok := c.(*wdl.Decl)
		if !ok {
			body = append(body, c)
			continue
		}
		if !d.HasExpr() {
			inputs = append(inputs, d)
			continue
		}
		if d.Optional {
			if _, ok := exprutil.TryConstEval(d.Attrs.Default); !ok {
				return nil, nil, irerrors.New(irerrors.KindWorkflowInputDefaultNotConst, d.Pos(),
					"workflow input %q: non-constant default expression", d.Name)
			}
			inputs = append(inputs, d)
			continue
		}
		body = append(body, c)
	}
	return inputs, body, nil
}

// buildCommonStage synthesizes the unlocked-workflow common-inputs stage
// (spec §4.9): a pass-through Eval applet whose inputs and outputs are both
// the workflow's input CVars, so later stages can link to them the same
// way they link to any other stage's outputs.
func (c *Compiler) buildCommonStage(ctx context.Context, inputs []symbols.CVar) (Stage, *Applet, error) {
	fragmentWorkflow := &wdl.Workflow{Name: CommonStageName}
	for _, v := range inputs {
		fragmentWorkflow.Children = append(fragmentWorkflow.Children, &wdl.Decl{Name: v.DxVarName, Type: v.Type})
	}
	for _, v := range inputs {
		fragmentWorkflow.Outputs = append(fragmentWorkflow.Outputs, &wdl.Decl{
			Name: v.Name,
			Type: v.Type,
			Attrs: wdl.Attrs{
				Default: &wdl.Ident{Name: v.DxVarName},
			},
		})
	}

	fragment := wdlfmt.RenderNamespace(&wdl.Namespace{Workflows: []*wdl.Workflow{fragmentWorkflow}})
	if err := c.verifyFragment(ctx, fragment); err != nil {
		return Stage{}, nil, err
	}

	applet := &Applet{
		Name:         CommonStageName,
		Inputs:       inputs,
		Outputs:      inputs,
		InstanceType: InstanceType{Kind: InstanceDefault},
		Docker:       Docker{Kind: DockerNone},
		Kind:         AppletKind{Tag: KindEval},
		Fragment:     fragment,
		Verified:     true,
	}

	stageArgs := make([]symbols.SArg, len(inputs))
	for i := range stageArgs {
		stageArgs[i] = symbols.Empty()
	}

	stage := Stage{
		Name:       CommonStageName,
		StageID:    c.nextStageID(),
		AppletName: applet.Name,
		Inputs:     stageArgs,
		Outputs:    inputs,
	}
	return stage, applet, nil
}

// buildOutputsStage synthesizes the output-section stage (spec §4.9): an
// Eval applet whose declarations are the workflow's output selections,
// reusing CompileEval's closure/fragment machinery but constrained to the
// output-section legality rule of spec §7 ("non-constant expression in
// output section" is fatal) and pinned to the reserved last-stage id.
func (c *Compiler) buildOutputsStage(ctx context.Context, outputs []*wdl.Decl, env *symbols.CallEnv) (Stage, *Applet, error) {
	for _, d := range outputs {
		if !d.HasExpr() {
			continue
		}
		if wdl.Chain(d.Attrs.Default) != nil {
			continue
		}
		if _, ok := exprutil.TryConstEval(d.Attrs.Default); ok {
			continue
		}
		return Stage{}, nil, irerrors.New(irerrors.KindUnsupportedConstruct, d.Pos(),
			"workflow output %q: non-constant, non-variable expression in output section", d.Name)
	}

	stage, applet, err := c.CompileEval(ctx, OutputsSuffix, outputs, env)
	if err != nil {
		return Stage{}, nil, err
	}
	stage.StageID = LastStageID
	return stage, applet, nil
}

// BuildBackbone implements spec §4.9's buildBackbone: folds left over the
// partitioned block list, env-threaded, binding each new stage's outputs
// into the environment under the spec's binding-key rule (CallBlock:
// "<stageName>.<outputName>"; every other block: the CVar name as-is).
func (c *Compiler) BuildBackbone(ctx context.Context, blocks []Block, initialEnv *symbols.CallEnv, catalog TaskCatalog, locked bool, diag *irerrors.Diagnostics) ([]Stage, map[string]*Applet, *symbols.CallEnv, error) {
	env := initialEnv.Clone()
	var stages []Stage
	applets := make(map[string]*Applet)

	for _, block := range blocks {
		var (
			stage  Stage
			applet *Applet
			err    error
		)

		switch block.Tag {
		case BlockDeclRun:
			stage, applet, err = c.CompileEval(ctx, c.nextEvalName(), block.Decls, env)
		case BlockCall:
			stage, err = c.CompileCall(block.Call, catalog, env, locked, diag)
		case BlockScatter:
			stage, applet, err = c.CompileScatter(ctx, block.PreDecls, block.Scatter, env, catalog, locked)
		case BlockIf:
			stage, applet, err = c.CompileIf(ctx, block.PreDecls, block.If, env, catalog, locked)
		}
		if err != nil {
			return nil, nil, nil, err
		}
		if applet != nil {
			applets[applet.Name] = applet
		}

		for _, out := range stage.Outputs {
			key := out.Name
			if block.Tag == BlockCall {
				key = stage.Name + "." + out.Name
			}
			env.Define(key, symbols.LinkedVar{CVar: out, SArg: symbols.Link(stage.Name, out)})
		}

		stages = append(stages, stage)
	}

	return stages, applets, env, nil
}

// CompileWorkflow implements the workflow half of spec §4.9/§4.10: builds
// the input surface, assembles the backbone, and — depending on locking
// mode — wraps it with a common-inputs stage, an output-section stage, and
// an optional reorganization stage.
func (c *Compiler) CompileWorkflow(ctx context.Context, wf *wdl.Workflow, catalog TaskCatalog, locked bool) (*Workflow, map[string]*Applet, error) {
	inputDecls, body, err := splitWorkflowInputs(wf.Children)
	if err != nil {
		return nil, nil, err
	}

	inputVars := make([]symbols.CVar, 0, len(inputDecls))
	for _, d := range inputDecls {
		v := symbols.NewCVar(d.Name, d.Type)
		if d.HasExpr() {
			if lit, ok := exprutil.TryConstEval(d.Attrs.Default); ok {
				v = v.WithDefault(lit.Literal())
			}
		}
		inputVars = append(inputVars, v)
	}
	inputVars, collisions := symbols.SanitizeUnique(inputVars)
	if len(collisions) > 0 {
		return nil, nil, irerrors.New(irerrors.KindUndefinedSymbol, wf.Pos(),
			"workflow %s: input names collide after dot-sanitization: %v", wf.Name, collisions)
	}

	env := symbols.NewCallEnv()
	applets := make(map[string]*Applet)
	var stages []Stage
	var workflowInputs []symbols.LinkedVar

	if locked {
		for _, v := range inputVars {
			lv := symbols.LinkedVar{CVar: v, SArg: symbols.WorkflowInput(v)}
			env.Define(v.Name, lv)
			workflowInputs = append(workflowInputs, lv)
		}
	} else {
		if len(inputVars) > 0 {
			commonStage, commonApplet, err := c.buildCommonStage(ctx, inputVars)
			if err != nil {
				return nil, nil, err
			}
			applets[commonApplet.Name] = commonApplet
			stages = append(stages, commonStage)
			for _, v := range inputVars {
				env.Define(v.Name, symbols.LinkedVar{CVar: v, SArg: symbols.Link(commonStage.Name, v)})
			}
		}
		for _, v := range inputVars {
			workflowInputs = append(workflowInputs, symbols.LinkedVar{CVar: v, SArg: symbols.WorkflowInput(v)})
		}
	}

	blocks := PartitionBlocks(body)
	diag := &irerrors.Diagnostics{}
	backboneStages, backboneApplets, finalEnv, err := c.BuildBackbone(ctx, blocks, env, catalog, locked, diag)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range diag.Warnings {
		c.Logger.Warnf("%s", w)
	}
	stages = append(stages, backboneStages...)
	for name, a := range backboneApplets {
		applets[name] = a
	}

	var workflowOutputs []symbols.LinkedVar
	needOutputsStage := len(wf.Outputs) > 0
	if needOutputsStage {
		outputsStage, outputsApplet, err := c.buildOutputsStage(ctx, wf.Outputs, finalEnv)
		if err != nil {
			return nil, nil, err
		}
		applets[outputsApplet.Name] = outputsApplet
		stages = append(stages, outputsStage)
		for i, d := range wf.Outputs {
			workflowOutputs = append(workflowOutputs, symbols.LinkedVar{
				CVar: symbols.NewCVar(d.Name, d.Type),
				SArg: symbols.Link(outputsStage.Name, outputsStage.Outputs[i]),
			})
		}
	}

	if c.Reorg {
		reorgStage, reorgApplet := c.buildReorgStage(workflowOutputs)
		applets[reorgApplet.Name] = reorgApplet
		stages = append(stages, reorgStage)
	}

	workflow := &Workflow{
		Name:    wf.Name,
		Inputs:  workflowInputs,
		Outputs: workflowOutputs,
		Stages:  stages,
		Locked:  locked,
	}
	return workflow, applets, nil
}

// buildReorgStage appends the optional reorganization stage (spec §4.9):
// its inputs are every workflow output, its outputs are empty, and it
// carries no embedded fragment since it performs no re-parseable
// computation of its own — the runtime moves non-final files into an
// archive subdirectory based on its presence alone.
func (c *Compiler) buildReorgStage(workflowOutputs []symbols.LinkedVar) (Stage, *Applet) {
	inputVars := make([]symbols.CVar, 0, len(workflowOutputs))
	stageArgs := make([]symbols.SArg, 0, len(workflowOutputs))
	for _, lv := range workflowOutputs {
		inputVars = append(inputVars, lv.CVar)
		stageArgs = append(stageArgs, lv.SArg)
	}

	applet := &Applet{
		Name:         ReorgStageName,
		Inputs:       inputVars,
		Outputs:      nil,
		InstanceType: InstanceType{Kind: InstanceDefault},
		Docker:       Docker{Kind: DockerNone},
		Kind:         AppletKind{Tag: KindWorkflowOutputReorg},
		Verified:     true,
	}
	stage := Stage{
		Name:       ReorgStageName,
		StageID:    c.nextStageID(),
		AppletName: applet.Name,
		Inputs:     stageArgs,
		Outputs:    nil,
	}
	return stage, applet
}
