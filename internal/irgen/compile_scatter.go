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

// splitBody separates a scatter/conditional body into its leading
// declaration run and trailing run of calls and (per SPEC_FULL.md §4,
// resolving spec §9 Open Question 2) further nested scatter/conditional
// blocks — the front end is assumed to have already flattened any deeper
// control flow into this same Decl/Call/Scatter/Conditional shape. A
// declaration following a call or nested block is an error (spec §4.7
// point 1).
func splitBody(body []wdl.WorkflowChild) (decls []*wdl.Decl, tail []wdl.WorkflowChild, err error) {
	started := false
	for _, c := range body {
		switch v := c.(type) {
		case *wdl.Decl:
			if started {
				return nil, nil, irerrors.New(irerrors.KindUnsupportedConstruct, v.Pos(),
					"declaration %q appears after a call inside a scatter/conditional block", v.Name)
			}
			decls = append(decls, v)
		case *wdl.Call, *wdl.Scatter, *wdl.Conditional:
			started = true
			tail = append(tail, v)
		default:
			return nil, nil, irerrors.New(irerrors.KindUnsupportedConstruct, c.Pos(),
				"only declarations, calls, scatters and conditionals may appear inside a scatter/conditional body")
		}
	}
	return decls, tail, nil
}

// flattenCalls collects every *wdl.Call reachable in a tail run, recursing
// into nested scatter/conditional blocks — their calls still need catalog
// lookups, closure contributions, and extra-propagated-input handling even
// though they don't get their own Stage/Applet (spec.md §9 Open Question 2:
// a nested block collapses into its parent's single synthetic applet).
func flattenCalls(tail []wdl.WorkflowChild) []*wdl.Call {
	var calls []*wdl.Call
	for _, c := range tail {
		switch v := c.(type) {
		case *wdl.Call:
			calls = append(calls, v)
		case *wdl.Scatter:
			calls = append(calls, flattenCalls(v.Body)...)
		case *wdl.Conditional:
			calls = append(calls, flattenCalls(v.Body)...)
		}
	}
	return calls
}

// tailExprs recursively collects every expression that must contribute to
// the enclosing block's closure: nested collections/conditions, nested
// body declarations' defaults, and every call's input mappings.
func tailExprs(tail []wdl.WorkflowChild) []wdl.Expr {
	var exprs []wdl.Expr
	for _, c := range tail {
		switch v := c.(type) {
		case *wdl.Call:
			for _, in := range v.Inputs {
				exprs = append(exprs, in.Expr)
			}
		case *wdl.Scatter:
			exprs = append(exprs, v.Collection)
			for _, d := range v.Body {
				if decl, ok := d.(*wdl.Decl); ok && decl.HasExpr() {
					exprs = append(exprs, decl.Attrs.Default)
				}
			}
			exprs = append(exprs, tailExprs(v.Body)...)
		case *wdl.Conditional:
			exprs = append(exprs, v.Condition)
			for _, d := range v.Body {
				if decl, ok := d.(*wdl.Decl); ok && decl.HasExpr() {
					exprs = append(exprs, decl.Attrs.Default)
				}
			}
			exprs = append(exprs, tailExprs(v.Body)...)
		}
	}
	return exprs
}

// renameTail renames every expression in a tail run against the closure's
// renameTable, recursing into nested scatter/conditional blocks and
// splicing in the extra-propagated-input mapping for each contained call
// (spec.md §4.7 points 4 and 6).
func renameTail(tail []wdl.WorkflowChild, renameTable exprutil.MapRenamer, extras []extraPropagatedInput) []wdl.WorkflowChild {
	out := make([]wdl.WorkflowChild, 0, len(tail))
	for _, c := range tail {
		switch v := c.(type) {
		case *wdl.Call:
			out = append(out, renderInnerCall(v, renameTable, extras))
		case *wdl.Scatter:
			renamed := &wdl.Scatter{
				ScatterPos: v.ScatterPos,
				Var:        v.Var,
				Collection: exprutil.RenameFreeVars(v.Collection, renameTable),
				Body:       renameNestedBody(v.Body, renameTable, extras),
			}
			out = append(out, renamed)
		case *wdl.Conditional:
			renamed := &wdl.Conditional{
				IfPos:     v.IfPos,
				Condition: exprutil.RenameFreeVars(v.Condition, renameTable),
				Body:      renameNestedBody(v.Body, renameTable, extras),
			}
			out = append(out, renamed)
		}
	}
	return out
}

func renameNestedBody(body []wdl.WorkflowChild, renameTable exprutil.MapRenamer, extras []extraPropagatedInput) []wdl.WorkflowChild {
	out := make([]wdl.WorkflowChild, 0, len(body))
	for _, c := range body {
		if d, ok := c.(*wdl.Decl); ok {
			renamed := &wdl.Decl{DeclPos: d.DeclPos, Name: d.Name, Type: d.Type, Optional: d.Optional, Synthetic: d.Synthetic}
			if d.HasExpr() {
				renamed.Attrs = wdl.Attrs{Default: exprutil.RenameFreeVars(d.Attrs.Default, renameTable)}
			}
			out = append(out, renamed)
			continue
		}
	}
	out = append(out, renameTail(body, renameTable, extras)...)
	return out
}

// requiredMissingInputs returns, for one call, the callee's formal input
// CVars that are required (non-optional, no default) but absent from the
// call's own input mapping (spec §4.7 point 4).
func requiredMissingInputs(call *wdl.Call, calleeInputs []symbols.CVar) []symbols.CVar {
	mapped := make(map[string]bool, len(call.Inputs))
	for _, in := range call.Inputs {
		mapped[in.Name] = true
	}
	var missing []symbols.CVar
	for _, formal := range calleeInputs {
		if mapped[formal.Name] {
			continue
		}
		if wdltypes.IsOptional(formal.Type) || formal.Attrs.HasDefault {
			continue
		}
		missing = append(missing, formal)
	}
	return missing
}

// stubTask builds a stub task declaration for an embedded fragment: inputs
// and outputs only, no command or runtime (spec §4.7 point 6 / §4.8,
// glossary "Stub task").
func stubTask(name string, inputs, outputs []symbols.CVar) *wdl.Task {
	t := &wdl.Task{Name: name}
	for _, v := range inputs {
		t.Decls = append(t.Decls, &wdl.Decl{Name: v.DxVarName, Type: v.Type, Optional: v.Attrs.HasDefault})
	}
	for _, v := range outputs {
		t.Outputs = append(t.Outputs, &wdl.Decl{Name: v.Name, Type: v.Type})
	}
	return t
}

// extraPropagatedInput is one synthesized "<callName>_<inputName>" CVar
// from spec §4.7 point 4.
type extraPropagatedInput struct {
	call    *wdl.Call
	formal  string
	cvar    symbols.CVar
}

func collectExtraPropagated(calls []*wdl.Call, catalog TaskCatalog, existingNames map[string]bool) []extraPropagatedInput {
	var out []extraPropagatedInput
	for _, call := range calls {
		compiled, ok := catalog[call.Task]
		if !ok {
			continue
		}
		for _, formal := range requiredMissingInputs(call, compiled.Applet.Inputs) {
			name := call.StageName() + "_" + formal.Name
			if existingNames[name] {
				continue
			}
			existingNames[name] = true
			v := symbols.NewCVar(name, formal.Type)
			v.OriginalFqn = call.StageName() + "." + formal.Name
			out = append(out, extraPropagatedInput{call: call, formal: formal.Name, cvar: v})
		}
	}
	return out
}

// renderInnerCall builds the call node embedded in a scatter/conditional
// fragment: its input expressions renamed against the closure, plus an
// extra input mapping entry for each of its unsatisfied formal inputs that
// was promoted to a synthesized fragment-level input declaration.
func renderInnerCall(call *wdl.Call, renameTable exprutil.MapRenamer, extras []extraPropagatedInput) *wdl.Call {
	out := &wdl.Call{CallPos: call.CallPos, Task: call.Task, Alias: call.Alias}
	for _, in := range call.Inputs {
		out.Inputs = append(out.Inputs, wdl.CallInput{Name: in.Name, Expr: exprutil.RenameFreeVars(in.Expr, renameTable)})
	}
	for _, ex := range extras {
		if ex.call != call {
			continue
		}
		out.Inputs = append(out.Inputs, wdl.CallInput{
			Name: ex.formal,
			Expr: &wdl.Ident{NamePos: call.CallPos, Name: ex.cvar.DxVarName},
		})
	}
	return out
}

// closureInputs builds the synthesized input CVars/stage args
// for a scatter or conditional block's closure, shared by both compilers.
func closureInputs(closure map[string]symbols.LinkedVar, keys []string) ([]symbols.CVar, []symbols.SArg, exprutil.MapRenamer) {
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
	return inputVars, stageArgs, renameTable
}

func uniqueStubTasks(calls []*wdl.Call, catalog TaskCatalog) []*wdl.Task {
	seen := make(map[string]bool, len(calls))
	var tasks []*wdl.Task
	for _, call := range calls {
		if seen[call.Task] {
			continue
		}
		seen[call.Task] = true
		compiled, ok := catalog[call.Task]
		if !ok {
			continue
		}
		tasks = append(tasks, stubTask(call.Task, compiled.Applet.Inputs, compiled.Outputs))
	}
	return tasks
}

// CompileScatter lowers a ScatterBlock to a (Stage, Applet) pair (spec
// §4.7).
func (c *Compiler) CompileScatter(ctx context.Context, preDecls []*wdl.Decl, scatter *wdl.Scatter, env *symbols.CallEnv, catalog TaskCatalog, locked bool) (Stage, *Applet, error) {
	bodyDecls, tail, err := splitBody(scatter.Body)
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
	exprs = append(exprs, scatter.Collection)
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
		return Stage{}, nil, irerrors.New(irerrors.KindUndefinedSymbol, scatter.Pos(),
			"scatter stage: input names collide after dot-sanitization: %v", collisions)
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
				"scatter: task %q is not defined in this namespace", call.Task)
		}
		for _, o := range compiled.Outputs {
			outputVars = append(outputVars, symbols.CVar{
				Name:      call.StageName() + "." + o.Name,
				DxVarName: symbols.Sanitize(call.StageName() + "." + o.Name),
				Type:      wdltypes.Lift(o.Type),
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
			Type:      wdltypes.Lift(d.Type),
		})
	}

	allNative := true
	for _, v := range outputVars {
		if !wdltypes.IsNativelyRepresentable(v.Type) {
			allNative = false
			break
		}
	}
	kindTag := KindScatter
	if !allNative {
		kindTag = KindScatterCollect
	}
	callDict := make(map[string]string, len(calls))
	for _, call := range calls {
		callDict[call.StageName()] = call.Task
	}

	stageName := c.nextScatterName()

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

	innerScatter := &wdl.Scatter{
		ScatterPos: scatter.ScatterPos,
		Var:        scatter.Var,
		Collection: exprutil.RenameFreeVars(scatter.Collection, renameTable),
	}
	for _, d := range bodyDecls {
		renamed := &wdl.Decl{DeclPos: d.DeclPos, Name: d.Name, Type: d.Type, Optional: d.Optional, Synthetic: d.Synthetic}
		if d.HasExpr() {
			renamed.Attrs = wdl.Attrs{Default: exprutil.RenameFreeVars(d.Attrs.Default, renameTable)}
		}
		innerScatter.Body = append(innerScatter.Body, renamed)
	}
	innerScatter.Body = append(innerScatter.Body, renameTail(tail, renameTable, extras)...)
	fragmentWorkflow.Children = append(fragmentWorkflow.Children, innerScatter)

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
		Kind:         AppletKind{Tag: kindTag, CallDict: callDict},
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
