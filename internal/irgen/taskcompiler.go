package irgen

import (
	"context"
	"strings"

	"github.com/cwbudde/wdlgen/internal/exprutil"
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdlfmt"
	"github.com/cwbudde/wdlgen/internal/wdlparse"
	"github.com/cwbudde/wdlgen/internal/wdlvalue"
)

// platformURLPrefix is the scheme a constant docker runtime attribute must
// carry to be resolved as a DxAsset rather than treated as a network pull
// (spec §4.4).
const platformURLPrefix = "dx://"

// CompileTask lowers a task AST to an Applet (spec §4.4). Returns the
// applet and its output CVars (used by call sites and scatter/if blocks as
// stage outputs without re-deriving them from the task AST).
func (c *Compiler) CompileTask(ctx context.Context, task *wdl.Task) (*Applet, []symbols.CVar, error) {
	inputs, internalDecls := classifyTaskDecls(task.Decls)

	inputVars := make([]symbols.CVar, 0, len(inputs))
	for _, d := range inputs {
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
		return nil, nil, irerrors.New(irerrors.KindUndefinedSymbol, task.Pos(),
			"task %s: input names collide after dot-sanitization: %v", task.Name, collisions)
	}

	outputVars := make([]symbols.CVar, 0, len(task.Outputs))
	for _, d := range task.Outputs {
		outputVars = append(outputVars, symbols.NewCVar(d.Name, d.Type))
	}

	instanceType := computeInstanceType(task.Runtime)

	docker, rewrittenRuntime, err := c.resolveDocker(ctx, task.Runtime)
	if err != nil {
		return nil, nil, err
	}

	var kindTag AppletKindTag
	var nativeID string
	if id, ok := task.IsNative(); ok {
		kindTag = KindNative
		nativeID = id
	} else {
		kindTag = KindTask
	}

	applet := &Applet{
		Name:         task.Name,
		Inputs:       inputVars,
		Outputs:      outputVars,
		InstanceType: instanceType,
		Docker:       docker,
		Kind:         AppletKind{Tag: kindTag, NativeID: nativeID},
	}

	if kindTag != KindNative {
		fragmentTask := &wdl.Task{
			NamePos: task.NamePos,
			Name:    task.Name,
			Decls:   append(append([]*wdl.Decl{}, inputs...), internalDecls...),
			Outputs: task.Outputs,
			Runtime: rewrittenRuntime,
			Meta:    task.Meta,
			Command: task.Command,
		}
		fragment := wdlfmt.RenderNamespace(&wdl.Namespace{Tasks: []*wdl.Task{fragmentTask}})
		if err := c.verifyFragment(ctx, fragment); err != nil {
			return nil, nil, err
		}
		applet.Fragment = fragment
		applet.Verified = true
	}

	return applet, outputVars, nil
}

// classifyTaskDecls splits a task's flat declaration list into its input
// interface (unassigned, constant-assigned, or optionally-typed
// declarations) and everything else, which remains internal to the task
// body (spec §4.4).
func classifyTaskDecls(decls []*wdl.Decl) (inputs, internal []*wdl.Decl) {
	for _, d := range decls {
		isConstant := false
		if d.HasExpr() {
			_, isConstant = exprutil.TryConstEval(d.Attrs.Default)
		}
		if !d.HasExpr() || isConstant || d.Optional {
			inputs = append(inputs, d)
		} else {
			internal = append(internal, d)
		}
	}
	return inputs, internal
}

// computeInstanceType evaluates memory/disks/cpu/instance-name against an
// empty environment (spec §4.4): any evaluation failure (missing
// identifier, non-pure function) sets the result to Runtime; when all four
// evaluate to constants (including outright absence) the result is
// Concrete(spec).
func computeInstanceType(rt wdl.RuntimeAttrs) InstanceType {
	memory, memOK := evalRuntimeAttr(rt.Memory)
	disks, disksOK := evalRuntimeAttr(rt.Disks)
	cpu, cpuOK := evalRuntimeAttr(rt.CPU)
	instanceName, instOK := evalRuntimeAttr(rt.InstanceName)

	if !memOK || !disksOK || !cpuOK || !instOK {
		return InstanceType{Kind: InstanceRuntime}
	}
	return InstanceType{
		Kind: InstanceConcrete,
		Spec: InstanceSpec{
			Memory:       memory,
			Disks:        disks,
			CPU:          cpu,
			InstanceName: instanceName,
		},
	}
}

// evalRuntimeAttr returns ("", true) for an absent attribute (absence is
// itself a constant decision) and (literal, true) for a constant one;
// (_, false) whenever the attribute is present but not constant-evaluable.
func evalRuntimeAttr(e wdl.Expr) (string, bool) {
	if e == nil {
		return "", true
	}
	v, ok := exprutil.TryConstEval(e)
	if !ok {
		return "", false
	}
	return v.Literal(), true
}

// resolveDocker implements spec §4.4's docker resolution: absent -> None; a
// constant string with the platform URL prefix -> DxAsset(resolved record
// id), with the runtime attribute rewritten in the returned RuntimeAttrs to
// the resolved id so the embedded fragment never needs a second lookup;
// otherwise -> Network.
func (c *Compiler) resolveDocker(ctx context.Context, rt wdl.RuntimeAttrs) (Docker, wdl.RuntimeAttrs, error) {
	if rt.Docker == nil {
		return Docker{Kind: DockerNone}, rt, nil
	}
	v, ok := exprutil.TryConstEval(rt.Docker)
	if !ok || v.Kind() != wdlvalue.KindString || !strings.HasPrefix(v.AsString(), platformURLPrefix) {
		return Docker{Kind: DockerNetwork}, rt, nil
	}
	recordID, err := c.Resolver.ResolveRecordID(ctx, v.AsString())
	if err != nil {
		return Docker{}, rt, irerrors.New(irerrors.KindUnresolvedCallTarget, wdl.Expr(rt.Docker).Pos(),
			"resolving docker image %q: %v", v.AsString(), err)
	}
	rewritten := rt
	rewritten.Docker = &wdl.Literal{LitPos: rt.Docker.Pos(), Value: wdlvalue.String(recordID)}
	return Docker{Kind: DockerDxAsset, RecordID: recordID}, rewritten, nil
}

// verifyFragment re-serializes and re-parses a synthesized source fragment,
// the legality check of spec §4.4 / invariant P7.
func (c *Compiler) verifyFragment(ctx context.Context, fragment string) error {
	checker := c.Checker
	if checker == nil {
		checker = wdlparse.FallbackChecker{}
	}
	if err := checker.Check(ctx, fragment); err != nil {
		return (&irerrors.CompileError{
			Kind:    irerrors.KindIllegalFragment,
			Message: err.Error(),
		}).WithOffending(fragment)
	}
	return nil
}
