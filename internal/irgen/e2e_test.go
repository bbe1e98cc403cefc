package irgen

import (
	"context"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/irjson"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
	"github.com/cwbudde/wdlgen/internal/wdlvalue"
)

// recordingLogger captures warnings so a test can assert on the recoverable
// diagnostic path of spec §4.5 (missing required input, unlocked workflow)
// without depending on stderr output.
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Debugf(string, ...any) {}

func intType() wdltypes.Type                { return wdltypes.NewPrim(wdltypes.Int) }
func fileType() wdltypes.Type               { return wdltypes.NewPrim(wdltypes.File) }
func arrayOf(t wdltypes.Type) wdltypes.Type { return wdltypes.Array{Elem: t} }

func binOp(op string, l, r wdl.Expr) *wdl.BinaryOp { return &wdl.BinaryOp{Op: op, Left: l, Right: r} }
func ident(name string) *wdl.Ident                   { return &wdl.Ident{Name: name} }
func member(base wdl.Expr, field string) *wdl.Member { return &wdl.Member{Base: base, Field: field} }
func intLit(v int64) *wdl.Literal                    { return &wdl.Literal{Value: wdlvalue.Int(v)} }

func addMulTasks() []*wdl.Task {
	add := &wdl.Task{
		Name: "Add",
		Decls: []*wdl.Decl{
			{Name: "a", Type: intType()},
			{Name: "b", Type: intType()},
		},
		Outputs: []*wdl.Decl{
			{Name: "result", Type: intType(), Attrs: wdl.Attrs{Default: binOp("+", ident("a"), ident("b"))}},
		},
	}
	mul := &wdl.Task{
		Name: "Mul",
		Decls: []*wdl.Decl{
			{Name: "a", Type: intType()},
			{Name: "b", Type: intType()},
		},
		Outputs: []*wdl.Decl{
			{Name: "result", Type: intType(), Attrs: wdl.Attrs{Default: binOp("*", ident("a"), ident("b"))}},
		},
	}
	return []*wdl.Task{add, mul}
}

func unaryTask(name string) *wdl.Task {
	return &wdl.Task{
		Name:    name,
		Decls:   []*wdl.Decl{{Name: "i", Type: intType()}},
		Outputs: []*wdl.Decl{{Name: "result", Type: intType(), Attrs: wdl.Attrs{Default: ident("i")}}},
	}
}

// TestEndToEnd_SimpleCallChain is spec §8 scenario 1: a plain call chain
// threading an eval stage's output between two calls.
func TestEndToEnd_SimpleCallChain(t *testing.T) {
	ns := &wdl.Namespace{
		Tasks: addMulTasks(),
		Workflows: []*wdl.Workflow{{
			Name: "main",
			Children: []wdl.WorkflowChild{
				&wdl.Decl{Name: "ai", Type: intType()},
				&wdl.Call{Task: "Add", Inputs: []wdl.CallInput{
					{Name: "a", Expr: ident("ai")},
					{Name: "b", Expr: intLit(3)},
				}},
				&wdl.Decl{Name: "xtmp", Type: intType(), Attrs: wdl.Attrs{
					Default: binOp("+", member(ident("Add"), "result"), intLit(10)),
				}},
				&wdl.Call{Task: "Mul", Inputs: []wdl.CallInput{
					{Name: "a", Expr: ident("xtmp")},
					{Name: "b", Expr: intLit(2)},
				}},
			},
		}},
		Primary: "main",
	}

	c := NewCompiler(Options{Locked: false})
	out, err := c.CompileNamespace(context.Background(), ns)
	require.NoError(t, err)
	require.NotNil(t, out.Workflow)

	stages := out.Workflow.Stages
	require.Len(t, stages, 4)
	assert.Equal(t, []string{"common", "Add", "eval1", "Mul"}, stageNames(stages))

	evalStage := stages[2]
	require.Len(t, evalStage.Inputs, 1)
	assert.Equal(t, symbols.SArgLink, evalStage.Inputs[0].Kind())
	stageName, cvar := evalStage.Inputs[0].LinkStageAndVar()
	assert.Equal(t, "Add", stageName)
	assert.Equal(t, "result", cvar.Name)

	assertSerializesDeterministically(t, c.Checker, out)
	snapshotNamespace(t, out)
}

// TestEndToEnd_ScatterLiftedOutputs is spec §8 scenario 2: a single scatter
// applet whose three call outputs are all lifted to Array[Int] (P4), and
// whose Kind is Scatter (not ScatterCollect) since Array[Int] is natively
// representable.
func TestEndToEnd_ScatterLiftedOutputs(t *testing.T) {
	tasks := []*wdl.Task{unaryTask("Inc"), unaryTask("Twice"), unaryTask("Mod7")}
	ns := &wdl.Namespace{
		Tasks: tasks,
		Workflows: []*wdl.Workflow{{
			Name: "main",
			Children: []wdl.WorkflowChild{
				&wdl.Decl{Name: "nums", Type: arrayOf(intType())},
				&wdl.Decl{Name: "ks", Type: arrayOf(intType()), Attrs: wdl.Attrs{
					Default: &wdl.Apply{Func: "range", Args: []wdl.Expr{
						&wdl.Apply{Func: "length", Args: []wdl.Expr{ident("nums")}},
					}},
				}},
				&wdl.Scatter{
					Var:        "k",
					Collection: ident("ks"),
					Body: []wdl.WorkflowChild{
						&wdl.Call{Task: "Inc", Inputs: []wdl.CallInput{
							{Name: "i", Expr: &wdl.Index{Base: ident("nums"), Sub: ident("k")}},
						}},
						&wdl.Call{Task: "Twice", Inputs: []wdl.CallInput{
							{Name: "i", Expr: member(ident("Inc"), "result")},
						}},
						&wdl.Call{Task: "Mod7", Inputs: []wdl.CallInput{
							{Name: "i", Expr: member(ident("Twice"), "result")},
						}},
					},
				},
			},
		}},
		Primary: "main",
	}

	c := NewCompiler(Options{Locked: false})
	out, err := c.CompileNamespace(context.Background(), ns)
	require.NoError(t, err)

	var scatterApplet *Applet
	for name, a := range out.Applets {
		if a.Kind.Tag == KindScatter || a.Kind.Tag == KindScatterCollect {
			scatterApplet = a
			_ = name
		}
	}
	require.NotNil(t, scatterApplet, "expected exactly one scatter applet")
	assert.Equal(t, KindScatter, scatterApplet.Kind.Tag)

	lifted := map[string]wdltypes.Type{}
	for _, o := range scatterApplet.Outputs {
		lifted[o.Name] = o.Type
	}
	for _, name := range []string{"Inc.result", "Twice.result", "Mod7.result"} {
		typ, ok := lifted[name]
		require.True(t, ok, "missing output %q", name)
		arr, ok := typ.(wdltypes.Array)
		require.True(t, ok, "output %q is not lifted to an Array", name)
		assert.True(t, arr.Elem.Equal(intType()))
	}

	assertSerializesDeterministically(t, c.Checker, out)
	snapshotNamespace(t, out)
}

// TestEndToEnd_ConditionalAbsorbsPrecedingDecls is spec §8 scenario 3: a
// conditional body whose leading declarations are absorbed into the same
// synthetic applet, with Optional-lifted outputs (P5: never a double
// optional).
func TestEndToEnd_ConditionalAbsorbsPrecedingDecls(t *testing.T) {
	ns := &wdl.Namespace{
		Tasks: addMulTasks(),
		Workflows: []*wdl.Workflow{{
			Name: "main",
			Children: []wdl.WorkflowChild{
				&wdl.Decl{Name: "numbers", Type: arrayOf(intType())},
				&wdl.Conditional{
					Condition: binOp(">", &wdl.Apply{Func: "length", Args: []wdl.Expr{ident("numbers")}}, intLit(0)),
					Body: []wdl.WorkflowChild{
						&wdl.Decl{Name: "f0", Type: intType(), Attrs: wdl.Attrs{Default: intLit(2)}},
						&wdl.Decl{Name: "f1", Type: intType(), Attrs: wdl.Attrs{Default: intLit(3)}},
						&wdl.Call{Task: "Add", Alias: "a1", Inputs: []wdl.CallInput{
							{Name: "a", Expr: ident("f0")},
							{Name: "b", Expr: ident("f1")},
						}},
						&wdl.Call{Task: "Add", Alias: "a2", Inputs: []wdl.CallInput{
							{Name: "a", Expr: member(ident("a1"), "result")},
							{Name: "b", Expr: ident("f1")},
						}},
					},
				},
			},
		}},
		Primary: "main",
	}

	c := NewCompiler(Options{Locked: false})
	out, err := c.CompileNamespace(context.Background(), ns)
	require.NoError(t, err)

	var ifApplet *Applet
	for _, a := range out.Applets {
		if a.Kind.Tag == KindIf {
			ifApplet = a
		}
	}
	require.NotNil(t, ifApplet)

	outputs := map[string]wdltypes.Type{}
	for _, o := range ifApplet.Outputs {
		outputs[o.Name] = o.Type
	}
	for _, name := range []string{"a1.result", "a2.result"} {
		typ, ok := outputs[name]
		require.True(t, ok, "missing output %q", name)
		opt, ok := typ.(wdltypes.Optional)
		require.True(t, ok, "output %q is not Optional-lifted", name)
		assert.True(t, opt.Inner.Equal(intType()))
		_, doubleOptional := opt.Inner.(wdltypes.Optional)
		assert.False(t, doubleOptional, "P5 violation: optional-of-optional")
	}

	assertSerializesDeterministically(t, c.Checker, out)
	snapshotNamespace(t, out)
}

// TestEndToEnd_LockedMissingRequiredInputIsFatal is spec §8 scenario 4.
func TestEndToEnd_LockedMissingRequiredInputIsFatal(t *testing.T) {
	ns := &wdl.Namespace{
		Tasks: addMulTasks(),
		Workflows: []*wdl.Workflow{{
			Name: "main",
			Children: []wdl.WorkflowChild{
				&wdl.Call{Task: "Add", Inputs: []wdl.CallInput{
					{Name: "a", Expr: intLit(1)},
				}},
			},
		}},
		Primary: "main",
	}

	c := NewCompiler(Options{Locked: true})
	_, err := c.CompileNamespace(context.Background(), ns)
	require.Error(t, err)
	var compileErr *irerrors.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, irerrors.KindMissingRequiredInput, compileErr.Kind)
}

// TestEndToEnd_UnlockedMissingRequiredInputWarns is spec §8 scenario 5's
// top-level-call variant: a missing required input in an unlocked workflow
// is a warning, not fatal, and the stage argument is SArg.Empty.
func TestEndToEnd_UnlockedMissingRequiredInputWarns(t *testing.T) {
	ns := &wdl.Namespace{
		Tasks: addMulTasks(),
		Workflows: []*wdl.Workflow{{
			Name: "main",
			Children: []wdl.WorkflowChild{
				&wdl.Call{Task: "Add", Inputs: []wdl.CallInput{
					{Name: "a", Expr: intLit(1)},
				}},
			},
		}},
		Primary: "main",
	}

	logger := &recordingLogger{}
	c := NewCompiler(Options{Locked: false, Logger: logger})
	out, err := c.CompileNamespace(context.Background(), ns)
	require.NoError(t, err)
	assert.NotEmpty(t, logger.warnings)

	stage := out.Workflow.Stages[0]
	require.Len(t, stage.Inputs, 2)
	assert.Equal(t, symbols.SArgEmpty, stage.Inputs[1].Kind())
}

// TestEndToEnd_UnlockedScatterExtraPropagatedInput is spec §8 scenario 5's
// scatter variant: a call inside a scatter with a missing required input
// gets a synthesized "<callName>_<inputName>" extra input CVar instead of
// only a warning, since the scatter applet's interface must still expose
// somewhere for the platform to supply the value.
func TestEndToEnd_UnlockedScatterExtraPropagatedInput(t *testing.T) {
	ns := &wdl.Namespace{
		Tasks: addMulTasks(),
		Workflows: []*wdl.Workflow{{
			Name: "main",
			Children: []wdl.WorkflowChild{
				&wdl.Decl{Name: "xs", Type: arrayOf(intType())},
				&wdl.Scatter{
					Var:        "k",
					Collection: ident("xs"),
					Body: []wdl.WorkflowChild{
						&wdl.Call{Task: "Add", Inputs: []wdl.CallInput{
							{Name: "a", Expr: ident("k")},
						}},
					},
				},
			},
		}},
		Primary: "main",
	}

	logger := &recordingLogger{}
	c := NewCompiler(Options{Locked: false, Logger: logger})
	out, err := c.CompileNamespace(context.Background(), ns)
	require.NoError(t, err)

	var scatterApplet *Applet
	for _, a := range out.Applets {
		if a.Kind.Tag == KindScatter || a.Kind.Tag == KindScatterCollect {
			scatterApplet = a
		}
	}
	require.NotNil(t, scatterApplet)

	var found bool
	for _, v := range scatterApplet.Inputs {
		if v.Name == "Add_b" {
			found = true
			assert.Equal(t, "Add.b", v.OriginalFqn)
		}
	}
	assert.True(t, found, "expected a synthesized Add_b extra-propagated input")
}

// TestEndToEnd_DynamicInstanceType is spec §8 scenario 6: a non-constant
// runtime memory expression defers the instance-type decision to job-start
// time (Runtime), with no other effect on the applet.
func TestEndToEnd_DynamicInstanceType(t *testing.T) {
	task := &wdl.Task{
		Name:  "Sizer",
		Decls: []*wdl.Decl{{Name: "input_file", Type: fileType()}},
		Outputs: []*wdl.Decl{
			{Name: "result", Type: intType(), Attrs: wdl.Attrs{Default: intLit(0)}},
		},
		Runtime: wdl.RuntimeAttrs{
			Memory: &wdl.Apply{Func: "size", Args: []wdl.Expr{ident("input_file")}},
		},
	}
	ns := &wdl.Namespace{Tasks: []*wdl.Task{task}}

	c := NewCompiler(Options{})
	applet, _, err := c.CompileTask(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, InstanceRuntime, applet.InstanceType.Kind)
	assert.Equal(t, DockerNone, applet.Docker.Kind)

	_, err = c.CompileNamespace(context.Background(), ns)
	require.NoError(t, err)
}

// TestCompileWorkflow_InputNameCollisionIsFatal exercises P3 at the
// workflow-input surface: two workflow input names that sanitize to the same
// dxVarName must reject the applet interface rather than silently collide.
func TestCompileWorkflow_InputNameCollisionIsFatal(t *testing.T) {
	ns := &wdl.Namespace{
		Tasks: addMulTasks(),
		Workflows: []*wdl.Workflow{{
			Name: "main",
			Children: []wdl.WorkflowChild{
				&wdl.Decl{Name: "foo.bar", Type: intType()},
				&wdl.Decl{Name: "foo_bar", Type: intType()},
			},
		}},
		Primary: "main",
	}

	c := NewCompiler(Options{Locked: true})
	_, err := c.CompileNamespace(context.Background(), ns)
	require.Error(t, err)
	var compileErr *irerrors.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, irerrors.KindUndefinedSymbol, compileErr.Kind)
}

func stageNames(stages []Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.Name
	}
	return out
}

// assertSerializesDeterministically exercises P6 and P7: the same Namespace
// IR serializes to byte-identical JSON across repeated marshals, and every
// applet's embedded fragment has already round-tripped through the
// re-parse checker (Applet.Verified).
func assertSerializesDeterministically(t *testing.T, checker interface{ Check(context.Context, string) error }, ns *Namespace) {
	t.Helper()
	for name, applet := range ns.Applets {
		assert.True(t, applet.Verified, "applet %q was not verified against the re-parse checker", name)
		if applet.Fragment != "" {
			assert.NoError(t, checker.Check(context.Background(), applet.Fragment), "applet %q fragment failed re-parse", name)
		}
	}

	first, err := irjson.NewSerializer().Marshal(ns)
	require.NoError(t, err)
	second, err := irjson.NewSerializer().Marshal(ns)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "P6 violation: repeated serialization was not byte-identical")
}

// snapshotNamespace records the serialized Namespace IR as a go-snaps
// golden file, so a future change to the lowering algorithm's output shape
// is caught even when no individual structural assertion above would catch
// it.
func snapshotNamespace(t *testing.T, ns *Namespace) {
	t.Helper()
	data, err := irjson.NewSerializer().Marshal(ns)
	require.NoError(t, err)
	snaps.MatchJSON(t, data)
}
