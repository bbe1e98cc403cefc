package irgen

import (
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
)

// CompiledTask is a previously lowered task: its applet plus the applet's
// output CVars, keyed by task name in a TaskCatalog.
type CompiledTask struct {
	Applet  *Applet
	Outputs []symbols.CVar
}

// TaskCatalog maps a task name to its compiled applet, built once by the
// top-level driver (spec §4.10) and consulted by every call site.
type TaskCatalog map[string]CompiledTask

// CompileCall lowers a single CallBlock to a Stage bound to the callee's
// already-compiled applet (spec §4.5). No new applet is synthesized: the
// call reuses the task applet from catalog.
func (c *Compiler) CompileCall(call *wdl.Call, catalog TaskCatalog, env *symbols.CallEnv, locked bool, diag *irerrors.Diagnostics) (Stage, error) {
	stageName := call.StageName()
	if err := checkCallName(stageName, call.Pos()); err != nil {
		return Stage{}, err
	}

	compiled, ok := catalog[call.Task]
	if !ok {
		return Stage{}, irerrors.New(irerrors.KindUnresolvedCallTarget, call.Pos(),
			"call %s: task %q is not defined in this namespace", stageName, call.Task)
	}

	args, err := c.LowerCallInputs(call, compiled.Applet.Inputs, env, locked, diag)
	if err != nil {
		return Stage{}, err
	}

	return Stage{
		Name:       stageName,
		StageID:    c.nextStageID(),
		AppletName: compiled.Applet.Name,
		Inputs:     args.Args,
		Outputs:    compiled.Outputs,
	}, nil
}
