package irgen

import (
	"context"

	"github.com/cwbudde/wdlgen/internal/wdl"
)

// CompileNamespace implements the Top-Level Driver (spec §4.10): compile
// every task into a TaskCatalog, then — if the namespace names a primary
// workflow — lower it and assemble the final Namespace IR.
//
// ns.Workflows may hold more than one workflow definition (a front end
// representing several WDL documents flattened into one AST), but only
// ns.PrimaryWorkflow() is lowered to IR: spec §4.10 point 3 speaks of "the"
// workflow singular, and §4.3/§7 make calling another workflow (as opposed
// to a task) a fatal unsupported construct, so no sibling workflow is ever
// reachable from the primary's backbone. A sibling definition that exists
// only to be imported by a future compilation unit is simply not compiled
// here — see DESIGN.md.
func (c *Compiler) CompileNamespace(ctx context.Context, ns *wdl.Namespace) (*Namespace, error) {
	catalog := make(TaskCatalog, len(ns.Tasks))
	applets := make(map[string]*Applet, len(ns.Tasks))

	for _, task := range ns.Tasks {
		applet, outputs, err := c.CompileTask(ctx, task)
		if err != nil {
			return nil, err
		}
		catalog[task.Name] = CompiledTask{Applet: applet, Outputs: outputs}
		applets[applet.Name] = applet
	}

	primary := ns.PrimaryWorkflow()
	if primary == nil {
		return &Namespace{Workflow: nil, Applets: applets}, nil
	}

	workflow, workflowApplets, err := c.CompileWorkflow(ctx, primary, catalog, c.Locked)
	if err != nil {
		return nil, err
	}
	for name, a := range workflowApplets {
		applets[name] = a
	}

	return &Namespace{Workflow: workflow, Applets: applets}, nil
}
