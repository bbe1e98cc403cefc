// Package wdlfmt is the pretty-printer collaborator of spec.md §1: it
// re-emits a synthesized workflow fragment as WDL source text so the
// external parser can verify the fragment is legal (spec invariant P7).
// Semantically this package is a thin, out-of-scope collaborator; it is
// carried here (rather than stubbed to nothing) because the core must call
// it at every applet-synthesis site, and a faithful ambient stack renders
// fragments the way the teacher's own pkg/printer renders AST back to
// source, section by section.
package wdlfmt

import (
	"fmt"
	"strings"

	"github.com/cwbudde/wdlgen/internal/wdl"
)

// RenderNamespace renders an embedded fragment namespace (stub tasks plus a
// single synthetic workflow) back to WDL source text.
func RenderNamespace(ns *wdl.Namespace) string {
	var sb strings.Builder
	for _, t := range ns.Tasks {
		renderTask(&sb, t)
		sb.WriteString("\n")
	}
	for _, w := range ns.Workflows {
		renderWorkflow(&sb, w)
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderTask(sb *strings.Builder, t *wdl.Task) {
	fmt.Fprintf(sb, "task %s {\n", t.Name)
	for _, d := range t.Decls {
		renderDecl(sb, d, 1)
	}
	if len(t.Command) > 0 {
		fmt.Fprintf(sb, "  command {\n  %s\n  }\n", t.Command)
	} else {
		sb.WriteString("  command { }\n")
	}
	if len(t.Outputs) > 0 {
		sb.WriteString("  output {\n")
		for _, o := range t.Outputs {
			renderDecl(sb, o, 2)
		}
		sb.WriteString("  }\n")
	}
	renderRuntime(sb, t.Runtime)
	sb.WriteString("}\n")
}

func renderRuntime(sb *strings.Builder, rt wdl.RuntimeAttrs) {
	entries := []struct {
		name string
		expr wdl.Expr
	}{
		{"memory", rt.Memory},
		{"disks", rt.Disks},
		{"cpu", rt.CPU},
		{"instanceType", rt.InstanceName},
		{"docker", rt.Docker},
	}
	var present []struct {
		name string
		expr wdl.Expr
	}
	for _, e := range entries {
		if e.expr != nil {
			present = append(present, e)
		}
	}
	if len(present) == 0 {
		return
	}
	sb.WriteString("  runtime {\n")
	for _, e := range present {
		fmt.Fprintf(sb, "    %s: %s\n", e.name, e.expr.String())
	}
	sb.WriteString("  }\n")
}

func renderWorkflow(sb *strings.Builder, w *wdl.Workflow) {
	fmt.Fprintf(sb, "workflow %s {\n", w.Name)
	for _, c := range w.Children {
		renderChild(sb, c, 1)
	}
	if len(w.Outputs) > 0 {
		sb.WriteString("  output {\n")
		for _, o := range w.Outputs {
			renderDecl(sb, o, 2)
		}
		sb.WriteString("  }\n")
	}
	sb.WriteString("}\n")
}

func renderChild(sb *strings.Builder, c wdl.WorkflowChild, indent int) {
	pad := strings.Repeat("  ", indent)
	switch v := c.(type) {
	case *wdl.Decl:
		renderDecl(sb, v, indent)
	case *wdl.Call:
		fmt.Fprintf(sb, "%scall %s", pad, v.Task)
		if v.Alias != "" {
			fmt.Fprintf(sb, " as %s", v.Alias)
		}
		if len(v.Inputs) > 0 {
			sb.WriteString(" {\n")
			fmt.Fprintf(sb, "%s  input:\n", pad)
			for i, in := range v.Inputs {
				sep := ","
				if i == len(v.Inputs)-1 {
					sep = ""
				}
				fmt.Fprintf(sb, "%s    %s=%s%s\n", pad, in.Name, in.Expr.String(), sep)
			}
			fmt.Fprintf(sb, "%s}\n", pad)
		} else {
			sb.WriteString("\n")
		}
	case *wdl.Scatter:
		fmt.Fprintf(sb, "%sscatter (%s in %s) {\n", pad, v.Var, v.Collection.String())
		for _, ch := range v.Body {
			renderChild(sb, ch, indent+1)
		}
		fmt.Fprintf(sb, "%s}\n", pad)
	case *wdl.Conditional:
		fmt.Fprintf(sb, "%sif (%s) {\n", pad, v.Condition.String())
		for _, ch := range v.Body {
			renderChild(sb, ch, indent+1)
		}
		fmt.Fprintf(sb, "%s}\n", pad)
	}
}

func renderDecl(sb *strings.Builder, d *wdl.Decl, indent int) {
	pad := strings.Repeat("  ", indent)
	typ := d.Type.String()
	if d.Optional && !strings.HasSuffix(typ, "?") {
		typ += "?"
	}
	if d.HasExpr() {
		fmt.Fprintf(sb, "%s%s %s = %s\n", pad, typ, d.Name, d.Attrs.Default.String())
	} else {
		fmt.Fprintf(sb, "%s%s %s\n", pad, typ, d.Name)
	}
}
