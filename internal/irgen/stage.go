package irgen

import "github.com/cwbudde/wdlgen/internal/symbols"

// Stage is a node of the workflow backbone bound to an applet (spec §3).
type Stage struct {
	Name       string
	StageID    string
	AppletName string
	// Inputs are positionally aligned with the bound applet's Inputs
	// (invariant P2).
	Inputs []symbols.SArg
	// Outputs is a copy of the bound applet's Outputs.
	Outputs []symbols.CVar
}

// Workflow is the assembled backbone (spec §3).
type Workflow struct {
	Name    string
	Inputs  []symbols.LinkedVar
	Outputs []symbols.LinkedVar
	Stages  []Stage
	Locked  bool
}

// Namespace is the final compilation output (spec §3).
type Namespace struct {
	Workflow *Workflow // nil if the source namespace had no workflow
	Applets  map[string]*Applet
}
