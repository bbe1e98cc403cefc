// Package irgen implements the core workflow lowering algorithm of
// spec.md §4: the block partitioner, closure analyzer, task compiler,
// block compilers, workflow assembler and top-level driver.
//
// Grounded on the teacher's internal/semantic/passes (ordered passes
// threading a mutable PassContext) for the overall pass shape, and on
// internal/bytecode/compiler_core.go (a monotonic-counter-driven compiler,
// one file per syntactic concern) for the stage-id counter design.
package irgen

import "github.com/cwbudde/wdlgen/internal/symbols"

// InstanceTypeKind tags the variant of Applet.InstanceType (spec §3).
type InstanceTypeKind uint8

const (
	// InstanceDefault is the platform's default instance type.
	InstanceDefault InstanceTypeKind = iota
	// InstanceRuntime defers the decision to job-start time.
	InstanceRuntime
	// InstanceConcrete pins a specific, fully-evaluated instance spec.
	InstanceConcrete
)

// InstanceSpec is the evaluated memory/disks/cpu/instance-name tuple when
// InstanceType.Kind == InstanceConcrete.
type InstanceSpec struct {
	Memory       string
	Disks        string
	CPU          string
	InstanceName string
}

// InstanceType is the applet's resource-sizing decision (spec §3, §4.4).
type InstanceType struct {
	Kind InstanceTypeKind
	Spec InstanceSpec // valid only when Kind == InstanceConcrete
}

// DockerKind tags the variant of Applet.Docker (spec §3, §4.4).
type DockerKind uint8

const (
	DockerNone DockerKind = iota
	DockerNetwork
	DockerDxAsset
)

// Docker is the applet's container-image resolution (spec §4.4).
type Docker struct {
	Kind     DockerKind
	RecordID string // valid only when Kind == DockerDxAsset
}

// AppletKindTag tags the variant of Applet.Kind (spec §3, §9 "Applet kinds
// as a tagged variant").
type AppletKindTag uint8

const (
	KindTask AppletKindTag = iota
	KindNative
	KindEval
	KindScatter
	KindScatterCollect
	KindIf
	KindWorkflowOutputReorg
)

func (k AppletKindTag) String() string {
	switch k {
	case KindTask:
		return "Task"
	case KindNative:
		return "Native"
	case KindEval:
		return "Eval"
	case KindScatter:
		return "Scatter"
	case KindScatterCollect:
		return "ScatterCollect"
	case KindIf:
		return "If"
	case KindWorkflowOutputReorg:
		return "WorkflowOutputReorg"
	default:
		return "Unknown"
	}
}

// AppletKind is the tagged variant describing what an applet does (spec
// §3). callDict maps each call's alias to its underlying task name (spec
// §4.7 point 7, §4.8) so the runtime can reconstruct the linkage for
// Scatter/ScatterCollect/If kinds.
type AppletKind struct {
	Tag      AppletKindTag
	NativeID string            // valid only when Tag == KindNative
	CallDict map[string]string // valid only for Scatter/ScatterCollect/If
}

// Applet is a leaf IR executable (spec §3).
type Applet struct {
	Name         string
	Inputs       []symbols.CVar
	Outputs      []symbols.CVar
	InstanceType InstanceType
	Docker       Docker
	Kind         AppletKind
	// Fragment is the embedded, self-contained source fragment: a
	// re-serializable workflow namespace containing stub callees plus the
	// inner body (spec §3 invariant: parseable by the external parser,
	// verified at construction — see Applet.Verified).
	Fragment string
	Verified bool
}
