package irgen

import (
	"strconv"

	"github.com/cwbudde/wdlgen/internal/dxapi"
	"github.com/cwbudde/wdlgen/internal/wdlparse"
)

// Logger is the minimal leveled-logging seam the core needs: one formatted
// call for the single recoverable diagnostic kind (missing required call
// input in an unlocked workflow, spec §7) and one for general debug tracing
// of the backbone assembly. Concrete callers wire github.com/charmbracelet/log
// behind this interface (cmd/wdlgen); the core itself stays free of any
// logging library per §5's synchronous, dependency-free core.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// NopLogger discards everything; the default when no Logger is supplied.
type NopLogger struct{}

func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Debugf(string, ...any) {}

// Options configures a Compiler.
type Options struct {
	// Locked controls the primary workflow's locking mode (spec §4.9,
	// §4.10). Only the primary workflow is lowered (see CompileNamespace).
	Locked bool
	// Reorg requests a trailing WorkflowOutputReorg stage (spec §4.9).
	Reorg bool
	// Resolver resolves platform URLs to DX record ids (spec §6). A nil
	// Resolver is only valid for namespaces with no constant docker URLs.
	Resolver dxapi.URLResolver
	// Checker verifies synthesized fragments re-parse (spec §4.4, P7). A
	// nil Checker defaults to wdlparse.FallbackChecker.
	Checker wdlparse.Checker
	// Logger receives warnings and debug traces. A nil Logger defaults to
	// NopLogger.
	Logger Logger
}

// Compiler holds the (compilation-local, per spec §5/§9) state threaded
// through one namespace's lowering: the stage-id counters and the injected
// collaborators. A Compiler must not be reused across concurrent
// compilations — construct a fresh one per call to CompileNamespace.
type Compiler struct {
	Locked   bool
	Reorg    bool
	Resolver dxapi.URLResolver
	Checker  wdlparse.Checker
	Logger   Logger

	stageSeq int
	evalSeq  int
	scatSeq  int
	ifSeq    int
}

// NewCompiler constructs a Compiler from Options, filling in defaults for
// unset collaborators.
func NewCompiler(opts Options) *Compiler {
	c := &Compiler{
		Locked:   opts.Locked,
		Reorg:    opts.Reorg,
		Resolver: opts.Resolver,
		Checker:  opts.Checker,
		Logger:   opts.Logger,
	}
	if c.Checker == nil {
		c.Checker = wdlparse.FallbackChecker{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	return c
}

// nextStageID returns the next monotonically increasing stage id, in block
// emission order (spec §5: "this ordering is part of the public contract
// and must be reproducible given identical input").
func (c *Compiler) nextStageID() string {
	c.stageSeq++
	return stageIDFromSeq(c.stageSeq)
}

func stageIDFromSeq(n int) string {
	// Monotonic "stage-N" ids, mirroring the teacher's own monotonic slot
	// numbering in internal/bytecode/compiler_core.go's nextSlot/nextGlobal
	// counters.
	return "stage-" + strconv.Itoa(n)
}

func (c *Compiler) nextEvalName() string {
	c.evalSeq++
	return "eval" + strconv.Itoa(c.evalSeq)
}

func (c *Compiler) nextScatterName() string {
	c.scatSeq++
	return "scatter" + strconv.Itoa(c.scatSeq)
}

func (c *Compiler) nextIfName() string {
	c.ifSeq++
	return "if" + strconv.Itoa(c.ifSeq)
}
