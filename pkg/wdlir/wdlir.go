// Package wdlir is the public entry point to the WDL-to-DX lowering pass:
// a thin wrapper over internal/irgen, internal/wdljson and internal/irjson
// so a caller outside this module only ever imports one package.
//
// Grounded on the shape of the teacher's public pkg/dwscript surface
// (a constructor plus functional Option values wrapping the internal
// engine); the teacher's own pkg/dwscript package in the retrieved example
// pack ships only its test suite with the implementation file absent from
// the pack, so this file follows the general New(opts ...Option) *Engine
// convention visible from those tests and from examples/ffi/main.go's call
// sites (dwscript.New(dwscript.WithTypeCheck(false))) rather than a
// specific source file.
package wdlir

import (
	"context"
	"fmt"

	"github.com/cwbudde/wdlgen/internal/dxapi"
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/irgen"
	"github.com/cwbudde/wdlgen/internal/irjson"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdljson"
	"github.com/cwbudde/wdlgen/internal/wdlparse"
)

// Re-exported result types, so callers never need to import internal/irgen
// directly to hold onto a compiled Namespace.
type (
	Namespace    = irgen.Namespace
	Workflow     = irgen.Workflow
	Applet       = irgen.Applet
	Stage        = irgen.Stage
	AppletKind   = irgen.AppletKind
	InstanceType = irgen.InstanceType
	Docker       = irgen.Docker
)

// CompileError is the fatal error type the lowering pass raises (spec §7).
type CompileError = irerrors.CompileError

// Logger is the leveled-logging seam a caller may supply.
type Logger = irgen.Logger

// URLResolver resolves a docker platform URL to a DX record id.
type URLResolver = dxapi.URLResolver

// Option configures an Engine.
type Option func(*irgen.Options)

// WithLocked selects the primary workflow's locking mode (spec §4.9/§4.10).
func WithLocked(locked bool) Option {
	return func(o *irgen.Options) { o.Locked = locked }
}

// WithReorg requests a trailing WorkflowOutputReorg stage (spec §4.9).
func WithReorg(reorg bool) Option {
	return func(o *irgen.Options) { o.Reorg = reorg }
}

// WithResolver supplies the docker platform-URL resolver (spec §6). Only
// required when a task's runtime.docker attribute is a constant dx:// URL.
func WithResolver(r URLResolver) Option {
	return func(o *irgen.Options) { o.Resolver = r }
}

// WithChecker overrides the fragment re-parse legality checker (spec §4.4,
// invariant P7). Defaults to wdlparse.FallbackChecker.
func WithChecker(c wdlparse.Checker) Option {
	return func(o *irgen.Options) { o.Checker = c }
}

// WithLogger supplies the warning/debug-trace sink.
func WithLogger(l Logger) Option {
	return func(o *irgen.Options) { o.Logger = l }
}

// Engine is a one-shot namespace lowering pass: construct with New, then
// call Compile once per input namespace (spec §9: a Compiler is not safe to
// reuse across concurrent compilations).
type Engine struct {
	opts irgen.Options
}

// New constructs an Engine with the given options.
func New(opts ...Option) *Engine {
	var o irgen.Options
	for _, apply := range opts {
		apply(&o)
	}
	return &Engine{opts: o}
}

// Compile lowers a namespace AST to the Namespace IR.
func (e *Engine) Compile(ctx context.Context, ns *wdl.Namespace) (*Namespace, error) {
	compiler := irgen.NewCompiler(e.opts)
	return compiler.CompileNamespace(ctx, ns)
}

// CompileJSON decodes a JSON-encoded namespace AST document (the shape
// internal/wdljson accepts in place of a real WDL front end, spec.md §1)
// and lowers it to the Namespace IR.
func (e *Engine) CompileJSON(ctx context.Context, data []byte) (*Namespace, error) {
	ns, err := wdljson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("wdlir: %w", err)
	}
	return e.Compile(ctx, ns)
}

// MarshalJSON renders a Namespace IR as its JSON document form (the same
// shape "wdlgen compile" writes and "wdlgen inspect" reads).
func MarshalJSON(ns *Namespace) ([]byte, error) {
	return irjson.NewSerializer().Marshal(ns)
}
