package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cwbudde/wdlgen/internal/dxapi"
	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/irgen"
	"github.com/cwbudde/wdlgen/internal/irjson"
	"github.com/cwbudde/wdlgen/internal/wdljson"
)

var (
	compileOutput   string
	compileLocked   bool
	compileReorg    bool
	compileProject  string
	compileDryRun   bool
	compileManifest string
)

var compileCmd = &cobra.Command{
	Use:   "compile [namespace.json]",
	Short: "Lower a JSON-encoded WDL namespace AST to DX workflow IR",
	Long: `Run the Top-Level Driver over a pre-parsed namespace (a JSON-encoded
AST, since the real WDL parser is out of scope for this tool) and write the
resulting Namespace IR as JSON.

Examples:
  # Compile an unlocked workflow (synthesizes a common-inputs stage)
  wdlgen compile namespace.json -o out.json

  # Compile a locked workflow with a trailing output-reorganization stage
  wdlgen compile namespace.json --locked --reorg -o out.json

  # Resolve docker platform URLs against an offline manifest
  wdlgen compile namespace.json --dry-run --manifest manifest.yaml -o out.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: <input>.ir.json)")
	compileCmd.Flags().BoolVar(&compileLocked, "locked", false, "compile the primary workflow in locked mode")
	compileCmd.Flags().BoolVar(&compileReorg, "reorg", false, "append a trailing WorkflowOutputReorg stage")
	compileCmd.Flags().StringVar(&compileProject, "project", "", "DX project:folder to ensure exists before compiling (dry-run only)")
	compileCmd.Flags().BoolVar(&compileDryRun, "dry-run", false, "resolve docker platform URLs and project folders against local stand-ins instead of a live DX API")
	compileCmd.Flags().StringVar(&compileManifest, "manifest", "", "YAML manifest of platform-URL -> record-id entries consulted by the dry-run resolver")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]

	logger := newCharmLogger()

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	ns, err := wdljson.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode namespace AST: %w", err)
	}

	ctx := context.Background()

	var resolver dxapi.URLResolver
	var project dxapi.ProjectClient
	if compileDryRun {
		var manifest *dxapi.Manifest
		if compileManifest != "" {
			manifest, err = dxapi.LoadManifest(compileManifest)
			if err != nil {
				return err
			}
		}
		resolver = dxapi.NewDryRunResolver(manifest)
		project = dxapi.NoopProjectClient{}

		if compileProject != "" {
			projectID, folder, ok := strings.Cut(compileProject, ":")
			if !ok {
				return fmt.Errorf("--project must be of the form <project-id>:<folder>, got %q", compileProject)
			}
			if err := project.EnsureFolder(ctx, projectID, folder); err != nil {
				return fmt.Errorf("ensuring project folder: %w", err)
			}
			logger.Debugf("ensured folder %s under project %s (dry-run)", folder, projectID)
		}
	}

	compiler := irgen.NewCompiler(irgen.Options{
		Locked:   compileLocked,
		Reorg:    compileReorg,
		Resolver: resolver,
		Logger:   logger,
	})

	result, err := compiler.CompileNamespace(ctx, ns)
	if err != nil {
		return formatCompileError(err)
	}

	doc, err := irjson.NewSerializer().Marshal(result)
	if err != nil {
		return fmt.Errorf("serializing namespace IR: %w", err)
	}

	outFile := compileOutput
	if outFile == "" {
		outFile = strings.TrimSuffix(filename, ".json") + ".ir.json"
	}
	if err := os.WriteFile(outFile, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Compiled %s -> %s (%d bytes)\n", filename, outFile, len(doc))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}

// formatCompileError renders an irerrors.CompileError with its source
// position the way dwscript's errors.FormatErrors surfaces a parser/semantic
// CompilerError, without depending on that package's source-context
// rendering (this tool's inputs are already-validated JSON ASTs, not raw
// source text).
func formatCompileError(err error) error {
	var ce *irerrors.CompileError
	if e, ok := err.(*irerrors.CompileError); ok {
		ce = e
	}
	if ce == nil {
		return err
	}
	return fmt.Errorf("%s: %s", ce.Kind, ce.Error())
}

// charmLogger adapts github.com/charmbracelet/log to irgen.Logger, the only
// leveled-logging seam the core package exposes (spec §5 keeps the core
// itself free of any concrete logging dependency).
type charmLogger struct {
	l *charmlog.Logger
}

func newCharmLogger() *charmLogger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
		Prefix:          "wdlgen",
	})
	if verbose {
		l.SetLevel(charmlog.DebugLevel)
	} else {
		l.SetLevel(charmlog.WarnLevel)
	}
	return &charmLogger{l: l}
}

func (c *charmLogger) Warnf(format string, args ...any)  { c.l.Warnf(format, args...) }
func (c *charmLogger) Debugf(format string, args ...any) { c.l.Debugf(format, args...) }
