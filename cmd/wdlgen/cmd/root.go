// Package cmd implements wdlgen's cobra command tree: compile, inspect,
// and version. Grounded on cmd/dwscript/cmd/root.go (package-level rootCmd,
// PersistentFlags for global options, a custom version template, Execute()
// entry point, exitWithError helper).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wdlgen",
	Short: "WDL to DX workflow IR lowering compiler",
	Long: `wdlgen lowers a WDL workflow namespace into the DX workflow
intermediate representation: applets, backbone stages, and the embedded
source fragments each scatter/conditional/eval stage carries.

It accepts a pre-parsed, JSON-encoded namespace AST in place of a real WDL
front end (lexing and parsing are external collaborators, out of scope for
this tool) and emits the Namespace IR as JSON.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
