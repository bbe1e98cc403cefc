package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <namespace.ir.json> <gjson-path>",
	Short: "Query a previously emitted Namespace IR document",
	Long: `Query a Namespace IR JSON document emitted by "wdlgen compile" using a
gjson path expression, for quick debugging of stage wiring without
re-running the compiler.

Examples:
  wdlgen inspect out.json workflow.stages.#.name
  wdlgen inspect out.json applets.eval1.fragment
  wdlgen inspect out.json workflow.stages.2`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	filename, path := args[0], args[1]

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		exitWithError("path %q did not match anything in %s", path, filename)
		return nil
	}

	fmt.Println(result.String())
	return nil
}
