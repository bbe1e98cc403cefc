// Command wdlgen lowers a WDL workflow namespace to the DX workflow
// intermediate representation. See cmd/wdlgen/cmd for the subcommand tree.
package main

import (
	"os"

	"github.com/cwbudde/wdlgen/cmd/wdlgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
