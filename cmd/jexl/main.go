// Command jexl is the command-line front end for the jexl expression and
// scripting evaluator: `jexl run`, `jexl parse`, and `jexl template`
// subcommands wrap the pkg/jexl façade.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-jexl/cmd/jexl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
