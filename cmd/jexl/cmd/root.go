package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version, GitCommit, and BuildDate are set via -ldflags at release build
// time; they default to dev values for local builds.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jexl",
	Short: "jexl is an embeddable expression and scripting language evaluator",
	Long: `jexl evaluates JEXL-style expressions, scripts, and line templates
against a variable context, with optional host-object introspection.

It can be used as a command-line tool for quick evaluation, or embedded
as a library via the pkg/jexl package.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"jexl version {{.Version}}\nCommit: %s\nBuilt:  %s\n", GitCommit, BuildDate))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
