package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-jexl/pkg/jexl"
	"github.com/spf13/cobra"
)

var (
	runExpr    string
	runContext string
	runStrict  bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a jexl script",
	Long: `Run evaluates a jexl script read from a file, from the -e expression
flag, or from stdin, against an optional JSON variable context, and prints
the result.

Examples:
  jexl run -e "1 + 2"
  jexl run -e "x.y" --context ctx.json
  jexl run script.jexl --context ctx.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	runCmd.Flags().StringVarP(&runExpr, "eval", "e", "", "evaluate the given expression instead of reading a file")
	runCmd.Flags().StringVarP(&runContext, "context", "c", "", "path to a JSON file supplying the variable context")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "use strict arithmetic mode (errors instead of coercion)")
	rootCmd.AddCommand(runCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	src, err := readSource(runExpr, args)
	if err != nil {
		return err
	}

	ctx := anyContext()
	if runContext != "" {
		loaded, err := loadContext(runContext)
		if err != nil {
			return err
		}
		ctx = loaded
	}

	opts := []jexl.Option{}
	if runStrict {
		opts = append(opts, jexl.WithLenient(false))
	}
	engine := jexl.New(opts...)

	script, err := engine.NewScript(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	result, err := script.Execute(ctx)
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	fmt.Println(result.String())
	return nil
}

// readSource resolves the script text from -e, a file argument, or stdin.
func readSource(expr string, args []string) (string, error) {
	if expr != "" {
		return expr, nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
