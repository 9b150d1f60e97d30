package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-jexl/pkg/jexl"
	"github.com/spf13/cobra"
)

var (
	templateContext string
	templatePrefix  string
)

var templateCmd = &cobra.Command{
	Use:   "template [file]",
	Short: "Render a jexl line template",
	Long: `Template reads a line-oriented template from a file or from stdin and
renders it against an optional JSON variable context, writing the result
to stdout.

Lines beginning with the directive prefix (default "$$") are compiled as
script code; every other line is verbatim text that may embed unified
${...}/#{...} expressions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().StringVarP(&templateContext, "context", "c", "", "path to a JSON file supplying the variable context")
	templateCmd.Flags().StringVar(&templatePrefix, "prefix", "", "directive prefix (default \"$$\")")
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	var source string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		source = string(data)
	} else {
		src, err := readSource("", nil)
		if err != nil {
			return err
		}
		source = src
	}

	ctx := anyContext()
	if templateContext != "" {
		loaded, err := loadContext(templateContext)
		if err != nil {
			return err
		}
		ctx = loaded
	}

	engine := jexl.New()
	var tpl *jexl.Template
	var err error
	if templatePrefix != "" {
		tpl, err = engine.CreateTemplateWithPrefix(templatePrefix, source)
	} else {
		tpl, err = engine.CreateTemplate(source)
	}
	if err != nil {
		return fmt.Errorf("compile template: %w", err)
	}

	if err := tpl.Evaluate(ctx, os.Stdout); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
