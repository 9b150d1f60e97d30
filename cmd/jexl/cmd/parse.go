package cmd

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseExpr    string
	parseDumpAST bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a jexl script or expression and print its AST",
	Long: `Parse reads a jexl script from a file, from the -e expression flag, or
from stdin, and either re-renders it (the default) or dumps its AST
structure with --dump-ast.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseExpr, "eval", "e", "", "parse the given expression instead of reading a file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "print the parsed AST instead of re-rendering the source")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	src, err := readSource(parseExpr, args)
	if err != nil {
		return err
	}

	script, _, err := parser.Parse(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if parseDumpAST {
		dumpASTNode(script, 0)
		return nil
	}
	fmt.Println(script.String())
	return nil
}

// dumpASTNode recursively prints n's node type, its own textual rendering,
// and its children, indented two spaces per level.
func dumpASTNode(n ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%T %s\n", indent, n, nodeSummary(n))
	for _, child := range ast.Children(n) {
		dumpASTNode(child, depth+1)
	}
}

// nodeSummary renders the node's own text for leaf-identifying fields that
// Children does not surface (names, operators, literal values).
func nodeSummary(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Identifier:
		return v.Name
	case *ast.Var:
		return v.Name
	case *ast.IntLit:
		return v.Image
	case *ast.FloatLit:
		return v.Image
	case *ast.StringLit:
		return fmt.Sprintf("%q", v.Value)
	case *ast.BoolLit:
		return v.String()
	case *ast.BinaryExpr:
		return v.Op
	case *ast.UnaryExpr:
		return v.Op
	case *ast.FunctionCall:
		if v.Namespace != "" {
			return v.Namespace + ":" + v.Name
		}
		return v.Name
	case *ast.MethodCall:
		return v.Name
	case *ast.ConstructorCall:
		return v.Class.String()
	default:
		return ""
	}
}
