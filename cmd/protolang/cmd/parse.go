package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/protolang/internal/ast"
	"github.com/cwbudde/protolang/internal/builtins"
	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/lexer"
	"github.com/cwbudde/protolang/internal/parser"
	"github.com/cwbudde/protolang/internal/scope"
	"github.com/cwbudde/protolang/internal/validator"
	"github.com/spf13/cobra"
)

var (
	parseEval     string
	parseDebugAST bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a protolang source file and print its AST",
	Long: `Parse a protolang program and print a textual rendering of the
resulting declarations, useful for debugging the parser independently of
semantic validation and code generation. With --debug-ast the program is
also validated, so the dump carries resolved types.

Examples:
  protolang parse program.proto
  protolang parse -e "func f() -> int { return 1; }"`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from a file")
	parseCmd.Flags().BoolVar(&parseDebugAST, "debug-ast", false, "print a JSON-ish debug dump (resolved types, entities, scopes) instead of the textual AST rendering")
}

func parseScript(_ *cobra.Command, args []string) error {
	file, err := resolveInput(parseEval, args)
	if err != nil {
		return err
	}

	bag := diag.NewBag(file)
	toks := lexer.New(file.Text, bag).Tokenize()

	root := scope.NewRoot()
	builtins.Install(root)
	prog := parser.New(toks, bag, root).Parse()

	if bag.HasErrors() {
		fmt.Fprint(os.Stderr, diag.FormatAll(bag.All()))
		return fmt.Errorf("parsing failed with diagnostics")
	}

	if parseDebugAST {
		if !validator.New(bag).Validate(prog) {
			fmt.Fprint(os.Stderr, diag.FormatAll(bag.All()))
			return fmt.Errorf("validation failed with diagnostics")
		}
		fmt.Println(ast.DebugString(prog))
		fmt.Println(root.DebugString())
		return nil
	}

	fmt.Println(prog.String())
	return nil
}
