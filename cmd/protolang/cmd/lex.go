package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/protolang/internal/diag"
	"github.com/cwbudde/protolang/internal/lexer"
	"github.com/cwbudde/protolang/internal/source"
	"github.com/spf13/cobra"
)

var lexEval string

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a protolang source file or expression",
	Long: `Tokenize a protolang program and print the resulting tokens, one
per line, useful for debugging the lexer independently of the rest of
the pipeline.

Examples:
  protolang lex program.proto
  protolang lex -e "func f() -> int { return 1; }"`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from a file")
}

func lexScript(_ *cobra.Command, args []string) error {
	file, err := resolveInput(lexEval, args)
	if err != nil {
		return err
	}

	bag := diag.NewBag(file)
	toks := lexer.New(file.Text, bag).Tokenize()
	for _, t := range toks {
		fmt.Println(t.String())
	}

	if bag.HasErrors() {
		fmt.Fprint(os.Stderr, diag.FormatAll(bag.All()))
		return fmt.Errorf("lexing failed with diagnostics")
	}
	return nil
}

// resolveInput reads source either from inline eval text or from the
// single positional file argument, the way the teacher's subcommands do.
func resolveInput(eval string, args []string) (*source.File, error) {
	if eval != "" {
		return source.FromString("<eval>", eval), nil
	}
	if len(args) == 1 {
		f, err := source.Read(args[0])
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", args[0], err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("either provide a file path or use -e for inline code")
}
