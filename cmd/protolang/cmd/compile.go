package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cwbudde/protolang/internal/compiler"
	"github.com/spf13/cobra"
)

var (
	compileOutput string
	compileCCPath string
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a protolang file to a native executable",
	Long: `Compile a protolang program through the full pipeline — lex, parse,
validate, generate LLVM IR, emit an object file, and link — and write a
native executable.

Examples:
  # Compile a script to ./program(.exe)
  protolang compile program.proto

  # Compile with a custom output stem
  protolang compile program.proto -o build/out

  # Link with a specific C compiler driver
  protolang compile program.proto --cc clang`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output stem, no extension (default: <input> base name)")
	compileCmd.Flags().StringVar(&compileCCPath, "cc", "", "C compiler driver used to link the object file (default: cc)")
}

func compileScript(cmd *cobra.Command, args []string) error {
	filename := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")

	if verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	sess := compiler.Session{CCPath: compileCCPath}
	result, ok, bag := sess.Compile(context.Background(), filename, compileOutput)

	if diagText := compiler.FormatDiagnostics(bag); diagText != "" {
		fmt.Fprint(os.Stderr, diagText)
	}
	if !ok {
		return fmt.Errorf("compilation of %s failed", filename)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Object file: %s\n", result.ObjectPath)
	}
	fmt.Printf("Compiled %s -> %s\n", filename, result.ExePath)
	return nil
}
