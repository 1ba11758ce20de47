package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "protolang",
	Short: "protolang compiler",
	Long: `protolang is an ahead-of-time compiler for a small, statically typed
language: function declarations, block-scoped locals, overloaded
arithmetic operators, and a capability-based type system lowered to
native object code through LLVM.

lex and parse expose the early pipeline stages for debugging; compile
runs the full read -> lex -> parse -> validate -> codegen -> emit -> link
pipeline and produces a linked executable.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
