// Command protolang is the compiler driver's entry point: it just hands
// off to cmd.Execute, the way the teacher's cmd/dwscript/main.go does.
package main

import (
	"os"

	"github.com/cwbudde/protolang/cmd/protolang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
