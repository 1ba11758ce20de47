package codegen_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestGenerateLoweringTraceSnapshots snapshots the fakeBackend's op trace
// for representative functions, so an unintended change in lowering shape
// (a different cast inserted, an operator routed to the wrong builder
// call, an alloca landing outside the entry block) shows up as a diff
// against spec §8's boundary scenarios instead of requiring a fresh
// hand-written assertion per case.
func TestGenerateLoweringTraceSnapshots(t *testing.T) {
	programs := map[string]string{
		"param_and_return":  "func f(x: int) -> int { return x; }",
		"local_var_decl":    "func f() -> int { var a: int = 1; return a; }",
		"signed_add":        "func f(x: int, y: int) -> int { return x + y; }",
		"unsigned_div":      "func f(x: uint, y: uint) -> uint { return x / y; }",
		"float_mul":         "func f(x: float, y: float) -> float { return x * y; }",
		"call_another_func": "func callee(x: int) -> int { return x; }\nfunc caller() -> int { return callee(1); }",
	}

	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			fb, ok := compileToBackend(t, src)
			if !ok {
				t.Fatalf("generation failed for %s", name)
			}
			snaps.MatchSnapshot(t, name, fb.String())
		})
	}
}
