package cmd

import (
	"strings"
	"testing"
)

func TestParseScriptPrintsDeclarations(t *testing.T) {
	parseEval = "func f(x: int) -> int { return x; }"
	defer func() { parseEval = "" }()

	stdout := captureStdout(t, func() {
		if err := parseScript(nil, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(stdout, "func f(x: int) -> int") {
		t.Errorf("expected the rendered function signature, got:\n%s", stdout)
	}
}

func TestParseScriptDebugASTPrintsResolvedDump(t *testing.T) {
	parseEval = "func f(x: int) -> int { return x; }"
	parseDebugAST = true
	defer func() { parseEval = ""; parseDebugAST = false }()

	stdout := captureStdout(t, func() {
		if err := parseScript(nil, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(stdout, `"kind": "Program"`) {
		t.Errorf("expected a DebugString AST dump, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"kind": "Scope"`) {
		t.Errorf("expected a root Scope dump, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"kind": "Callable"`) {
		t.Errorf("expected the resolved function entity in the dump, got:\n%s", stdout)
	}
}

func TestParseScriptReportsDiagnosticsOnSyntaxError(t *testing.T) {
	parseEval = "func f( -> int { return 1; }"
	defer func() { parseEval = "" }()

	if err := parseScript(nil, nil); err == nil {
		t.Fatal("expected an error for malformed source")
	}
}
