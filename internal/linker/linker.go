// Package linker drives a system linker to turn object files into an
// executable (spec §6 "Linker interface").
//
// Grounded on original_source/src/linker/COFFLinker.cpp: build an
// argument list from every input object plus the output path and an
// explicit program entry point, then launch a single external process and
// wait for it to finish. The original shells directly to whatever linker
// guess_linker_path() finds and drives it via Win32 CreateProcess; this
// generalizes that to any host by shelling a C compiler driver (cc/clang/
// gcc), which already knows how to invoke the platform linker with the
// right default libraries and entry-point glue — os/exec is the only
// process-launch mechanism the teacher or any pack repo uses, so no
// third-party process library is pulled in here (spec §6 calls the linker
// itself "platform-specific ... external", not this driver).
package linker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Driver links object files by invoking an external C compiler driver,
// the portable stand-in for the original's direct linker invocation.
type Driver struct {
	// CCPath is the executable to shell out to. Defaults to "cc".
	CCPath string

	// run launches name with args and waits for completion; overridden in
	// tests to avoid depending on a real toolchain being installed.
	run func(ctx context.Context, name string, args []string) error
}

// New creates a Driver that shells ccPath (or "cc" if empty).
func New(ccPath string) *Driver {
	if ccPath == "" {
		ccPath = "cc"
	}
	return &Driver{CCPath: ccPath}
}

// Set overrides the process launcher, for tests that must not depend on a
// real C toolchain being installed.
func (d *Driver) Set(run func(ctx context.Context, name string, args []string) error) {
	d.run = run
}

func (d *Driver) runner() func(ctx context.Context, name string, args []string) error {
	if d.run != nil {
		return d.run
	}
	return runExternal
}

func runExternal(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Link invokes the linker on objects, producing an executable at
// outputStem plus the platform's conventional suffix (".exe" on Windows,
// none elsewhere), and returns that final path. The program entry point is
// "main", same as the original's explicit "/ENTRY:main" — here it's simply
// the C toolchain's own convention, so no equivalent flag is needed.
func (d *Driver) Link(ctx context.Context, objects []string, outputStem string) (string, error) {
	if len(objects) == 0 {
		return "", fmt.Errorf("linker: no object files to link")
	}

	out := outputStem + exeSuffix()
	args := make([]string, 0, len(objects)+2)
	args = append(args, objects...)
	args = append(args, "-o", out)

	if err := d.runner()(ctx, d.CCPath, args); err != nil {
		return "", fmt.Errorf("linking %v into %s: %w", objects, out, err)
	}
	return out, nil
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
