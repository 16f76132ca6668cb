package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/forgebuild/forge/internal/forgeerr"
	"github.com/forgebuild/forge/internal/rules"
)

// GNU is a gcc/clang-family toolchain adapter: make-style dependency
// output written to a ".d" sidecar next to the object file.
type GNU struct {
	// Compiler is the executable name or path, e.g. "c++" or
	// "/usr/bin/clang++".
	Compiler string
}

// CompileCommand implements Toolchain.
func (g GNU) CompileCommand(r rules.CompileRules, src, out string) (Command, error) {
	if g.Compiler == "" {
		return Command{}, fmt.Errorf("gnu toolchain: compiler not configured")
	}

	argv := []string{g.Compiler}
	for _, dir := range r.IncludeDirs() {
		argv = append(argv, "-I"+dir)
	}
	if r.Warnings() {
		argv = append(argv, "-Wall", "-Wextra")
	}

	depFile := out + ".d"
	argv = append(argv, "-MD", "-MF", depFile)

	if r.SyntaxOnly() {
		argv = append(argv, "-fsyntax-only", "-c", src)
	} else {
		argv = append(argv, "-c", src, "-o", out)
	}

	return Command{Argv: argv, DepFile: depFile}, nil
}

// DepMode implements Toolchain.
func (GNU) DepMode() DepMode { return DepMode{Kind: DepGNU} }

// Run implements Toolchain by invoking the subprocess.
func (GNU) Run(ctx context.Context, cmd Command) (Result, error) {
	return runSubprocess(ctx, cmd)
}

func runSubprocess(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Argv) == 0 {
		return Result{}, fmt.Errorf("%w: empty command", forgeerr.ErrToolchainFailed)
	}
	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Env = append(c.Env, cmd.Env...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return Result{Stdout: stdout.String(), Stderr: stderr.String()},
			fmt.Errorf("%w: %s: %v", forgeerr.ErrToolchainFailed, cmd.Argv[0], err)
	}
	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
