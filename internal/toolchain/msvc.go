package toolchain

import (
	"context"
	"fmt"

	"github.com/forgebuild/forge/internal/rules"
)

// DefaultMSVCLeader is the line prefix real MSVC (cl.exe) emits for
// "/showIncludes", given an untranslated (English) locale.
const DefaultMSVCLeader = "Note: including file:"

// MSVC is a cl.exe-family toolchain adapter: prefix-line dependency
// output mixed into stdout.
type MSVC struct {
	Compiler string
	Leader   string
}

// CompileCommand implements Toolchain.
func (m MSVC) CompileCommand(r rules.CompileRules, src, out string) (Command, error) {
	if m.Compiler == "" {
		return Command{}, fmt.Errorf("msvc toolchain: compiler not configured")
	}

	argv := []string{m.Compiler, "/nologo", "/showIncludes"}
	for _, dir := range r.IncludeDirs() {
		argv = append(argv, "/I"+dir)
	}
	if r.Warnings() {
		argv = append(argv, "/W4")
	}
	if r.SyntaxOnly() {
		argv = append(argv, "/Zs", "/c", src)
	} else {
		argv = append(argv, "/c", src, "/Fo"+out)
	}

	return Command{Argv: argv}, nil
}

// DepMode implements Toolchain.
func (m MSVC) DepMode() DepMode {
	leader := m.Leader
	if leader == "" {
		leader = DefaultMSVCLeader
	}
	return DepMode{Kind: DepMSVC, Leader: leader}
}

// Run implements Toolchain by invoking the subprocess.
func (MSVC) Run(ctx context.Context, cmd Command) (Result, error) {
	return runSubprocess(ctx, cmd)
}
