package toolchain

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/forgebuild/forge/internal/forgeerr"
	"github.com/forgebuild/forge/internal/rules"
)

// Fake is a toolchain double used by tests: it never spawns a
// subprocess. CompileCommand synthesizes a deterministic command string
// exactly like a real adapter would; Run simulates the side effect a
// real compiler has (creating the output file — an object stub, or a
// sentinel for syntax-only compiles — and reporting the source plus any
// configured extra inputs as dependency output in whatever dialect Mode
// selects; the MSVC dialect omits the source itself) so the
// executor and staleness tests can run without any real compiler
// installed.
type Fake struct {
	Mode DepModeKind
	// ExtraDeps are additional header paths every compile should report
	// as an input, simulating #include discovery.
	ExtraDeps []string
	// Fail, if set, marks every compile of a source whose name is in
	// this set as a failure.
	Fail map[string]bool

	mu    sync.Mutex
	calls []Command
}

// CompileCommand implements Toolchain.
func (f *Fake) CompileCommand(r rules.CompileRules, src, out string) (Command, error) {
	argv := []string{"fakecc"}
	for _, dir := range r.IncludeDirs() {
		argv = append(argv, "-I"+dir)
	}
	if r.Warnings() {
		argv = append(argv, "-Wall")
	}
	if r.SyntaxOnly() {
		argv = append(argv, "-fsyntax-only")
	}
	argv = append(argv, "-c", src, "-o", out)
	return Command{Argv: argv, DepFile: out + ".d"}, nil
}

// DepMode implements Toolchain.
func (f *Fake) DepMode() DepMode {
	if f.Mode == DepMSVC {
		return DepMode{Kind: DepMSVC, Leader: DefaultMSVCLeader}
	}
	return DepMode{Kind: f.Mode}
}

// Calls returns every command Run has been asked to execute, in order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.calls...)
}

// Run simulates a compile: writes the output file ("fake object" for a
// normal compile, "ok" for a syntax-only one), and reports dependency
// info in the configured dialect.
func (f *Fake) Run(ctx context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	src, out, syntaxOnly := parseFakeArgv(cmd.Argv)
	if f.Fail[src] {
		return Result{Stderr: "fake: simulated failure"}, fmt.Errorf("%w: simulated failure compiling %s", forgeerr.ErrToolchainFailed, src)
	}

	if !syntaxOnly && out != "" {
		if err := os.WriteFile(out, []byte("fake object\n"), 0o644); err != nil {
			return Result{}, err
		}
	} else if syntaxOnly && out != "" {
		if err := os.WriteFile(out, []byte("ok\n"), 0o644); err != nil {
			return Result{}, err
		}
	}

	inputs := append([]string{src}, f.ExtraDeps...)

	switch f.Mode {
	case DepGNU:
		if cmd.DepFile != "" {
			blob := fmt.Sprintf("%s: %s\n", out, strings.Join(inputs, " "))
			if err := os.WriteFile(cmd.DepFile, []byte(blob), 0o644); err != nil {
				return Result{}, err
			}
		}
		return Result{}, nil
	case DepMSVC:
		var sb strings.Builder
		for _, in := range inputs[1:] { // real MSVC doesn't report the primary source itself
			sb.WriteString(DefaultMSVCLeader)
			sb.WriteByte(' ')
			sb.WriteString(in)
			sb.WriteByte('\n')
		}
		sb.WriteString("compilation succeeded\n")
		return Result{Stdout: sb.String()}, nil
	default:
		return Result{}, nil
	}
}

func parseFakeArgv(argv []string) (src, out string, syntaxOnly bool) {
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-c":
			if i+1 < len(argv) {
				src = argv[i+1]
			}
		case "-o":
			if i+1 < len(argv) {
				out = argv[i+1]
			}
		case "-fsyntax-only":
			syntaxOnly = true
		}
	}
	return src, out, syntaxOnly
}
