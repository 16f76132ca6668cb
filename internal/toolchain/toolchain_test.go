package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/forgebuild/forge/internal/rules"
)

func TestCommand_String_Deterministic(t *testing.T) {
	c := Command{Argv: []string{"cc", "-Ia", "-Ib", "-c", "x.cpp", "-o", "x.o"}, Env: []string{"FOO=1"}}
	want := "cc -Ia -Ib -c x.cpp -o x.o FOO=1"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCommand_String_SameRulesSameString(t *testing.T) {
	r := rules.New()
	r.AddIncludeDir("inc")
	r.SetWarnings(true)

	g := GNU{Compiler: "c++"}
	c1, err := g.CompileCommand(r, "x.cpp", "x.o")
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	c2, err := g.CompileCommand(r, "x.cpp", "x.o")
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	if c1.String() != c2.String() {
		t.Errorf("identical rules/src/out produced different command strings: %q vs %q", c1.String(), c2.String())
	}
}

func TestGNU_CompileCommand_ArgvShape(t *testing.T) {
	r := rules.New()
	r.AddIncludeDir("include")
	r.SetWarnings(true)

	g := GNU{Compiler: "c++"}
	cmd, err := g.CompileCommand(r, "src/widget.cpp", "build/widget.o")
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	wantDepFile := "build/widget.o.d"
	if cmd.DepFile != wantDepFile {
		t.Errorf("DepFile = %q, want %q", cmd.DepFile, wantDepFile)
	}
	if cmd.Argv[0] != "c++" {
		t.Errorf("Argv[0] = %q, want c++", cmd.Argv[0])
	}
	if !contains(cmd.Argv, "-Iinclude") || !contains(cmd.Argv, "-Wall") || !contains(cmd.Argv, "-c") {
		t.Errorf("missing expected flags in argv: %v", cmd.Argv)
	}
}

func TestGNU_CompileCommand_SyntaxOnlyOmitsOutputFlag(t *testing.T) {
	r := rules.New()
	r.SetSyntaxOnly(true)

	g := GNU{Compiler: "c++"}
	cmd, err := g.CompileCommand(r, "include/widget.hpp", "build/widget.check")
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	if contains(cmd.Argv, "-o") {
		t.Errorf("syntax-only compile should not pass -o: %v", cmd.Argv)
	}
	if !contains(cmd.Argv, "-fsyntax-only") {
		t.Errorf("expected -fsyntax-only in argv: %v", cmd.Argv)
	}
}

func TestGNU_CompileCommand_RequiresConfiguredCompiler(t *testing.T) {
	g := GNU{}
	if _, err := g.CompileCommand(rules.New(), "x.cpp", "x.o"); err == nil {
		t.Fatal("expected error when Compiler is unset")
	}
}

func TestGNU_DepMode(t *testing.T) {
	if mode := (GNU{}).DepMode(); mode.Kind != DepGNU {
		t.Errorf("DepMode = %+v, want DepGNU", mode)
	}
}

func TestMSVC_CompileCommand_ArgvShape(t *testing.T) {
	r := rules.New()
	r.AddIncludeDir("include")
	r.SetWarnings(true)

	m := MSVC{Compiler: "cl.exe"}
	cmd, err := m.CompileCommand(r, "src\\widget.cpp", "build\\widget.obj")
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	if !contains(cmd.Argv, "/showIncludes") || !contains(cmd.Argv, "/Iinclude") || !contains(cmd.Argv, "/W4") {
		t.Errorf("missing expected flags in argv: %v", cmd.Argv)
	}
}

func TestMSVC_DepMode_DefaultLeader(t *testing.T) {
	mode := MSVC{Compiler: "cl.exe"}.DepMode()
	if mode.Kind != DepMSVC || mode.Leader != DefaultMSVCLeader {
		t.Errorf("DepMode = %+v, want {DepMSVC %q}", mode, DefaultMSVCLeader)
	}
}

func TestMSVC_DepMode_CustomLeader(t *testing.T) {
	mode := MSVC{Compiler: "cl.exe", Leader: "Custom leader:"}.DepMode()
	if mode.Leader != "Custom leader:" {
		t.Errorf("Leader = %q, want custom value", mode.Leader)
	}
}

func TestFake_Run_WritesOutputAndReportsGNUDeps(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "widget.o")

	f := &Fake{Mode: DepGNU, ExtraDeps: []string{"widget.h"}}
	cmd, err := f.CompileCommand(rules.New(), "widget.cpp", out)
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	if _, err := f.Run(context.Background(), cmd); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected output file to be written: %v", err)
	}
	depBlob, err := os.ReadFile(cmd.DepFile)
	if err != nil {
		t.Fatalf("reading dep file: %v", err)
	}
	if len(depBlob) == 0 {
		t.Error("expected non-empty GNU-style dep blob")
	}
	if len(f.Calls()) != 1 {
		t.Errorf("Calls() = %d, want 1", len(f.Calls()))
	}
}

func TestFake_Run_ReportsFailureForConfiguredSource(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "widget.o")

	f := &Fake{Fail: map[string]bool{"widget.cpp": true}}
	cmd, err := f.CompileCommand(rules.New(), "widget.cpp", out)
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	if _, err := f.Run(context.Background(), cmd); err == nil {
		t.Fatal("expected simulated failure error")
	}
}

func TestFake_Run_MSVCStyleDeps(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "widget.o")

	f := &Fake{Mode: DepMSVC, ExtraDeps: []string{"widget.h"}}
	cmd, err := f.CompileCommand(rules.New(), "widget.cpp", out)
	if err != nil {
		t.Fatalf("CompileCommand: %v", err)
	}
	res, err := f.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stdout == "" {
		t.Error("expected non-empty MSVC-style stdout")
	}
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
