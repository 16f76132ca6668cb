package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/forgebuild/forge/internal/executor"
	"github.com/forgebuild/forge/internal/library"
	"github.com/forgebuild/forge/internal/planner"
	"github.com/forgebuild/forge/internal/store"
	"github.com/forgebuild/forge/internal/toolchain"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []executor.Event
}

func (r *eventRecorder) record(ev executor.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) countKind(kind executor.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func setupPlan(t *testing.T) (planner.LibraryPlan, string) {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src", "lib.cpp")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(src, []byte("int f() { return 1; }\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lib, err := library.FromDirectory(root, ".", library.Manifest{Name: "mylib"})
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}

	plan, err := planner.Build(lib, planner.BuildParams{OutSubdir: filepath.Join(root, "_build")}, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return plan, src
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "meta.db")
	st, err := store.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestExecutor_SecondRunSkipsFreshCompile(t *testing.T) {
	plan, _ := setupPlan(t)
	st := newStore(t)
	fake := &toolchain.Fake{Mode: toolchain.DepGNU}
	e := &executor.Executor{Store: st, Toolchain: fake, Parallelism: 2}
	ctx := context.Background()

	if err := e.Run(ctx, plan); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := len(fake.Calls()); got != 1 {
		t.Fatalf("expected 1 toolchain call after first run, got %d", got)
	}

	if err := e.Run(ctx, plan); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := len(fake.Calls()); got != 1 {
		t.Fatalf("expected no new toolchain call on second run, got %d total", got)
	}
}

func TestExecutor_SecondRunEmitsSkippedFreshNotFinished(t *testing.T) {
	plan, _ := setupPlan(t)
	st := newStore(t)
	fake := &toolchain.Fake{Mode: toolchain.DepGNU}
	rec := &eventRecorder{}
	e := &executor.Executor{Store: st, Toolchain: fake, Parallelism: 2, OnEvent: rec.record}
	ctx := context.Background()

	if err := e.Run(ctx, plan); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := rec.countKind(executor.EventFinished); got == 0 {
		t.Fatal("expected at least one EventFinished on the first (cold) run")
	}
	if got := rec.countKind(executor.EventSkippedFresh); got != 0 {
		t.Fatalf("expected no EventSkippedFresh on the first run, got %d", got)
	}

	if err := e.Run(ctx, plan); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := rec.countKind(executor.EventSkippedFresh); got == 0 {
		t.Fatal("expected EventSkippedFresh on the second (fresh) run")
	}
}

func TestExecutor_TouchedInputForcesRecompile(t *testing.T) {
	plan, src := setupPlan(t)
	st := newStore(t)
	fake := &toolchain.Fake{Mode: toolchain.DepGNU}
	e := &executor.Executor{Store: st, Toolchain: fake, Parallelism: 2}
	ctx := context.Background()

	if err := e.Run(ctx, plan); err != nil {
		t.Fatalf("first run: %v", err)
	}

	future := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if err := e.Run(ctx, plan); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := len(fake.Calls()); got != 2 {
		t.Fatalf("expected 2 toolchain calls after touching input, got %d", got)
	}
}

func TestExecutor_ToolchainFailureSkipsDownstream(t *testing.T) {
	plan, src := setupPlan(t)
	st := newStore(t)
	fake := &toolchain.Fake{Mode: toolchain.DepGNU, Fail: map[string]bool{src: true}}
	rec := &eventRecorder{}
	e := &executor.Executor{Store: st, Toolchain: fake, Parallelism: 2, OnEvent: rec.record}
	ctx := context.Background()

	err := e.Run(ctx, plan)
	if err == nil {
		t.Fatal("expected an error when the only compile fails")
	}
	if got := rec.countKind(executor.EventSkippedUpstream); got != 1 {
		t.Fatalf("expected the archive to be skipped as downstream of the failure, got %d upstream skips", got)
	}

	if plan.ArchivePlan == nil || len(plan.ArchivePlan.Inputs) == 0 {
		t.Fatal("test fixture expected one compiled input")
	}
	output := plan.ArchivePlan.Inputs[0].Output
	_, has, err := st.CommandOf(ctx, output)
	if err != nil {
		t.Fatalf("CommandOf: %v", err)
	}
	if has {
		t.Fatal("expected no compilation recorded for a failed node")
	}
}
