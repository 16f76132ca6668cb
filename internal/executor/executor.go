// Package executor implements the plan executor (spec §4.6): it walks a
// library_plan in dependency order, consulting the staleness oracle
// before every compile, invoking the toolchain only when necessary, and
// committing the metadata-store update protocol on success.
//
// Concurrency is grounded on the teacher's internal/nebula/worker.go
// WorkerGroup: a completion-channel plus atomic.Int64 active-count
// ("awaitCompletion"/"drainActive") replaces a plain sync.WaitGroup
// barrier so that, within a dependency wave, a finishing node
// immediately frees a slot for the next one instead of waiting for the
// whole wave to drain. Wave boundaries themselves come from
// internal/graph, generalized from the teacher's internal/dag and
// internal/nebula/graph.go.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/forgebuild/forge/internal/depsinfo"
	"github.com/forgebuild/forge/internal/forgeerr"
	"github.com/forgebuild/forge/internal/graph"
	"github.com/forgebuild/forge/internal/planner"
	"github.com/forgebuild/forge/internal/staleness"
	"github.com/forgebuild/forge/internal/store"
	"github.com/forgebuild/forge/internal/toolchain"
)

// EventKind classifies a progress event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventSkippedFresh
	EventFinished
	EventFailed
	EventSkippedUpstream
)

// Event is one progress notification, consumed by the dashboard or a
// plain logger. It never feeds back into the staleness decision.
type Event struct {
	NodeID string
	Kind   EventKind
	Err    error
}

// Executor runs a library_plan to completion or first failure.
type Executor struct {
	Store       *store.Store
	Toolchain   toolchain.Toolchain
	Parallelism int
	// Logger receives one line per compile/archive/link/render action.
	// Guarded internally so concurrent nodes never interleave a line
	// (spec §5 "logs... must be line-atomic"), mirroring the teacher's
	// WorkerGroup.outputMu pattern.
	Logger io.Writer
	// OnEvent, if set, is invoked for every Event. Called while holding
	// the executor's own output lock, so it must not block or call back
	// into the Executor.
	OnEvent func(Event)

	outputMu sync.Mutex
}

func (e *Executor) logLine(format string, args ...any) {
	e.outputMu.Lock()
	defer e.outputMu.Unlock()
	w := e.Logger
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (e *Executor) emit(ev Event) {
	e.outputMu.Lock()
	defer e.outputMu.Unlock()
	if e.OnEvent != nil {
		e.OnEvent(ev)
	}
}

type nodeKind int

const (
	kindCompile nodeKind = iota
	kindArchive
	kindLink
	kindTemplate
)

// Run executes every node in plan, respecting archive/link dependencies
// on their compile inputs. Template renders and compiles have no
// dependency on one another and may proceed concurrently (spec §5).
func (e *Executor) Run(ctx context.Context, plan planner.LibraryPlan) error {
	if e.Parallelism <= 0 {
		e.Parallelism = 1
	}

	kinds := map[string]nodeKind{}
	compiles := map[string]planner.CompileFilePlan{}
	archives := map[string]planner.CreateArchivePlan{}
	links := map[string]planner.LinkExecutablePlan{}
	templates := map[string]planner.RenderTemplatePlan{}

	g := graph.New()

	addCompile := func(cfp planner.CompileFilePlan) {
		if _, ok := compiles[cfp.Output]; ok {
			return
		}
		compiles[cfp.Output] = cfp
		kinds[cfp.Output] = kindCompile
		g.AddNode(cfp.Output)
	}

	for _, cfp := range plan.LibCompileFiles {
		addCompile(cfp)
	}
	for _, cfp := range plan.HeaderIndepPlans {
		addCompile(cfp)
	}
	for _, tp := range plan.TemplatePlans {
		templates[tp.Output] = tp
		kinds[tp.Output] = kindTemplate
		g.AddNode(tp.Output)
	}
	if plan.ArchivePlan != nil {
		archives[plan.ArchivePlan.Output] = *plan.ArchivePlan
		kinds[plan.ArchivePlan.Output] = kindArchive
		for _, cfp := range plan.ArchivePlan.Inputs {
			addCompile(cfp)
			g.AddDependency(plan.ArchivePlan.Output, cfp.Output)
		}
	}
	for _, lp := range plan.LinkPlans {
		addCompile(lp.Compile)
		links[lp.Output] = lp
		kinds[lp.Output] = kindLink
		g.AddDependency(lp.Output, lp.Compile.Output)
	}

	waves, err := g.ComputeWaves()
	if err != nil {
		return err
	}

	var failedOnce atomic.Bool
	var firstErr error
	var errMu sync.Mutex
	recordErr := func(nodeID string, err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = fmt.Errorf("node %s: %w", nodeID, err)
		}
	}

	for _, wave := range waves {
		var activeCount int64
		completionCh := make(chan string, len(wave.NodeIDs))

		awaitCompletion := func() {
			<-completionCh
			atomic.AddInt64(&activeCount, -1)
		}
		drainActive := func() {
			for atomic.LoadInt64(&activeCount) > 0 {
				<-completionCh
				atomic.AddInt64(&activeCount, -1)
			}
		}

		for _, id := range wave.NodeIDs {
			if failedOnce.Load() {
				e.emit(Event{NodeID: id, Kind: EventSkippedUpstream})
				continue
			}
			for atomic.LoadInt64(&activeCount) >= int64(e.Parallelism) {
				awaitCompletion()
			}
			atomic.AddInt64(&activeCount, 1)

			go func(id string) {
				defer func() { completionCh <- id }()

				e.emit(Event{NodeID: id, Kind: EventStarted})
				var runErr error
				var skipped bool
				switch kinds[id] {
				case kindCompile:
					skipped, runErr = e.runCompile(ctx, compiles[id])
				case kindArchive:
					runErr = e.runArchive(ctx, archives[id])
				case kindLink:
					runErr = e.runLink(ctx, links[id])
				case kindTemplate:
					runErr = e.runTemplate(ctx, templates[id])
				}

				if runErr != nil {
					failedOnce.Store(true)
					recordErr(id, runErr)
					e.emit(Event{NodeID: id, Kind: EventFailed, Err: runErr})
					return
				}
				if skipped {
					e.emit(Event{NodeID: id, Kind: EventSkippedFresh})
					return
				}
				e.emit(Event{NodeID: id, Kind: EventFinished})
			}(id)
		}

		drainActive()
	}

	return firstErr
}

// runCompile implements spec §4.6 steps 1-5 for a single compile node.
// The skipped return tells the caller whether this node was a fresh-skip
// rather than an actual compile, so it can emit EventSkippedFresh instead
// of EventFinished.
func (e *Executor) runCompile(ctx context.Context, cfp planner.CompileFilePlan) (skipped bool, err error) {
	cmd, err := e.Toolchain.CompileCommand(cfp.Rules, cfp.Source.Path, cfp.Output)
	if err != nil {
		return false, err
	}
	intended := cmd.String()

	mode := e.Toolchain.DepMode()
	if mode.Kind != toolchain.DepNone {
		prior, err := staleness.Get(ctx, e.Store, cfp.Output)
		if err != nil {
			return false, err
		}
		if !staleness.ShouldRecompile(prior, intended) {
			e.logLine("skip (fresh): %s", cfp.Output)
			return true, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfp.Output), 0o755); err != nil {
		return false, fmt.Errorf("%w: create output dir for %s: %v", forgeerr.ErrToolchainFailed, cfp.Output, err)
	}

	e.logLine("compile: %s", intended)
	result, err := e.Toolchain.Run(ctx, cmd)
	if err != nil {
		return false, err
	}

	deps, malformed := e.parseDeps(mode, cmd, cfp.Output, intended, result)
	if malformed || mode.Kind == toolchain.DepNone {
		// No reliable dependency info: leave the store untouched so the
		// next invocation has no prior record and always recompiles
		// (spec §7 category 1; GLOSSARY "dep mode" none).
		return false, nil
	}

	mtimes := make(map[string]time.Time, len(deps.Inputs))
	for _, in := range deps.Inputs {
		info, statErr := os.Stat(in)
		if statErr != nil {
			e.logLine("critical: input %s reported by toolchain is unreadable, forcing future recompile", in)
			return false, nil
		}
		mtimes[in] = info.ModTime()
	}

	return false, e.Store.ApplyUpdate(ctx, deps, mtimes)
}

type criticalLogger struct {
	e        *Executor
	critical *bool
}

func (c criticalLogger) Critical(msg string) {
	*c.critical = true
	c.e.logLine("critical: %s", msg)
}

// parseDeps dialect-dispatches on mode and returns the parsed dependency
// info plus whether parsing failed (spec §7 category 1).
func (e *Executor) parseDeps(mode toolchain.DepMode, cmd toolchain.Command, output, command string, result toolchain.Result) (depsinfo.FileDepsInfo, bool) {
	var malformed bool
	logger := criticalLogger{e: e, critical: &malformed}

	switch mode.Kind {
	case toolchain.DepGNU:
		if cmd.DepFile == "" {
			return depsinfo.FileDepsInfo{}, true
		}
		blob, err := os.ReadFile(cmd.DepFile)
		if err != nil {
			e.logLine("critical: dependency sidecar %s unreadable: %v", cmd.DepFile, err)
			return depsinfo.FileDepsInfo{}, true
		}
		parsed := depsinfo.ParseMake(string(blob), logger)
		if malformed {
			return depsinfo.FileDepsInfo{}, true
		}
		parsed.Output = output
		parsed.Command = command
		return parsed, false

	case toolchain.DepMSVC:
		msvc := depsinfo.ParseMSVC(result.Stdout, mode.Leader)
		if msvc.CleanedOutput != "" {
			e.logLine("%s", msvc.CleanedOutput)
		}
		return depsinfo.FileDepsInfo{
			Output:  output,
			Inputs:  msvc.Deps.Inputs,
			Command: command,
		}, false

	default:
		return depsinfo.FileDepsInfo{}, true
	}
}

// runArchive stands in for the archive step: it creates the archive's
// directory and logs the action, but does not write an archive file.
// Archive invocation mechanics are out of scope (spec §1); the node's only
// responsibility here is to exist as a dependency join point in the plan
// graph, so it succeeds unconditionally once every compile input has
// already completed (guaranteed by graph ordering).
func (e *Executor) runArchive(ctx context.Context, ap planner.CreateArchivePlan) error {
	if err := os.MkdirAll(filepath.Dir(ap.Output), 0o755); err != nil {
		return fmt.Errorf("%w: create archive dir for %s: %v", forgeerr.ErrToolchainFailed, ap.Output, err)
	}
	e.logLine("archive: %s (%d objects)", ap.Output, len(ap.Inputs))
	return nil
}

// runLink stands in for linking one executable: it creates the output
// directory and logs the action, but does not produce a binary. Link
// invocation mechanics are out of scope (spec §1); as with runArchive,
// this node exists to sequence after its own compile.
func (e *Executor) runLink(ctx context.Context, lp planner.LinkExecutablePlan) error {
	if err := os.MkdirAll(filepath.Dir(lp.Output), 0o755); err != nil {
		return fmt.Errorf("%w: create link dir for %s: %v", forgeerr.ErrToolchainFailed, lp.Output, err)
	}
	e.logLine("link: %s (links: %v)", lp.Output, lp.Links)
	return nil
}

// runTemplate renders one header template. Parameter substitution itself
// is an external collaborator's concern (manifest-driven, out of scope
// per spec §1); this copies the template's contents unchanged to the
// codegen path the plan names. Render nodes have no graph edge to any
// compile node, so they run in the same wave as the compiles.
func (e *Executor) runTemplate(ctx context.Context, tp planner.RenderTemplatePlan) error {
	if err := os.MkdirAll(filepath.Dir(tp.Output), 0o755); err != nil {
		return fmt.Errorf("%w: create codegen dir for %s: %v", forgeerr.ErrToolchainFailed, tp.Output, err)
	}
	content, err := os.ReadFile(tp.Source.Path)
	if err != nil {
		return fmt.Errorf("%w: read template %s: %v", forgeerr.ErrInputUnreadable, tp.Source.Path, err)
	}
	e.logLine("render: %s -> %s", tp.Source.Path, tp.Output)
	return os.WriteFile(tp.Output, content, 0o644)
}
