// Package watch implements the watch loop (SPEC_FULL.md §9): an
// fsnotify-driven rebuild trigger. On any change under a library's
// source tree, it re-invokes the existing classify → plan → execute
// pipeline; it adds no staleness logic of its own — the oracle already
// makes repeated invocations safe.
//
// Grounded on the teacher's internal/nebula/watcher.go: a debounced
// fsnotify loop with a pending-events map drained by a ticker, so a
// burst of saves from an editor collapses into one rebuild.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes why a rebuild was triggered.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeRemoved
	ChangeAdded
)

// Change is one debounced filesystem event that should trigger a rebuild.
type Change struct {
	Kind ChangeKind
	File string // path as reported by fsnotify, under one of the watched Dirs
}

// Watcher monitors one or more library roots for source-tree changes.
type Watcher struct {
	Dirs    []string
	Changes <-chan Change // read-only external channel

	changes chan Change // internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// New creates a watcher over the given directories. Callers typically
// pass each discovered library's src/ and include/ roots.
func New(dirs []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Dirs:    dirs,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	return w, nil
}

// Start begins watching every configured directory recursively.
func (w *Watcher) Start() error {
	for _, dir := range w.Dirs {
		if err := addRecursive(w.watcher, dir); err != nil {
			return err
		}
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and its output channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	const debounce = 150 * time.Millisecond
	pending := make(map[string]ChangeKind)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file, kind := range pending {
					w.changes <- Change{Kind: kind, File: file}
				}
				return
			}
			if !isSourceFile(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove):
				pending[event.Name] = ChangeRemoved
			case event.Has(fsnotify.Create):
				pending[event.Name] = ChangeAdded
			case event.Has(fsnotify.Write):
				if _, already := pending[event.Name]; !already {
					pending[event.Name] = ChangeModified
				}
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			for file, kind := range pending {
				w.changes <- Change{Kind: kind, File: file}
			}
			pending = make(map[string]ChangeKind)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal: a single watch error shouldn't stop the loop.
		}
	}
}

// sourceExts mirrors the extensions classify.Library recognizes; the
// watcher only needs to know "is this worth a rebuild", not how to
// classify it.
var sourceExts = []string{
	".c", ".cpp", ".cc", ".cxx", ".c++",
	".h", ".hpp", ".hh", ".hxx", ".h++",
	".inl", ".ipp", ".tpp", ".in",
}

func isSourceFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range sourceExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		// A library root may legitimately lack src/ or include/.
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
