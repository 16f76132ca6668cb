// Package library models a discovered library on disk: its root
// directory, its path namespace relative to the package root, its
// classified sources, and its manifest (spec §3 "library_root").
package library

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/forgebuild/forge/internal/classify"
	"github.com/forgebuild/forge/internal/forgeerr"
	"github.com/forgebuild/forge/internal/rules"
)

// Root is a library that exists on the filesystem.
type Root struct {
	path          string
	pathNamespace string
	sources       []classify.File
	warnings      []classify.Warning
	manifest      Manifest
}

// FromDirectory loads the library rooted at dir. pathNamespace is the
// library's path relative to the package root, used as a stable prefix
// for all of its output artifacts (GLOSSARY "path namespace").
func FromDirectory(dir, pathNamespace string, man Manifest) (Root, error) {
	srcRoot := filepath.Join(dir, "src")
	incRoot := filepath.Join(dir, "include")
	if !exists(srcRoot) && !exists(incRoot) {
		return Root{}, forgeerr.ErrNoBuildableRoot
	}

	result, err := classify.Library(dir)
	if err != nil {
		return Root{}, err
	}

	return Root{
		path:          dir,
		pathNamespace: pathNamespace,
		sources:       result.Files,
		warnings:      result.Warnings,
		manifest:      man,
	}, nil
}

func exists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Manifest returns the library's manifest.
func (r Root) Manifest() Manifest { return r.manifest }

// Path is the library's root directory.
func (r Root) Path() string { return r.path }

// PathNamespace is the library's path relative to the package root.
func (r Root) PathNamespace() string { return r.pathNamespace }

// AllSources returns every classified source file, in stable order.
func (r Root) AllSources() []classify.File { return append([]classify.File(nil), r.sources...) }

// Warnings returns non-fatal classification problems (spec §4.4/§7): a
// public include/ directory containing a non-header file.
func (r Root) Warnings() []classify.Warning { return append([]classify.Warning(nil), r.warnings...) }

// SrcSourceRoot is the library's src/ directory.
func (r Root) SrcSourceRoot() string { return filepath.Join(r.path, "src") }

// IncludeSourceRoot is the library's include/ directory.
func (r Root) IncludeSourceRoot() string { return filepath.Join(r.path, "include") }

// PublicIncludeDir is the directory dependees should add to their
// include search path to use this library.
func (r Root) PublicIncludeDir() string { return r.IncludeSourceRoot() }

// PrivateIncludeDir is the directory added only to this library's own
// compile rules, never to a dependee's.
func (r Root) PrivateIncludeDir() string { return r.SrcSourceRoot() }

// AppendPublicCompileRules adds this library's public include directory
// to the given rules, for use by both this library and its dependees.
func (r Root) AppendPublicCompileRules(dst *rules.CompileRules) {
	if exists(r.IncludeSourceRoot()) {
		dst.AddIncludeDir(r.PublicIncludeDir())
	}
}

// AppendPrivateCompileRules adds this library's private include
// directory to the given rules; only this library's own compiles should
// see it.
func (r Root) AppendPrivateCompileRules(dst *rules.CompileRules) {
	if exists(r.SrcSourceRoot()) {
		dst.AddIncludeDir(r.PrivateIncludeDir())
	}
}

// ManifestLoader resolves the manifest for a library at dir, falling
// back to a synthesized manifest (named after the directory) when the
// caller has no manifest file to offer. Manifest-file parsing itself is
// an external collaborator (spec §1); this is just the seam the build
// engine exposes for it.
type ManifestLoader func(dir, fallbackName string) Manifest

// CollectLibraries finds every library under a project root: a library
// directly at root (if it has src/ or include/), plus every immediate
// child of root/libs/ that does.
func CollectLibraries(root string, load ManifestLoader) ([]Root, error) {
	if load == nil {
		load = func(_, fallbackName string) Manifest { return Synthesize(fallbackName) }
	}

	var found []Root

	tryAdd := func(dir, namespace string) error {
		man := load(dir, filepath.Base(dir))
		lib, err := FromDirectory(dir, namespace, man)
		if err != nil {
			if err == forgeerr.ErrNoBuildableRoot {
				return nil
			}
			return err
		}
		found = append(found, lib)
		return nil
	}

	if err := tryAdd(root, "."); err != nil {
		return nil, err
	}

	libsDir := filepath.Join(root, "libs")
	entries, err := os.ReadDir(libsDir)
	if err == nil {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(libsDir, e.Name())
			ns := filepath.Join("libs", e.Name())
			if err := tryAdd(dir, ns); err != nil {
				return nil, err
			}
		}
	}

	return found, nil
}
