// Package classify implements the source classifier (spec §4.4): it walks
// a library's src/ and include/ directories and sorts each regular file
// into exactly one Kind, producing a deterministic, lexicographically
// ordered list so that downstream plans are reproducible.
package classify

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forgebuild/forge/internal/forgeerr"
)

// translationUnitExts are compilable source extensions, before the
// ".test"/".main" role suffix is considered.
var translationUnitExts = []string{".cpp", ".cc", ".cxx", ".c++", ".c"}

// headerExts are ordinary header extensions.
var headerExts = []string{".hpp", ".hh", ".hxx", ".h++", ".h"}

// headerImplExts mark a header as an inline-implementation companion of
// a public header (e.g. "widget.inl" paired with "widget.hpp").
var headerImplExts = []string{".inl", ".ipp", ".tpp"}

// templateExts mark a header template: not compiled, rendered into the
// codegen tree before anything includes it.
var templateExts = []string{".in"}

// Warning is a non-fatal classification problem (spec §4.4 / §7): a
// public include/ directory contained a file that isn't a header.
type Warning struct {
	Path    string
	Message string
}

// Err renders the warning as an error wrapping forgeerr.ErrPlanWarning,
// for callers that report warnings through the same error-family
// mapping as other plan-construction problems (spec §7).
func (w Warning) Err() error {
	return fmt.Errorf("%w: %s: %s", forgeerr.ErrPlanWarning, w.Path, w.Message)
}

// Result is the outcome of classifying one library source root.
type Result struct {
	Files    []File
	Warnings []Warning
}

// Library walks the library's src/ and include/ directories (either may
// be absent) and classifies every regular file found. The returned list
// is sorted lexicographically by absolute path.
func Library(libRoot string) (Result, error) {
	var res Result

	if files, warns, err := walkRole(libRoot, "src", false); err != nil {
		return Result{}, err
	} else {
		res.Files = append(res.Files, files...)
		res.Warnings = append(res.Warnings, warns...)
	}

	if files, warns, err := walkRole(libRoot, "include", true); err != nil {
		return Result{}, err
	} else {
		res.Files = append(res.Files, files...)
		res.Warnings = append(res.Warnings, warns...)
	}

	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })
	return res, nil
}

func walkRole(libRoot, role string, publicOnly bool) ([]File, []Warning, error) {
	root := filepath.Join(libRoot, role)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		// Either role directory may legitimately be absent.
		return nil, nil, nil
	}

	var files []File
	var warnings []Warning

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(libRoot, path)
		if relErr != nil {
			rel = path
		}
		kind, ok := classifyOne(path)
		if !ok {
			if publicOnly {
				warnings = append(warnings, Warning{
					Path:    path,
					Message: "include/ should only contain header or header template files",
				})
			}
			return nil
		}
		if publicOnly && !IsHeader(kind) {
			warnings = append(warnings, Warning{
				Path:    path,
				Message: "include/ should only contain header or header template files",
			})
			return nil
		}
		files = append(files, File{Path: path, Kind: kind, RelPath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return files, warnings, nil
}

// classifyOne determines the Kind of a single file by its name, or
// reports ok=false if the extension is not recognized at all.
func classifyOne(path string) (Kind, bool) {
	base := filepath.Base(path)
	lower := strings.ToLower(base)

	if ext, ok := matchSuffix(lower, headerImplExts); ok {
		_ = ext
		return HeaderImpl, true
	}
	for _, ext := range templateExts {
		// Header templates look like "widget.in.hpp": the ".in" role
		// suffix sits just before a real header extension.
		for _, hext := range headerExts {
			suffix := ext + hext
			if strings.HasSuffix(lower, suffix) {
				return HeaderTemplate, true
			}
		}
	}
	if _, ok := matchSuffix(lower, headerExts); ok {
		return Header, true
	}
	if isRoleSource(lower, ".test") {
		return Test, true
	}
	// A bare "main.<tu-ext>" (e.g. "main.cpp") is an app entry point just
	// like "<stem>.main.<tu-ext>".
	if isRoleSource(lower, ".main") || isRoleSource("."+lower, ".main") {
		return App, true
	}
	if _, ok := matchSuffix(lower, translationUnitExts); ok {
		return Source, true
	}
	return Unknown, false
}

// isRoleSource reports whether base matches "<stem><role>.<tu-ext>",
// e.g. role ".test" matches "widget.test.cpp".
func isRoleSource(base, role string) bool {
	for _, ext := range translationUnitExts {
		if strings.HasSuffix(base, role+ext) {
			return true
		}
	}
	return false
}

func matchSuffix(base string, exts []string) (string, bool) {
	for _, ext := range exts {
		if strings.HasSuffix(base, ext) {
			return ext, true
		}
	}
	return "", false
}
