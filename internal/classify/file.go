package classify

// File is a single classified file discovered under a library's source
// tree.
type File struct {
	// Path is the absolute path to the file on disk.
	Path string
	// Kind is the file's classification.
	Kind Kind
	// RelPath is the path relative to the library root that owns this
	// file (e.g. "src/widget.cpp" or "include/acme/widget.hpp").
	RelPath string
}

// Stem returns the filename with its two trailing extensions stripped,
// matching the "foo.test.cpp" → "foo" rule used to name test/app
// executables (two extensions: the translation-unit suffix, then the
// role suffix).
func (f File) Stem() string {
	return stemTwoExts(f.RelPath)
}

func stemTwoExts(relPath string) string {
	base := basename(relPath)
	// Strip up to two trailing ".ext" components.
	for i := 0; i < 2; i++ {
		base = stripOneExt(base)
	}
	return base
}

func basename(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}

func stripOneExt(base string) string {
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			if i == 0 {
				return base
			}
			return base[:i]
		}
	}
	return base
}
