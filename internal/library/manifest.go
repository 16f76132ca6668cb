package library

// Manifest is the parsed library manifest (spec §3/§6). The build engine
// never parses manifest files itself — it only receives this value,
// already resolved by an external collaborator (manifest-file parsing is
// out of scope per spec §1).
type Manifest struct {
	// Name is the library's own name, used as the default qualified name
	// and as the archive's library name.
	Name string
	// Uses lists sibling/external libraries this library's public
	// interface depends on; these flow into both compile rules (uses)
	// and link rules.
	Uses []string
	// Links lists additional link-time-only usages that don't affect
	// compilation, only linking.
	Links []string
}

// Synthesize builds a minimal manifest for a library directory that has
// no manifest file of its own, using the directory's base name.
func Synthesize(name string) Manifest {
	return Manifest{Name: name}
}
