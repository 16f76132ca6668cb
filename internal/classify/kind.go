package classify

// Kind is the classification of a single file discovered under a
// library's src/ or include/ tree.
type Kind int

const (
	// Unknown is never assigned to a classified SourceFile; it exists so
	// the zero value is distinguishable from a real classification.
	Unknown Kind = iota

	// Source is an ordinary compilable translation unit that belongs in
	// the library's archive.
	Source

	// Test is a translation unit with a main() that exercises the
	// library; linked into its own executable, never archived.
	Test

	// App is a translation unit with a main() that is not a test;
	// linked into its own executable, never archived.
	App

	// Header is an ordinary header file.
	Header

	// HeaderTemplate is a header that is not compiled directly but
	// rendered (with parameter substitution) into a header under the
	// codegen tree before anything includes it.
	HeaderTemplate

	// HeaderImpl is an inline-implementation header paired with a public
	// header (e.g. a ".inl" companion). Classified but never referenced
	// by any plan: see spec Open Questions.
	HeaderImpl
)

// String renders the kind for logging and test failure messages.
func (k Kind) String() string {
	switch k {
	case Source:
		return "source"
	case Test:
		return "test"
	case App:
		return "app"
	case Header:
		return "header"
	case HeaderTemplate:
		return "header_template"
	case HeaderImpl:
		return "header_impl"
	default:
		return "unknown"
	}
}

// IsHeader reports whether a kind is one of the two kinds permitted to
// live under a library's public include/ directory.
func IsHeader(k Kind) bool {
	return k == Header || k == HeaderTemplate
}
