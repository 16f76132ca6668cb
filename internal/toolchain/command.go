package toolchain

import "strings"

// String renders the command deterministically: argv joined by single
// spaces, followed by any environment overrides. This string is the
// executor's cache key, so its construction must never depend on map
// iteration order or any other non-deterministic source (spec §9).
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(c.Argv, " "))
	for _, e := range c.Env {
		sb.WriteByte(' ')
		sb.WriteString(e)
	}
	return sb.String()
}
