package cache

import "strings"

// Key builds a deterministic cache key from a data class and its identifying
// parameters. Two equivalent queries must always produce the same key (or no
// cache hit can ever happen), and two logically distinct queries must never
// collapse to one key.
//
// Parameters are lowercased and colon-joined; empty parts are skipped, so a
// query that omits an irrelevant parameter collapses to the same key as one
// passing "".
func Key(class string, parts ...string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(class))

	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(strings.ToLower(p))
	}

	return b.String()
}
