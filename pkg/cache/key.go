package cache

import (
	"regexp"
	"strings"
)

// Key identifies a cached record by logical domain, the parameters that
// change the payload shape, and a schema version. Bump the version whenever
// the payload schema changes so a stale record from an older handler can
// never poison a newer one.
type Key struct {
	Domain  string
	Params  []string
	Version string
}

// NewKey builds a structured cache key.
func NewKey(domain, version string, params ...string) Key {
	return Key{Domain: domain, Params: params, Version: version}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// String renders the key as a storage-safe identifier.
func (k Key) String() string {
	parts := make([]string, 0, len(k.Params)+2)
	parts = append(parts, k.Domain)
	parts = append(parts, k.Params...)
	if k.Version != "" {
		parts = append(parts, k.Version)
	}
	return unsafeKeyChars.ReplaceAllString(strings.Join(parts, "_"), "_")
}
