package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is a stored payload with its write time and time-to-live. Payloads
// are opaque JSON; callers must treat returned bytes as immutable.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	WrittenAt time.Time       `json:"written_at"`
	TTL       time.Duration   `json:"ttl"`
}

// FreshAt reports whether the entry is within its TTL at the given instant.
func (e Entry) FreshAt(now time.Time) bool {
	return now.Sub(e.WrittenAt) <= e.TTL
}

// Store is the persistent tier behind the in-memory mirror. Read returns
// (nil, nil) when the key is absent. Implementations are best-effort: the
// cache treats any error as "tier unavailable" and keeps serving.
type Store interface {
	Read(ctx context.Context, key string) (*Entry, error)
	Write(ctx context.Context, key string, entry Entry) error
	Clear(ctx context.Context) error
	Close() error
}
