package session

import (
	"context"
	"time"
)

// Entry is one value written to a Backend.
type Entry struct {
	Key   string
	Value string
	// TTL <= 0 means the entry does not expire on its own.
	TTL time.Duration
}

// Backend persists session values. Save and Delete are all-or-nothing for
// the keys they receive; Load omits missing and expired keys instead of failing.
type Backend interface {
	Load(ctx context.Context, keys ...string) (map[string]string, error)
	Save(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, keys ...string) error
}
