package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryBackend keeps values in process memory. Safe for concurrent use.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (b *MemoryBackend) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.now()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		e, ok := b.entries[k]
		if !ok || (!e.expires.IsZero() && !now.Before(e.expires)) {
			continue
		}
		out[k] = e.value
	}
	return out, nil
}

func (b *MemoryBackend) Save(ctx context.Context, entries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for _, e := range entries {
		var expires time.Time
		if e.TTL > 0 {
			expires = now.Add(e.TTL)
		}
		b.entries[e.Key] = memoryEntry{value: e.Value, expires: expires}
	}
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, k := range keys {
		delete(b.entries, k)
	}
	return nil
}
