package client

import (
	"context"
	"sync"
)

// Navigator moves the user agent to another location, typically the login
// page after the session was lost.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// NopNavigator ignores navigation requests.
type NopNavigator struct{}

func (NopNavigator) Navigate(context.Context, string) {}

// RecordingNavigator remembers the last requested location. The web layer
// uses one per inbound request to turn a lost session into a redirect.
type RecordingNavigator struct {
	mu   sync.Mutex
	path string
}

func (r *RecordingNavigator) Navigate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

// Target returns the recorded location, if any.
func (r *RecordingNavigator) Target() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path, r.path != ""
}
