package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	runErr   error
	stop     chan struct{}
	once     sync.Once
	shutdown atomic.Bool
}

func newFakeServer(runErr error) *fakeServer {
	return &fakeServer{runErr: runErr, stop: make(chan struct{})}
}

func (s *fakeServer) Run() error {
	if s.runErr != nil {
		return s.runErr
	}
	<-s.stop
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.shutdown.Store(true)
	s.once.Do(func() { close(s.stop) })
	return nil
}

func TestNew(t *testing.T) {
	app := New(
		WithServers(newFakeServer(nil), nil, newFakeServer(nil)),
		WithTask("purge", func(ctx context.Context) error { return nil }),
		WithClose("db", func(context.Context) error { return nil }, 0),
		WithClose("nil", nil, 0),
	)
	info := app.Info()
	assert.False(t, info.Started)
	assert.Equal(t, 2, info.ServerCount)
	assert.Equal(t, 1, info.TaskCount)
	assert.Equal(t, 1, info.CloseCount)
	assert.Equal(t, app.closeTimeout, app.closeFuncs[0].Timeout)
}

func TestStopShutsDownInOrder(t *testing.T) {
	srv := newFakeServer(nil)
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	taskStopped := make(chan struct{})

	app := New(
		WithServers(srv),
		WithTask("ticker", func(ctx context.Context) error {
			<-ctx.Done()
			close(taskStopped)
			return ctx.Err()
		}),
		WithClose("redis", record("redis"), time.Second),
		WithClose("db", record("db"), time.Second),
	)
	require.NoError(t, app.RegisterClose("metrics", record("metrics"), time.Second))

	go func() {
		time.Sleep(50 * time.Millisecond)
		app.Stop()
	}()
	require.NoError(t, app.Start())

	assert.True(t, srv.shutdown.Load())
	<-taskStopped
	assert.Equal(t, []string{"metrics", "db", "redis"}, order)
	assert.ErrorIs(t, app.Start(), ErrAlreadyStarted)
	assert.ErrorIs(t, app.AddServer(newFakeServer(nil)), ErrAlreadyStarted)
}

func TestServerFailureStopsOthers(t *testing.T) {
	boom := errors.New("listen tcp :8080: bind: address already in use")
	healthy := newFakeServer(nil)
	closed := false

	app := New(
		WithServers(newFakeServer(boom), healthy),
		WithClose("cleanup", func(context.Context) error { closed = true; return nil }, time.Second),
	)
	err := app.Start()
	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.shutdown.Load())
	assert.True(t, closed)
}

func TestTaskFailureStopsApp(t *testing.T) {
	boom := errors.New("purge failed")
	srv := newFakeServer(nil)
	app := New(WithServers(srv), WithTask("purge", func(context.Context) error { return boom }))

	assert.ErrorIs(t, app.Start(), boom)
	assert.True(t, srv.shutdown.Load())
}

func TestContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	app := New(WithContext(ctx))
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	assert.NoError(t, app.Start())
}

func TestAddServer(t *testing.T) {
	app := New()
	assert.Error(t, app.AddServer(nil))
	require.NoError(t, app.AddServer(newFakeServer(nil)))
	assert.Equal(t, 1, app.Info().ServerCount)
	assert.Error(t, app.RegisterClose("nil", nil, 0))
}

func TestCloseFuncPanic(t *testing.T) {
	app := New()
	err := app.runCloseTask(CloseFunc{
		Name:    "panicky",
		Fn:      func(context.Context) error { panic("boom") },
		Timeout: time.Second,
	})
	assert.ErrorIs(t, err, ErrClosePanic)
}

func TestCloseFuncTimeout(t *testing.T) {
	app := New()
	err := app.runCloseTask(CloseFunc{
		Name: "slow",
		Fn: func(ctx context.Context) error {
			time.Sleep(200 * time.Millisecond)
			return nil
		},
		Timeout: 20 * time.Millisecond,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
