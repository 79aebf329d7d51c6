// Package app 管理进程生命周期：运行服务和后台任务，收到信号后优雅关闭并释放资源
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/transport"
)

var (
	ErrAlreadyStarted = errors.New("application already started")
	ErrClosePanic     = errors.New("close function panicked")
)

// CloseFunc 带超时的资源释放函数
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

// Task 与服务器并行运行的后台任务，ctx 取消时应返回
type Task struct {
	Name string
	Fn   func(context.Context) error
}

// Application 管理服务器、后台任务与关闭函数的生命周期
type Application struct {
	ctx             context.Context
	cancel          context.CancelFunc
	shutdownTimeout time.Duration
	closeTimeout    time.Duration
	signals         []os.Signal
	logger          *log.Logger

	mu         sync.RWMutex
	servers    []transport.Server
	tasks      []Task
	closeFuncs []CloseFunc
	started    bool
}

type Option func(*Application)

// WithContext 设置根上下文，取消即关闭
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 关闭函数未指定超时时使用
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = slices.Clone(signals)
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(app *Application) {
		if l != nil {
			app.logger = l
		}
	}
}

func WithServers(servers ...transport.Server) Option {
	return func(app *Application) {
		for _, s := range servers {
			if s != nil {
				app.servers = append(app.servers, s)
			}
		}
	}
}

// WithTask 添加后台任务，任务返回错误会触发整体关闭
func WithTask(name string, fn func(context.Context) error) Option {
	return func(app *Application) {
		if fn != nil {
			app.tasks = append(app.tasks, Task{Name: name, Fn: fn})
		}
	}
}

// WithClose 添加关闭函数，按注册的逆序执行
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if err := app.addClose(name, fn, timeout); err != nil {
			app.logger.Warn().Str("name", name).Msg("nil close function ignored")
		}
	}
}

func New(options ...Option) *Application {
	app := &Application{
		shutdownTimeout: 30 * time.Second,
		closeTimeout:    10 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
		logger:          log.G,
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())
	for _, opt := range options {
		opt(app)
	}
	return app
}

// AddServer 启动前追加服务器
func (app *Application) AddServer(server transport.Server) error {
	if server == nil {
		return errors.New("server cannot be nil")
	}
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.started {
		return ErrAlreadyStarted
	}
	app.servers = append(app.servers, server)
	return nil
}

// RegisterClose 运行期间追加关闭函数
func (app *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.addClose(name, fn, timeout)
}

func (app *Application) addClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}
	if timeout <= 0 {
		timeout = app.closeTimeout
	}
	app.closeFuncs = append(app.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Start 启动全部服务器与任务，阻塞直到收到信号、上下文取消或任一组件失败。
// 返回前执行关闭函数。
func (app *Application) Start() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	servers := slices.Clone(app.servers)
	tasks := slices.Clone(app.tasks)
	app.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, app.signals...)
	defer signal.Stop(sigCh)

	eg, ctx := errgroup.WithContext(app.ctx)
	for _, s := range servers {
		eg.Go(s.Run)
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return s.Shutdown(shutdownCtx)
		})
	}
	for _, t := range tasks {
		eg.Go(func() error {
			err := t.Fn(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				app.logger.Error().Err(err).Str("task", t.Name).Msg("background task failed")
				return err
			}
			return nil
		})
	}
	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			app.logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			app.cancel()
		case <-ctx.Done():
		}
		return nil
	})

	err := eg.Wait()
	app.runCloseTasks()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 触发关闭，Start 随后返回
func (app *Application) Stop() {
	app.cancel()
}

// runCloseTasks 逆序执行关闭函数，后注册的资源先释放
func (app *Application) runCloseTasks() {
	app.mu.RLock()
	closeFuncs := slices.Clone(app.closeFuncs)
	app.mu.RUnlock()

	var errs []error
	for _, fn := range slices.Backward(closeFuncs) {
		if err := app.runCloseTask(fn); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		app.logger.Error().Err(errors.Join(errs...)).Msg("some close functions failed")
	}
}

func (app *Application) runCloseTask(fn CloseFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), fn.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				app.logger.Error().Interface("panic", r).Str("close", fn.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- fn.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			app.logger.Error().Err(err).Str("close", fn.Name).Msg("close function failed")
		}
		return err
	case <-ctx.Done():
		app.logger.Warn().Str("close", fn.Name).Msg("close function timed out")
		return ctx.Err()
	}
}

// Info 应用状态
func (app *Application) Info() Info {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return Info{
		Started:     app.started,
		ServerCount: len(app.servers),
		TaskCount:   len(app.tasks),
		CloseCount:  len(app.closeFuncs),
	}
}

type Info struct {
	Started     bool `json:"started"`
	ServerCount int  `json:"serverCount"`
	TaskCount   int  `json:"taskCount"`
	CloseCount  int  `json:"closeCount"`
}
