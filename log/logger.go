package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/eduportal/core/tag"
	"github.com/kochabx/eduportal/log/redact"
	"github.com/kochabx/eduportal/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	hook   *redact.Hook
	closer io.Closer
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// Redaction 返回脱敏钩子，未开启时为 nil
func (l *Logger) Redaction() *redact.Hook {
	return l.hook
}

// Close 释放文件 writer
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// build 先收集选项再构建 zerolog.Logger，脱敏 writer 包在最内层
func build(w io.Writer, opts ...Option) *Logger {
	o := &options{level: zerolog.DebugLevel}
	for _, opt := range opts {
		opt(o)
	}

	l := &Logger{hook: o.hook}
	if o.hook != nil {
		w = redact.NewWriter(w, o.hook)
	}

	ctx := zerolog.New(w).Level(o.level).With().Timestamp()
	if o.caller {
		ctx = ctx.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + o.callerSkip)
	}
	l.Logger = ctx.Logger()
	return l
}

// New 创建输出到控制台的 Logger
func New(opts ...Option) *Logger {
	return build(writer.Console(), opts...)
}

// NewWriter 创建输出到任意 writer 的 Logger，主要用于测试
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return build(w, opts...)
}

// NewFile 创建输出到轮转文件的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := openFile(&c)
	if err != nil {
		return nil, err
	}
	l := build(fw, opts...)
	l.closer = fw
	return l, nil
}

// NewMulti 同时输出到文件和控制台
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := openFile(&c)
	if err != nil {
		return nil, err
	}
	l := build(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	l.closer = fw
	return l, nil
}

// FromConfig 按配置创建 Logger，默认开启凭证脱敏
func FromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	opts := []Option{WithLevel(level)}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if !c.DisableRedaction {
		opts = append(opts, WithRedaction(redact.Builtin()...))
	}

	switch c.Output {
	case "file":
		return NewFile(c.File, opts...)
	case "multi":
		return NewMulti(c.File, opts...)
	default:
		return New(opts...), nil
	}
}

func openFile(c *FileConfig) (io.WriteCloser, error) {
	if err := tag.ApplyDefaults(c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	fw, err := writer.File(c.rotateConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}
	return fw, nil
}
