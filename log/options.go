package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/eduportal/log/redact"
)

type options struct {
	level      zerolog.Level
	caller     bool
	callerSkip int
	hook       *redact.Hook
}

// Option Logger 选项
type Option func(*options)

// WithLevel 设置日志级别
func WithLevel(level zerolog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithCaller 记录调用位置
func WithCaller() Option {
	return func(o *options) {
		o.caller = true
	}
}

// WithCallerSkip 记录调用位置并额外跳过 skip 层
func WithCallerSkip(skip int) Option {
	return func(o *options) {
		o.caller = true
		o.callerSkip = skip
	}
}

// WithRedaction 写入前按规则脱敏，不传规则时使用内置规则
func WithRedaction(rules ...redact.Rule) Option {
	return func(o *options) {
		if len(rules) == 0 {
			rules = redact.Builtin()
		}
		o.hook = redact.NewHook(rules...)
	}
}
