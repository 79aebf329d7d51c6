package log

import (
	"github.com/rs/zerolog"
)

// G 全局日志实例
var G = New(WithRedaction())

// SetGlobal 替换全局日志实例
func SetGlobal(l *Logger) {
	if l != nil {
		G = l
	}
}

// SetGlobalLevel 调整全局实例的级别
func SetGlobalLevel(level zerolog.Level) {
	G.Logger = G.Logger.Level(level)
}

func Debug() *zerolog.Event {
	return G.Debug()
}

func Info() *zerolog.Event {
	return G.Info()
}

func Warn() *zerolog.Event {
	return G.Warn()
}

// Error 带堆栈
func Error() *zerolog.Event {
	return G.Error().Stack()
}

// Fatal 带堆栈
func Fatal() *zerolog.Event {
	return G.Fatal().Stack()
}

func Debugf(format string, args ...any) {
	G.Debug().Msgf(format, args...)
}

func Infof(format string, args ...any) {
	G.Info().Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	G.Warn().Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	G.Error().Stack().Msgf(format, args...)
}
