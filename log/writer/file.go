package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志轮转模式
type RotateMode string

const (
	// RotateModeTime 按时间轮转 (file-rotatelogs)
	RotateModeTime RotateMode = "time"
	// RotateModeSize 按大小轮转 (lumberjack)
	RotateModeSize RotateMode = "size"
)

// UnmarshalText 支持从配置文件读取
func (m *RotateMode) UnmarshalText(text []byte) error {
	switch mode := RotateMode(text); mode {
	case RotateModeTime, RotateModeSize:
		*m = mode
		return nil
	default:
		return fmt.Errorf("unsupported rotate mode: %q", text)
	}
}

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Mode RotateMode
	Dir  string
	Name string
	Ext  string

	MaxAgeHours   int
	RotationHours int

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// File 按配置创建文件 writer，返回值同时实现 io.Closer
func File(c RotateConfig) (io.WriteCloser, error) {
	switch c.Mode {
	case RotateModeTime:
		w, err := rotatelogs.New(
			c.path("%Y%m%d%H%M"),
			rotatelogs.WithLinkName(c.path("")),
			rotatelogs.WithMaxAge(time.Duration(c.MaxAgeHours)*time.Hour),
			rotatelogs.WithRotationTime(time.Duration(c.RotationHours)*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create time rotate writer: %w", err)
		}
		return w, nil
	case RotateModeSize:
		return &lumberjack.Logger{
			Filename:   c.path(""),
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %q", c.Mode)
	}
}

// path 拼接日志文件路径，pattern 非空时插在文件名和扩展名之间
func (c RotateConfig) path(pattern string) string {
	name := c.Name
	if pattern != "" {
		name += "." + pattern
	}
	return filepath.Join(c.Dir, name+"."+c.Ext)
}
