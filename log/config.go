package log

import (
	"github.com/kochabx/eduportal/log/writer"
)

// Config 日志配置
type Config struct {
	Level            string     `mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Output           string     `mapstructure:"output" default:"console" validate:"oneof=console file multi"`
	Caller           bool       `mapstructure:"caller"`
	DisableRedaction bool       `mapstructure:"disableRedaction"`
	File             FileConfig `mapstructure:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Dir        string            `mapstructure:"dir" default:"log"`
	Name       string            `mapstructure:"name" default:"eduportal"`
	Ext        string            `mapstructure:"ext" default:"log"`
	RotateMode writer.RotateMode `mapstructure:"rotateMode" default:"size"`
	// 按时间轮转
	MaxAgeHours   int `mapstructure:"maxAgeHours" default:"168"`
	RotationHours int `mapstructure:"rotationHours" default:"24"`
	// 按大小轮转
	MaxSizeMB  int  `mapstructure:"maxSizeMB" default:"100"`
	MaxBackups int  `mapstructure:"maxBackups" default:"5"`
	MaxAgeDays int  `mapstructure:"maxAgeDays" default:"30"`
	Compress   bool `mapstructure:"compress"`
}

func (c FileConfig) rotateConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:          c.RotateMode,
		Dir:           c.Dir,
		Name:          c.Name,
		Ext:           c.Ext,
		MaxAgeHours:   c.MaxAgeHours,
		RotationHours: c.RotationHours,
		MaxSizeMB:     c.MaxSizeMB,
		MaxBackups:    c.MaxBackups,
		MaxAgeDays:    c.MaxAgeDays,
		Compress:      c.Compress,
	}
}
