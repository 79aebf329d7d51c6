package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/kochabx/eduportal/log"
)

// Option 客户端配置选项
type Option func(*clientOptions)

type clientOptions struct {
	logger         *log.Logger
	plugins        []gorm.Plugin
	connectTimeout time.Duration
	gormConfig     *gorm.Config
}

func defaultOptions() *clientOptions {
	return &clientOptions{connectTimeout: 10 * time.Second}
}

// WithLogger 设置日志记录器
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithPlugins 添加 GORM 插件
func WithPlugins(plugins ...gorm.Plugin) Option {
	return func(o *clientOptions) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// WithConnectTimeout 设置连接超时时间
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithGormConfig 设置自定义 GORM 配置
func WithGormConfig(cfg *gorm.Config) Option {
	return func(o *clientOptions) {
		o.gormConfig = cfg
	}
}
