package redis

import (
	"time"

	"github.com/kochabx/eduportal/core/tag"
)

// Config Redis 统一配置（支持单机/集群/哨兵模式）
type Config struct {
	// Addrs 地址列表
	// 单机: ["localhost:6379"]
	// 集群: ["node1:6379", "node2:6379", "node3:6379"]
	// 哨兵: ["sentinel1:26379", "sentinel2:26379"]
	Addrs []string `mapstructure:"addrs" default:"localhost:6379"`

	// MasterName 哨兵模式的主节点名称
	MasterName string `mapstructure:"masterName"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// DB 集群模式忽略此字段
	DB int `mapstructure:"db"`

	// 协议版本 2: RESP2, 3: RESP3
	Protocol int `mapstructure:"protocol" default:"3"`

	DialTimeout  time.Duration `mapstructure:"dialTimeout" default:"5s"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" default:"3s"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" default:"3s"`

	// PoolSize 0 表示 10 * runtime.GOMAXPROCS
	PoolSize     int           `mapstructure:"poolSize"`
	MinIdleConns int           `mapstructure:"minIdleConns"`
	MaxIdleTime  time.Duration `mapstructure:"maxIdleTime" default:"5m"`
	MaxLifetime  time.Duration `mapstructure:"maxLifetime"`
	PoolTimeout  time.Duration `mapstructure:"poolTimeout" default:"4s"`

	// MaxRetries -1 禁用重试
	MaxRetries      int           `mapstructure:"maxRetries"`
	MinRetryBackoff time.Duration `mapstructure:"minRetryBackoff" default:"8ms"`
	MaxRetryBackoff time.Duration `mapstructure:"maxRetryBackoff" default:"512ms"`

	// 集群特有配置
	MaxRedirects   int  `mapstructure:"maxRedirects" default:"3"`
	ReadOnly       bool `mapstructure:"readOnly"`
	RouteByLatency bool `mapstructure:"routeByLatency"`
	RouteRandomly  bool `mapstructure:"routeRandomly"`

	// KeyPrefix 会话 key 前缀
	KeyPrefix string `mapstructure:"keyPrefix" default:"eduportal:session"`

	// SlowQuery 慢查询阈值，0 表示不检测
	SlowQuery time.Duration `mapstructure:"slowQuery" default:"100ms"`
	Debug     bool          `mapstructure:"debug"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Single 创建单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Cluster 创建集群模式配置
func Cluster(addrs ...string) *Config {
	return &Config{Addrs: addrs}
}

// Sentinel 创建哨兵模式配置
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// IsSentinel 判断是否为哨兵模式
func (c *Config) IsSentinel() bool {
	return c.MasterName != ""
}

// IsCluster 判断是否为集群模式
func (c *Config) IsCluster() bool {
	return len(c.Addrs) > 1 && c.MasterName == ""
}

func (c *Config) mode() string {
	switch {
	case c.IsSentinel():
		return "sentinel"
	case c.IsCluster():
		return "cluster"
	default:
		return "single"
	}
}
