package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm/logger"

	"github.com/kochabx/eduportal/core/tag"
)

// Driver 数据库驱动类型
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"maxIdleConns" default:"10"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" default:"100"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime" default:"1h"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime" default:"10m"`
}

// Config 数据库配置，Driver 决定使用哪一段驱动配置
type Config struct {
	Driver Driver `mapstructure:"driver" default:"sqlite" validate:"oneof=mysql postgres sqlite"`
	// 日志级别 silent|error|warn|info
	Level     string        `mapstructure:"level" default:"silent"`
	SlowQuery time.Duration `mapstructure:"slowQuery" default:"200ms"`
	Pool      PoolConfig    `mapstructure:"pool"`

	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	// SQLite 单文件，建议单连接
	if c.Driver == DriverSQLite {
		c.Pool.MaxOpenConns = 1
		c.Pool.MaxIdleConns = 1
	}
	return nil
}

// DSN 生成当前驱动的连接字符串
func (c *Config) DSN() (string, error) {
	switch c.Driver {
	case DriverSQLite:
		return c.SQLite.dsn(), nil
	case DriverPostgres:
		return c.Postgres.dsn(), nil
	case DriverMySQL:
		return c.MySQL.dsn(), nil
	default:
		return "", ErrUnsupportedDriver
	}
}

// LogLevel 解析 gorm 日志级别，未知值视为 silent
func (c *Config) LogLevel() logger.LogLevel {
	switch strings.ToLower(c.Level) {
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Silent
	}
}

// SQLiteConfig SQLite 配置
type SQLiteConfig struct {
	// Path 为 ":memory:" 时使用内存数据库
	Path        string `mapstructure:"path" default:"./eduportal.db"`
	JournalMode string `mapstructure:"journalMode" default:"WAL"`
	BusyTimeout int    `mapstructure:"busyTimeout" default:"5000"`
	SyncMode    string `mapstructure:"syncMode" default:"NORMAL"`
}

func (c SQLiteConfig) dsn() string {
	q := url.Values{}
	q.Set("_journal_mode", c.JournalMode)
	q.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout))
	q.Set("_synchronous", c.SyncMode)
	return "file:" + c.Path + "?" + q.Encode()
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host           string `mapstructure:"host" default:"localhost"`
	Port           int    `mapstructure:"port" default:"5432"`
	User           string `mapstructure:"user" default:"eduportal"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database" default:"eduportal"`
	SSLMode        string `mapstructure:"sslmode" default:"disable"`
	TimeZone       string `mapstructure:"timezone" default:"Asia/Tashkent"`
	ConnectTimeout int    `mapstructure:"connectTimeout" default:"10"`
}

func (c PostgresConfig) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s connect_timeout=%d",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode, c.TimeZone, c.ConnectTimeout)
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	Host      string        `mapstructure:"host" default:"localhost"`
	Port      int           `mapstructure:"port" default:"3306"`
	User      string        `mapstructure:"user" default:"eduportal"`
	Password  string        `mapstructure:"password"`
	Database  string        `mapstructure:"database" default:"eduportal"`
	Charset   string        `mapstructure:"charset" default:"utf8mb4"`
	Collation string        `mapstructure:"collation" default:"utf8mb4_unicode_ci"`
	Loc       string        `mapstructure:"loc" default:"Local"`
	Timeout   time.Duration `mapstructure:"timeout" default:"10s"`
}

func (c MySQLConfig) dsn() string {
	q := url.Values{}
	q.Set("charset", c.Charset)
	q.Set("collation", c.Collation)
	q.Set("parseTime", "true")
	q.Set("loc", c.Loc)
	q.Set("timeout", c.Timeout.String())
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Database, q.Encode())
}
