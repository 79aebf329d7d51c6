package config

import (
	"time"

	"github.com/kochabx/eduportal/core/auth/jwt"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/store/cookie"
	"github.com/kochabx/eduportal/store/db"
	"github.com/kochabx/eduportal/store/redis"
)

// Settings is the configuration of both binaries.
type Settings struct {
	Server   Server       `mapstructure:"server"`
	Upstream Upstream     `mapstructure:"upstream"`
	Session  Session      `mapstructure:"session"`
	Locale   Locale       `mapstructure:"locale"`
	Redis    redis.Config `mapstructure:"redis"`
	DB       db.Config    `mapstructure:"db"`
	Log      log.Config   `mapstructure:"log"`
	Metrics  Metrics      `mapstructure:"metrics"`
	Mock     Mock         `mapstructure:"mock"`
}

type Server struct {
	Addr            string        `mapstructure:"addr" default:":8080"`
	Mode            string        `mapstructure:"mode" default:"release" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout" default:"15s"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout" default:"30s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" default:"10s"`
	Swagger         bool          `mapstructure:"swagger"`
	CorsOrigins     []string      `mapstructure:"corsOrigins"`
}

// Upstream is the REST API the BFF talks to.
type Upstream struct {
	BaseURL      string        `mapstructure:"baseURL" default:"http://localhost:8000" validate:"required,url"`
	LoginPath    string        `mapstructure:"loginPath" default:"/auth"`
	RefreshPath  string        `mapstructure:"refreshPath" default:"/api/token/refresh/"`
	Timeout      time.Duration `mapstructure:"timeout" default:"30s"`
	SingleFlight bool          `mapstructure:"singleFlight"`
}

type Session struct {
	Backend    string        `mapstructure:"backend" default:"cookie" validate:"oneof=cookie memory redis db"`
	AccessTTL  time.Duration `mapstructure:"accessTTL" default:"24h" validate:"gt=0"`
	RefreshTTL time.Duration `mapstructure:"refreshTTL" default:"720h" validate:"gtfield=AccessTTL"`
	// IDCookie names the cookie holding the session id for server side backends.
	IDCookie string        `mapstructure:"idCookie" default:"eduportal_sid"`
	Cookie   cookie.Config `mapstructure:"cookie"`
}

type Locale struct {
	Supported []string `mapstructure:"supported" default:"uz,ru,en" validate:"min=1"`
	Default   string   `mapstructure:"default" default:"en"`
	Exempt    []string `mapstructure:"exempt"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled" default:"true"`
	Path    string `mapstructure:"path" default:"/metrics"`
}

// Mock configures cmd/mockapi.
type Mock struct {
	Addr          string     `mapstructure:"addr" default:":8000"`
	RotateRefresh bool       `mapstructure:"rotateRefresh"`
	JWT           jwt.Config `mapstructure:"jwt"`
	// Users are seeded as "username:password:role".
	Users []string `mapstructure:"users" default:"admin:admin:admin,teacher:teacher:teacher"`
}
