package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config JWT 配置
type Config struct {
	Secret        string        `mapstructure:"secret" validate:"omitempty,min=16"`
	SigningMethod string        `mapstructure:"signingMethod" default:"HS256" validate:"oneof=HS256 HS384 HS512"`
	AccessTTL     time.Duration `mapstructure:"accessTTL" default:"5m" validate:"gt=0"`
	RefreshTTL    time.Duration `mapstructure:"refreshTTL" default:"720h" validate:"gtfield=AccessTTL"`
	Issuer        string        `mapstructure:"issuer" default:"eduportal"`
}

func (c *Config) method() jwt.SigningMethod {
	switch c.SigningMethod {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}
