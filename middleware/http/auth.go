package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/log"
	transport "github.com/kochabx/eduportal/transport/http"
)

var (
	ErrTokenMissing = errors.Unauthorized("authentication credentials were not provided")
	ErrTokenInvalid = errors.Unauthorized("token not valid")
)

const defaultClaimsKey = "claims"

type contextKey string

// Extractor 从请求中提取令牌
type Extractor func(c *gin.Context) (string, error)

// BearerExtractor 从 Authorization: Bearer <token> 提取
func BearerExtractor() Extractor {
	return func(c *gin.Context) (string, error) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return "", ErrTokenMissing
		}
		return strings.TrimSpace(token), nil
	}
}

// HeaderExtractor 从指定请求头提取
func HeaderExtractor(name string) Extractor {
	return func(c *gin.Context) (string, error) {
		if v := c.GetHeader(name); v != "" {
			return v, nil
		}
		return "", ErrTokenMissing
	}
}

// QueryExtractor 从查询参数提取
func QueryExtractor(name string) Extractor {
	return func(c *gin.Context) (string, error) {
		if v := c.Query(name); v != "" {
			return v, nil
		}
		return "", ErrTokenMissing
	}
}

// ChainExtractor 依次尝试，返回第一个成功的结果
func ChainExtractor(extractors ...Extractor) Extractor {
	return func(c *gin.Context) (string, error) {
		for _, e := range extractors {
			if token, err := e(c); err == nil {
				return token, nil
			}
		}
		return "", ErrTokenMissing
	}
}

// Authenticator 校验令牌并返回声明
type Authenticator[T any] interface {
	Authenticate(ctx context.Context, token string) (T, error)
}

// AuthenticatorFunc 函数适配器
type AuthenticatorFunc[T any] func(ctx context.Context, token string) (T, error)

func (f AuthenticatorFunc[T]) Authenticate(ctx context.Context, token string) (T, error) {
	return f(ctx, token)
}

// AuthConfig 认证中间件配置
type AuthConfig[T any] struct {
	Authenticator  Authenticator[T] // 必需
	Extractor      Extractor        // 默认 BearerExtractor
	ContextKey     string           // 默认 "claims"
	Optional       bool             // 无令牌时放行，令牌无效仍拒绝
	SkipPaths      []string
	SkipFunc       func(*gin.Context) bool
	ErrorHandler   func(*gin.Context, error)
	SuccessHandler func(*gin.Context, T)
	Logger         *log.Logger
}

// Auth 创建认证中间件，声明写入 request context
func Auth[T any](cfg AuthConfig[T]) gin.HandlerFunc {
	if cfg.Authenticator == nil {
		panic("middleware: Authenticator is required")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = BearerExtractor()
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = defaultClaimsKey
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			transport.GinError(c, err)
		}
	}
	matcher := NewPathMatcher(cfg.SkipPaths)
	key := contextKey(cfg.ContextKey)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		token, err := cfg.Extractor(c)
		if err != nil {
			if cfg.Optional {
				c.Next()
				return
			}
			cfg.ErrorHandler(c, err)
			return
		}

		claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			cfg.Logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("auth: token rejected")
			cfg.ErrorHandler(c, ErrTokenInvalid.WithCause(err))
			return
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), key, claims))
		if cfg.SuccessHandler != nil {
			cfg.SuccessHandler(c, claims)
		}
		c.Next()
	}
}

// GetClaims 从 context 读取声明，key 默认为 "claims"
func GetClaims[T any](ctx context.Context, key ...string) (T, bool) {
	k := defaultClaimsKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	claims, ok := ctx.Value(contextKey(k)).(T)
	return claims, ok
}
