package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/model"
	"github.com/kochabx/eduportal/session"
	transport "github.com/kochabx/eduportal/transport/http"
)

var (
	ErrUnauthorized = errors.Unauthorized("login required")
	ErrForbidden    = errors.Forbidden("forbidden")
)

// SessionFunc 返回当前请求的会话
type SessionFunc func(*gin.Context) *session.Manager

// GuardConfig 会话守卫配置
type GuardConfig struct {
	Session   SessionFunc  // 必需
	Roles     []model.Role // 为空时只要求已登录
	LoginPath string       // 默认 /auth
	HomePath  string       // 角色不符时的去向，默认 /
}

// RequireSession 根据缓存的用户信息拦截页面请求。
// GET/HEAD 未登录重定向到登录页，角色不符重定向到首页；其他方法返回 401/403。
// 缓存的用户只是提示，真正的授权由上游 API 完成。
func RequireSession(cfg GuardConfig) gin.HandlerFunc {
	if cfg.Session == nil {
		panic("middleware: SessionFunc is required")
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		m := cfg.Session(c)

		if m == nil || !m.IsAuthenticated(ctx) {
			deny(c, cfg.LoginPath, ErrUnauthorized)
			return
		}
		if len(cfg.Roles) > 0 {
			role, _ := m.UserRole(ctx)
			if !slices.Contains(cfg.Roles, role) {
				deny(c, cfg.HomePath, ErrForbidden)
				return
			}
		}
		c.Next()
	}
}

// RequireRole 是 RequireSession 的简写
func RequireRole(fn SessionFunc, roles ...model.Role) gin.HandlerFunc {
	return RequireSession(GuardConfig{Session: fn, Roles: roles})
}

func deny(c *gin.Context, location string, err *errors.Error) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		c.Redirect(http.StatusFound, location)
		c.Abort()
		return
	}
	transport.GinError(c, err)
}
