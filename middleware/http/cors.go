package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CorsConfig CORS 配置
// 会话放在 cookie 中，跨源调用需要 AllowCredentials，此时响应回显具体的 Origin 而不是 "*"
type CorsConfig struct {
	// 支持 "*" 和 "*.edu.uz" 形式的后缀通配
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
	SkipPaths        []string
	SkipFunc         func(*gin.Context) bool
}

// DefaultCorsConfig 允许携带会话 cookie 的前端调用 BFF，源需由调用方填写
func DefaultCorsConfig() CorsConfig {
	return CorsConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "Accept-Language", "X-Request-Id"},
		ExposeHeaders:    []string{"Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// Cors 处理跨源请求，OPTIONS 预检直接返回 204
func Cors(cfg CorsConfig) gin.HandlerFunc {
	matcher := NewPathMatcher(cfg.SkipPaths)
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		wildcard, ok := matchOrigin(origin, cfg.AllowOrigins)
		if !ok {
			c.Next()
			return
		}
		if wildcard && !cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if expose != "" {
			h.Set("Access-Control-Expose-Headers", expose)
		}

		if c.Request.Method != http.MethodOptions || c.GetHeader("Access-Control-Request-Method") == "" {
			c.Next()
			return
		}
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", maxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}

// matchOrigin 返回 origin 是否被允许，以及是否由 "*" 放行
func matchOrigin(origin string, allowed []string) (wildcard, ok bool) {
	for _, a := range allowed {
		switch {
		case a == "*":
			return true, true
		case a == origin:
			return false, true
		case strings.HasPrefix(a, "*.") && strings.HasSuffix(origin, a[1:]):
			return false, true
		}
	}
	return false, false
}
