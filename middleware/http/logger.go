package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kochabx/eduportal/locale"
	"github.com/kochabx/eduportal/log"
)

// LoggerConfig 访问日志配置
// 请求体和响应体可能带有令牌或密码，不记录
type LoggerConfig struct {
	Logger *log.Logger
	// 超过该耗时的请求以 warn 级别记录，0 表示不区分
	SlowThreshold time.Duration
	SkipPaths     []string
	SkipFunc      func(*gin.Context) bool
}

// Logger 记录每个请求，5xx 为 error，4xx 和慢请求为 warn，其余为 info
func Logger(cfgs ...LoggerConfig) gin.HandlerFunc {
	var cfg LoggerConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		logger := cfg.Logger
		if logger == nil {
			logger = log.G
		}
		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest, cfg.SlowThreshold > 0 && elapsed > cfg.SlowThreshold:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Str("client_ip", c.ClientIP())
		if q := c.Request.URL.RawQuery; q != "" {
			event = event.Str("query", q)
		}
		if route := c.FullPath(); route != "" {
			event = event.Str("route", route)
		}
		if loc, ok := locale.FromContext(c.Request.Context()); ok {
			event = event.Str("locale", loc)
		}
		if status >= http.StatusMultipleChoices && status < http.StatusBadRequest {
			event = event.Str("location", c.Writer.Header().Get("Location"))
		}
		if id := c.GetHeader("X-Request-Id"); id != "" {
			event = event.Str("request_id", id)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			event = event.Str("errors", errs.String())
		}
		event.Msg("request")
	}
}
