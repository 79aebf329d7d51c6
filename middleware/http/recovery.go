package middleware

import (
	"fmt"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/log"
	transport "github.com/kochabx/eduportal/transport/http"
)

var errPanic = errors.Internal("internal server error")

type RecoveryConfig struct {
	// 默认记录堆栈
	DisableStack bool
	Logger       *log.Logger
}

// Recovery 捕获 handler 中的 panic 并返回 500
// 客户端已断开时只记录 warn，不再写响应
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	var cfg RecoveryConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.G
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			_ = c.Error(err)

			if clientGone(err) {
				logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("client connection lost")
				c.Abort()
				return
			}

			event := logger.Error().Err(err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("route", c.FullPath())
			if !cfg.DisableStack {
				event = event.Bytes("stack", debug.Stack())
			}
			event.Msg("panic recovered")
			transport.GinError(c, errPanic)
		}()
		c.Next()
	}
}

func clientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
