package redis

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/eduportal/log"
)

// DebugHook 记录命令耗时和慢查询
// 会话的值是令牌，只记录命令名和 key 数量
type DebugHook struct {
	logger *log.Logger
	slow   time.Duration
}

// NewDebugHook slow 为 0 时不做慢查询检测
func NewDebugHook(logger *log.Logger, slow time.Duration) *DebugHook {
	if logger == nil {
		logger = log.G
	}
	return &DebugHook{logger: logger, slow: slow}
}

func (h *DebugHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Error().Err(err).Str("addr", addr).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *DebugHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.report(cmd.FullName(), len(cmd.Args())-1, time.Since(start), err)
		return err
	}
}

func (h *DebugHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		names := make([]string, len(cmds))
		for i, cmd := range cmds {
			names[i] = cmd.FullName()
		}
		h.report(strings.Join(names, ","), len(cmds), time.Since(start), err)
		return err
	}
}

func (h *DebugHook) report(cmd string, n int, d time.Duration, err error) {
	switch {
	case err != nil && err != redis.Nil:
		h.logger.Warn().Err(err).Str("cmd", cmd).Dur("duration", d).Msg("redis command failed")
	case h.slow > 0 && d > h.slow:
		h.logger.Warn().Str("cmd", cmd).Int("n", n).Dur("duration", d).Dur("threshold", h.slow).Msg("slow redis command")
	default:
		h.logger.Debug().Str("cmd", cmd).Int("n", n).Dur("duration", d).Send()
	}
}
