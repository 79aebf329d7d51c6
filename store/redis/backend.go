package redis

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/eduportal/session"
)

// Store 按会话 ID 分配 session.Backend
type Store struct {
	client redis.UniversalClient
	prefix string
}

// NewStore 创建会话存储，key 前缀取自配置
func NewStore(c *Client) *Store {
	return &Store{client: c.client, prefix: c.config.KeyPrefix}
}

// NewStoreWith 直接基于 UniversalClient 创建会话存储
func NewStoreWith(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Session 返回某个会话的存储后端
func (s *Store) Session(id string) (*Backend, error) {
	if id == "" {
		return nil, ErrEmptySession
	}
	// hash tag 保证同一会话的 key 落在同一个 slot，集群模式下 MGET/MULTI 可用
	return &Backend{client: s.client, prefix: s.prefix + ":{" + id + "}:"}, nil
}

// Backend 单个会话的 redis 存储
// Save 使用 MULTI/EXEC，Delete 为单条 DEL，均为原子操作
type Backend struct {
	client redis.UniversalClient
	prefix string
}

var _ session.Backend = (*Backend)(nil)

func (b *Backend) key(k string) string {
	return b.prefix + k
}

// Load 读取若干 key，不存在或已过期的 key 不出现在结果中
func (b *Backend) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.key(k)
	}

	vals, err := b.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

// Save 写入若干条目，TTL <= 0 表示不过期
func (b *Backend) Save(ctx context.Context, entries ...session.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			ttl := e.TTL
			if ttl < 0 {
				ttl = 0
			}
			pipe.Set(ctx, b.key(e.Key), e.Value, ttl)
		}
		return nil
	})
	return err
}

// Delete 删除若干 key
func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.key(k)
	}
	return b.client.Del(ctx, full...).Err()
}

// Prefix 返回该会话的 key 前缀
func (b *Backend) Prefix() string {
	return strings.TrimSuffix(b.prefix, ":")
}
