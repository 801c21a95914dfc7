package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/thinkfashz/osart/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "osart"

// Store Redis 访问封装，由组合根创建并负责关闭
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore 创建 Redis 存储，未启用时返回禁用状态的实例
func NewStore(cfg *config.RedisConfig) *Store {
	if cfg == nil || !cfg.Enabled {
		return &Store{prefix: resolvePrefix("")}
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Store{client: client, prefix: resolvePrefix(cfg.Prefix)}
}

// Enabled 判断缓存是否启用
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func (s *Store) Client() *redis.Client {
	if !s.Enabled() {
		return nil
	}
	return s.client
}

// Key 生成带前缀的 key
func (s *Store) Key(parts ...string) string {
	prefix := defaultPrefix
	if s != nil && s.prefix != "" {
		prefix = s.prefix
	}
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, prefix)
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		segments = append(segments, trimmed)
	}
	return strings.Join(segments, ":")
}

// Ping 检查连接，未启用时直接返回
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Close 关闭连接
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}

func resolvePrefix(raw string) string {
	prefix := strings.TrimSpace(raw)
	if prefix == "" {
		return defaultPrefix
	}
	return prefix
}
