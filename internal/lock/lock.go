// Package lock 保证同一时刻只有一个实例执行月度排班
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/internal/config"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/logger"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/redis/go-redis/v9"
)

// RunKey 排班月份的运行锁键，月度任务与手动生成共用
func RunKey(p model.Period) string {
	return "nurse-roster:run:" + p.String()
}

// ReleaseFunc 释放锁
type ReleaseFunc func(ctx context.Context) error

// Locker 运行锁
type Locker interface {
	// Acquire 获取锁，已被占用时返回 RUN_LOCKED 错误
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// Client RedisLocker 需要的 redis 命令
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// 只删除自己持有的锁
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// NewClient 按配置创建 redis 客户端并检查连通性
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr()).Msg("Redis连接成功")
	return client, nil
}

// RedisLocker 基于 SET NX 的分布式锁
type RedisLocker struct {
	client Client
	ttl    time.Duration
}

// NewRedisLocker 创建分布式锁，ttl 为锁的最长持有时间
func NewRedisLocker(client Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire 获取锁
func (l *RedisLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("获取运行锁失败: %w", err)
	}
	if !ok {
		return nil, apperrors.New(apperrors.CodeRunLocked, "月度排班正在其他实例运行").WithField("key", key)
	}

	release := func(ctx context.Context) error {
		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("释放运行锁失败: %w", err)
		}
		return nil
	}
	return release, nil
}

// LocalLocker 进程内锁，未启用 redis 时使用
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

// Acquire 获取锁
func (l *LocalLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return nil, apperrors.New(apperrors.CodeRunLocked, "月度排班正在运行").WithField("key", key)
	}
	l.held[key] = true

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
