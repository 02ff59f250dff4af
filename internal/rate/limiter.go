// Package rate implementa rate limiting fixed-window para endpoints
// sensibles (login).
package rate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE).
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, err := l.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	// set expiry on first hit
	if hits == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
	}

	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: hits <= l.Max, Remaining: remaining}
	if !res.Allowed {
		ttl, _ := l.Client.TTL(ctx, redisKey).Result()
		if ttl <= 0 {
			ttl = l.Window
		}
		res.RetryAfter = ttl
	}
	return res, nil
}

// MemoryLimiter: fixed window in-process, para instancias únicas o tests.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string]int64
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{hits: make(map[string]int64), Max: int64(max), Window: window}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())

	l.mu.Lock()
	defer l.mu.Unlock()

	// limpieza oportunista de ventanas viejas
	if len(l.hits) > 4096 {
		l.hits = make(map[string]int64)
	}

	l.hits[k]++
	hits := l.hits[k]
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: hits <= l.Max, Remaining: remaining}
	if !res.Allowed {
		res.RetryAfter = winStart.Add(l.Window).Sub(now)
	}
	return res, nil
}
