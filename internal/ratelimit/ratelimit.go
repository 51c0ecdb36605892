// Package ratelimit enforces per-IP fixed-window limits on the login
// endpoints. Redis backs the counters when configured so limits hold across
// replicas; otherwise, and whenever Redis misbehaves, an in-memory limiter
// takes over behind a short breaker.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/freedomgate/portal/internal/config"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// redisBreakerDuration is how long Redis is benched after a failure.
const redisBreakerDuration = 30 * time.Second

// LoginKey builds the limiter key for a login attempt from a client IP.
func LoginKey(ip string) string {
	if ip == "" {
		return ""
	}
	return "login:" + ip
}

// Manager selects a limiter backend and enforces login rate limits.
type Manager struct {
	cfg           config.RateLimitConfig
	nowFn         func() time.Time
	memoryLimiter Limiter

	mu           sync.Mutex
	redisLimiter *RedisLimiter
	breakerUntil time.Time
}

// NewManager constructs a Manager from the resolved rate limit config.
func NewManager(cfg config.RateLimitConfig, nowFn func() time.Time) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Manager{
		cfg:           cfg,
		nowFn:         nowFn,
		memoryLimiter: NewMemoryLimiter(),
	}
}

// Allow checks whether the request should be allowed using the best available backend.
func (m *Manager) Allow(ctx context.Context, key string) (Result, error) {
	if m == nil || m.cfg.LoginPerSecond <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	now := m.nowFn()
	if m.cfg.RedisEnabled {
		if result, ok := m.allowRedis(ctx, key, now); ok {
			return result, nil
		}
	}
	return m.memoryLimiter.Allow(ctx, key, m.cfg.LoginPerSecond, now)
}

// allowRedis attempts the check against Redis; ok is false when the caller
// should fall back to memory.
func (m *Manager) allowRedis(ctx context.Context, key string, now time.Time) (Result, bool) {
	m.mu.Lock()
	if now.Before(m.breakerUntil) {
		m.mu.Unlock()
		return Result{}, false
	}
	if m.redisLimiter == nil {
		client := redis.NewClient(&redis.Options{
			Addr:     m.cfg.RedisAddr,
			Password: m.cfg.RedisPassword,
			DB:       m.cfg.RedisDB,
		})
		m.redisLimiter = NewRedisLimiter(client, m.cfg.RedisPrefix)
	}
	limiter := m.redisLimiter
	m.mu.Unlock()

	result, errAllow := limiter.Allow(ctx, key, m.cfg.LoginPerSecond, now)
	if errAllow != nil {
		log.WithError(errAllow).Warn("rate limit redis unavailable, falling back to memory")
		m.mu.Lock()
		m.breakerUntil = now.Add(redisBreakerDuration)
		m.mu.Unlock()
		return Result{}, false
	}
	return result, true
}
