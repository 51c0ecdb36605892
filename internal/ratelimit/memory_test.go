package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/freedomgate/portal/internal/config"
)

func TestMemoryLimiter_BlocksAfterLimit(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		result, errAllow := limiter.Allow(context.Background(), "login:1.2.3.4", 3, now)
		if errAllow != nil {
			t.Fatalf("allow: %v", errAllow)
		}
		if !result.Allowed {
			t.Fatalf("expected request %d allowed", i+1)
		}
	}

	result, errAllow := limiter.Allow(context.Background(), "login:1.2.3.4", 3, now)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatalf("expected fourth request blocked")
	}
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if result, _ := limiter.Allow(context.Background(), "login:1.2.3.4", 1, now); !result.Allowed {
		t.Fatalf("expected first request allowed")
	}
	if result, _ := limiter.Allow(context.Background(), "login:1.2.3.4", 1, now); result.Allowed {
		t.Fatalf("expected second request blocked")
	}
	if result, _ := limiter.Allow(context.Background(), "login:1.2.3.4", 1, now.Add(time.Second)); !result.Allowed {
		t.Fatalf("expected request allowed in next window")
	}
}

func TestMemoryLimiter_SeparateKeys(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if result, _ := limiter.Allow(context.Background(), "login:1.2.3.4", 1, now); !result.Allowed {
		t.Fatalf("expected first key allowed")
	}
	if result, _ := limiter.Allow(context.Background(), "login:5.6.7.8", 1, now); !result.Allowed {
		t.Fatalf("expected second key unaffected")
	}
}

func TestMemoryLimiter_PrunesStaleKeys(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, key := range []string{"login:1.1.1.1", "login:2.2.2.2", "login:3.3.3.3"} {
		if _, errAllow := limiter.Allow(context.Background(), key, 5, now); errAllow != nil {
			t.Fatalf("allow: %v", errAllow)
		}
	}
	if len(limiter.counters) != 3 {
		t.Fatalf("expected 3 counters, got %d", len(limiter.counters))
	}

	later := now.Add(staleAfterSeconds*time.Second + time.Second)
	if _, errAllow := limiter.Allow(context.Background(), "login:4.4.4.4", 5, later); errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if len(limiter.counters) != 1 {
		t.Fatalf("expected stale counters pruned, got %d", len(limiter.counters))
	}
	if limiter.counters["login:4.4.4.4"] == nil {
		t.Fatalf("expected the fresh key to survive the prune")
	}
}

func TestManager_DisabledWhenLimitZero(t *testing.T) {
	manager := NewManager(config.RateLimitConfig{LoginPerSecond: 0}, nil)
	result, errAllow := manager.Allow(context.Background(), "login:1.2.3.4")
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatalf("expected limiter disabled at limit 0")
	}
}

func TestManager_MemoryBackend(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	manager := NewManager(config.RateLimitConfig{LoginPerSecond: 1}, func() time.Time {
		return now
	})

	if result, _ := manager.Allow(context.Background(), "login:1.2.3.4"); !result.Allowed {
		t.Fatalf("expected first attempt allowed")
	}
	if result, _ := manager.Allow(context.Background(), "login:1.2.3.4"); result.Allowed {
		t.Fatalf("expected second attempt blocked")
	}
}

func TestLoginKey(t *testing.T) {
	if key := LoginKey("1.2.3.4"); key != "login:1.2.3.4" {
		t.Fatalf("unexpected key %q", key)
	}
	if key := LoginKey(""); key != "" {
		t.Fatalf("expected empty key for empty ip, got %q", key)
	}
}
