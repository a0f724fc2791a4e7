package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiterForTest(t *testing.T) (*RedisFixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFixedWindowLimiter(client, "rl-test"), srv
}

func TestRedisFixedWindowLimiter_AllowsWithinLimit(t *testing.T) {
	limiter, _ := newRedisLimiterForTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "client-a", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i+1, err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}
}

func TestRedisFixedWindowLimiter_BlocksOverLimit(t *testing.T) {
	limiter, _ := newRedisLimiterForTest(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if allowed, _, err := limiter.Allow(ctx, "client-b", 2, time.Minute); err != nil || !allowed {
			t.Fatalf("warmup %d: allowed=%v err=%v", i+1, allowed, err)
		}
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "client-b", 2, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("expected request over limit to be blocked")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}
}

func TestRedisFixedWindowLimiter_WindowExpires(t *testing.T) {
	limiter, srv := newRedisLimiterForTest(t)
	ctx := context.Background()

	if allowed, _, err := limiter.Allow(ctx, "client-c", 1, time.Second); err != nil || !allowed {
		t.Fatalf("first request: allowed=%v err=%v", allowed, err)
	}
	if allowed, _, _ := limiter.Allow(ctx, "client-c", 1, time.Second); allowed {
		t.Fatal("expected second request inside window to be blocked")
	}

	srv.FastForward(2 * time.Second)

	allowed, _, err := limiter.Allow(ctx, "client-c", 1, time.Second)
	if err != nil {
		t.Fatalf("allow after expiry: %v", err)
	}
	if !allowed {
		t.Fatal("expected request after window expiry to be allowed")
	}
}

func TestRedisFixedWindowLimiter_SeparateKeys(t *testing.T) {
	limiter, _ := newRedisLimiterForTest(t)
	ctx := context.Background()

	if allowed, _, err := limiter.Allow(ctx, "client-d", 1, time.Minute); err != nil || !allowed {
		t.Fatalf("client-d: allowed=%v err=%v", allowed, err)
	}
	if allowed, _, err := limiter.Allow(ctx, "client-e", 1, time.Minute); err != nil || !allowed {
		t.Fatalf("client-e: allowed=%v err=%v", allowed, err)
	}
}

func TestRedisFixedWindowLimiter_BackendDownReturnsError(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := NewRedisFixedWindowLimiter(client, "rl-test")
	srv.Close()

	_, _, err := limiter.Allow(context.Background(), "client-f", 1, time.Minute)
	if err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
