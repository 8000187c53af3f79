package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLockoutAfterMaxAttempts(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxAttempts: 3, Cooldown: time.Minute})
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := l.Fail(ctx, "EMP002", ""); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if err := l.Check(ctx, "EMP002", ""); err != nil {
			t.Fatalf("check after %d: %v", i, err)
		}
	}
	if err := l.Fail(ctx, "EMP002", ""); !errors.Is(err, ErrLocked) {
		t.Fatalf("third failure: %v", err)
	}
	if err := l.Check(ctx, "EMP002", ""); !errors.Is(err, ErrLocked) {
		t.Fatalf("check while locked: %v", err)
	}
	if err := l.Check(ctx, "EMP003", ""); err != nil {
		t.Fatalf("other subject locked: %v", err)
	}
}

func TestLockoutExpires(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxAttempts: 1, Cooldown: time.Minute})
	ctx := context.Background()

	_ = l.Fail(ctx, "EMP001", "")
	if err := l.Check(ctx, "EMP001", ""); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected lock, got %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if err := l.Check(ctx, "EMP001", ""); err != nil {
		t.Fatalf("lock outlived cooldown: %v", err)
	}
}

func TestResetClearsSubject(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxAttempts: 5})
	ctx := context.Background()

	_ = l.Fail(ctx, "EMP003", "")
	_ = l.Fail(ctx, "EMP003", "")
	if n, _ := l.Attempts(ctx, "EMP003"); n != 2 {
		t.Fatalf("attempts = %d", n)
	}
	if err := l.Reset(ctx, "EMP003"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.Attempts(ctx, "EMP003"); n != 0 {
		t.Fatalf("attempts after reset = %d", n)
	}
}

func TestThrottleIP(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxAttempts: 2, ThrottleIP: true})
	ctx := context.Background()

	_ = l.Fail(ctx, "EMP001", "10.0.0.1")
	_ = l.Fail(ctx, "EMP002", "10.0.0.1")
	if err := l.Check(ctx, "EMP003", "10.0.0.1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("address not throttled: %v", err)
	}
	if err := l.Check(ctx, "EMP003", "10.0.0.2"); err != nil {
		t.Fatalf("other address throttled: %v", err)
	}
}

func TestRedisDown(t *testing.T) {
	l, mr := newLimiter(t, Config{})
	mr.Close()
	if err := l.Check(context.Background(), "EMP001", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("got %v", err)
	}
}
