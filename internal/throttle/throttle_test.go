package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, "sg", cfg), mr
}

func TestCheckPassesWithNoHistory(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 3, Cooldown: time.Minute})
	if err := l.Check(context.Background(), "ana@example.com", ""); err != nil {
		t.Fatalf("check with no history: %v", err)
	}
}

func TestBudgetExhaustion(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 3, Cooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.RecordFailure(ctx, "ana@example.com", ""); err != nil {
			t.Fatalf("failure %d within budget: %v", i+1, err)
		}
	}
	if err := l.RecordFailure(ctx, "ana@example.com", ""); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled past the budget, got %v", err)
	}
	if err := l.Check(ctx, "ana@example.com", ""); !errors.Is(err, ErrThrottled) {
		t.Fatalf("check after exhaustion: expected ErrThrottled, got %v", err)
	}

	// Other accounts are unaffected.
	if err := l.Check(ctx, "bob@example.com", ""); err != nil {
		t.Fatalf("unrelated account throttled: %v", err)
	}
}

func TestResetClearsTheBudget(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 2, Cooldown: time.Minute})
	ctx := context.Background()

	l.RecordFailure(ctx, "ana@example.com", "")
	l.RecordFailure(ctx, "ana@example.com", "")
	if err := l.Check(ctx, "ana@example.com", ""); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}

	if err := l.Reset(ctx, "ana@example.com", ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := l.Check(ctx, "ana@example.com", ""); err != nil {
		t.Fatalf("check after reset: %v", err)
	}
	if n, err := l.Attempts(ctx, "ana@example.com"); err != nil || n != 0 {
		t.Fatalf("attempts after reset = %d, %v", n, err)
	}
}

func TestCooldownExpiresTheWindow(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxAttempts: 1, Cooldown: time.Minute})
	ctx := context.Background()

	l.RecordFailure(ctx, "ana@example.com", "")
	if err := l.Check(ctx, "ana@example.com", ""); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}

	mr.FastForward(61 * time.Second)
	if err := l.Check(ctx, "ana@example.com", ""); err != nil {
		t.Fatalf("check after cooldown: %v", err)
	}
}

func TestPerIPBudget(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 2, Cooldown: time.Minute, PerIP: true})
	ctx := context.Background()

	// Different accounts, same source.
	l.RecordFailure(ctx, "a@example.com", "10.0.0.9")
	l.RecordFailure(ctx, "b@example.com", "10.0.0.9")
	if err := l.Check(ctx, "c@example.com", "10.0.0.9"); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected source to be throttled, got %v", err)
	}
	if err := l.Check(ctx, "c@example.com", "10.0.0.10"); err != nil {
		t.Fatalf("other source throttled: %v", err)
	}
}

func TestBackendErrorIsWrapped(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxAttempts: 2, Cooldown: time.Minute})
	mr.SetError("backend down")

	if err := l.Check(context.Background(), "ana@example.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := l.RecordFailure(context.Background(), "ana@example.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
