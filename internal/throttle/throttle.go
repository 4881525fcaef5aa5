package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrThrottled means the account or source exceeded its failure budget
	// and must wait out the cooldown window.
	ErrThrottled = errors.New("attempt budget exceeded")
	// ErrRedisUnavailable wraps transport failures talking to the counter
	// backend.
	ErrRedisUnavailable = errors.New("throttle backend unavailable")
)

// Config tunes the failed-attempt budget.
type Config struct {
	MaxAttempts int
	Cooldown    time.Duration
	// PerIP additionally budgets by source address when one is supplied.
	PerIP bool
}

// Limiter enforces per-account and per-source login budgets with Redis
// counters. Safe for concurrent use.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	config Config
}

func New(rdb *redis.Client, prefix string, cfg Config) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, config: cfg}
}

func (l *Limiter) accountKey(email string) string {
	return l.prefix + ":throttle:acct:" + email
}

func (l *Limiter) sourceKey(ip string) string {
	return l.prefix + ":throttle:ip:" + ip
}

// Check reports whether a sign-in attempt for the account (and source, if
// per-IP budgeting is on) is still within budget.
func (l *Limiter) Check(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, l.accountKey(email)); err != nil {
		return err
	}
	if l.config.PerIP && ip != "" {
		return l.checkCounter(ctx, l.sourceKey(ip))
	}
	return nil
}

// RecordFailure counts a failed attempt against the account and source.
// Returns ErrThrottled when this failure crosses the budget.
func (l *Limiter) RecordFailure(ctx context.Context, email, ip string) error {
	count, err := l.incrementWithTTL(ctx, l.accountKey(email))
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrThrottled
	}

	if l.config.PerIP && ip != "" {
		count, err = l.incrementWithTTL(ctx, l.sourceKey(ip))
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxAttempts) {
			return ErrThrottled
		}
	}
	return nil
}

// Reset clears the failure counters after a successful sign-in.
func (l *Limiter) Reset(ctx context.Context, email, ip string) error {
	keys := []string{l.accountKey(email)}
	if l.config.PerIP && ip != "" {
		keys = append(keys, l.sourceKey(ip))
	}
	if err := l.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the current failure count for an account. Missing keys
// read as zero and do not reveal account existence.
func (l *Limiter) Attempts(ctx context.Context, email string) (int, error) {
	count, err := l.rdb.Get(ctx, l.accountKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.rdb.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrThrottled
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	// Fixed-window semantics: the TTL starts with the first hit.
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
