package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultCooldown    = 15 * time.Minute
	defaultPrefix      = "hrauth:lock:"
)

// Config holds lockout tuning parameters.
type Config struct {
	// MaxAttempts failed logins are tolerated per window. Zero means 5.
	MaxAttempts int
	// Cooldown is the window length. Zero means 15 minutes.
	Cooldown time.Duration
	// KeyPrefix namespaces counters. Empty means "hrauth:lock:".
	KeyPrefix string
	// ThrottleIP additionally counts failures per client address.
	ThrottleIP bool
}

// Limiter counts failed logins per subject (and optionally per client
// address) in Redis and refuses further attempts once a counter passes
// MaxAttempts.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultPrefix
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check returns ErrLocked when subject or ip has exhausted its budget.
func (l *Limiter) Check(ctx context.Context, subject, ip string) error {
	if err := l.checkCounter(ctx, l.subjectKey(subject)); err != nil {
		return err
	}
	if l.config.ThrottleIP && ip != "" {
		return l.checkCounter(ctx, l.ipKey(ip))
	}
	return nil
}

// Fail records a failed login. It returns ErrLocked when this attempt
// exhausted the budget.
func (l *Limiter) Fail(ctx context.Context, subject, ip string) error {
	count, err := l.incrementWithTTL(ctx, l.subjectKey(subject))
	if err != nil {
		return err
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrLocked
	}

	if l.config.ThrottleIP && ip != "" {
		count, err = l.incrementWithTTL(ctx, l.ipKey(ip))
		if err != nil {
			return err
		}
		if count >= int64(l.config.MaxAttempts) {
			return ErrLocked
		}
	}
	return nil
}

// Reset clears the subject counter after a successful login. The address
// counter is left to expire.
func (l *Limiter) Reset(ctx context.Context, subject string) error {
	if err := l.redis.Del(ctx, l.subjectKey(subject)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failure count for subject. Missing keys return zero.
func (l *Limiter) Attempts(ctx context.Context, subject string) (int, error) {
	count, err := l.redis.Get(ctx, l.subjectKey(subject)).Int64()
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

func (l *Limiter) subjectKey(subject string) string {
	return l.config.KeyPrefix + "s:" + subject
}

func (l *Limiter) ipKey(ip string) string {
	return l.config.KeyPrefix + "ip:" + ip
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrLocked
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: the TTL is set on the first hit only.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
