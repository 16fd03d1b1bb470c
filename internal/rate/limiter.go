package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds throttle tuning parameters.
type Config struct {
	EnableIdentityThrottle bool
	EnableIPThrottle       bool
	MaxIssuePerWindow      int
	MaxVerifyPerWindow     int
	Window                 time.Duration
}

// Limiter enforces per-identity and per-IP fixed-window limits for issue
// and verify operations using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckIssue checks whether the identity+IP pair is within the issuance
// window budget. Returns ErrRateLimited if either counter is spent.
func (l *Limiter) CheckIssue(ctx context.Context, tenantID, identity, ip string) error {
	if l == nil {
		return nil
	}
	if l.config.EnableIdentityThrottle {
		if err := l.enforceFixedWindow(ctx, issueIdentityKey(tenantID, identity), l.config.MaxIssuePerWindow); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, issueIPKey(tenantID, ip), l.config.MaxIssuePerWindow); err != nil {
			return err
		}
	}
	return nil
}

// CheckVerify checks whether the identity+IP pair is within the verification
// window budget. Returns ErrRateLimited if either counter is spent.
func (l *Limiter) CheckVerify(ctx context.Context, tenantID, identity, ip string) error {
	if l == nil {
		return nil
	}
	if l.config.EnableIdentityThrottle {
		if err := l.enforceFixedWindow(ctx, verifyIdentityKey(tenantID, identity), l.config.MaxVerifyPerWindow); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, verifyIPKey(tenantID, ip), l.config.MaxVerifyPerWindow); err != nil {
			return err
		}
	}
	return nil
}

func (l *Limiter) enforceFixedWindow(ctx context.Context, key string, maxHits int) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(maxHits) {
		return ErrRateLimited
	}

	return nil
}

func issueIdentityKey(tenantID, identity string) string {
	return "oi:" + tenantID + ":" + identity
}

func issueIPKey(tenantID, ip string) string {
	return "oiip:" + tenantID + ":" + ip
}

func verifyIdentityKey(tenantID, identity string) string {
	return "ov:" + tenantID + ":" + identity
}

func verifyIPKey(tenantID, ip string) string {
	return "ovip:" + tenantID + ":" + ip
}
