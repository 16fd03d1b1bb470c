package goOTP

import (
	"errors"

	"github.com/MrEthical07/goOTP/codehash"
	"github.com/MrEthical07/goOTP/internal/rate"
	"github.com/MrEthical07/goOTP/internal/stores"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goOTP APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	clock            Clock
	auditSink        AuditSink
	identityValidate IdentityValidator

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithClock describes the withclock operation and its observable behavior.
//
// WithClock may return an error when input validation, dependency calls, or security checks fail.
// WithClock does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithIdentityValidator describes the withidentityvalidator operation and its observable behavior.
//
// WithIdentityValidator may return an error when input validation, dependency calls, or security checks fail.
// WithIdentityValidator does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithIdentityValidator(v IdentityValidator) *Builder {
	b.identityValidate = v
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	throttleEnabled := cfg.Throttle.EnableIdentityThrottle || cfg.Throttle.EnableIPThrottle
	if throttleEnabled && b.redis == nil {
		return nil, errors.New("Throttle requires redis client")
	}

	hasher, err := codehash.New(codehash.Config{Cost: cfg.Hash.Cost})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config: cloneConfig(cfg),
		hasher: hasher,
	}

	if b.redis != nil {
		engine.store = stores.NewRedis(b.redis, cfg.Store.RedisPrefix)
	} else {
		engine.store = stores.NewMemory(cfg.Store.MemoryShards)
	}

	if throttleEnabled {
		engine.limiter = rate.New(b.redis, rate.Config{
			EnableIdentityThrottle: cfg.Throttle.EnableIdentityThrottle,
			EnableIPThrottle:       cfg.Throttle.EnableIPThrottle,
			MaxIssuePerWindow:      cfg.Throttle.MaxIssuePerWindow,
			MaxVerifyPerWindow:     cfg.Throttle.MaxVerifyPerWindow,
			Window:                 cfg.Throttle.Window,
		})
	}

	engine.clock = b.clock
	if engine.clock == nil {
		engine.clock = systemClock{}
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink, engine.clock)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.validateIdentity = b.identityValidate

	// Redis records expire through native TTLs; the sweeper only serves the
	// in-memory backend.
	if cfg.Sweep.Enabled && b.redis == nil {
		if err := engine.StartSweeper(); err != nil {
			return nil, err
		}
	}

	b.built = true

	return engine, nil
}
