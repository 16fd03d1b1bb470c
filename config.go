package goOTP

import (
	"errors"
	"time"

	"github.com/MrEthical07/goOTP/codehash"
	"github.com/MrEthical07/goOTP/internal"
)

// CodeConfig defines a public type used by goOTP APIs.
//
// CodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CodeConfig struct {
	// Length is the number of decimal digits in a generated code.
	Length int
	// TTL is the record lifetime from issuance.
	TTL time.Duration
	// MaxAttempts is the verification budget per record.
	MaxAttempts int
}

// HashConfig defines a public type used by goOTP APIs.
//
// HashConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HashConfig struct {
	// Cost is the bcrypt work factor applied to stored codes.
	Cost int
}

// StoreConfig defines a public type used by goOTP APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// RedisPrefix namespaces record keys when a Redis client is supplied.
	RedisPrefix string
	// MemoryShards is the shard count of the in-process store. Rounded up
	// to a power of two.
	MemoryShards int
}

// SweepConfig defines a public type used by goOTP APIs.
//
// SweepConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SweepConfig struct {
	// Enabled starts the background sweeper at Build. Only meaningful for
	// the memory backend; Redis evicts by key TTL.
	Enabled bool
	// Interval is the sweep cadence.
	Interval time.Duration
}

// ThrottleConfig defines a public type used by goOTP APIs.
//
// ThrottleConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ThrottleConfig struct {
	EnableIdentityThrottle bool
	EnableIPThrottle       bool
	MaxIssuePerWindow      int
	MaxVerifyPerWindow     int
	Window                 time.Duration
}

// AuditConfig defines a public type used by goOTP APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goOTP APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config defines a public type used by goOTP APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Code     CodeConfig
	Hash     HashConfig
	Store    StoreConfig
	Sweep    SweepConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Code: CodeConfig{
			Length:      6,
			TTL:         5 * time.Minute,
			MaxAttempts: 5,
		},
		Hash: HashConfig{
			Cost: codehash.DefaultCost,
		},
		Store: StoreConfig{
			RedisPrefix:  "otp",
			MemoryShards: 16,
		},
		Sweep: SweepConfig{
			Enabled:  true,
			Interval: 60 * time.Second,
		},
		Throttle: ThrottleConfig{
			EnableIdentityThrottle: false,
			EnableIPThrottle:       false,
			MaxIssuePerWindow:      5,
			MaxVerifyPerWindow:     20,
			Window:                 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the explicit clone point survives so
	// future reference-typed fields cannot leak caller aliasing.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c.Code.Length < internal.MinCodeDigits || c.Code.Length > internal.MaxCodeDigits {
		return errors.New("Code.Length must be between 4 and 10 digits")
	}
	if c.Code.TTL < time.Second {
		return errors.New("Code.TTL must be at least one second")
	}
	if c.Code.MaxAttempts < 1 || c.Code.MaxAttempts > 100 {
		return errors.New("Code.MaxAttempts must be between 1 and 100")
	}
	if c.Hash.Cost != 0 && (c.Hash.Cost < codehash.MinCost || c.Hash.Cost > codehash.MaxCost) {
		return errors.New("Hash.Cost outside bcrypt bounds")
	}
	if c.Store.MemoryShards < 0 {
		return errors.New("Store.MemoryShards must not be negative")
	}
	if c.Sweep.Enabled && c.Sweep.Interval < time.Millisecond {
		return errors.New("Sweep.Interval must be at least one millisecond")
	}
	if c.Throttle.EnableIdentityThrottle || c.Throttle.EnableIPThrottle {
		if c.Throttle.MaxIssuePerWindow < 1 {
			return errors.New("Throttle.MaxIssuePerWindow must be at least 1")
		}
		if c.Throttle.MaxVerifyPerWindow < 1 {
			return errors.New("Throttle.MaxVerifyPerWindow must be at least 1")
		}
		if c.Throttle.Window < time.Second {
			return errors.New("Throttle.Window must be at least one second")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 1 {
		return errors.New("Audit.BufferSize must be at least 1")
	}
	return nil
}
