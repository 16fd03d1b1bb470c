package goOTP

import (
	"testing"
	"time"

	"github.com/MrEthical07/goOTP/codehash"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if cfg.Code.Length != 6 {
		t.Fatalf("expected 6-digit default, got %d", cfg.Code.Length)
	}
	if cfg.Code.TTL != 5*time.Minute {
		t.Fatalf("expected 5m default ttl, got %v", cfg.Code.TTL)
	}
	if cfg.Code.MaxAttempts != 5 {
		t.Fatalf("expected 5 default attempts, got %d", cfg.Code.MaxAttempts)
	}
	if cfg.Hash.Cost != codehash.DefaultCost {
		t.Fatalf("expected default bcrypt cost, got %d", cfg.Hash.Cost)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"code length too short", func(c *Config) { c.Code.Length = 3 }},
		{"code length too long", func(c *Config) { c.Code.Length = 11 }},
		{"ttl below one second", func(c *Config) { c.Code.TTL = 500 * time.Millisecond }},
		{"zero attempts", func(c *Config) { c.Code.MaxAttempts = 0 }},
		{"attempts above cap", func(c *Config) { c.Code.MaxAttempts = 101 }},
		{"hash cost above max", func(c *Config) { c.Hash.Cost = codehash.MaxCost + 1 }},
		{"negative shards", func(c *Config) { c.Store.MemoryShards = -1 }},
		{"sweep interval too small", func(c *Config) {
			c.Sweep.Enabled = true
			c.Sweep.Interval = 0
		}},
		{"throttle without issue budget", func(c *Config) {
			c.Throttle.EnableIdentityThrottle = true
			c.Throttle.MaxIssuePerWindow = 0
		}},
		{"throttle window too small", func(c *Config) {
			c.Throttle.EnableIPThrottle = true
			c.Throttle.Window = time.Millisecond
		}},
		{"audit zero buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigZeroHashCostUsesDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hash.Cost = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero cost must validate (resolves to default): %v", err)
	}
}
