package codehash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinCost is the lowest accepted bcrypt work factor.
	MinCost = bcrypt.MinCost
	// MaxCost is the highest accepted bcrypt work factor.
	MaxCost = bcrypt.MaxCost
	// DefaultCost is the bcrypt work factor used when the caller does not set one.
	DefaultCost = bcrypt.DefaultCost

	maxCodeBytes = 64
)

// dummyPlaintext is what the dummy hash is derived from. Its value is
// irrelevant; no valid decimal code can equal it.
const dummyPlaintext = "goOTP-dummy-comparison-subject"

// Config defines a public type used by goOTP APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cost int
}

// Hasher defines a public type used by goOTP APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	cost      int
	dummyHash []byte
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) (*Hasher, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < MinCost || cost > MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPlaintext), cost)
	if err != nil {
		return nil, err
	}

	return &Hasher{
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

// Cost describes the cost operation and its observable behavior.
//
// Cost may return an error when input validation, dependency calls, or security checks fail.
// Cost does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash describes the hash operation and its observable behavior.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
// Hash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Hash(code string) ([]byte, error) {
	if code == "" {
		return nil, errors.New("empty code")
	}
	if len(code) > maxCodeBytes {
		return nil, errors.New("code too long")
	}
	return bcrypt.GenerateFromPassword([]byte(code), h.cost)
}

// Compare describes the compare operation and its observable behavior.
//
// Compare may return an error when input validation, dependency calls, or security checks fail.
// Compare does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Compare(hash []byte, code string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(code)) == nil
}

// CompareDummy burns one bcrypt comparison against the fixed dummy hash.
// It always reports false; branches without a real record call it so their
// latency matches a genuine mismatch.
func (h *Hasher) CompareDummy(code string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(code))
	return false
}
