package goOTP

import "errors"

var (
	// ErrInvalidIdentity is an exported constant or variable used by the passcode engine.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrInvalidCode is an exported constant or variable used by the passcode engine.
	ErrInvalidCode = errors.New("invalid code format")
	// ErrInvalidTTL is an exported constant or variable used by the passcode engine.
	ErrInvalidTTL = errors.New("invalid ttl")
	// ErrIssueRateLimited is an exported constant or variable used by the passcode engine.
	ErrIssueRateLimited = errors.New("issue rate limited")
	// ErrVerifyRateLimited is an exported constant or variable used by the passcode engine.
	ErrVerifyRateLimited = errors.New("verify rate limited")
	// ErrStoreUnavailable is an exported constant or variable used by the passcode engine.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrGenerationFailed is an exported constant or variable used by the passcode engine.
	ErrGenerationFailed = errors.New("code generation failed")
	// ErrEngineNotReady is an exported constant or variable used by the passcode engine.
	ErrEngineNotReady = errors.New("engine not fully initialized")
	// ErrEngineClosed is an exported constant or variable used by the passcode engine.
	ErrEngineClosed = errors.New("engine closed")
)
