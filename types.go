package goOTP

import "time"

// Outcome classifies the result of a verification attempt.
//
//	Docs: docs/verification.md
type Outcome uint8

const (
	// OutcomeValid is an exported constant or variable used by the passcode engine.
	OutcomeValid Outcome = iota
	// OutcomeNotFound is an exported constant or variable used by the passcode engine.
	OutcomeNotFound
	// OutcomeExpired is an exported constant or variable used by the passcode engine.
	OutcomeExpired
	// OutcomeAttemptsExceeded is an exported constant or variable used by the passcode engine.
	OutcomeAttemptsExceeded
	// OutcomeInvalid is an exported constant or variable used by the passcode engine.
	OutcomeInvalid
)

// String returns the stable lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeExpired:
		return "expired"
	case OutcomeAttemptsExceeded:
		return "attempts_exceeded"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// VerifyResult is returned by [Engine.Verify]. Non-Valid outcomes are
// structured results, not errors: a wrong code is an expected, frequent
// event, and raising it at varying points would reopen the timing channel
// the verifier equalizes.
//
//	Docs: docs/verification.md
type VerifyResult struct {
	Outcome Outcome

	// Reason is a short stable token describing the outcome for logs.
	Reason string
}

// Ok reports whether the supplied code was accepted.
func (r VerifyResult) Ok() bool {
	return r.Outcome == OutcomeValid
}

// RecordMetadata is the non-secret view of a stored record returned by
// [Engine.Inspect]. It never carries the code hash.
type RecordMetadata struct {
	Identity          string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	LastAttemptAt     time.Time
	Attempts          int
	AttemptsRemaining int
}

// Clock abstracts time so callers can replace real time in tests. Expiry
// decisions, sweep scans, and record timestamps all read from it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// IdentityValidator checks a normalized (trimmed, case-folded) identity.
// The caller's domain layer owns the real syntax rules — for email
// identities, supply an email validator through [Builder.WithIdentityValidator].
type IdentityValidator func(identity string) error
