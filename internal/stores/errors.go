package stores

import "errors"

var (
	// ErrRecordNotFound reports that no active record exists for the key.
	ErrRecordNotFound = errors.New("otp record not found")
	// ErrRecordExpired reports that the record's expiry has passed; the record is deleted on detection.
	ErrRecordExpired = errors.New("otp record expired")
	// ErrRecordExhausted reports that the attempt budget was already spent; the record is deleted on detection.
	ErrRecordExhausted = errors.New("otp record attempts exhausted")
	// ErrStoreUnavailable reports a backend failure (Redis connectivity, codec corruption).
	ErrStoreUnavailable = errors.New("otp store unavailable")
)
