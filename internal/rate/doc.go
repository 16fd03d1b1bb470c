// Package rate provides the Redis-backed request throttles for passcode
// issuance and verification.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - oi:   — issue per-identity
//   - oiip: — issue per-IP
//   - ov:   — verify per-identity
//   - ovip: — verify per-IP
//
// The throttles are a volume control in front of the engine; the per-record
// attempt budget enforced by the store does not live here.
//
// # What this package must NOT do
//
//   - Inspect or mutate passcode records.
//   - Be imported outside the goOTP module.
package rate
