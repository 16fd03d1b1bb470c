// Package stores contains the record store backends for issued passcodes.
//
// A record binds a normalized identity to a password-grade hash of its active
// code plus expiry and attempt-budget state. Both backends give the same
// guarantee: BeginAttempt serializes the expiry check, the budget check, and
// the attempt increment per key, so concurrent verifications can never
// double-spend the budget.
//
// # What this package must NOT do
//
//   - Store or log a plaintext code (callers hash before Put).
//   - Compare hashes; comparison cost is the engine's concern.
//   - Be imported outside the goOTP module.
package stores
