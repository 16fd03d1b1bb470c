// Package goOTP provides a one-time passcode lifecycle engine: unbiased code
// generation, bcrypt-hashed storage with expiry and attempt budgets, and
// timing-equalized verification with background expiry sweeping.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goOTP is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (VerifyResult, RecordMetadata, MetricsSnapshot, etc.). All
// internal coordination — record storage, request throttling, audit dispatch —
// lives under internal/ and is never exported.
//
// The engine deliberately ends at the verify outcome. Request parsing,
// the user store, out-of-band code delivery, and session or token issuance
// after a successful verification are the caller's collaborators.
//
// # What this package must NOT do
//
//   - Store, return, or log a plaintext code after Issue hands it to the caller.
//   - Expose Redis clients, internal stores, or record encodings in its public API.
//   - Report verification failures at different computational cost: every
//     non-match branch of Verify pays one bcrypt comparison.
//
// # Performance contract
//
// Verify is the hot path. Its cost is dominated by exactly one bcrypt
// comparison at the configured cost; the store mutation around it is a single
// map update under a shard mutex (memory) or one Lua round-trip (Redis).
// bcrypt work is never performed while holding a store lock.
package goOTP
