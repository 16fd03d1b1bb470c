// Package codehash implements password-grade hashing for short one-time
// passcodes using bcrypt.
//
// # Why bcrypt for six digits
//
// A six-digit code has under 20 bits of entropy, so an attacker who obtains
// the store contents can brute-force any fast hash instantly. bcrypt's work
// factor keeps an offline sweep of the 900000-value space expensive, and its
// per-hash salt stops precomputation across identities.
//
// # Timing equalization
//
// [Hasher.CompareDummy] compares the supplied code against a fixed hash
// produced at the configured cost during construction. Callers use it on
// branches where no real record exists, so "identity unknown" and "wrong
// code" pay the same bcrypt cost.
//
// # What this package must NOT do
//
//   - Store or retrieve codes — callers supply plaintext and receive hashes.
//   - Import any other goOTP package.
//   - Log plaintext codes at runtime.
package codehash
