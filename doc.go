// Package hrauth is the client-side authorization core of the HR dashboard:
// it restores and tracks the signed-in user's session and decides where a
// navigation request may go.
//
// The package is designed for long-lived client processes: Engine methods
// are safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// hrauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (MetricsSnapshot, AuditEvent, etc.). Flow orchestration,
// metric storage and audit dispatch live under internal/ and are never
// exported. Token storage is in package credential, claims decoding in
// package jwt, the navigation decision in package access and the permission
// dependency rules in package permission.
//
// # What this package must NOT do
//
//   - Verify token signatures. Tokens are trusted as issued.
//   - Expire a live session on a timer. Expiry is checked at Initialize.
//   - Import any sub-package that re-imports hrauth (no import cycles).
package hrauth
