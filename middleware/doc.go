// Package middleware adapts hrauth navigation decisions to net/http.
//
// # Guards
//
//   - [Guard] looks each request path up in the engine's route table.
//   - [Require] guards one handler with a fixed permission set.
//
// Both call the engine's Decide and translate the verdict: Loading becomes
// 503 with Retry-After, the redirect verdicts become 302 responses, and
// Allow calls the next handler with the session snapshot in the request
// context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authorization logic itself; all decisions are delegated to
// hrauth.Engine.
//
// # What this package must NOT do
//
//   - Parse or decode tokens directly (delegates to Engine).
//   - Touch the credential store.
//   - Make authorization decisions beyond translating the Engine verdict.
package middleware
