// Package internal holds implementation packages private to hrauth.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: pure-function orchestrators for Initialize, Login and Logout
//   - issuer: in-memory stand-in for the authentication and role service
//   - metrics: lock-free counters and the login latency histogram
//   - rate: Redis-backed failed-login lockout used by issuer
package internal
