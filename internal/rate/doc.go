// Package rate implements a Redis-backed failed-login lockout used by the
// stub issuer.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys:
//   - <prefix>s:<subject>  failures per subject
//   - <prefix>ip:<addr>    failures per client address (optional)
//
// A successful login deletes the subject counter only.
package rate
