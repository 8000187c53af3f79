// Package access decides what navigation to perform for a requested path
// given the current session and the permissions the path's guard accepts.
//
// [Evaluator.Decide] is pure and synchronous: it has no I/O and no failure
// mode, so framework adapters (see package middleware) only translate its
// [Decision] into a redirect or a pass-through.
//
// Guards use at-least-one-of semantics. The configured super-role passes
// every guard. A guard with no permissions would admit only the super-role,
// so [NewRouteTable] refuses to build one.
package access
