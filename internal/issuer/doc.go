// Package issuer is an in-memory stand-in for the remote authentication
// and role service. It serves the login form endpoint, the permission
// catalog and role CRUD over chi, verifies secrets with Argon2id and signs
// tokens with the shared claim schema.
//
// Catalog and role endpoints require a bearer token whose role is the
// admin role. Deleting a role is a soft delete; core roles cannot be
// deleted.
//
// Logins are throttled per client address with httprate. Config.Lockout adds
// a per-subject failed-login lockout backed by Redis (see internal/rate).
package issuer
