// Package session defines the in-memory authentication state of a client
// process: whether startup initialization has finished and, if a valid
// token is held, who the user is.
//
// A [User] is only ever built from decoded token claims through [FromClaims];
// there is no other way to change its permissions.
package session
