// Package authapi is the HTTP client for the remote services the
// authorization core depends on: the login endpoint, the permission
// catalog, and role CRUD.
//
// Timeouts and retries belong to the supplied *http.Client; this package
// performs exactly one request per call.
package authapi
