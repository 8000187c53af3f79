// Package jwt decodes bearer tokens into typed [Claims] without verifying
// signatures, and mints tokens for the in-process stub issuer used by tests
// and local development.
//
// The client side never holds a verification key: [Decoder] trusts the
// transport and the issuing service and only enforces the claim schema.
// Expiry is not a decode failure; callers compare
// [Claims.Expired] against their own clock.
package jwt
