// Package password hashes and checks account secrets for the stub
// authentication service with Argon2id.
//
// Hashes are PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The client core never sees secrets at rest; it forwards them to the login
// endpoint. This package exists so the in-process issuer behaves like the
// real one and rejects wrong secrets.
package password
