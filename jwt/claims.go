package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Wire claim names. The mixed casing is the issuer's contract.
const (
	ClaimEmployeeID  = "Employee_id"
	ClaimRole        = "role"
	ClaimExpiresAt   = "exp"
	ClaimPermissions = "permissions"
)

// Claims is the typed content of a bearer token.
type Claims struct {
	SubjectID   string
	RoleID      string
	Permissions []string
	// ExpiresAt is the exp claim in unix seconds.
	ExpiresAt int64
}

// Expired reports whether the token is no longer usable at now. A token
// whose expiry equals now is already expired.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// ExpiresAtTime returns the expiry as a time.Time.
func (c Claims) ExpiresAtTime() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// issuedClaims is the signed representation minted by [Issuer].
type issuedClaims struct {
	EmployeeID  string   `json:"Employee_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}
