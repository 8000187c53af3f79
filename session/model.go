package session

import (
	"github.com/MrEthical07/hrauth/jwt"
	"github.com/MrEthical07/hrauth/permission"
)

// State is the lifecycle state of a [Session].
type State uint8

const (
	// Uninitialized means startup has not yet read the credential store.
	Uninitialized State = iota
	// Unauthenticated means initialization finished without a usable token.
	Unauthenticated
	// Authenticated means a decoded, unexpired token backs the session.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// User is the authenticated principal derived from token claims.
type User struct {
	SubjectID   string
	RoleID      string
	Permissions permission.Set
	ExpiresAt   int64
}

// Session is a point-in-time view of authentication state.
type Session struct {
	Initialized bool
	User        *User
}

// FromClaims builds the user for claims. Duplicate permission keys collapse.
func FromClaims(c jwt.Claims) *User {
	return &User{
		SubjectID:   c.SubjectID,
		RoleID:      c.RoleID,
		Permissions: permission.NewSet(c.Permissions...),
		ExpiresAt:   c.ExpiresAt,
	}
}

// State derives the lifecycle state.
func (s Session) State() State {
	switch {
	case !s.Initialized:
		return Uninitialized
	case s.User == nil:
		return Unauthenticated
	default:
		return Authenticated
	}
}

// Authenticated reports whether a user is present.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// Clone returns a deep copy so callers cannot reach shared state.
func (s Session) Clone() Session {
	out := Session{Initialized: s.Initialized}
	if s.User != nil {
		u := *s.User
		u.Permissions = s.User.Permissions.Clone()
		out.User = &u
	}
	return out
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return u != nil && u.RoleID == role
}
