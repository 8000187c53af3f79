package access

import (
	"github.com/MrEthical07/hrauth/permission"
	"github.com/MrEthical07/hrauth/session"
)

// RootPath is always redirected to the caller's role home.
const RootPath = "/"

// Verdict is the navigation outcome for one request.
type Verdict uint8

const (
	// Loading means initialization has not finished; re-evaluate later.
	Loading Verdict = iota
	// RedirectLogin sends an anonymous caller to the login page.
	RedirectLogin
	// RedirectRoleHome sends the caller to the home page of their role.
	RedirectRoleHome
	// Allow lets the request through.
	Allow
	// RedirectUnauthorized sends an authenticated caller lacking access to
	// the unauthorized page.
	RedirectUnauthorized
)

func (v Verdict) String() string {
	switch v {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectRoleHome:
		return "redirect_role_home"
	case Allow:
		return "allow"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Decision is the result of [Evaluator.Decide].
type Decision struct {
	Verdict Verdict
	// Target is the redirect destination; empty for Loading and Allow.
	Target string
	// ResumePath carries the requested path on RedirectLogin so the login
	// flow can return there afterwards.
	ResumePath string
}

// Evaluator holds the role and page configuration Decide needs.
type Evaluator struct {
	AdminRole        string
	AdminHome        string
	GeneralHome      string
	LoginPath        string
	UnauthorizedPath string
}

// RoleHome returns the home page for role.
func (e Evaluator) RoleHome(role string) string {
	if role == e.AdminRole {
		return e.AdminHome
	}
	return e.GeneralHome
}

// Decide maps session state, the path's allowed permissions, and the path
// to a Decision. Checks run in order: initialization, authentication, the
// root redirect, then the permission guard.
//
// An empty required set never matches, so only the super-role is allowed.
// Route tables built by [NewRouteTable] cannot produce such a guard.
func (e Evaluator) Decide(sess session.Session, required permission.Set, requestedPath string) Decision {
	if !sess.Initialized {
		return Decision{Verdict: Loading}
	}
	if sess.User == nil {
		return Decision{Verdict: RedirectLogin, Target: e.LoginPath, ResumePath: requestedPath}
	}
	if requestedPath == RootPath {
		return Decision{Verdict: RedirectRoleHome, Target: e.RoleHome(sess.User.RoleID)}
	}
	if e.HasAccess(sess.User, required) {
		return Decision{Verdict: Allow}
	}
	return Decision{Verdict: RedirectUnauthorized, Target: e.UnauthorizedPath}
}

// HasAccess reports whether user passes a guard of required permissions.
func (e Evaluator) HasAccess(user *session.User, required permission.Set) bool {
	if user == nil {
		return false
	}
	if user.RoleID == e.AdminRole {
		return true
	}
	return user.Permissions.HasAny(required)
}
