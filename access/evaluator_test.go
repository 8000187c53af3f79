package access

import (
	"testing"

	"github.com/MrEthical07/hrauth/permission"
	"github.com/MrEthical07/hrauth/session"
)

func testEvaluator() Evaluator {
	return Evaluator{
		AdminRole:        "admin",
		AdminHome:        "/admin/dashboard",
		GeneralHome:      "/app/dashboard",
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
	}
}

func authed(role string, perms ...string) session.Session {
	return session.Session{
		Initialized: true,
		User: &session.User{
			SubjectID:   "EMP001",
			RoleID:      role,
			Permissions: permission.NewSet(perms...),
		},
	}
}

func TestDecide(t *testing.T) {
	e := testEvaluator()
	anyPerms := permission.NewSet("employee:read_all")

	tests := []struct {
		name     string
		sess     session.Session
		required permission.Set
		path     string
		want     Decision
	}{
		{
			name:     "not initialized",
			sess:     session.Session{User: &session.User{RoleID: "admin"}},
			required: anyPerms,
			path:     "/admin/x",
			want:     Decision{Verdict: Loading},
		},
		{
			name:     "anonymous",
			sess:     session.Session{Initialized: true},
			required: anyPerms,
			path:     "/secure",
			want:     Decision{Verdict: RedirectLogin, Target: "/login", ResumePath: "/secure"},
		},
		{
			name:     "anonymous root",
			sess:     session.Session{Initialized: true},
			required: nil,
			path:     "/",
			want:     Decision{Verdict: RedirectLogin, Target: "/login", ResumePath: "/"},
		},
		{
			name:     "admin root",
			sess:     authed("admin"),
			required: anyPerms,
			path:     "/",
			want:     Decision{Verdict: RedirectRoleHome, Target: "/admin/dashboard"},
		},
		{
			name:     "employee root",
			sess:     authed("employee", "employee:read_all"),
			required: anyPerms,
			path:     "/",
			want:     Decision{Verdict: RedirectRoleHome, Target: "/app/dashboard"},
		},
		{
			name:     "admin override with no permissions",
			sess:     authed("admin"),
			required: anyPerms,
			path:     "/admin/x",
			want:     Decision{Verdict: Allow},
		},
		{
			name:     "at least one of",
			sess:     authed("manager", "leave:approve"),
			required: permission.NewSet("leave:read_all", "leave:approve"),
			path:     "/admin/leaves",
			want:     Decision{Verdict: Allow},
		},
		{
			name:     "no overlap",
			sess:     authed("employee", "leave:read_self"),
			required: permission.NewSet("leave:read_all", "leave:approve"),
			path:     "/admin/leaves",
			want:     Decision{Verdict: RedirectUnauthorized, Target: "/unauthorized"},
		},
		{
			name:     "empty guard admits only admin",
			sess:     authed("manager", "employee:read_all"),
			required: permission.NewSet(),
			path:     "/admin/x",
			want:     Decision{Verdict: RedirectUnauthorized, Target: "/unauthorized"},
		},
		{
			name:     "empty guard admin",
			sess:     authed("admin"),
			required: nil,
			path:     "/admin/x",
			want:     Decision{Verdict: Allow},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Decide(tc.sess, tc.required, tc.path); got != tc.want {
				t.Fatalf("Decide() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecideUninitializedIgnoresInputs(t *testing.T) {
	e := testEvaluator()
	paths := []string{"/", "/secure", "/admin/x", ""}
	perms := []permission.Set{nil, permission.NewSet(), permission.NewSet("employee:read_all")}
	for _, p := range paths {
		for _, r := range perms {
			if got := e.Decide(session.Session{}, r, p); got.Verdict != Loading {
				t.Fatalf("Decide(uninit, %v, %q) = %v", r.Sorted(), p, got.Verdict)
			}
		}
	}
}

func TestVerdictString(t *testing.T) {
	if RedirectRoleHome.String() != "redirect_role_home" || Verdict(99).String() != "unknown" {
		t.Fatal("unexpected verdict names")
	}
}
