package issuer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/hrauth/access"
	"github.com/MrEthical07/hrauth/authapi"
	"github.com/MrEthical07/hrauth/internal/rate"
	"github.com/MrEthical07/hrauth/jwt"
	"github.com/MrEthical07/hrauth/session"
)

var testSecret = []byte("issuer-test-secret-0123456789abcdef")

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *jwt.Issuer) {
	t.Helper()
	tokens, err := jwt.NewIssuer(jwt.IssuerConfig{TTL: time.Hour, SigningMethod: jwt.MethodHS256, PrivateKey: testSecret})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	cfg := DefaultConfig(tokens)
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, tokens
}

func login(t *testing.T, h http.Handler, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {user}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, authapi.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, tokens *jwt.Issuer, role string) string {
	t.Helper()
	tok, err := tokens.Issue("EMP999", role, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func call(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesRolePermissions(t *testing.T) {
	srv, tokens := newTestServer(t, nil)

	rec := login(t, srv, "EMP003", "password123")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TokenType != "bearer" {
		t.Fatalf("token_type = %q", out.TokenType)
	}
	claims, err := tokens.Verify(out.AccessToken)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.SubjectID != "EMP003" || claims.RoleID != "employee" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !sameKeys(claims.Permissions, seededEmployeeKeys) {
		t.Fatalf("token permissions = %v, want %v", claims.Permissions, seededEmployeeKeys)
	}
}

var seededHRKeys = []string{
	"employee:create", "employee:read_all", "employee:update",
	"leave:create_all", "leave:read_all", "leave:approve",
	"payroll:create", "payroll:read_all", "payroll:update",
	"asset:create", "asset:read_all", "asset:allot", "asset:reclaim",
	"performance:create", "performance:read_all", "performance:update", "performance:delete",
	"skill:create", "skill:read_all", "skill:update", "skill:delete",
}

var seededEmployeeKeys = []string{
	"employee:read_self", "leave:create_self", "leave:read_self",
	"payroll:read_self", "asset:read_self", "performance:read_self",
	"skill:read_self",
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, k := range a {
		seen[k]++
	}
	for _, k := range b {
		if seen[k] == 0 {
			return false
		}
		seen[k]--
	}
	return true
}

func TestDefaultRolesSeed(t *testing.T) {
	roles := DefaultRoles()
	byID := make(map[string]authapi.Role, len(roles))
	for _, r := range roles {
		byID[r.RoleID] = r
	}
	if !sameKeys(byID["hr"].Permissions, seededHRKeys) {
		t.Fatalf("hr = %v", byID["hr"].Permissions)
	}
	if !sameKeys(byID["employee"].Permissions, seededEmployeeKeys) {
		t.Fatalf("employee = %v", byID["employee"].Permissions)
	}
	if len(byID["admin"].Permissions) != 31 {
		t.Fatalf("admin carries %d keys, want the whole catalog", len(byID["admin"].Permissions))
	}
}

func TestSeededTokensAgainstDefaultRoutes(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	routes := access.MustRouteTable(access.DefaultRoutes())
	eval := access.Evaluator{
		AdminRole:        "admin",
		AdminHome:        "/admin/dashboard",
		GeneralHome:      "/app/dashboard",
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
	}

	sessions := make(map[string]session.Session)
	sessionFor := func(user string) session.Session {
		if s, ok := sessions[user]; ok {
			return s
		}
		rec := login(t, srv, user, "password123")
		if rec.Code != http.StatusOK {
			t.Fatalf("login %s: %d", user, rec.Code)
		}
		var out struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		claims, err := jwt.NewDecoder().Decode(out.AccessToken)
		if err != nil {
			t.Fatalf("claims: %v", err)
		}
		sessions[user] = session.Session{Initialized: true, User: session.FromClaims(claims)}
		return sessions[user]
	}

	tests := []struct {
		user string
		path string
		want access.Verdict
	}{
		{"EMP003", "/app/dashboard", access.Allow},
		{"EMP003", "/app/my-payslips", access.Allow},
		{"EMP003", "/app/manage-leaves", access.RedirectUnauthorized},
		{"EMP003", "/admin/dashboard", access.RedirectUnauthorized},
		{"EMP002", "/app/manage-payroll", access.Allow},
		{"EMP002", "/app/manage-assets", access.Allow},
		{"EMP002", "/admin/dashboard", access.RedirectUnauthorized},
		{"EMP002", "/admin/manage-roles", access.RedirectUnauthorized},
		{"EMP001", "/admin/manage-roles", access.Allow},
	}
	for _, tc := range tests {
		t.Run(tc.user+tc.path, func(t *testing.T) {
			g, ok := routes.Match(tc.path)
			if !ok {
				t.Fatalf("no route for %s", tc.path)
			}
			if d := eval.Decide(sessionFor(tc.user), g.Allowed, tc.path); d.Verdict != tc.want {
				t.Fatalf("decide = %v, want %v", d.Verdict, tc.want)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, tc := range []struct{ user, pass string }{
		{"EMP001", "wrong-password"},
		{"NOBODY", "password123"},
		{"", ""},
	} {
		rec := login(t, srv, tc.user, tc.pass)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d", tc.user, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Incorrect employee ID or password") {
			t.Fatalf("%s: body = %s", tc.user, rec.Body)
		}
	}
}

func TestLoginRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config) {
		c.LoginLimit = 2
		c.LoginWindow = time.Hour
	})
	login(t, srv, "EMP001", "nope")
	login(t, srv, "EMP001", "nope")
	rec := login(t, srv, "EMP001", "password123")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestLoginLockout(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	lockout := rate.New(rdb, rate.Config{MaxAttempts: 2, Cooldown: time.Minute})

	srv, _ := newTestServer(t, func(c *Config) { c.Lockout = lockout })

	if rec := login(t, srv, "EMP002", "nope"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("first failure: %d", rec.Code)
	}
	if rec := login(t, srv, "EMP002", "password123"); rec.Code != http.StatusOK {
		t.Fatalf("login after one failure: %d", rec.Code)
	}
	if n, _ := lockout.Attempts(t.Context(), "EMP002"); n != 0 {
		t.Fatalf("success did not reset counter: %d", n)
	}

	login(t, srv, "EMP002", "nope")
	login(t, srv, "EMP002", "nope")
	if rec := login(t, srv, "EMP002", "password123"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("locked login status = %d", rec.Code)
	}
	if rec := login(t, srv, "EMP003", "password123"); rec.Code != http.StatusOK {
		t.Fatalf("other subject affected: %d", rec.Code)
	}

	mr.FastForward(2 * time.Minute)
	if rec := login(t, srv, "EMP002", "password123"); rec.Code != http.StatusOK {
		t.Fatalf("lock outlived cooldown: %d", rec.Code)
	}
}

func TestRoleEndpointsRequireAdmin(t *testing.T) {
	srv, tokens := newTestServer(t, nil)

	if rec := call(srv, http.MethodGet, "/roles/permissions", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}
	if rec := call(srv, http.MethodGet, "/roles/permissions", "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d", rec.Code)
	}
	if rec := call(srv, http.MethodGet, "/roles", bearer(t, tokens, "hr"), ""); rec.Code != http.StatusForbidden {
		t.Fatalf("hr status = %d", rec.Code)
	}
	rec := call(srv, http.MethodGet, "/roles/permissions", bearer(t, tokens, "admin"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d", rec.Code)
	}
	var entries []map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil || len(entries) == 0 {
		t.Fatalf("catalog decode: %v (%d entries)", err, len(entries))
	}
	if entries[0]["permission_key"] == "" {
		t.Fatalf("missing permission_key in %v", entries[0])
	}
}

func TestRoleLifecycle(t *testing.T) {
	srv, tokens := newTestServer(t, nil)
	admin := bearer(t, tokens, "admin")

	rec := call(srv, http.MethodPost, "/roles", admin, `{"role_id":"auditor","role_name":"Auditor","permission_keys":["employee:read_all"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body)
	}
	if rec := call(srv, http.MethodPost, "/roles", admin, `{"role_id":"auditor","role_name":"Again","permission_keys":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create status = %d", rec.Code)
	}
	if rec := call(srv, http.MethodPost, "/roles", admin, `{"role_name":"Bad","permission_keys":["nope:nope"]}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown key status = %d", rec.Code)
	}

	rec = call(srv, http.MethodPut, "/roles/auditor", admin, `{"permission_keys":["employee:read_all","employee:update"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body=%s", rec.Code, rec.Body)
	}
	var updated authapi.Role
	_ = json.NewDecoder(rec.Body).Decode(&updated)
	if updated.RoleName != "Auditor" || len(updated.Permissions) != 2 {
		t.Fatalf("unexpected updated role %+v", updated)
	}
	if rec := call(srv, http.MethodPut, "/roles/auditor", admin, `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty update status = %d", rec.Code)
	}

	if got := srv.rolePermissions("auditor"); len(got) != 2 {
		t.Fatalf("rolePermissions = %v", got)
	}

	if rec := call(srv, http.MethodDelete, "/roles/auditor", admin, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := call(srv, http.MethodGet, "/roles/auditor", admin, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", rec.Code)
	}
	if got := srv.rolePermissions("auditor"); len(got) != 0 {
		t.Fatalf("deleted role still grants %v", got)
	}
	if rec := call(srv, http.MethodDelete, "/roles/employee", admin, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("core delete status = %d", rec.Code)
	}
}

func TestCreateRoleAssignsID(t *testing.T) {
	srv, tokens := newTestServer(t, nil)
	rec := call(srv, http.MethodPost, "/roles", bearer(t, tokens, "admin"), `{"role_name":"Contractor","permission_keys":[]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var role authapi.Role
	_ = json.NewDecoder(rec.Body).Decode(&role)
	if len(role.RoleID) != 36 {
		t.Fatalf("expected generated uuid, got %q", role.RoleID)
	}
}

func TestNewRequiresTokens(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without token issuer")
	}
}
