package issuer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/MrEthical07/hrauth/authapi"
	"github.com/MrEthical07/hrauth/internal/rate"
	"github.com/MrEthical07/hrauth/jwt"
	"github.com/MrEthical07/hrauth/password"
	"github.com/MrEthical07/hrauth/permission"
)

const (
	defaultLoginLimit  = 10
	defaultLoginWindow = time.Minute
	maxRequestBytes    = 64 << 10
)

// Account is a seeded login.
type Account struct {
	SubjectID string
	Secret    string
	RoleID    string
}

// Config configures a [Server].
type Config struct {
	// Tokens signs issued access tokens. Required.
	Tokens *jwt.Issuer
	// Hasher hashes seeded secrets. Nil means password.FastParams.
	Hasher *password.Hasher

	Catalog  []permission.Entry
	Roles    []authapi.Role
	Accounts []Account

	// AdminRole may call the catalog and role endpoints. Defaults to "admin".
	AdminRole string
	// CoreRoles cannot be deleted. Defaults to admin, hr and employee.
	CoreRoles []string

	// LoginLimit requests per LoginWindow per client IP.
	LoginLimit  int
	LoginWindow time.Duration

	// Lockout, when set, refuses logins for a subject after repeated
	// failures.
	Lockout *rate.Limiter

	Logger *slog.Logger
}

type account struct {
	subjectID string
	hash      string
	roleID    string
}

type roleRecord struct {
	role    authapi.Role
	deleted bool
}

// Server is an in-memory authentication and role service speaking the
// same wire contract as the production API.
type Server struct {
	tokens    *jwt.Issuer
	hasher    *password.Hasher
	catalog   []permission.Entry
	known     *permission.Catalog
	adminRole string
	core      map[string]bool
	log       *slog.Logger
	lockout   *rate.Limiter
	router    chi.Router

	mu       sync.RWMutex
	accounts map[string]account
	roles    map[string]*roleRecord
	order    []string
}

// New seeds a Server from cfg.
func New(cfg Config) (*Server, error) {
	if cfg.Tokens == nil {
		return nil, errors.New("issuer: token issuer is required")
	}
	hasher := cfg.Hasher
	if hasher == nil {
		var err error
		if hasher, err = password.NewHasher(password.FastParams()); err != nil {
			return nil, err
		}
	}
	known, err := permission.CatalogFromEntries(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("issuer: catalog: %w", err)
	}

	s := &Server{
		tokens:    cfg.Tokens,
		hasher:    hasher,
		catalog:   append([]permission.Entry(nil), cfg.Catalog...),
		known:     known,
		adminRole: cfg.AdminRole,
		core:      make(map[string]bool),
		log:       cfg.Logger,
		lockout:   cfg.Lockout,
		accounts:  make(map[string]account),
		roles:     make(map[string]*roleRecord),
	}
	if s.adminRole == "" {
		s.adminRole = "admin"
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	core := cfg.CoreRoles
	if core == nil {
		core = []string{s.adminRole, "hr", "employee"}
	}
	for _, id := range core {
		s.core[id] = true
	}

	for _, r := range cfg.Roles {
		if err := s.insertRole(r); err != nil {
			return nil, err
		}
	}
	for _, a := range cfg.Accounts {
		if err := s.AddAccount(a); err != nil {
			return nil, err
		}
	}

	limit, window := cfg.LoginLimit, cfg.LoginWindow
	if limit <= 0 {
		limit = defaultLoginLimit
	}
	if window <= 0 {
		window = defaultLoginWindow
	}
	s.router = s.routes(limit, window)
	return s, nil
}

// AddAccount hashes a.Secret and stores the account, replacing any account
// with the same subject ID.
func (s *Server) AddAccount(a Account) error {
	if a.SubjectID == "" || a.RoleID == "" {
		return errors.New("issuer: account needs a subject and a role")
	}
	hash, err := s.hasher.Hash(a.Secret)
	if err != nil {
		return fmt.Errorf("issuer: account %s: %w", a.SubjectID, err)
	}
	s.mu.Lock()
	s.accounts[a.SubjectID] = account{subjectID: a.SubjectID, hash: hash, roleID: a.RoleID}
	s.mu.Unlock()
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(limit int, window time.Duration) chi.Router {
	r := chi.NewRouter()

	loginLimiter := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeDetail(w, http.StatusTooManyRequests, "Too many login attempts")
		}),
	)
	r.With(loginLimiter).Post(authapi.LoginPath, s.handleLogin)
	r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out (client should clear token)"})
	})

	r.Route(authapi.RolesPath, func(rr chi.Router) {
		rr.Use(s.requireAdmin)
		rr.Get("/permissions", s.handlePermissions)
		rr.Get("/", s.handleListRoles)
		rr.Post("/", s.handleCreateRole)
		rr.Get("/{roleID}", s.handleGetRole)
		rr.Put("/{roleID}", s.handleUpdateRole)
		rr.Delete("/{roleID}", s.handleDeleteRole)
	})
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Malformed login form")
		return
	}
	subject := r.PostForm.Get("username")
	secret := r.PostForm.Get("password")
	ip := clientIP(r)

	if s.lockout != nil {
		if err := s.lockout.Check(r.Context(), subject, ip); err != nil {
			s.lockoutFailure(w, subject, err)
			return
		}
	}

	s.mu.RLock()
	acct, ok := s.accounts[subject]
	s.mu.RUnlock()

	valid := false
	if ok {
		var err error
		valid, err = s.hasher.Verify(secret, acct.hash)
		if err != nil {
			s.log.Error("stored hash unreadable", slog.String("subject", subject), slog.Any("error", err))
			valid = false
		}
	}
	if !valid {
		s.log.Info("login rejected", slog.String("subject", subject))
		if s.lockout != nil {
			if err := s.lockout.Fail(r.Context(), subject, ip); err != nil && !errors.Is(err, rate.ErrLocked) {
				s.log.Warn("lockout counter not updated", slog.Any("error", err))
			}
		}
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect employee ID or password")
		return
	}

	token, err := s.tokens.Issue(acct.subjectID, acct.roleID, s.rolePermissions(acct.roleID))
	if err != nil {
		s.log.Error("token signing failed", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	if s.lockout != nil {
		if err := s.lockout.Reset(r.Context(), subject); err != nil {
			s.log.Warn("lockout counter not reset", slog.Any("error", err))
		}
	}
	s.log.Info("login accepted", slog.String("subject", subject), slog.String("role", acct.roleID))
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) lockoutFailure(w http.ResponseWriter, subject string, err error) {
	if errors.Is(err, rate.ErrLocked) {
		s.log.Info("login locked out", slog.String("subject", subject))
		writeDetail(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}
	s.log.Error("lockout check failed", slog.Any("error", err))
	writeDetail(w, http.StatusServiceUnavailable, "Login temporarily unavailable")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rolePermissions returns the live permission keys of roleID; a missing or
// deleted role grants nothing.
func (s *Server) rolePermissions(roleID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.roles[roleID]
	if !ok || rec.deleted {
		return []string{}
	}
	return append([]string{}, rec.role.Permissions...)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := s.tokens.Verify(raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeDetail(w, http.StatusUnauthorized, "Token has expired")
				return
			}
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if claims.RoleID != s.adminRole {
			writeDetail(w, http.StatusForbidden, "The user does not have permissions to perform this action")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]authapi.Role, 0, len(s.order))
	for _, id := range s.order {
		if rec := s.roles[id]; !rec.deleted {
			out = append(out, cloneRole(rec.role))
		}
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "roleID")
	s.mu.RLock()
	rec, ok := s.roles[id]
	var role authapi.Role
	if ok && !rec.deleted {
		role = cloneRole(rec.role)
	}
	s.mu.RUnlock()
	if !ok || rec.deleted {
		writeDetail(w, http.StatusNotFound, "Role not found")
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var in authapi.Role
	if !decodeBody(w, r, &in) {
		return
	}
	if in.RoleID == "" {
		in.RoleID = uuid.NewString()
	}
	if err := s.checkRole(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.insertRole(in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Role with this ID already exists")
		return
	}
	s.log.Info("role created", slog.String("role_id", in.RoleID))
	writeJSON(w, http.StatusCreated, cloneRole(in))
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "roleID")
	var in authapi.Role
	if !decodeBody(w, r, &in) {
		return
	}
	if in.RoleName == "" && in.Permissions == nil {
		writeDetail(w, http.StatusBadRequest, "No update data provided")
		return
	}
	if err := s.checkKeys(in.Permissions); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	rec, ok := s.roles[id]
	if !ok || rec.deleted {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Role not found")
		return
	}
	if in.RoleName != "" {
		rec.role.RoleName = in.RoleName
	}
	if in.Permissions != nil {
		rec.role.Permissions = append([]string{}, in.Permissions...)
	}
	out := cloneRole(rec.role)
	s.mu.Unlock()

	s.log.Info("role updated", slog.String("role_id", id))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "roleID")
	if s.core[id] {
		writeDetail(w, http.StatusBadRequest, "Cannot delete core system roles")
		return
	}
	s.mu.Lock()
	rec, ok := s.roles[id]
	if ok {
		rec.deleted = true
	}
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Role not found")
		return
	}
	s.log.Info("role deleted", slog.String("role_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) insertRole(role authapi.Role) error {
	if role.RoleID == "" {
		return errors.New("issuer: role without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.roles[role.RoleID]; exists {
		return fmt.Errorf("issuer: role %s already exists", role.RoleID)
	}
	role = cloneRole(role)
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	s.roles[role.RoleID] = &roleRecord{role: role}
	s.order = append(s.order, role.RoleID)
	return nil
}

func (s *Server) checkRole(role authapi.Role) error {
	if strings.TrimSpace(role.RoleName) == "" {
		return errors.New("role_name is required")
	}
	return s.checkKeys(role.Permissions)
}

func (s *Server) checkKeys(keys []string) error {
	for _, k := range keys {
		if !s.known.Contains(k) {
			return fmt.Errorf("unknown permission key %q", k)
		}
	}
	return nil
}

func cloneRole(r authapi.Role) authapi.Role {
	r.Permissions = append([]string{}, r.Permissions...)
	return r
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
