package hrauth

import (
	"context"
	"log/slog"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/hrauth/access"
	"github.com/MrEthical07/hrauth/credential"
	internalaudit "github.com/MrEthical07/hrauth/internal/audit"
	"github.com/MrEthical07/hrauth/internal/flows"
	"github.com/MrEthical07/hrauth/permission"
	"github.com/MrEthical07/hrauth/session"
)

// Engine is the session manager. It owns the current [session.Session],
// which changes only as a side effect of Initialize, Login and Logout.
//
// Engine methods are safe for concurrent use. Overlapping Login calls are
// not ordered: whichever finishes last determines the session.
type Engine struct {
	config    Config
	evaluator access.Evaluator
	routes    *access.RouteTable
	store     credential.Store
	flow      flows.Service
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	now       func() time.Time
	logger    *slog.Logger

	initStarted atomic.Bool

	mu      sync.RWMutex
	sess    session.Session
	subs    map[uint64]func(session.Session)
	nextSub uint64
}

// Close flushes pending audit events. The engine must not be used after.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped by a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}

// Routes returns the route table used by DecidePath.
func (e *Engine) Routes() *access.RouteTable {
	if e == nil {
		return nil
	}
	return e.routes
}

// RoleHome returns the landing page for role.
func (e *Engine) RoleHome(role string) RedirectTarget {
	if e == nil {
		return ""
	}
	return RedirectTarget(e.evaluator.RoleHome(role))
}

// Initialize reads the credential store once and restores the session from
// a stored token. An undecodable or expired token is cleared and the
// session starts unauthenticated; that recovery is logged, not returned.
// The session is marked initialized as the last step.
//
// A second call returns ErrAlreadyInitialized and changes nothing.
func (e *Engine) Initialize(ctx context.Context) error {
	if e == nil || !e.flow.Initialized() {
		return ErrEngineNotReady
	}
	if !e.initStarted.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	res := e.flow.Initialize(ctx)
	if res.Discarded != "" {
		e.logger.Info("stored session discarded", "reason", res.Discarded)
	}
	e.update(func(s *session.Session) {
		s.User = res.User
		s.Initialized = true
	})
	return nil
}

// Login authenticates against the login service, stores the returned token
// and sets the session user from its claims. It returns the role home of
// the new user.
//
// On failure the stored token and the session user are cleared and the
// error is returned as is; authentication failures match ErrAuthentication.
func (e *Engine) Login(ctx context.Context, subjectID, secret string) (RedirectTarget, error) {
	if e == nil || !e.flow.Initialized() {
		return "", ErrEngineNotReady
	}

	res, err := e.flow.Login(ctx, subjectID, secret)
	e.update(func(s *session.Session) {
		s.User = res.User
	})
	if err != nil {
		return "", err
	}
	return RedirectTarget(res.Target), nil
}

// Logout clears the stored token and the session user and returns the
// login path. It is idempotent. A store failure is returned alongside the
// target, and the in-memory session is cleared regardless.
func (e *Engine) Logout(ctx context.Context) (RedirectTarget, error) {
	if e == nil || !e.flow.Initialized() {
		return "", ErrEngineNotReady
	}

	current := e.Session().User
	target, err := e.flow.Logout(ctx, current)
	e.update(func(s *session.Session) {
		s.User = nil
	})
	return RedirectTarget(target), err
}

// Session returns a copy of the current session.
func (e *Engine) Session() session.Session {
	if e == nil {
		return session.Session{}
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sess.Clone()
}

// Subscribe registers fn to receive a copy of the session after every
// change. fn runs on the goroutine that made the change and must not call
// Subscribe or the returned function. The returned function unregisters fn.
func (e *Engine) Subscribe(fn func(session.Session)) (unsubscribe func()) {
	if e == nil || fn == nil {
		return func() {}
	}
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// Decide evaluates a navigation to requestedPath guarded by required
// against the current session.
func (e *Engine) Decide(required permission.Set, requestedPath string) access.Decision {
	return e.DecideFor(e.Session(), required, requestedPath)
}

// DecideFor is Decide against a session snapshot the caller already holds.
func (e *Engine) DecideFor(s session.Session, required permission.Set, requestedPath string) access.Decision {
	if e == nil {
		return access.Decision{Verdict: access.Loading}
	}
	d := e.evaluator.Decide(s, required, requestedPath)
	e.metricInc(decisionMetric(d.Verdict))
	return d
}

// DecidePath looks requestedPath up in the route table and evaluates it.
// guarded is false for paths no route covers; those are public and the
// decision is Allow. "/" is always guarded since it redirects to the role
// home.
func (e *Engine) DecidePath(requestedPath string) (d access.Decision, guarded bool) {
	return e.DecidePathFor(e.Session(), requestedPath)
}

// DecidePathFor is DecidePath against a session snapshot the caller
// already holds.
func (e *Engine) DecidePathFor(s session.Session, requestedPath string) (d access.Decision, guarded bool) {
	if e == nil {
		return access.Decision{Verdict: access.Loading}, true
	}
	clean := path.Clean("/" + requestedPath)
	if clean == access.RootPath {
		return e.DecideFor(s, nil, access.RootPath), true
	}
	g, ok := e.routes.Match(clean)
	if !ok {
		return access.Decision{Verdict: access.Allow}, false
	}
	return e.DecideFor(s, g.Allowed, requestedPath), true
}

func (e *Engine) update(mutate func(*session.Session)) {
	e.mu.Lock()
	before := e.sess
	next := e.sess.Clone()
	mutate(&next)
	e.sess = next
	changed := !sameSession(before, next)
	var subs []func(session.Session)
	if changed {
		subs = make([]func(session.Session), 0, len(e.subs))
		for _, fn := range e.subs {
			subs = append(subs, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(next.Clone())
	}
}

func sameSession(a, b session.Session) bool {
	if a.Initialized != b.Initialized {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == nil && b.User == nil
	}
	return a.User.SubjectID == b.User.SubjectID &&
		a.User.RoleID == b.User.RoleID &&
		a.User.ExpiresAt == b.User.ExpiresAt &&
		a.User.Permissions.Equal(b.User.Permissions)
}

func decisionMetric(v access.Verdict) MetricID {
	switch v {
	case access.Loading:
		return MetricDecisionLoading
	case access.RedirectLogin:
		return MetricDecisionRedirectLogin
	case access.RedirectRoleHome:
		return MetricDecisionRedirectRoleHome
	case access.Allow:
		return MetricDecisionAllow
	default:
		return MetricDecisionRedirectUnauthorized
	}
}
