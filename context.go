package hrauth

import (
	"context"

	"github.com/MrEthical07/hrauth/session"
)

type sessionContextKey struct{}

// WithSession attaches a session snapshot to ctx. The middleware adapter
// uses it to hand the evaluated session to downstream handlers.
func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the snapshot stored by [WithSession].
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	if ctx == nil {
		return session.Session{}, false
	}
	s, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return s, ok
}
