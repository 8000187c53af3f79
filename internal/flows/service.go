package flows

import (
	"context"

	"github.com/MrEthical07/hrauth/session"
)

// Service is the flow runner built once by the engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired.
func (s Service) Initialized() bool {
	return s.deps.Initialize.Store != nil && s.deps.Login.Authenticate != nil
}

func (s Service) Initialize(ctx context.Context) InitializeResult {
	return RunInitialize(ctx, s.deps.Initialize)
}

func (s Service) Login(ctx context.Context, subjectID, secret string) (LoginResult, error) {
	return RunLogin(ctx, subjectID, secret, s.deps.Login)
}

func (s Service) Logout(ctx context.Context, current *session.User) (string, error) {
	return RunLogout(ctx, current, s.deps.Logout)
}
