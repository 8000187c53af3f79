package hrauth

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/hrauth/access"
	"github.com/MrEthical07/hrauth/credential"
	"github.com/MrEthical07/hrauth/internal/flows"
	"github.com/MrEthical07/hrauth/jwt"
	"github.com/MrEthical07/hrauth/session"
)

// Builder configures and constructs an [Engine].
//
// Builder instances are intended to be configured during initialization and
// then discarded; Build may only be called once.
type Builder struct {
	config Config

	store   credential.Store
	auth    Authenticator
	decoder Decoder
	routes  *access.RouteTable

	auditSink AuditSink
	now       func() time.Time
	logger    *slog.Logger

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCredentialStore sets where the bearer token is persisted. Required.
func (b *Builder) WithCredentialStore(store credential.Store) *Builder {
	b.store = store
	return b
}

// WithAuthenticator sets the login collaborator. Required.
func (b *Builder) WithAuthenticator(auth Authenticator) *Builder {
	b.auth = auth
	return b
}

// WithDecoder replaces the default [jwt.Decoder].
func (b *Builder) WithDecoder(d Decoder) *Builder {
	b.decoder = d
	return b
}

// WithRoutes sets the route table used by [Engine.DecidePath]. Defaults to
// [access.DefaultRoutes].
func (b *Builder) WithRoutes(routes *access.RouteTable) *Builder {
	b.routes = routes
	return b
}

// WithAuditSink sets the sink behind the audit dispatcher. Events are only
// delivered when Config.Audit.Enabled is also set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock replaces time.Now for expiry checks and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithLogger sets the structured logger. The default discards output.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. The returned
// engine has not read the credential store yet; call [Engine.Initialize].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, ErrCredentialStoreRequired
	}
	if b.auth == nil {
		return nil, ErrAuthenticatorRequired
	}

	routes := b.routes
	if routes == nil {
		var err error
		routes, err = access.NewRouteTable(access.DefaultRoutes())
		if err != nil {
			return nil, err
		}
	}

	decoder := b.decoder
	if decoder == nil {
		decoder = jwt.NewDecoder()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	engine := &Engine{
		config:    cfg,
		evaluator: cfg.evaluator(),
		routes:    routes,
		store:     b.store,
		now:       now,
		logger:    logger.With("component", "hrauth"),
		subs:      make(map[uint64]func(session.Session)),
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.flow = flows.New(engine.flowDeps(b.auth, decoder))

	b.built = true
	return engine, nil
}

func (e *Engine) flowDeps(auth Authenticator, decoder Decoder) flows.Deps {
	hooks := flows.Hooks{
		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		Observe:   func(id int, d time.Duration) { e.metrics.Observe(MetricID(id), d) },
		EmitAudit: e.emitAudit,
		Debug:     e.logger.Debug,
		Warn:      e.logger.Warn,
	}

	return flows.Deps{
		Initialize: flows.InitializeDeps{
			Store:   e.store,
			Decoder: decoder,
			Now:     e.now,
			Hooks:   hooks,
			Metrics: flows.InitializeMetrics{
				SessionRestored:  int(MetricSessionRestored),
				SessionDiscarded: int(MetricSessionDiscarded),
				StoreError:       int(MetricCredentialStoreError),
			},
			Events: flows.InitializeEvents{
				SessionRestored:  AuditSessionRestored,
				SessionDiscarded: AuditSessionDiscarded,
			},
		},
		Login: flows.LoginDeps{
			Authenticate: auth.Login,
			Store:        e.store,
			Decoder:      decoder,
			Now:          e.now,
			RoleHome:     e.evaluator.RoleHome,
			NewAttemptID: uuid.NewString,
			Hooks:        hooks,
			Metrics: flows.LoginMetrics{
				LoginSuccess: int(MetricLoginSuccess),
				LoginFailure: int(MetricLoginFailure),
				StoreError:   int(MetricCredentialStoreError),
				LoginLatency: int(MetricLoginLatency),
			},
			Events: flows.LoginEvents{
				LoginSuccess: AuditLoginSuccess,
				LoginFailure: AuditLoginFailure,
			},
			Errors: flows.LoginErrors{
				EngineNotReady:  ErrEngineNotReady,
				CredentialStore: ErrCredentialStore,
			},
		},
		Logout: flows.LogoutDeps{
			Store:     e.store,
			LoginPath: e.config.LoginPath,
			Hooks:     hooks,
			Metrics: flows.LogoutMetrics{
				Logout:     int(MetricLogout),
				StoreError: int(MetricCredentialStoreError),
			},
			Events: flows.LogoutEvents{Logout: AuditLogout},
			Errors: flows.LogoutErrors{CredentialStore: ErrCredentialStore},
		},
	}
}
