package hrauth

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/hrauth/access"
)

// Config holds the role and page settings of an [Engine] plus its
// observability switches. Start from [DefaultConfig].
type Config struct {
	// AdminRole is the super-role. It passes every permission check.
	AdminRole string
	// AdminHome is where the super-role lands after login and on "/".
	AdminHome string
	// GeneralHome is where every other role lands.
	GeneralHome string
	// LoginPath is returned by Logout and used by RedirectLogin.
	LoginPath string
	// UnauthorizedPath is used by RedirectUnauthorized.
	UnauthorizedPath string

	Audit   AuditConfig
	Metrics MetricsConfig
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the HR dashboard settings.
func DefaultConfig() Config {
	return Config{
		AdminRole:        "admin",
		AdminHome:        "/admin/dashboard",
		GeneralHome:      "/app/dashboard",
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks that every role and page setting is present and that the
// page settings are absolute paths.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AdminRole) == "" {
		return fmt.Errorf("%w: AdminRole must be set", ErrInvalidConfig)
	}

	pages := []struct {
		name, value string
	}{
		{"AdminHome", c.AdminHome},
		{"GeneralHome", c.GeneralHome},
		{"LoginPath", c.LoginPath},
		{"UnauthorizedPath", c.UnauthorizedPath},
	}
	for _, p := range pages {
		if !strings.HasPrefix(p.value, "/") {
			return fmt.Errorf("%w: %s must be an absolute path, got %q", ErrInvalidConfig, p.name, p.value)
		}
	}
	if c.LoginPath == c.UnauthorizedPath {
		return fmt.Errorf("%w: LoginPath and UnauthorizedPath must differ", ErrInvalidConfig)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit BufferSize must be > 0", ErrInvalidConfig)
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return fmt.Errorf("%w: Metrics EnableLatencyHistograms requires Metrics Enabled", ErrInvalidConfig)
	}
	return nil
}

func (c Config) evaluator() access.Evaluator {
	return access.Evaluator{
		AdminRole:        c.AdminRole,
		AdminHome:        c.AdminHome,
		GeneralHome:      c.GeneralHome,
		LoginPath:        c.LoginPath,
		UnauthorizedPath: c.UnauthorizedPath,
	}
}
