package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/hrauth"
	"github.com/MrEthical07/hrauth/access"
	"github.com/MrEthical07/hrauth/authapi"
	"github.com/MrEthical07/hrauth/credential"
)

// envConfig is read from HRAUTH_* environment variables.
type envConfig struct {
	APIURL            string        `envconfig:"API_URL" default:"http://127.0.0.1:8000"`
	CredentialBackend string        `envconfig:"CREDENTIAL_BACKEND" default:"file"`
	CredentialPath    string        `envconfig:"CREDENTIAL_PATH"`
	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPrefix       string        `envconfig:"REDIS_PREFIX" default:"hrauth"`
	StorageKey        string        `envconfig:"STORAGE_KEY" default:"token"`
	RoutesFile        string        `envconfig:"ROUTES_FILE"`
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"warn"`
	Timeout           time.Duration `envconfig:"TIMEOUT" default:"10s"`
	Password          string        `envconfig:"PASSWORD"`
	StubSecret        string        `envconfig:"STUB_SECRET"`
}

// loadEnv reads an optional .env file (path from HRAUTH_ENV_FILE, default
// ".env") and then the process environment. Variables already set win.
func loadEnv() (envConfig, error) {
	envFile := os.Getenv("HRAUTH_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return envConfig{}, fmt.Errorf("%s: %w", envFile, err)
	}

	var cfg envConfig
	if err := envconfig.Process("hrauth", &cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg envConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("HRAUTH_LOG_LEVEL: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("HRAUTH_LOG_FORMAT: unsupported format %q", cfg.LogFormat)
	}
}

// openStore returns the configured credential store and a function
// releasing its resources.
func openStore(ctx context.Context, cfg envConfig) (credential.Store, func(), error) {
	switch strings.ToLower(cfg.CredentialBackend) {
	case "file", "":
		path := cfg.CredentialPath
		if path == "" {
			var err error
			if path, err = credential.DefaultFilePath(cfg.StorageKey); err != nil {
				return nil, nil, fmt.Errorf("credential path: %w", err)
			}
		}
		return credential.NewFileStore(path), func() {}, nil
	case "redis":
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
		store := credential.NewRedisStore(rdb, cfg.RedisPrefix, cfg.StorageKey, 0)
		if _, err := store.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("credential redis: %w", err)
		}
		return store, func() { _ = rdb.Close() }, nil
	case "memory":
		return credential.NewMemoryStore(""), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("HRAUTH_CREDENTIAL_BACKEND: unsupported backend %q", cfg.CredentialBackend)
	}
}

func loadRoutes(cfg envConfig) (*access.RouteTable, error) {
	if cfg.RoutesFile == "" {
		return access.NewRouteTable(access.DefaultRoutes())
	}
	f, err := os.Open(cfg.RoutesFile)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	defer f.Close()
	return access.LoadRoutes(f)
}

// app bundles what every command needs.
type app struct {
	env    envConfig
	log    *slog.Logger
	store  credential.Store
	client *authapi.Client
	engine *hrauth.Engine
	close  func()
}

func newApp(ctx context.Context, env envConfig, stderr io.Writer) (*app, error) {
	logger, err := newLogger(env, stderr)
	if err != nil {
		return nil, err
	}
	store, release, err := openStore(ctx, env)
	if err != nil {
		return nil, err
	}
	routes, err := loadRoutes(env)
	if err != nil {
		release()
		return nil, err
	}
	client, err := authapi.NewClient(env.APIURL,
		authapi.WithHTTPClient(&http.Client{Timeout: env.Timeout}),
		authapi.WithTokenSource(store),
	)
	if err != nil {
		release()
		return nil, err
	}
	engine, err := hrauth.New().
		WithCredentialStore(store).
		WithAuthenticator(client).
		WithRoutes(routes).
		WithLogger(logger).
		Build()
	if err != nil {
		release()
		return nil, err
	}
	if err := engine.Initialize(ctx); err != nil {
		engine.Close()
		release()
		return nil, err
	}
	return &app{
		env:    env,
		log:    logger,
		store:  store,
		client: client,
		engine: engine,
		close: func() {
			engine.Close()
			release()
		},
	}, nil
}
