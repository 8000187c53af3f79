package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/MrEthical07/hrauth/internal/issuer"
	"github.com/MrEthical07/hrauth/internal/rate"
	"github.com/MrEthical07/hrauth/jwt"
)

const shutdownGrace = 5 * time.Second

func serveStub(ctx context.Context, env envConfig, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve-stub", pflag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:8000", "listen address")
	ttl := fs.Duration("ttl", 30*time.Minute, "access token lifetime")
	lockout := fs.String("lockout", "", `failed-login lockout store: "" (off), "mini" (embedded), or a redis address`)
	maxAttempts := fs.Int("max-attempts", 5, "failed logins before lockout")
	if err := fs.Parse(args); err != nil {
		return usageError("serve-stub: %v", err)
	}

	logger, err := newLogger(env, stderr)
	if err != nil {
		return err
	}

	secret := []byte(env.StubSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("signing secret: %w", err)
		}
		logger.Warn("HRAUTH_STUB_SECRET unset, using a random signing secret")
	}
	tokens, err := jwt.NewIssuer(jwt.IssuerConfig{
		TTL:           *ttl,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    secret,
	})
	if err != nil {
		return err
	}

	cfg := issuer.DefaultConfig(tokens)
	cfg.Logger = logger
	if *lockout != "" {
		rdb, release, err := lockoutRedis(*lockout)
		if err != nil {
			return err
		}
		defer release()
		cfg.Lockout = rate.New(rdb, rate.Config{MaxAttempts: *maxAttempts, ThrottleIP: true})
	}
	srv, err := issuer.New(cfg)
	if err != nil {
		return err
	}

	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	fmt.Fprintf(stdout, "stub listening on http://%s (accounts EMP001 admin, EMP002 hr, EMP003 employee)\n", *addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

func lockoutRedis(target string) (redis.UniversalClient, func(), error) {
	if target == "mini" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("embedded redis: %w", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return rdb, func() {
			_ = rdb.Close()
			mr.Close()
		}, nil
	}
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{target}})
	return rdb, func() { _ = rdb.Close() }, nil
}
