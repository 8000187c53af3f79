// Command hrauth is a terminal client for the HR authorization core.
//
// Usage:
//
//	hrauth login -u EMP001            # password from HRAUTH_PASSWORD or stdin
//	hrauth whoami
//	hrauth check /app/my-leaves /admin/manage-roles
//	hrauth roles list
//	hrauth roles toggle hr employee:update [--off] [--dry-run]
//	hrauth logout
//	hrauth serve-stub --addr :8000      # local stand-in for the API
//
// Configuration comes from HRAUTH_* environment variables; see envConfig.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/hrauth"
)

const usage = `usage: hrauth <command> [flags]

commands:
  login -u SUBJECT   authenticate and store the token
  logout             clear the stored token
  whoami             print the current session
  check PATH...      evaluate paths against the route table
  roles list         list roles (admin only)
  roles toggle ROLE KEY [--off] [--dry-run]
                     toggle one permission on a role
  serve-stub         run a local authentication service
`

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err == nil {
		return
	}

	code := 1
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}
	var authErr *hrauth.AuthenticationError
	if errors.As(err, &authErr) {
		fmt.Fprintln(os.Stderr, "hrauth:", authErr.Message())
	} else {
		fmt.Fprintln(os.Stderr, "hrauth:", err)
	}
	if code == 2 {
		fmt.Fprint(os.Stderr, usage)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}
	env, err := loadEnv()
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve-stub":
		return serveStub(ctx, env, rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	case "login", "logout", "whoami", "check", "roles":
	default:
		return usageError("unknown command %q", cmd)
	}

	a, err := newApp(ctx, env, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(ctx, env.Timeout)
	defer cancel()

	switch cmd {
	case "login":
		return a.login(ctx, rest, stdin, stdout)
	case "logout":
		return a.logout(ctx, stdout)
	case "whoami":
		return a.whoami(stdout)
	case "check":
		return a.check(rest, stdout)
	default:
		return a.roles(ctx, rest, stdout)
	}
}
