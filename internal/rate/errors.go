package rate

import "errors"

var (
	// ErrLocked is returned once a subject or address exhausted its budget.
	ErrLocked = errors.New("too many failed logins")
	// ErrRedisUnavailable wraps Redis command failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
