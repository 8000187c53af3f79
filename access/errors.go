package access

import "errors"

var (
	// ErrEmptyGuard is returned for a route with no allowed permissions.
	ErrEmptyGuard = errors.New("route guard has no allowed permissions")
	// ErrDuplicateRoute is returned when a path is declared twice.
	ErrDuplicateRoute = errors.New("duplicate route")
	// ErrInvalidRoute is returned for malformed paths or permission keys.
	ErrInvalidRoute = errors.New("invalid route")
)
