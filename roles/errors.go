package roles

import "errors"

var (
	// ErrUnknownKey is returned when toggling a key the catalog does not list.
	ErrUnknownKey = errors.New("roles: unknown permission key")
	// ErrUnknownResource is returned when toggling a group the catalog does not list.
	ErrUnknownResource = errors.New("roles: unknown resource")
	// ErrInconsistent is returned by Save when the draft breaks a dependency rule.
	ErrInconsistent = errors.New("roles: permission set breaks dependency rules")
	// ErrInvalidRole wraps field validation failures.
	ErrInvalidRole = errors.New("roles: invalid role definition")
)
