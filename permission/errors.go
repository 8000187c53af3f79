package permission

import "errors"

var (
	// ErrInvalidKey is returned when a key is not of the form resource:action.
	ErrInvalidKey = errors.New("invalid permission key")
	// ErrChainedRule is returned when a rule table needs more than one hop
	// to reach a consistent set.
	ErrChainedRule = errors.New("chained permission rule")
	// ErrCatalogFrozen is returned when registering into a frozen catalog.
	ErrCatalogFrozen = errors.New("catalog frozen")
	// ErrDuplicateKey is returned when a catalog entry is registered twice.
	ErrDuplicateKey = errors.New("permission already registered")
)
