package hrauth

import (
	"errors"

	"github.com/MrEthical07/hrauth/authapi"
)

var (
	// ErrAuthentication matches every login failure reported by the
	// authentication service, including transport failures.
	ErrAuthentication = authapi.ErrAuthentication
	// ErrAlreadyInitialized is returned by a second call to Engine.Initialize.
	ErrAlreadyInitialized = errors.New("engine already initialized")
	// ErrEngineNotReady is returned when an Engine was not built by Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrCredentialStore wraps failures writing or clearing the stored token.
	ErrCredentialStore = errors.New("credential store failure")
	// ErrBuilderUsed is returned by a second call to Builder.Build.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrCredentialStoreRequired is returned by Build without a store.
	ErrCredentialStoreRequired = errors.New("credential store required")
	// ErrAuthenticatorRequired is returned by Build without an authenticator.
	ErrAuthenticatorRequired = errors.New("authenticator required")
)

// AuthenticationError is returned by Login when the service rejects the
// credentials or cannot be reached. Its Message is suitable for display.
type AuthenticationError = authapi.AuthenticationError
