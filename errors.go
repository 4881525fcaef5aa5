package sessiongate

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by UserProvider implementations when no
	// account matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by UserProvider implementations when an
	// account with the same email already exists.
	ErrUserExists = errors.New("account already exists")
	// ErrTooManyAttempts is returned by Login when the account exceeded
	// its failed-attempt budget and is cooling down.
	ErrTooManyAttempts = errors.New("too many failed attempts")
	// ErrEngineNotReady is returned when a nil or unbuilt Engine is used.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrProviderUnavailable is returned when the user provider fails for
	// a reason other than a missing or duplicate account.
	ErrProviderUnavailable = errors.New("user provider unavailable")
	// ErrRevocationUnavailable is returned by RevokeUser when the
	// denylist backend cannot be reached.
	ErrRevocationUnavailable = errors.New("revocation backend unavailable")
	// ErrRevocationDisabled is returned by RevokeUser when no denylist is
	// configured.
	ErrRevocationDisabled = errors.New("revocation disabled")
)
