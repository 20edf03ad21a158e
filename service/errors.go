// file: service/errors.go

package service

import "errors"

// Sentinel errors for every authentication failure kind. Handlers match
// on these with errors.Is to choose the HTTP status instead of inspecting
// error strings.
var (
	// Access token failures, in the order the codec reports them:
	// structure first, then signature, then expiry. A tampered token is
	// reported as a signature failure even when it is also expired.
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
	// ErrTokenInvalid covers a verified token whose subject does not
	// match the principal it is being validated against.
	ErrTokenInvalid = errors.New("token is invalid")

	// Refresh token failures.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")

	// Login failures. Both map to the same generic 401 externally so the
	// transport layer does not leak which accounts exist or are disabled.
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrTooManyAttempts is returned by the login limiter.
	ErrTooManyAttempts = errors.New("too many login attempts")
)
