package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrPickWindowClosed      = errors.New("pick window closed")
	ErrLookupFailure         = errors.New("outcome lookup failed")
)

// AuthError is an identity provider rejection. Message is safe to show to the user.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e == nil || e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

// Is lets callers match any AuthError with errors.Is(err, ErrUnauthorized).
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}
