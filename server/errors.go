package server

import "github.com/teranos/graphscope/errors"

// Sentinel errors for common cases.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrServiceUnavailable indicates the server is draining or full
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTooManyClients indicates the session cap was reached
	ErrTooManyClients = errors.Mark(errors.New("too many dashboard sessions"), ErrServiceUnavailable)
)

// IsServiceUnavailableError checks if an error is or wraps ErrServiceUnavailable
func IsServiceUnavailableError(err error) bool {
	return err != nil && errors.Is(err, ErrServiceUnavailable)
}
