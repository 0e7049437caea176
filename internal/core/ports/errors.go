package ports

import "errors"

// Store errors are authoritative outcomes and propagate to the HTTP layer.
// Cache errors never appear here; they are swallowed at the decorator level.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")

	// ErrTooManyResetRequests is returned when the password reset counter for
	// an email address has reached its hourly cap.
	ErrTooManyResetRequests = errors.New("too many password reset requests")

	// ErrResetTokenOutstanding is returned when a previously issued reset
	// token has not yet expired.
	ErrResetTokenOutstanding = errors.New("a password reset link was already sent")
)
