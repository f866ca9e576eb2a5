package errs

import "errors"

// Error categories shared by the booking domain, the usecases and the HTTP layer.
// Concrete errors either wrap or Mark one of these so callers can classify with Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnavailable       = errors.New("unavailable")
	ErrLeadTime          = errors.New("lead time requirement not met")
	ErrDuration          = errors.New("duration out of range")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
