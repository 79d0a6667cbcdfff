package core

import "errors"

var (
	ErrZeroAmount      = errors.New("amount must be non-zero")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("date must be a valid YYYY-MM-DD date")
	ErrEmptyCategory   = errors.New("category cannot be empty")
	ErrInvalidLimit    = errors.New("monthly limit must be positive")
	ErrEndBeforeStart  = errors.New("end date must be after start date")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
)

// ValidationError wraps any entity construction or update failure.
// It is the only error class that crosses the service boundary as a
// returned error; storage and scheduling failures are normalized to
// result pairs instead.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func validationError(err error) error {
	return &ValidationError{Err: err}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
