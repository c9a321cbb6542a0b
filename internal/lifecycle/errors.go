package lifecycle

import (
	"errors"
	"fmt"
)

// Error kinds returned by the Service. Each returned error wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("trade not found")
	ErrForbidden          = errors.New("forbidden")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrAlreadyDone        = errors.New("already done")
	ErrKeyMismatch        = errors.New("key code mismatch")
	ErrProviderNotAllowed = errors.New("document provider not allowed")
	ErrConflict           = errors.New("concurrent modification")
)

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, fmt.Sprintf(format, args...))
}

func alreadyDone(what string) error {
	return fmt.Errorf("%w: %s", ErrAlreadyDone, what)
}

// Kind returns the sentinel wrapped by err, or nil if err is not a lifecycle error.
func Kind(err error) error {
	for _, k := range []error{
		ErrValidation, ErrNotFound, ErrForbidden, ErrPreconditionFailed,
		ErrAlreadyDone, ErrKeyMismatch, ErrProviderNotAllowed, ErrConflict,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
