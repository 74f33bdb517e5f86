package backend

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy shared by every backend-facing call site. Failures are
// classified here once and rendered inline by the view layer; nothing from
// the backend propagates uncaught to the event loop.
var (
	// ErrAuth covers bad credentials and sign-in/sign-up rejections.
	ErrAuth = errors.New("authentication failed")

	// ErrPermission covers admission failures and store rule rejections.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound is returned when a document id is absent.
	ErrNotFound = errors.New("document not found")

	// ErrTimeout is returned when a read exceeds its deadline. It is
	// reported distinctly from generic failure so the user knows to check
	// connectivity rather than re-enter data.
	ErrTimeout = errors.New("request timed out")

	// ErrValidation covers missing or invalid required form fields.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork covers offline and connection-lost conditions.
	ErrNetwork = errors.New("network unavailable")
)

// Timeoutf wraps err as an ErrTimeout when it is a context deadline, and
// returns it unchanged otherwise. Call sites that race reads against a
// deadline funnel their errors through this.
func Timeoutf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// UserMessage converts a classified error into the inline text shown in
// place of the data it was trying to load.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "Request timed out. Check your connection and try again."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrPermission):
		return "Permission denied. You may need to sign in again or need admin rights."
	case errors.Is(err, ErrAuth):
		return "Authentication failed. Check your email and password."
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrNetwork):
		return "Network unavailable. Working offline?"
	default:
		return err.Error()
	}
}
