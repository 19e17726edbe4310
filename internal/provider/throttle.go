package provider

import (
	"fmt"
	"time"

	"substation/internal/services"
)

// ThrottledError reports a rate or ban window signalled by an upstream
// provider. It matches services.ErrThrottled under errors.Is.
type ThrottledError struct {
	Provider   string
	RetryAfter time.Duration
	Reason     string
}

func (e *ThrottledError) Error() string {
	msg := fmt.Sprintf("%s throttled", e.Provider)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

// Is matches the throttle sentinel so callers can branch with errors.Is
// without knowing the concrete type.
func (e *ThrottledError) Is(target error) bool {
	return target == services.ErrThrottled
}

// Window returns the server-provided retry window, or fallback when the
// server gave none.
func (e *ThrottledError) Window(fallback time.Duration) time.Duration {
	if e.RetryAfter > 0 {
		return e.RetryAfter
	}
	return fallback
}
