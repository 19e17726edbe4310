package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure markers. Wrap tags errors with one of these so the rest of the
// system can classify a failure without inspecting message text.
var (
	ErrExternalTool  = errors.New("external tool failure")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// Acquisition-specific markers.
	ErrPathUnavailable = errors.New("path unavailable")
	ErrThrottled       = errors.New("provider throttled")
	ErrNoProviders     = errors.New("no providers available")
	ErrMaterialization = errors.New("materialization failure")
)

// Wrap tags err with marker and prefixes it with component context. Both
// marker and err stay matchable through errors.Is. A nil marker falls back
// to ErrTransient.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps an acquisition error to the short status token that
// history rows and the daemon API record for a failed run.
func FailureStatus(err error) string {
	switch {
	case err == nil:
		return "failed"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrPathUnavailable):
		return "path-unavailable"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrThrottled):
		return "throttled"
	case errors.Is(err, ErrNoProviders):
		return "no-providers"
	case errors.Is(err, ErrMaterialization):
		return "materialization"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "failed"
	}
}

func buildDetail(component, operation, message string) string {
	var parts []string
	for _, part := range []string{component, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
