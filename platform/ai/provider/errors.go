package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is the classified form of a backend failure.
type Error struct {
	Provider   string
	StatusCode int
	Transient  bool
	RateLimit  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotConfigured is returned by Missing.
var ErrNotConfigured = errors.New("provider is not configured")

// Classify wraps err as *Error using the HTTP status code when the SDK
// exposes one and falling back to message heuristics otherwise.
func Classify(providerName string, status int, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	perr := &Error{Provider: providerName, StatusCode: status, Err: err}
	switch status {
	case http.StatusTooManyRequests:
		perr.Transient, perr.RateLimit = true, true
	case http.StatusServiceUnavailable:
		perr.Transient = true
	case 0:
		perr.RateLimit = messageSignalsRateLimit(err.Error())
		perr.Transient = perr.RateLimit || messageSignalsOverload(err.Error())
	}
	return perr
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Transient
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return messageSignalsRateLimit(msg) || messageSignalsOverload(msg)
}

// IsRateLimit reports whether err was a rate-limit rejection.
func IsRateLimit(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.RateLimit
	}
	return err != nil && messageSignalsRateLimit(err.Error())
}

func messageSignalsRateLimit(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "429") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "resource exhausted") ||
		strings.Contains(lower, "too many requests")
}

func messageSignalsOverload(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "503") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "unavailable")
}
