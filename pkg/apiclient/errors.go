package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Error is a non-2xx response. Its message is "<status>: <body text>".
type Error struct {
	Status int
	Body   string
	Header http.Header
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, strings.TrimSpace(e.Body))
}

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports an expired or missing session.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

func IsRateLimited(err error) bool {
	return StatusOf(err) == http.StatusTooManyRequests
}

func IsServerError(err error) bool {
	return StatusOf(err) >= 500
}

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

var retryAfterPattern = regexp.MustCompile(`(?i)retry[-_ ]after\D{0,4}(\d+)`)

// RetryAfter extracts a retry-after hint in seconds, first from the
// Retry-After header of an *Error and then from the error message.
func RetryAfter(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Header != nil {
		if secs, convErr := strconv.Atoi(apiErr.Header.Get("Retry-After")); convErr == nil && secs >= 0 {
			return time.Duration(secs) * time.Second, true
		}
	}
	m := retryAfterPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	secs, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
