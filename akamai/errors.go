package akamai

import (
	"errors"
	"fmt"
)

var (
	// ErrScriptNotFound means the page carried no recognizable Akamai script tag.
	ErrScriptNotFound = errors.New("akamai: script not found in page")

	// ErrCookieMissing means an expected Akamai cookie was never set.
	ErrCookieMissing = errors.New("akamai: cookie missing")

	// ErrBadPayload means an SBSD payload could not be base64-decoded.
	ErrBadPayload = errors.New("akamai: payload is not valid base64")
)

// StatusError is returned when a step gets an unexpected HTTP status.
type StatusError struct {
	Step       string
	URL        string
	StatusCode int
	Want       int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("akamai: %s %s: HTTP %d (want %d): %s", e.Step, e.URL, e.StatusCode, e.Want, e.Body)
}

func cookieMissing(names ...string) error {
	return fmt.Errorf("%w: %v", ErrCookieMissing, names)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
