package salamoonder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned when the client is built without an API key.
var ErrMissingAPIKey = errors.New("API key is required")

// ConfigurationError reports a bad client configuration at construction time.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("salamoonder: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Reason categorizes a RequestError.
type Reason int

const (
	ReasonTransport   Reason = iota + 1 // network failure or timeout
	ReasonStatus                        // non-2xx HTTP status
	ReasonMalformed                     // body is not the expected JSON shape
	ReasonRejected                      // 2xx body carrying a service error
	ReasonInvalidTask                   // rejected locally, nothing was sent
)

func (r Reason) String() string {
	switch r {
	case ReasonTransport:
		return "transport"
	case ReasonStatus:
		return "status"
	case ReasonMalformed:
		return "malformed"
	case ReasonRejected:
		return "rejected"
	case ReasonInvalidTask:
		return "invalid task"
	}
	return "unknown"
}

// RequestError is returned when a createTask or getTaskResult exchange fails.
type RequestError struct {
	Op         Endpoint
	Reason     Reason
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "salamoonder %s: %s", e.Op, e.Reason)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// NotFoundError is returned by GetTaskResult for an unknown or expired task id.
type NotFoundError struct {
	TaskID  string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("salamoonder: task %s not found", e.TaskID)
	}
	return fmt.Sprintf("salamoonder: task %s not found: %s", e.TaskID, e.Message)
}

// ServiceError describes a task the service gave up on. It is carried by a
// failed TaskResult, not returned by GetTaskResult itself.
type ServiceError struct {
	TaskID  string
	Status  string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("salamoonder: task %s failed (status %q): %s", e.TaskID, e.Status, e.Message)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// errorBody is the union of error fields the service has been seen to return.
type errorBody struct {
	ErrorID          json.RawMessage `json:"errorId"`
	ErrorCode        string          `json:"errorCode"`
	ErrorDescription string          `json:"errorDescription"`
	Error            json.RawMessage `json:"error"`
	ErrorDescSnake   string          `json:"error_description"`
	Message          string          `json:"message"`
}

// classifyError inspects a response body for a service-reported error.
// It returns the error code and a human-readable message; ok is false when the
// body carries no error.
func classifyError(body []byte) (code, msg string, ok bool) {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		return "", "", false
	}

	if id := strings.TrimSpace(string(eb.ErrorID)); id != "" && id != "0" && id != "null" && id != "false" {
		ok = true
	}
	code = eb.ErrorCode

	// "error" is either a string message or a boolean flag.
	var errText string
	if len(eb.Error) > 0 {
		var s string
		var flag bool
		switch {
		case json.Unmarshal(eb.Error, &s) == nil && s != "":
			errText = s
			ok = true
		case json.Unmarshal(eb.Error, &flag) == nil && flag:
			ok = true
		}
	}

	switch {
	case eb.ErrorDescSnake != "":
		msg = eb.ErrorDescSnake
	case eb.ErrorDescription != "":
		msg = eb.ErrorDescription
	case errText != "":
		msg = errText
	case ok && eb.Message != "":
		msg = eb.Message
	}
	return code, msg, ok
}

// httpErrorMessage picks the message reported for a non-2xx response.
func httpErrorMessage(body []byte) string {
	if _, msg, _ := classifyError(body); msg != "" {
		return msg
	}
	return "Request failed"
}

// looksNotFound reports whether a service error refers to a missing task.
func looksNotFound(code, msg string) bool {
	c := strings.ToUpper(code)
	if strings.Contains(c, "NOT_FOUND") || strings.Contains(c, "NO_SUCH_TASK") {
		return true
	}
	m := strings.ToLower(msg)
	return strings.Contains(m, "not found") || strings.Contains(m, "does not exist") || strings.Contains(m, "no such task")
}
