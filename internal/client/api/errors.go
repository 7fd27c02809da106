package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is a backend response with status >= 400.
type Error struct {
	StatusCode int
	Message    string
	Detail     string
	// Payload is the raw payload field; a string or a field-errors object.
	Payload json.RawMessage
}

type errorEnvelope struct {
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Payload json.RawMessage `json:"payload"`
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		e.Message = env.Message
		e.Detail = env.Detail
		e.Payload = env.Payload
	}
	return e
}

func (e *Error) Error() string {
	if text := e.Text(); text != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), text)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Text returns the user-facing message: the payload when it is a non-empty
// string or a field-errors object, else message, else detail.
func (e *Error) Text() string {
	if s := payloadText(e.Payload); s != "" {
		return s
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Detail
}

// payloadText renders a string payload, or a serializer error object such as
// {"email": ["This field is required."]} as "email: This field is required.".
func payloadText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var msgs []string
		if err := json.Unmarshal(fields[k], &msgs); err != nil {
			var one string
			if err := json.Unmarshal(fields[k], &one); err != nil {
				continue
			}
			msgs = []string{one}
		}
		if len(msgs) > 0 {
			parts = append(parts, k+": "+strings.Join(msgs, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// MessageOr returns the backend message carried by err, or fallback when err
// is not an *Error or carries no text.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if text := apiErr.Text(); text != "" {
			return text
		}
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
