package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx backend response.
type Error struct {
	// Status is the HTTP status code.
	Status int
	// Message is the detail/message field of the body, the raw body text,
	// or "Request failed (<status>)".
	Message string
	// Data is the decoded body (or {"detail": <text>}); nil when the body was empty.
	Data any
}

func (e *Error) Error() string {
	return e.Message
}

// TransportError reports that the backend could not be reached.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "network error: could not reach the server"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newError(status int, payload json.RawMessage) *Error {
	e := &Error{Status: status}
	if payload != nil {
		var data any
		if err := json.Unmarshal(payload, &data); err == nil {
			e.Data = data
		}
	}
	e.Message = messageOf(e.Data)
	if e.Message == "" {
		e.Message = fmt.Sprintf("Request failed (%d)", status)
	}
	return e
}

// messageOf extracts the human-readable message from a decoded error body.
func messageOf(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"detail", "message"} {
		if msg := describe(obj[key]); msg != "" {
			return msg
		}
	}
	return ""
}

func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		// Validation errors arrive as a list of {"loc", "msg", "type"} objects.
		var msgs []string
		for _, item := range x {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok && s != "" {
					msgs = append(msgs, s)
				}
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsTransport reports whether err is a network failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// MessageOr returns err's message, or fallback when err carries none.
func MessageOr(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
