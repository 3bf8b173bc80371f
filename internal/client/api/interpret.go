package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Result is a successful (2xx) response
type Result struct {
	Body       []byte
	StatusCode int
	// Empty is set for 204 and zero-length bodies
	Empty bool
}

// Interpret classifies a raw HTTP response.
//
// 401 becomes KindUnauthorized, every other non-2xx status becomes
// KindRequestRejected with a message taken from the body. Classification
// is by status code only; the body text never changes the kind.
func Interpret(statusCode int, body []byte) (*Result, error) {
	if statusCode < 200 || statusCode >= 300 {
		kind := KindRequestRejected
		if statusCode == http.StatusUnauthorized {
			kind = KindUnauthorized
		}
		return nil, &Error{
			Kind:       kind,
			StatusCode: statusCode,
			Message:    ErrorMessage(statusCode, body),
		}
	}

	return &Result{
		StatusCode: statusCode,
		Body:       body,
		Empty:      statusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0,
	}, nil
}

// Decode unmarshals the body into out.
// An empty result leaves out untouched; a malformed body is a transport failure.
func (r *Result) Decode(out any) error {
	if out == nil || r.Empty {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return &Error{
			Kind:       KindTransport,
			StatusCode: r.StatusCode,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
			Err:        err,
		}
	}
	return nil
}

// ErrorMessage extracts a human readable message from an error body:
// the "detail" field, then "message", else "HTTP error: <code>".
// A non-string detail (e.g. a list of validation errors) is rendered as compact JSON.
func ErrorMessage(statusCode int, body []byte) string {
	fallback := fmt.Sprintf("HTTP error: %d", statusCode)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	for _, key := range []string{"detail", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}

	return fallback
}

func rawMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// null, пустые массивы и объекты сообщением не считаются
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "[]", "{}", `""`:
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return ""
	}
	return buf.String()
}
