package nsapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// UpstreamError reports a failed call to the reisinformatie API. Message is
// safe to show to clients; Err carries the underlying cause for logs.
type UpstreamError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("ns api %s: %s", e.Endpoint, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("ns api %s: %d %s", e.Endpoint, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// errorMessage extracts the message from an upstream error body, which comes
// either as {"message": "..."} or {"errors": [{"message": "..."}]}.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if len(payload.Errors) > 0 && payload.Errors[0].Message != "" {
			return payload.Errors[0].Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected response"
}
