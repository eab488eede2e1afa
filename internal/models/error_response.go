package models

import (
	"strconv"

	"tripranker.dev/internal/clock"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// NewErrorResponse stamps the error with the current Unix time in milliseconds.
func NewErrorResponse(code int, message, path string, c clock.Clock) ErrorResponse {
	if c == nil {
		c = clock.RealClock{}
	}
	return ErrorResponse{
		Code:      code,
		Message:   message,
		Path:      path,
		Timestamp: strconv.FormatInt(c.NowUnixMilli(), 10),
	}
}
