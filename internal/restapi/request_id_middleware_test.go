package restapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tripranker.dev/internal/logging"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an id when missing", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v3/optimal", nil))

		assert.Regexp(t, `^[0-9a-f-]{36}$`, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("keeps valid ids", func(t *testing.T) {
		for _, id := range []string{"trace-123", "lb:abc.def_1", strings.Repeat("a", maxRequestIDLength)} {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v3/optimal", nil)
			req.Header.Set(RequestIDHeader, id)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, id, seen)
			assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("replaces invalid ids", func(t *testing.T) {
		testCases := map[string]string{
			"too long":           strings.Repeat("a", maxRequestIDLength+1),
			"invalid characters": "bad-id-<script>",
			"whitespace":         "two words",
		}

		for name, invalidID := range testCases {
			t.Run(name, func(t *testing.T) {
				handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					reqID := GetRequestID(r.Context())
					assert.NotEqual(t, invalidID, reqID)
					assert.Regexp(t, `^[0-9a-f-]{36}$`, reqID)
				}))

				req := httptest.NewRequest(http.MethodGet, "/api/v3/optimal", nil)
				req.Header.Set(RequestIDHeader, invalidID)
				handler.ServeHTTP(httptest.NewRecorder(), req)
			})
		}
	})
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(req.Context()))
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	var contextLogger *slog.Logger
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextLogger = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	handler := RequestIDMiddleware(NewRequestLoggingMiddleware(logger, true)(final))

	req := httptest.NewRequest(http.MethodGet, "/api/v3/comfort", nil)
	req.Header.Set(RequestIDHeader, "integration-test-id-999")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "ns-test")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logBuf.Bytes(), &entry), logBuf.String())
	assert.Equal(t, "integration-test-id-999", entry["request_id"])
	assert.Equal(t, "203.0.113.7", entry["client_address"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(len("short and stout")), entry["response_bytes"])
	assert.Equal(t, "/api/v3/comfort", entry["path"])
	assert.Equal(t, "ns-test", entry["user_agent"])

	require.NotNil(t, contextLogger)
	logBuf.Reset()
	contextLogger.Info("from handler")
	assert.Contains(t, logBuf.String(), "integration-test-id-999")
}
