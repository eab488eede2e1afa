package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"tripranker.dev/internal/app"
	"tripranker.dev/internal/appconf"
	"tripranker.dev/internal/clock"
	"tripranker.dev/internal/logging"
	"tripranker.dev/internal/metrics"
	"tripranker.dev/internal/nsapi"
	"tripranker.dev/internal/ranking"
)

var testNow = time.Date(2024, 11, 5, 8, 0, 0, 0, time.UTC)

// Three trips scoring 5, 17 and 9. Only "c" is marked optimal.
const threeTripsBody = `{"trips":[
	{"uid":"a","crowdForecast":"MEDIUM","transfers":3,"optimal":false,"legs":[{"product":{"number":"100"}}]},
	{"uid":"b","crowdForecast":"LOW","transfers":1,"optimal":false,"legs":[{"journeyDetailRef":"b1","product":{"number":"3512"},"origin":{"plannedDateTime":"2024-11-05T08:15:00+0100"}}]},
	{"uid":"c","crowdForecast":"HIGH","transfers":1,"optimal":true,"legs":[{"journeyDetailRef":"c1","product":{"number":"3514"},"origin":{"plannedDateTime":"2024-11-05T08:45:00+0100"}}]}
]}`

var threeTripsJourneys = map[string]string{
	"b1": `{"payload":{"stops":[{"actualStock":{"trainParts":[{"facilities":["WIFI","TOILET"]}]}}]}}`,
	"c1": `{"payload":{"stops":[{"plannedStock":{"trainParts":[{"facilities":["WIFI","STROOM"]}]}}]}}`,
}

// nsStub stands in for the reisinformatie API.
type nsStub struct {
	tripsStatus int
	tripsBody   string
	journeys    map[string]string
}

func (s nsStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/v3/trips":
		if s.tripsStatus != 0 {
			w.WriteHeader(s.tripsStatus)
		}
		_, _ = io.WriteString(w, s.tripsBody)
	case "/api/v2/journey":
		body, ok := s.journeys[r.URL.Query().Get("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"journey not found"}`)
			return
		}
		_, _ = io.WriteString(w, body)
	default:
		http.NotFound(w, r)
	}
}

// createTestApi wires a RestAPI against upstream, served from an in-process server.
func createTestApi(t *testing.T, upstream http.Handler, configure ...func(*appconf.Config)) *RestAPI {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	cfg := appconf.DefaultConfig()
	cfg.Env = appconf.Test
	cfg.UpstreamBaseURL = server.URL
	cfg.UpstreamAPIKey = "test-key"
	cfg.UpstreamTimeout = 2 * time.Second
	cfg.UpstreamRPS = 0
	for _, fn := range configure {
		fn(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWithLogger(logger)
	c := clock.NewMockClock(testNow)

	client, err := nsapi.NewClient(nsapi.Options{
		BaseURL:           cfg.UpstreamBaseURL,
		APIKey:            cfg.UpstreamAPIKey,
		Timeout:           cfg.UpstreamTimeout,
		RequestsPerSecond: cfg.UpstreamRPS,
		JourneyCacheSize:  cfg.JourneyCacheSize,
		JourneyCacheTTL:   cfg.JourneyCacheTTL,
		Metrics:           m,
		Logger:            logger,
	})
	require.NoError(t, err)

	api := NewRestAPI(&app.Application{
		Config:   cfg,
		Logger:   logger,
		Clock:    c,
		Metrics:  m,
		NSClient: client,
		Planner:  ranking.NewPlanner(client, c, m, logger),
	})
	t.Cleanup(api.Shutdown)

	return api
}

// serveApiAndRetrieveEndpoint serves api with its full middleware chain and
// returns the response together with the raw body.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, []byte) {
	t.Helper()

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(api.WithMiddleware(mux))
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func decodeErrorBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var model map[string]any
	require.NoError(t, json.Unmarshal(body, &model), string(body))
	return model
}
