package app

import (
	"log/slog"

	"tripranker.dev/internal/appconf"
	"tripranker.dev/internal/clock"
	"tripranker.dev/internal/metrics"
	"tripranker.dev/internal/nsapi"
	"tripranker.dev/internal/ranking"
)

// Application holds the dependencies shared by the HTTP handlers, the
// middleware and the debug pages.
type Application struct {
	Config   appconf.Config
	Logger   *slog.Logger
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	NSClient *nsapi.Client
	Planner  *ranking.Planner
}
