package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"tripranker.dev/internal/app"
	"tripranker.dev/internal/appconf"
	"tripranker.dev/internal/clock"
	"tripranker.dev/internal/logging"
	"tripranker.dev/internal/metrics"
	"tripranker.dev/internal/nsapi"
	"tripranker.dev/internal/ranking"
	"tripranker.dev/internal/restapi"
	"tripranker.dev/internal/webui"
)

const shutdownTimeout = 10 * time.Second

// BuildApplication wires the upstream client, ranking planner and shared
// infrastructure from cfg.
func BuildApplication(cfg appconf.Config) (*app.Application, error) {
	logger := logging.NewStructuredLogger(os.Stdout, logging.LevelFor(cfg.Verbose)).
		With(slog.String("env", cfg.Env.String()))

	m := metrics.NewWithLogger(logger)

	client, err := nsapi.NewClient(nsapi.Options{
		BaseURL:           cfg.UpstreamBaseURL,
		APIKey:            cfg.UpstreamAPIKey,
		Timeout:           cfg.UpstreamTimeout,
		RequestsPerSecond: cfg.UpstreamRPS,
		Burst:             cfg.UpstreamBurst,
		JourneyCacheSize:  cfg.JourneyCacheSize,
		JourneyCacheTTL:   cfg.JourneyCacheTTL,
		Metrics:           m,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}

	c := clock.RealClock{}

	return &app.Application{
		Config:   cfg,
		Logger:   logger,
		Clock:    c,
		Metrics:  m,
		NSClient: client,
		Planner:  ranking.NewPlanner(client, c, m, logger),
	}, nil
}

// CreateServer builds the HTTP server and the API behind it. The caller owns
// the returned RestAPI and must call Shutdown on it.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)

	mux := http.NewServeMux()
	webUI := &webui.WebUI{Application: coreApp, RateLimits: api}
	webUI.SetWebUIRoutes(mux)
	api.SetRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.WithMiddleware(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}

	return srv, api
}

// writeTimeout leaves room for the trips search followed by the journey
// detail fan-out, each bounded by the upstream timeout.
func writeTimeout(cfg appconf.Config) time.Duration {
	return 2*cfg.UpstreamTimeout + 10*time.Second
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, srv *http.Server, api *restapi.RestAPI, logger *slog.Logger) error {
	defer api.Shutdown()

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", listener.Addr().String()))
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
