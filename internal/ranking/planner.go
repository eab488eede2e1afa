// Package ranking orders trips returned by the reisinformatie API, either by
// the provider's own optimal flag or by a comfort score built from crowd
// forecasts, on-board facilities and transfers.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"tripranker.dev/internal/clock"
	"tripranker.dev/internal/logging"
	"tripranker.dev/internal/metrics"
	"tripranker.dev/internal/nsapi"
)

// Upstream is the part of the reisinformatie API the planner depends on.
type Upstream interface {
	GetTrips(ctx context.Context, q nsapi.TripsQuery) ([]nsapi.Trip, error)
	GetJourney(ctx context.Context, q nsapi.JourneyQuery) (*nsapi.Journey, error)
}

// TripRequest is a validated trip search. A nil DateTime means now.
type TripRequest struct {
	FromStation string
	ToStation   string
	DateTime    *time.Time
}

// Planner runs the ranking policies.
type Planner struct {
	upstream Upstream
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewPlanner builds a Planner. metrics may be nil.
func NewPlanner(upstream Upstream, c clock.Clock, m *metrics.Metrics, logger *slog.Logger) *Planner {
	if c == nil {
		c = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		upstream: upstream,
		clock:    c,
		metrics:  m,
		logger:   logger.With(slog.String("component", "ranking")),
	}
}

// Trips searches departures only and skips trains passing through without stopping.
func (p *Planner) Trips(ctx context.Context, req TripRequest) ([]nsapi.Trip, error) {
	departure := p.clock.Now()
	if req.DateTime != nil {
		departure = *req.DateTime
	}

	trips, err := p.upstream.GetTrips(ctx, nsapi.TripsQuery{
		FromStation:      req.FromStation,
		ToStation:        req.ToStation,
		DateTime:         departure,
		SearchForArrival: false,
		Passing:          false,
	})
	if err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}
	return trips, nil
}

// MostOptimal returns the first trip the provider flags as optimal, or nil.
func (p *Planner) MostOptimal(ctx context.Context, req TripRequest) (*nsapi.Trip, error) {
	trips, err := p.Trips(ctx, req)
	if err != nil {
		return nil, err
	}

	for i := range trips {
		if trips[i].Optimal {
			return &trips[i], nil
		}
	}
	return nil, nil
}

type scoredTrip struct {
	trip  nsapi.Trip
	score int
}

// ByComfort returns all trips ordered by comfort score, highest first. Trips
// with equal scores keep the provider's order. Returns nil when there are no trips.
func (p *Planner) ByComfort(ctx context.Context, req TripRequest) ([]nsapi.Trip, error) {
	start := time.Now()

	trips, err := p.Trips(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return nil, nil
	}

	scored := make([]scoredTrip, len(trips))
	g, gctx := errgroup.WithContext(ctx)
	for i, trip := range trips {
		g.Go(func() error {
			score, err := p.ComfortScore(gctx, trip)
			if err != nil {
				return fmt.Errorf("score trip %d: %w", i, err)
			}
			scored[i] = scoredTrip{trip: trip, score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	ranked := make([]nsapi.Trip, len(scored))
	for i, s := range scored {
		ranked[i] = s.trip
	}

	logging.LogOperation(p.logger, "trips_ranked_by_comfort",
		slog.Int("trips", len(ranked)),
		slog.Int("top_score", scored[0].score),
		slog.Duration("duration", time.Since(start)))

	return ranked, nil
}
