package ranking

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
	"tripranker.dev/internal/nsapi"
)

// Comfort score weights.
const (
	BusyWeight     = 4
	FacilityWeight = 3
	TransferWeight = 1
)

// CrowdScore maps a crowd forecast to a score: quieter trains score higher.
// Unknown or missing forecasts score 0.
func CrowdScore(forecast string) int {
	switch forecast {
	case nsapi.CrowdLow:
		return 3
	case nsapi.CrowdMedium:
		return 2
	case nsapi.CrowdHigh:
		return 1
	default:
		return 0
	}
}

// Score combines the comfort signals of one trip. The result may be negative.
func Score(crowdForecast string, facilityCount, transfers int) int {
	return CrowdScore(crowdForecast)*BusyWeight + facilityCount*FacilityWeight - transfers*TransferWeight
}

// Facilities returns the set of facility names found on any train part of
// any stop of the given journeys. Nil journeys are skipped.
func Facilities(journeys []*nsapi.Journey) map[string]struct{} {
	facilities := make(map[string]struct{})
	for _, journey := range journeys {
		if journey == nil {
			continue
		}
		for _, stop := range journey.Stops {
			for _, part := range stop.TrainParts() {
				for _, facility := range part.Facilities {
					facilities[facility] = struct{}{}
				}
			}
		}
	}
	return facilities
}

// ComfortScore fetches the journey detail of every leg that has one, in
// parallel, and scores the trip. A failed fetch fails the whole score.
func (p *Planner) ComfortScore(ctx context.Context, trip nsapi.Trip) (int, error) {
	var legs []nsapi.Leg
	for _, leg := range trip.Legs {
		if leg.JourneyDetailRef != "" {
			legs = append(legs, leg)
		}
	}

	journeys := make([]*nsapi.Journey, len(legs))
	g, gctx := errgroup.WithContext(ctx)
	for i, leg := range legs {
		g.Go(func() error {
			journey, err := p.upstream.GetJourney(gctx, journeyQuery(leg))
			if err != nil {
				return fmt.Errorf("journey detail %s: %w", leg.JourneyDetailRef, err)
			}
			journeys[i] = journey
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	score := Score(trip.CrowdForecast, len(Facilities(journeys)), trip.Transfers)
	p.metrics.ObserveComfortScore(score)
	return score, nil
}

func journeyQuery(leg nsapi.Leg) nsapi.JourneyQuery {
	q := nsapi.JourneyQuery{
		ID:       leg.JourneyDetailRef,
		DateTime: leg.Origin.PlannedDateTime,
	}
	// Non-numeric train numbers are left out of the query.
	if train, err := strconv.Atoi(leg.Product.Number); err == nil {
		q.Train = train
	}
	return q
}
