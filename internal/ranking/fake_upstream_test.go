package ranking

import (
	"context"
	"sync"
	"time"

	"tripranker.dev/internal/nsapi"
)

// fakeUpstream serves canned trips and journeys keyed by journey detail ref.
type fakeUpstream struct {
	trips      []nsapi.Trip
	tripsErr   error
	journeys   map[string]*nsapi.Journey
	journeyErr map[string]error
	delays     map[string]time.Duration

	mu           sync.Mutex
	tripQueries  []nsapi.TripsQuery
	journeyCalls []nsapi.JourneyQuery
}

func (f *fakeUpstream) GetTrips(ctx context.Context, q nsapi.TripsQuery) ([]nsapi.Trip, error) {
	f.mu.Lock()
	f.tripQueries = append(f.tripQueries, q)
	f.mu.Unlock()
	return f.trips, f.tripsErr
}

func (f *fakeUpstream) GetJourney(ctx context.Context, q nsapi.JourneyQuery) (*nsapi.Journey, error) {
	f.mu.Lock()
	f.journeyCalls = append(f.journeyCalls, q)
	f.mu.Unlock()

	if d := f.delays[q.ID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.journeyErr[q.ID]; err != nil {
		return nil, err
	}
	return f.journeys[q.ID], nil
}

func journeyWith(actual, planned []string) *nsapi.Journey {
	stop := nsapi.JourneyStop{}
	if actual != nil {
		stop.ActualStock = &nsapi.Stock{TrainParts: []nsapi.TrainPart{{Facilities: actual}}}
	}
	if planned != nil {
		stop.PlannedStock = &nsapi.Stock{TrainParts: []nsapi.TrainPart{{Facilities: planned}}}
	}
	return &nsapi.Journey{Stops: []nsapi.JourneyStop{stop}}
}

func legWithRef(ref, train string) nsapi.Leg {
	return nsapi.Leg{
		JourneyDetailRef: ref,
		Product:          nsapi.Product{Number: train},
		Origin:           nsapi.LegStop{PlannedDateTime: "2024-11-05T08:15:00+0100"},
	}
}
