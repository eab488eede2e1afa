package nsapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripRoundTripKeepsUpstreamFields(t *testing.T) {
	upstream := `{"uid":"trip-1","plannedDurationInMinutes":27,"transfers":0,"optimal":false,"crowdForecast":"MEDIUM","legs":[{"idx":"0","journeyDetailRef":"ref-1","product":{"number":"3456","categoryCode":"IC"},"origin":{"name":"Utrecht Centraal","plannedDateTime":"2024-11-05T08:15:00+0100"}}],"shareUrl":{"uri":"https://example.test"}}`

	var trip Trip
	require.NoError(t, json.Unmarshal([]byte(upstream), &trip))

	assert.Equal(t, "trip-1", trip.UID)
	assert.Equal(t, CrowdMedium, trip.CrowdForecast)
	require.Len(t, trip.Legs, 1)
	assert.Equal(t, "ref-1", trip.Legs[0].JourneyDetailRef)
	assert.Equal(t, "3456", trip.Legs[0].Product.Number)
	assert.Equal(t, "2024-11-05T08:15:00+0100", trip.Legs[0].Origin.PlannedDateTime)

	out, err := json.Marshal(trip)
	require.NoError(t, err)
	assert.JSONEq(t, upstream, string(out), "fields the service does not model must survive")
}

func TestTripMarshalWithoutUpstreamBody(t *testing.T) {
	trip := Trip{UID: "built", Transfers: 2, Optimal: true}

	out, err := json.Marshal(trip)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid":"built","legs":null,"transfers":2,"optimal":true}`, string(out))
}

func TestJourneyStopTrainParts(t *testing.T) {
	actual := &Stock{TrainParts: []TrainPart{{Facilities: []string{"WIFI"}}}}
	planned := &Stock{TrainParts: []TrainPart{{Facilities: []string{"STILTE"}}}}

	tests := []struct {
		name     string
		stop     JourneyStop
		expected []TrainPart
	}{
		{"actual preferred over planned", JourneyStop{ActualStock: actual, PlannedStock: planned}, actual.TrainParts},
		{"planned used without actual", JourneyStop{PlannedStock: planned}, planned.TrainParts},
		{"actual without train parts falls back", JourneyStop{ActualStock: &Stock{}, PlannedStock: planned}, planned.TrainParts},
		{"neither stock", JourneyStop{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.stop.TrainParts())
		})
	}
}

func TestUpstreamErrorFormatting(t *testing.T) {
	err := &UpstreamError{Endpoint: "journey", StatusCode: 404, Message: "Not Found"}
	assert.Equal(t, "ns api journey: 404 Not Found", err.Error())

	withCause := &UpstreamError{Endpoint: "trips", Message: "request failed", Err: assert.AnError}
	assert.Contains(t, withCause.Error(), "ns api trips: request failed: ")
	assert.ErrorIs(t, withCause, assert.AnError)
}
