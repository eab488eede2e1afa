package nsapi

import (
	"encoding/json"
	"time"
)

// Crowd forecast values reported by the reisinformatie API.
const (
	CrowdLow     = "LOW"
	CrowdMedium  = "MEDIUM"
	CrowdHigh    = "HIGH"
	CrowdUnknown = "UNKNOWN"
)

// Trip is one candidate journey as returned by the trips search. Only the
// fields used for ranking are decoded; the complete upstream object is kept
// and written back unchanged by MarshalJSON.
type Trip struct {
	UID           string `json:"uid,omitempty"`
	Legs          []Leg  `json:"legs"`
	CrowdForecast string `json:"crowdForecast,omitempty"`
	Transfers     int    `json:"transfers"`
	Optimal       bool   `json:"optimal"`

	raw json.RawMessage
}

func (t *Trip) UnmarshalJSON(data []byte) error {
	type plain Trip
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*t = Trip(decoded)
	t.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (t Trip) MarshalJSON() ([]byte, error) {
	if len(t.raw) > 0 {
		return t.raw, nil
	}
	type plain Trip
	return json.Marshal(plain(t))
}

// Leg is one uninterrupted segment of a trip.
type Leg struct {
	Idx              string  `json:"idx,omitempty"`
	JourneyDetailRef string  `json:"journeyDetailRef,omitempty"`
	Product          Product `json:"product"`
	Origin           LegStop `json:"origin"`
	Destination      LegStop `json:"destination"`
}

type Product struct {
	Number       string `json:"number,omitempty"`
	CategoryCode string `json:"categoryCode,omitempty"`
}

type LegStop struct {
	Name            string `json:"name,omitempty"`
	PlannedDateTime string `json:"plannedDateTime,omitempty"`
}

type tripsResponse struct {
	Trips []Trip `json:"trips"`
}

// Journey is the rolling stock detail of one leg.
type Journey struct {
	Stops []JourneyStop `json:"stops"`
}

type JourneyStop struct {
	ID           string `json:"id,omitempty"`
	ActualStock  *Stock `json:"actualStock,omitempty"`
	PlannedStock *Stock `json:"plannedStock,omitempty"`
}

type Stock struct {
	TrainType  string      `json:"trainType,omitempty"`
	TrainParts []TrainPart `json:"trainParts"`
}

type TrainPart struct {
	StockIdentifier string   `json:"stockIdentifier,omitempty"`
	Facilities      []string `json:"facilities"`
}

// TrainParts returns the actual composition when known and the planned one otherwise.
func (s JourneyStop) TrainParts() []TrainPart {
	if s.ActualStock != nil && s.ActualStock.TrainParts != nil {
		return s.ActualStock.TrainParts
	}
	if s.PlannedStock != nil {
		return s.PlannedStock.TrainParts
	}
	return nil
}

type journeyResponse struct {
	Payload *Journey `json:"payload"`
}

// TripsQuery holds the parameters of a trips search.
type TripsQuery struct {
	FromStation      string
	ToStation        string
	DateTime         time.Time
	SearchForArrival bool
	Passing          bool
}

// JourneyQuery identifies one journey detail. Train <= 0 and an empty DateTime are omitted.
type JourneyQuery struct {
	ID       string
	Train    int
	DateTime string
}
