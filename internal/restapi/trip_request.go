package restapi

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata" // station times are local to the Netherlands

	"github.com/go-playground/validator/v10"
	"tripranker.dev/internal/ranking"
)

// tripQuery holds the raw query parameters of the trip endpoints.
type tripQuery struct {
	FromStation string `query:"fromStation" validate:"required,max=100"`
	ToStation   string `query:"toStation" validate:"required,max=100"`
	DateTime    string `query:"dateTime" validate:"omitempty,max=40"`
}

var stationLocation = mustLoadLocation("Europe/Amsterdam")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// localDateTimeLayouts are accepted for dateTime values without a UTC offset.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("query")
	})
	return v
}

// parseTripRequest validates the query string of a trip endpoint. The second
// return value is nil when the request is valid.
func (api *RestAPI) parseTripRequest(r *http.Request) (ranking.TripRequest, map[string][]string) {
	values := r.URL.Query()
	q := tripQuery{
		FromStation: strings.TrimSpace(values.Get("fromStation")),
		ToStation:   strings.TrimSpace(values.Get("toStation")),
		DateTime:    strings.TrimSpace(values.Get("dateTime")),
	}

	fieldErrors := map[string][]string{}

	if err := api.validate.Struct(q); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			fieldErrors["query"] = []string{err.Error()}
			return ranking.TripRequest{}, fieldErrors
		}
		for _, fe := range validationErrors {
			fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], describeFieldError(fe))
		}
	}

	req := ranking.TripRequest{FromStation: q.FromStation, ToStation: q.ToStation}

	if q.DateTime != "" && len(fieldErrors["dateTime"]) == 0 {
		dt, err := parseDateTime(q.DateTime)
		if err != nil {
			fieldErrors["dateTime"] = append(fieldErrors["dateTime"], err.Error())
		} else {
			req.DateTime = &dt
		}
	}

	if len(fieldErrors) > 0 {
		return ranking.TripRequest{}, fieldErrors
	}
	return req, nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// parseDateTime accepts RFC 3339 timestamps and offset-less local times,
// which are read as Dutch local time.
func parseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, stationLocation); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("must be an ISO-8601 date-time such as 2024-11-05T08:15:00+01:00")
}
