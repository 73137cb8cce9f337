package calendar

import (
	"time"

	"stridekit/internal/platform/validate"
)

// RangeQuery is the user-facing description of a summary period, as it
// arrives from flags or query strings
type RangeQuery struct {
	Period   string `json:"period" validate:"required,oneof=week month year"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	FirstDay *int   `json:"first_day" validate:"omitempty,weekday"`
	Timezone string `json:"timezone" validate:"omitempty,iana_tz"`
}

// Resolve validates q and computes its range. An empty Date means today in
// the query's timezone; a nil FirstDay means DefaultFirstDay.
func (q RangeQuery) Resolve(now time.Time) (Range, error) {
	if err := validate.Struct(q); err != nil {
		return Range{}, err
	}
	loc, err := LoadLocation(q.Timezone)
	if err != nil {
		return Range{}, err
	}
	ref := now.In(loc)
	if q.Date != "" {
		if ref, err = ParseDay(q.Date, loc); err != nil {
			return Range{}, err
		}
	}
	first := DefaultFirstDay
	if q.FirstDay != nil {
		first = time.Weekday(*q.FirstDay)
	}
	return Bounds(Period(q.Period), ref, first, loc)
}
