package calendar

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	perr "stridekit/internal/platform/errors"
)

// Period is the reporting granularity of a summary
type Period string

// Supported periods
const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts week, month or year in any case
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", perr.WithField(perr.InvalidArgf("unknown period %q", s), "period")
}

// Range is a half-open [Start, End) interval expressed in UTC
type Range struct {
	Period Period
	Start  time.Time
	End    time.Time

	loc      *time.Location
	firstDay time.Weekday
}

// Bounds computes the period containing t as seen from loc.
// The civil boundaries are found in loc and then converted to UTC.
// An instant exactly on a boundary belongs to the period it starts.
func Bounds(p Period, t time.Time, firstDay time.Weekday, loc *time.Location) (Range, error) {
	if loc == nil {
		return Range{}, perr.WithField(perr.InvalidArgf("location is required"), "timezone")
	}
	if err := ValidFirstDay(firstDay); err != nil {
		return Range{}, err
	}
	if err := validRef(t); err != nil {
		return Range{}, err
	}
	local := t.In(loc)

	var start, end time.Time
	switch p {
	case PeriodWeek:
		start, _ = WeekStart(local, firstDay)
		end = civil(start, 7)
	case PeriodMonth:
		start, end = MonthStart(local), MonthEnd(local)
	case PeriodYear:
		start, end = YearStart(local), YearEnd(local)
	default:
		return Range{}, perr.WithField(perr.InvalidArgf("unknown period %q", p), "period")
	}

	return Range{
		Period:   p,
		Start:    start.UTC(),
		End:      end.UTC(),
		loc:      loc,
		firstDay: firstDay,
	}, nil
}

// Location returns the zone the range was computed in
func (r Range) Location() *time.Location {
	if r.loc == nil {
		return time.UTC
	}
	return r.loc
}

// Contains reports whether t falls inside [Start, End)
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Days returns the number of civil days covered by the range
func (r Range) Days() int {
	// DST days are 23 or 25 hours long; rounding absorbs the difference
	return int(math.Round(r.End.Sub(r.Start).Hours() / 24))
}

// Shift returns the range n periods away; n may be negative
func (r Range) Shift(n int) Range {
	start := r.Start.In(r.Location())
	var anchor time.Time
	switch r.Period {
	case PeriodWeek:
		anchor = civil(start, 7*n)
	case PeriodMonth:
		anchor = time.Date(start.Year(), start.Month()+time.Month(n), 1, 0, 0, 0, 0, start.Location())
	case PeriodYear:
		anchor = time.Date(start.Year()+n, time.January, 1, 0, 0, 0, 0, start.Location())
	default:
		return r
	}
	out, err := Bounds(r.Period, anchor, r.firstDay, r.Location())
	if err != nil {
		return r
	}
	return out
}

// Prev returns the previous period
func (r Range) Prev() Range { return r.Shift(-1) }

// Next returns the following period
func (r Range) Next() Range { return r.Shift(1) }

// Query renders the range as RFC3339 UTC filter parameters
func (r Range) Query(startKey, endKey string) url.Values {
	v := url.Values{}
	v.Set(startKey, r.Start.Format(time.RFC3339))
	v.Set(endKey, r.End.Format(time.RFC3339))
	return v
}

// String renders the range for logs
func (r Range) String() string {
	return fmt.Sprintf("%s[%s, %s)", r.Period, r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
