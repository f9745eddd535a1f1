package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ErrScheduleNotFound is returned when a staff member has no weekly
// schedule rows at all.  It is deliberately distinct from an empty
// result, which means "has a schedule but is not working that day".
var ErrScheduleNotFound = errors.New("schedule not found")

// wallClock parses an "HH:MM" string onto the given date in loc.
func wallClock(hm string, date time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad wall-clock time %q: %w", hm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// DayHours resolves a staff member's effective open intervals for one
// date.  Resolution order: the weekly entry for the date's weekday
// provides the base shift; the recorded break (if any) is subtracted;
// then every overlapping time-off range is subtracted.  The date's
// year/month/day are interpreted in loc, the business's local zone.
//
// An empty week slice means the staff member has no schedule record
// at all and yields ErrScheduleNotFound.  A week without an entry for
// this weekday, or with IsWorking=false, yields an empty result.
func DayHours(week []model.WorkingHours, timeOff []model.TimeOff, date time.Time, loc *time.Location) ([]Interval, error) {
	if len(week) == 0 {
		return nil, ErrScheduleNotFound
	}

	var entry *model.WorkingHours
	wd := uint8(date.In(loc).Weekday())
	for i := range week {
		if week[i].Weekday == wd {
			entry = &week[i]
			break
		}
	}
	if entry == nil || !entry.IsWorking {
		return []Interval{}, nil
	}

	start, err := wallClock(entry.StartTime, date.In(loc), loc)
	if err != nil {
		return nil, err
	}
	end, err := wallClock(entry.EndTime, date.In(loc), loc)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return []Interval{}, nil
	}
	open := []Interval{{Start: start, End: end}}

	if entry.BreakStart != nil && entry.BreakEnd != nil {
		bs, err := wallClock(*entry.BreakStart, date.In(loc), loc)
		if err != nil {
			return nil, err
		}
		be, err := wallClock(*entry.BreakEnd, date.In(loc), loc)
		if err != nil {
			return nil, err
		}
		open = SubtractAll(open, []Interval{{Start: bs, End: be}})
	}

	for _, off := range timeOff {
		open = SubtractAll(open, []Interval{{Start: off.StartsAt, End: off.EndsAt}})
	}
	return open, nil
}
