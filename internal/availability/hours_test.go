package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

var utc = time.UTC

// date returns the test date (a Wednesday) at midnight UTC.
func date() time.Time { return time.Date(2025, time.March, 12, 0, 0, 0, 0, utc) }

func at(h, m int) time.Time {
	d := date()
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, utc)
}

func strPtr(s string) *string { return &s }

func week(entries ...model.WorkingHours) []model.WorkingHours { return entries }

func wednesday(start, end string) model.WorkingHours {
	return model.WorkingHours{StaffID: 1, Weekday: 3, IsWorking: true, StartTime: start, EndTime: end}
}

func TestDayHoursNoScheduleRecord(t *testing.T) {
	_, err := DayHours(nil, nil, date(), utc)
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestDayHoursNotWorkingToday(t *testing.T) {
	// Schedule exists but only for Monday: Wednesday resolves to no
	// intervals, not to an error.
	w := week(model.WorkingHours{StaffID: 1, Weekday: 1, IsWorking: true, StartTime: "09:00", EndTime: "17:00"})
	open, err := DayHours(w, nil, date(), utc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open intervals, got %v", open)
	}

	// An explicit day-off row behaves the same.
	w = week(model.WorkingHours{StaffID: 1, Weekday: 3, IsWorking: false, StartTime: "09:00", EndTime: "17:00"})
	open, err = DayHours(w, nil, date(), utc)
	if err != nil || len(open) != 0 {
		t.Fatalf("expected empty result for day off, got %v, %v", open, err)
	}
}

func TestDayHoursPlainShift(t *testing.T) {
	open, err := DayHours(week(wednesday("09:00", "17:00")), nil, date(), utc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Interval{{Start: at(9, 0), End: at(17, 0)}}
	assertIntervals(t, open, want)
}

func TestDayHoursBreakSubtracted(t *testing.T) {
	w := wednesday("09:00", "17:00")
	w.BreakStart = strPtr("12:00")
	w.BreakEnd = strPtr("12:30")
	open, err := DayHours(week(w), nil, date(), utc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Interval{
		{Start: at(9, 0), End: at(12, 0)},
		{Start: at(12, 30), End: at(17, 0)},
	}
	assertIntervals(t, open, want)
}

func TestDayHoursTimeOffFullDay(t *testing.T) {
	off := []model.TimeOff{{StaffID: 1, StartsAt: date(), EndsAt: date().Add(24 * time.Hour)}}
	open, err := DayHours(week(wednesday("09:00", "17:00")), off, date(), utc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("full-day time off must clear the day, got %v", open)
	}
}

func TestDayHoursTimeOffPartial(t *testing.T) {
	off := []model.TimeOff{{StaffID: 1, StartsAt: at(13, 0), EndsAt: at(15, 0)}}
	open, err := DayHours(week(wednesday("09:00", "17:00")), off, date(), utc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Interval{
		{Start: at(9, 0), End: at(13, 0)},
		{Start: at(15, 0), End: at(17, 0)},
	}
	assertIntervals(t, open, want)
}

func TestDayHoursIdempotent(t *testing.T) {
	w := wednesday("09:00", "17:00")
	w.BreakStart = strPtr("12:00")
	w.BreakEnd = strPtr("13:00")
	off := []model.TimeOff{{StaffID: 1, StartsAt: at(15, 0), EndsAt: at(16, 0)}}

	first, err := DayHours(week(w), off, date(), utc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := DayHours(week(w), off, date(), utc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIntervals(t, second, first)
}

func TestSubtractCases(t *testing.T) {
	base := Interval{Start: at(9, 0), End: at(17, 0)}
	cases := []struct {
		name  string
		block Interval
		want  []Interval
	}{
		{"no overlap", Interval{Start: at(18, 0), End: at(19, 0)}, []Interval{base}},
		{"covers all", Interval{Start: at(8, 0), End: at(18, 0)}, nil},
		{"middle", Interval{Start: at(12, 0), End: at(13, 0)}, []Interval{
			{Start: at(9, 0), End: at(12, 0)}, {Start: at(13, 0), End: at(17, 0)},
		}},
		{"clips head", Interval{Start: at(8, 0), End: at(10, 0)}, []Interval{
			{Start: at(10, 0), End: at(17, 0)},
		}},
		{"clips tail", Interval{Start: at(16, 0), End: at(18, 0)}, []Interval{
			{Start: at(9, 0), End: at(16, 0)},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertIntervals(t, base.Subtract(tc.block), tc.want)
		})
	}
}

func assertIntervals(t *testing.T, got, want []Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("interval count mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("interval %d mismatch: got %v want %v", i, got[i], want[i])
		}
	}
}
