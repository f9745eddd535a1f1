package availability

import (
	"testing"
	"time"
)

func TestCandidatesGranularityAndFit(t *testing.T) {
	open := []Interval{{Start: at(9, 0), End: at(10, 0)}}
	got := Candidates(open, 30*time.Minute, 15*time.Minute)
	want := []time.Time{at(9, 0), at(9, 15), at(9, 30)}
	if len(got) != len(want) {
		t.Fatalf("candidate count: got %v want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("candidate %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestCandidatesDurationLongerThanInterval(t *testing.T) {
	open := []Interval{{Start: at(9, 0), End: at(9, 45)}}
	if got := Candidates(open, time.Hour, 15*time.Minute); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
}

func TestCandidatesZeroDuration(t *testing.T) {
	open := []Interval{{Start: at(9, 0), End: at(17, 0)}}
	if got := Candidates(open, 0, 15*time.Minute); got != nil {
		t.Fatalf("expected nil for zero duration, got %v", got)
	}
}

// Staff works 09:00-17:00 with one 45-minute appointment at 10:00.
// 30-minute slots at 15-minute granularity must drop every start
// whose range touches 10:00-10:45 but keep 09:30 (ends exactly at
// 10:00) and 10:45 (starts exactly at the end).
func TestBookableAdjacentSlotsSurvive(t *testing.T) {
	open := []Interval{{Start: at(9, 0), End: at(17, 0)}}
	busy := []Busy{{Start: at(10, 0), End: at(10, 45)}}

	slots := Bookable(7, open, busy, 30*time.Minute, 0, 0, 15*time.Minute)

	starts := make(map[time.Time]bool, len(slots))
	for _, s := range slots {
		if s.StaffID != 7 {
			t.Fatalf("slot carries wrong staff id: %d", s.StaffID)
		}
		if !s.EndsAt.Equal(s.StartsAt.Add(30 * time.Minute)) {
			t.Fatalf("slot %v does not span the service duration", s)
		}
		starts[s.StartsAt] = true
	}
	for _, ts := range []time.Time{at(9, 30), at(10, 45)} {
		if !starts[ts] {
			t.Errorf("expected %v to be bookable", ts)
		}
	}
	for _, ts := range []time.Time{at(9, 45), at(10, 0), at(10, 15), at(10, 30)} {
		if starts[ts] {
			t.Errorf("expected %v to be blocked", ts)
		}
	}
}

// Time off 13:00-15:00 enters the ledger as a zero-buffer busy
// entry; candidates whose buffered extent reaches into it must go,
// including ones that only touch it via their post buffer.
func TestBookableBuffersAgainstTimeOff(t *testing.T) {
	open := []Interval{{Start: at(9, 0), End: at(17, 0)}}
	busy := []Busy{{Start: at(13, 0), End: at(15, 0)}}

	slots := Bookable(1, open, busy, 30*time.Minute, 0, 15*time.Minute, 15*time.Minute)

	for _, s := range slots {
		buffered := Interval{Start: s.StartsAt, End: s.EndsAt.Add(15 * time.Minute)}
		if buffered.Overlaps(Interval{Start: at(13, 0), End: at(15, 0)}) {
			t.Errorf("slot %v reaches into time off", s)
		}
	}

	starts := make(map[time.Time]bool, len(slots))
	for _, s := range slots {
		starts[s.StartsAt] = true
	}
	// 12:15 ends 12:45, buffered to 13:00: survives.  12:30 ends
	// 13:00, buffered to 13:15: blocked.  15:00 has no leading
	// buffer here and survives.
	if !starts[at(12, 15)] {
		t.Errorf("expected 12:15 to be bookable")
	}
	if starts[at(12, 30)] {
		t.Errorf("expected 12:30 to be blocked by its post buffer")
	}
	if !starts[at(15, 0)] {
		t.Errorf("expected 15:00 to be bookable")
	}
}

func TestBlocksUsesBothSidesBuffers(t *testing.T) {
	b := Busy{Start: at(10, 0), End: at(10, 30), Pre: 10 * time.Minute, Post: 10 * time.Minute}
	cases := []struct {
		name       string
		start, end time.Time
		pre, post  time.Duration
		want       bool
	}{
		{"clear before", at(9, 0), at(9, 30), 0, 0, false},
		{"ends at buffered start", at(9, 20), at(9, 50), 0, 0, false},
		{"post buffer collides", at(9, 15), at(9, 45), 0, 10 * time.Minute, true},
		{"pre buffer collides", at(10, 45), at(11, 15), 10 * time.Minute, 0, true},
		{"starts at buffered end", at(10, 40), at(11, 10), 0, 0, false},
		{"inside", at(10, 10), at(10, 20), 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Blocks(tc.start, tc.end, tc.pre, tc.post); got != tc.want {
				t.Fatalf("Blocks(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestBookableIdempotent(t *testing.T) {
	open := []Interval{{Start: at(9, 0), End: at(12, 0)}}
	busy := []Busy{{Start: at(10, 0), End: at(10, 30)}}

	first := Bookable(1, open, busy, 30*time.Minute, 0, 0, 15*time.Minute)
	second := Bookable(1, open, busy, 30*time.Minute, 0, 0, 15*time.Minute)
	if len(first) != len(second) {
		t.Fatalf("slot counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].StartsAt.Equal(second[i].StartsAt) || !first[i].EndsAt.Equal(second[i].EndsAt) {
			t.Fatalf("slot %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}
