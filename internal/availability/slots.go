package availability

import (
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// DefaultStep is the slot granularity used when no override is
// configured.
const DefaultStep = 15 * time.Minute

// Candidates generates the ordered candidate start times for a
// service of the given duration within the open intervals, stepping
// by step from each interval's start.  A candidate is emitted only
// when start+duration still fits inside its interval.  The function
// is pure; calling it again with the same inputs restarts the same
// sequence.
func Candidates(open []Interval, duration, step time.Duration) []time.Time {
	if duration <= 0 {
		return nil
	}
	if step <= 0 {
		step = DefaultStep
	}
	var out []time.Time
	for _, iv := range open {
		for cur := iv.Start; !cur.Add(duration).After(iv.End); cur = cur.Add(step) {
			out = append(out, cur)
		}
	}
	return out
}

// Busy is one blocking entry of the booking ledger: a live
// appointment's scheduled range with its snapshotted buffers, or a
// time-off range with zero buffers.  The blocked extent is
// [Start-Pre, End+Post).
type Busy struct {
	Start time.Time
	End   time.Time
	Pre   time.Duration
	Post  time.Duration
}

// Blocks reports whether the busy entry's buffered extent overlaps
// the buffered extent of a candidate appointment at [start, end)
// with its own pre/post buffers.  Both sides are half-open, so an
// appointment may begin exactly where another's buffered extent ends.
func (b Busy) Blocks(start, end time.Time, pre, post time.Duration) bool {
	return start.Add(-pre).Before(b.End.Add(b.Post)) &&
		b.Start.Add(-b.Pre).Before(end.Add(post))
}

// Bookable runs the full slot pipeline: generate candidates inside
// the open intervals, then drop every candidate whose buffered
// extent conflicts with a busy entry.  The returned slots are
// ordered by start time and each spans exactly duration.
func Bookable(staffID uint64, open []Interval, busy []Busy, duration, pre, post, step time.Duration) []model.Slot {
	candidates := Candidates(open, duration, step)
	slots := make([]model.Slot, 0, len(candidates))
	for _, start := range candidates {
		end := start.Add(duration)
		blocked := false
		for _, b := range busy {
			if b.Blocks(start, end, pre, post) {
				blocked = true
				break
			}
		}
		if !blocked {
			slots = append(slots, model.Slot{StaffID: staffID, StartsAt: start, EndsAt: end})
		}
	}
	return slots
}
