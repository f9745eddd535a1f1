// Package availability implements the scheduling engine that turns a
// staff member's weekly working hours, time-off and committed
// appointments into the ordered list of bookable slots for a date.
// Everything in this package is a pure function of its inputs: the
// same schedule, ledger and date always produce the same slots, so
// results may be cached briefly and recomputed at will.  Nothing here
// talks to the database; callers load the inputs through the
// repository layer and re-validate at commit time.
package availability

import "time"

// Interval is a half-open time range [Start, End).  Intervals with
// End not after Start are considered empty and are never emitted by
// functions in this package.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the interval is empty (End not after Start).
func (iv Interval) IsZero() bool { return !iv.End.After(iv.Start) }

// Overlaps reports whether two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Subtract removes block from the interval and returns the zero, one
// or two non-empty intervals that remain.  The result is ordered.
func (iv Interval) Subtract(block Interval) []Interval {
	if !iv.Overlaps(block) {
		return []Interval{iv}
	}
	var out []Interval
	if block.Start.After(iv.Start) {
		out = append(out, Interval{Start: iv.Start, End: block.Start})
	}
	if block.End.Before(iv.End) {
		out = append(out, Interval{Start: block.End, End: iv.End})
	}
	return out
}

// SubtractAll removes every block from every open interval and
// returns the ordered remainder.  Both inputs must individually be
// ordered and non-overlapping, which holds for resolver output and
// for time-off rows sorted by start.
func SubtractAll(open []Interval, blocks []Interval) []Interval {
	out := open
	for _, b := range blocks {
		if b.IsZero() {
			continue
		}
		next := make([]Interval, 0, len(out)+1)
		for _, iv := range out {
			next = append(next, iv.Subtract(b)...)
		}
		out = next
	}
	return out
}
