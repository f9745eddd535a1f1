package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// memStatusStore tracks one appointment's persisted status and
// enforces the same guard a SQL UPDATE ... WHERE status=? would.
type memStatusStore struct {
	status model.AppointmentStatus
	calls  *[]string
	err    error
}

func (s *memStatusStore) TransitionStatus(_ context.Context, _ uint64, from, to model.AppointmentStatus) error {
	if s.err != nil {
		return s.err
	}
	if s.status != from {
		return ErrTransitionConflict
	}
	s.status = to
	if s.calls != nil {
		*s.calls = append(*s.calls, "persist")
	}
	return nil
}

type memEvents struct {
	calls *[]string
	err   error
}

func (e *memEvents) AppointmentBooked(*model.Appointment) error {
	if e.calls != nil {
		*e.calls = append(*e.calls, "booked")
	}
	return e.err
}

func (e *memEvents) AppointmentStatusChanged(*model.Appointment, model.AppointmentStatus) error {
	if e.calls != nil {
		*e.calls = append(*e.calls, "publish")
	}
	return e.err
}

type memCache struct {
	calls *[]string
	days  []string
}

func (c *memCache) InvalidateStaffDay(_ context.Context, _ uint64, day string) {
	if c.calls != nil {
		*c.calls = append(*c.calls, "invalidate")
	}
	c.days = append(c.days, day)
}

func apptIn(status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		ID:       42,
		StaffID:  7,
		StartsAt: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC),
		Status:   status,
	}
}

func TestTransitionTable(t *testing.T) {
	all := []model.AppointmentStatus{
		model.StatusBooked, model.StatusConfirmed, model.StatusCheckedIn,
		model.StatusInService, model.StatusCompleted, model.StatusCancelled,
		model.StatusNoShow, model.StatusRescheduled,
	}
	allowed := map[model.AppointmentStatus]map[model.AppointmentStatus]bool{
		model.StatusBooked: {
			model.StatusConfirmed: true, model.StatusCheckedIn: true,
			model.StatusCancelled: true, model.StatusRescheduled: true,
		},
		model.StatusConfirmed: {
			model.StatusCheckedIn: true, model.StatusCancelled: true,
			model.StatusNoShow: true, model.StatusRescheduled: true,
		},
		model.StatusCheckedIn: {
			model.StatusInService: true, model.StatusNoShow: true,
		},
		model.StatusInService: {
			model.StatusCompleted: true,
		},
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTransitionRejectsSkippedEdge(t *testing.T) {
	// BOOKED cannot jump straight to IN_SERVICE; the client has to
	// check in first.
	store := &memStatusStore{status: model.StatusBooked}
	lc := NewLifecycle(store, nil, nil)
	appt := apptIn(model.StatusBooked)

	err := lc.Transition(context.Background(), appt, model.StatusInService)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if ite.From != model.StatusBooked || ite.To != model.StatusInService {
		t.Fatalf("error carries wrong edge: %v", ite)
	}
	if appt.Status != model.StatusBooked {
		t.Fatalf("appointment mutated on rejected transition: %s", appt.Status)
	}
	if store.status != model.StatusBooked {
		t.Fatalf("store written on rejected transition: %s", store.status)
	}
}

func TestTransitionCompleteExactlyOnce(t *testing.T) {
	store := &memStatusStore{status: model.StatusInService}
	lc := NewLifecycle(store, nil, nil)
	appt := apptIn(model.StatusInService)

	if err := lc.Transition(context.Background(), appt, model.StatusCompleted); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if appt.Status != model.StatusCompleted {
		t.Fatalf("status not updated in place: %s", appt.Status)
	}

	err := lc.Transition(context.Background(), appt, model.StatusCompleted)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("second completion must fail with InvalidTransitionError, got %v", err)
	}
}

func TestTransitionHookOrder(t *testing.T) {
	var calls []string
	store := &memStatusStore{status: model.StatusInService, calls: &calls}
	events := &memEvents{calls: &calls}
	cache := &memCache{calls: &calls}
	lc := NewLifecycle(store, events, cache)
	appt := apptIn(model.StatusInService)

	if err := lc.Transition(context.Background(), appt, model.StatusCompleted); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	want := []string{"persist", "publish", "invalidate", "invalidate", "invalidate"}
	if len(calls) != len(want) {
		t.Fatalf("hook calls: got %v want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("hook order: got %v want %v", calls, want)
		}
	}
	wantDays := []string{"2025-03-11", "2025-03-12", "2025-03-13"}
	if len(cache.days) != len(wantDays) {
		t.Fatalf("cache invalidated for wrong days: %v", cache.days)
	}
	for i := range wantDays {
		if cache.days[i] != wantDays[i] {
			t.Fatalf("cache invalidated for wrong days: got %v want %v", cache.days, wantDays)
		}
	}
}

func TestTransitionNoCacheHookWhileSlotBlocked(t *testing.T) {
	var calls []string
	store := &memStatusStore{status: model.StatusBooked, calls: &calls}
	cache := &memCache{calls: &calls}
	lc := NewLifecycle(store, &memEvents{calls: &calls}, cache)

	if err := lc.Transition(context.Background(), apptIn(model.StatusBooked), model.StatusConfirmed); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(cache.days) != 0 {
		t.Fatalf("cache must not be invalidated while the slot stays blocked, got %v", cache.days)
	}
}

func TestTransitionCancelFreesCachedDay(t *testing.T) {
	store := &memStatusStore{status: model.StatusConfirmed}
	cache := &memCache{}
	lc := NewLifecycle(store, nil, cache)

	if err := lc.Transition(context.Background(), apptIn(model.StatusConfirmed), model.StatusCancelled); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	found := false
	for _, d := range cache.days {
		if d == "2025-03-12" {
			found = true
		}
	}
	if !found {
		t.Fatalf("cancellation must invalidate the freed day, got %v", cache.days)
	}
}

func TestTransitionCancelCoversLocalDayAcrossMidnight(t *testing.T) {
	// An evening slot in a western timezone lands on the next UTC date:
	// 20:30 in New York is 00:30Z the following day. The cache keys on
	// the business-local date, so the invalidation sweep has to reach
	// the UTC date's previous neighbor too.
	store := &memStatusStore{status: model.StatusBooked}
	cache := &memCache{}
	lc := NewLifecycle(store, nil, cache)
	appt := &model.Appointment{
		ID:       43,
		StaffID:  7,
		StartsAt: time.Date(2025, time.March, 13, 0, 30, 0, 0, time.UTC),
		EndsAt:   time.Date(2025, time.March, 13, 1, 0, 0, 0, time.UTC),
		Status:   model.StatusBooked,
	}

	if err := lc.Transition(context.Background(), appt, model.StatusCancelled); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	found := false
	for _, d := range cache.days {
		if d == "2025-03-12" {
			found = true
		}
	}
	if !found {
		t.Fatalf("local-date key 2025-03-12 not invalidated, got %v", cache.days)
	}
}

func TestTransitionPublishFailureDoesNotRollBack(t *testing.T) {
	store := &memStatusStore{status: model.StatusBooked}
	events := &memEvents{err: errors.New("broker down")}
	lc := NewLifecycle(store, events, nil)
	appt := apptIn(model.StatusBooked)

	if err := lc.Transition(context.Background(), appt, model.StatusCancelled); err != nil {
		t.Fatalf("publish failure must not fail the transition: %v", err)
	}
	if store.status != model.StatusCancelled {
		t.Fatalf("store not updated: %s", store.status)
	}
}

func TestTransitionConcurrentGuardLoses(t *testing.T) {
	// The store already moved the row: the guard misses and the
	// in-memory appointment stays untouched.
	store := &memStatusStore{status: model.StatusCancelled}
	var calls []string
	lc := NewLifecycle(store, &memEvents{calls: &calls}, nil)
	appt := apptIn(model.StatusBooked)

	err := lc.Transition(context.Background(), appt, model.StatusConfirmed)
	if !errors.Is(err, ErrTransitionConflict) {
		t.Fatalf("expected ErrTransitionConflict, got %v", err)
	}
	if appt.Status != model.StatusBooked {
		t.Fatalf("appointment mutated on lost guard: %s", appt.Status)
	}
	if len(calls) != 0 {
		t.Fatalf("no events may fire on a failed persist, got %v", calls)
	}
}
