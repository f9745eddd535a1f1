package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

var errNotFound = errors.New("record not found")

type memCatalog struct {
	business *model.Business
	staff    *model.Staff
	service  *model.Service
}

func (c *memCatalog) BusinessByID(_ context.Context, id uint64) (*model.Business, error) {
	if c.business == nil || c.business.ID != id {
		return nil, errNotFound
	}
	return c.business, nil
}

func (c *memCatalog) StaffByID(_ context.Context, id uint64) (*model.Staff, error) {
	if c.staff == nil || c.staff.ID != id {
		return nil, errNotFound
	}
	return c.staff, nil
}

func (c *memCatalog) ServiceByID(_ context.Context, id uint64) (*model.Service, error) {
	if c.service == nil || c.service.ID != id {
		return nil, errNotFound
	}
	return c.service, nil
}

type memSchedule struct {
	week    []model.WorkingHours
	timeOff []model.TimeOff
}

func (s *memSchedule) WeeklyHours(context.Context, uint64) ([]model.WorkingHours, error) {
	return s.week, nil
}

func (s *memSchedule) TimeOffBetween(context.Context, uint64, time.Time, time.Time) ([]model.TimeOff, error) {
	return s.timeOff, nil
}

// memApptStore is an in-memory AppointmentStore with the same
// guarantees the SQL implementation provides: commits are serialized
// by a mutex, and every commit re-checks buffered overlap against
// the live rows before inserting.
type memApptStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   []*model.Appointment
}

func buffered(a *model.Appointment) (time.Time, time.Time) {
	return a.StartsAt.Add(-time.Duration(a.PreBufferMin) * time.Minute),
		a.EndsAt.Add(time.Duration(a.PostBufferMin) * time.Minute)
}

func (s *memApptStore) conflictLocked(appt *model.Appointment, excludeID uint64) bool {
	start, end := buffered(appt)
	for _, row := range s.rows {
		if row.ID == excludeID || row.StaffID != appt.StaffID || !row.Status.IsLive() {
			continue
		}
		bStart, bEnd := buffered(row)
		if start.Before(bEnd) && bStart.Before(end) {
			return true
		}
	}
	return false
}

func (s *memApptStore) BookAtomic(_ context.Context, appt *model.Appointment) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflictLocked(appt, 0) {
		return 0, ErrSlotNoLongerAvailable
	}
	s.nextID++
	stored := *appt
	stored.ID = s.nextID
	s.rows = append(s.rows, &stored)
	return stored.ID, nil
}

func (s *memApptStore) RescheduleAtomic(_ context.Context, prev, replacement *model.Appointment) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prevRow *model.Appointment
	for _, row := range s.rows {
		if row.ID == prev.ID {
			prevRow = row
			break
		}
	}
	if prevRow == nil {
		return 0, errNotFound
	}
	if prevRow.Status != prev.Status {
		return 0, ErrTransitionConflict
	}
	if s.conflictLocked(replacement, prev.ID) {
		return 0, ErrSlotNoLongerAvailable
	}
	prevRow.Status = model.StatusRescheduled
	s.nextID++
	stored := *replacement
	stored.ID = s.nextID
	s.rows = append(s.rows, &stored)
	return stored.ID, nil
}

// LiveForStaff lets the store double as the orchestrator's ledger so
// pre-checks and commits observe the same state.
func (s *memApptStore) LiveForStaff(_ context.Context, staffID uint64, from, to time.Time) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Appointment
	for _, row := range s.rows {
		if row.StaffID != staffID || !row.Status.IsLive() {
			continue
		}
		if row.StartsAt.Before(to) && from.Before(row.EndsAt) {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fixture struct {
	orch  *Orchestrator
	store *memApptStore
	cat   *memCatalog
	sched *memSchedule
	cache *memCache
}

// 2025-03-12 is a Wednesday; the staff member works 09:00-17:00 UTC.
func newFixture() *fixture {
	cat := &memCatalog{
		business: &model.Business{ID: 1, Timezone: "UTC", IsActive: true},
		staff:    &model.Staff{ID: 7, BusinessID: 1, IsActive: true},
		service: &model.Service{
			ID: 3, BusinessID: 1, DurationMin: 30,
			PriceCents: 4500, IsActive: true,
		},
	}
	sched := &memSchedule{week: []model.WorkingHours{
		{StaffID: 7, Weekday: 3, IsWorking: true, StartTime: "09:00", EndTime: "17:00"},
	}}
	store := &memApptStore{}
	cache := &memCache{}
	orch := NewOrchestrator(cat, sched, store, store, nil, cache, 15*time.Minute)
	orch.now = func() time.Time {
		return time.Date(2025, time.March, 12, 8, 0, 0, 0, time.UTC)
	}
	return &fixture{orch: orch, store: store, cat: cat, sched: sched, cache: cache}
}

func wedAt(h, m int) time.Time {
	return time.Date(2025, time.March, 12, h, m, 0, 0, time.UTC)
}

func baseRequest(start time.Time) Request {
	return Request{ClientID: 100, StaffID: 7, ServiceID: 3, StartsAt: start}
}

func TestRequestBookingCommits(t *testing.T) {
	f := newFixture()
	appt, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 0)))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if appt.ID == 0 {
		t.Fatalf("committed appointment has no id")
	}
	if appt.Status != model.StatusBooked {
		t.Fatalf("status = %s, want BOOKED", appt.Status)
	}
	if !appt.EndsAt.Equal(wedAt(10, 30)) {
		t.Fatalf("end = %v, want 10:30", appt.EndsAt)
	}
	if appt.PriceCents != 4500 || appt.DurationMin != 30 {
		t.Fatalf("service snapshot not copied: %+v", appt)
	}
	if appt.Source != "WEB" {
		t.Fatalf("default source = %q, want WEB", appt.Source)
	}
	if len(f.cache.days) != 1 || f.cache.days[0] != "2025-03-12" {
		t.Fatalf("availability cache not invalidated: %v", f.cache.days)
	}
}

func TestRequestBookingValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*fixture)
		request func() Request
		want    error
	}{
		{
			name:    "start in past",
			request: func() Request { return baseRequest(wedAt(7, 0)) },
			want:    ErrStartInPast,
		},
		{
			name:    "inactive service",
			mutate:  func(f *fixture) { f.cat.service.IsActive = false },
			request: func() Request { return baseRequest(wedAt(10, 0)) },
			want:    ErrServiceInactive,
		},
		{
			name:    "inactive staff",
			mutate:  func(f *fixture) { f.cat.staff.IsActive = false },
			request: func() Request { return baseRequest(wedAt(10, 0)) },
			want:    ErrStaffInactive,
		},
		{
			name:    "inactive business",
			mutate:  func(f *fixture) { f.cat.business.IsActive = false },
			request: func() Request { return baseRequest(wedAt(10, 0)) },
			want:    ErrBusinessInactive,
		},
		{
			name:    "staff from another business",
			mutate:  func(f *fixture) { f.cat.staff.BusinessID = 2; f.cat.business.ID = 2 },
			request: func() Request { return baseRequest(wedAt(10, 0)) },
			want:    ErrCatalogMismatch,
		},
		{
			name: "unknown service",
			request: func() Request {
				r := baseRequest(wedAt(10, 0))
				r.ServiceID = 99
				return r
			},
			want: errNotFound,
		},
		{
			name:    "outside working hours",
			request: func() Request { return baseRequest(wedAt(18, 0)) },
			want:    ErrSlotNoLongerAvailable,
		},
		{
			name:    "off the slot grid",
			request: func() Request { return baseRequest(wedAt(10, 7)) },
			want:    ErrSlotNoLongerAvailable,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			if tc.mutate != nil {
				tc.mutate(f)
			}
			_, err := f.orch.RequestBooking(context.Background(), tc.request())
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if len(f.store.rows) != 0 {
				t.Fatalf("nothing may be committed on %q", tc.name)
			}
		})
	}
}

func TestRequestBookingInvalidatesLocalDay(t *testing.T) {
	// An evening slot in a western timezone starts on the next UTC
	// date: 20:30 in New York on Wednesday 2025-03-12 is 00:30Z on
	// Thursday. The availability cache keys on the business-local
	// date, so the invalidation must name 2025-03-12, not 2025-03-13.
	f := newFixture()
	f.cat.business.Timezone = "America/New_York"
	f.sched.week = []model.WorkingHours{
		{StaffID: 7, Weekday: 3, IsWorking: true, StartTime: "09:00", EndTime: "22:00"},
	}
	f.orch.now = func() time.Time {
		return time.Date(2025, time.March, 12, 12, 0, 0, 0, time.UTC)
	}

	start := time.Date(2025, time.March, 13, 0, 30, 0, 0, time.UTC)
	if _, err := f.orch.RequestBooking(context.Background(), baseRequest(start)); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if len(f.cache.days) != 1 || f.cache.days[0] != "2025-03-12" {
		t.Fatalf("invalidated days = %v, want [2025-03-12]", f.cache.days)
	}
}

func TestRequestBookingConflictsWithCommitted(t *testing.T) {
	f := newFixture()
	if _, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 0))); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	_, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 15)))
	if !errors.Is(err, ErrSlotNoLongerAvailable) {
		t.Fatalf("overlapping booking must fail, got %v", err)
	}
	// Back-to-back is fine with zero buffers.
	if _, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 30))); err != nil {
		t.Fatalf("adjacent booking failed: %v", err)
	}
}

func TestConcurrentBookingExactlyOneWins(t *testing.T) {
	f := newFixture()
	const attempts = 8

	var wg sync.WaitGroup
	results := make([]error, attempts)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(11, 0)))
			results[i] = err
		}(i)
	}
	close(start)
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotNoLongerAvailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("exactly one attempt must win, got %d", wins)
	}
	if conflicts != attempts-1 {
		t.Fatalf("losers must see ErrSlotNoLongerAvailable, got %d of %d", conflicts, attempts-1)
	}
	if len(f.store.rows) != 1 {
		t.Fatalf("store holds %d rows, want 1", len(f.store.rows))
	}
}

func TestRescheduleSupersedes(t *testing.T) {
	f := newFixture()
	prev, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 0)))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	next, err := f.orch.Reschedule(context.Background(), prev, wedAt(14, 0))
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if next.ID == prev.ID {
		t.Fatalf("replacement must be a new appointment")
	}
	if next.Status != model.StatusBooked || !next.StartsAt.Equal(wedAt(14, 0)) {
		t.Fatalf("replacement wrong: %+v", next)
	}
	if next.PriceCents != prev.PriceCents || next.ServiceID != prev.ServiceID {
		t.Fatalf("replacement must keep the original snapshot")
	}
	if prev.Status != model.StatusRescheduled {
		t.Fatalf("previous appointment not superseded: %s", prev.Status)
	}
	// The freed 10:00 slot is bookable again.
	if _, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 0))); err != nil {
		t.Fatalf("superseded slot must reopen: %v", err)
	}
}

func TestRescheduleOntoOwnTime(t *testing.T) {
	// Shifting by one step overlaps the appointment's own old range;
	// the old range must not block its replacement.
	f := newFixture()
	prev, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 0)))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if _, err := f.orch.Reschedule(context.Background(), prev, wedAt(10, 15)); err != nil {
		t.Fatalf("reschedule onto own time failed: %v", err)
	}
}

func TestRescheduleTerminalRejected(t *testing.T) {
	f := newFixture()
	prev, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 0)))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	prev.Status = model.StatusCompleted

	_, err = f.orch.Reschedule(context.Background(), prev, wedAt(14, 0))
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestBookingRespectsBuffersOfBothSides(t *testing.T) {
	f := newFixture()
	f.cat.service.PreBufferMin = 0
	f.cat.service.PostBufferMin = 15
	if _, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 0))); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	// 10:30 collides with the committed appointment's post buffer.
	_, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 30)))
	if !errors.Is(err, ErrSlotNoLongerAvailable) {
		t.Fatalf("buffered overlap must fail, got %v", err)
	}
	// 10:45 clears it.
	if _, err := f.orch.RequestBooking(context.Background(), baseRequest(wedAt(10, 45))); err != nil {
		t.Fatalf("slot past the buffer failed: %v", err)
	}
}
