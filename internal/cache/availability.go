// Package cache holds the Redis-backed availability cache. Computed
// slot lists are expensive enough to keep briefly, but they go stale
// the moment the staff member's ledger changes, so writes to the
// ledger invalidate the affected staff/day keys explicitly instead
// of waiting for the TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/salon-booking/internal/model"
)

// Availability caches computed bookable slots per staff member, day
// and service. A nil client disables the cache; every method then
// degrades to a miss or a no-op.
type Availability struct {
	rdb *redis.Client
	TTL time.Duration
}

// NewAvailability builds an availability cache with the given TTL.
// The TTL is a staleness ceiling only; correctness never depends on
// it because booking re-validates against the live ledger.
func NewAvailability(rdb *redis.Client, ttl time.Duration) *Availability {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Availability{rdb: rdb, TTL: ttl}
}

// key layout: avail:<staffID>:<day>:<serviceID>. Day is the
// business-local date in YYYY-MM-DD so one invalidation covers all
// services of that staff member's day via a pattern delete.
func slotKey(staffID uint64, day string, serviceID uint64) string {
	return fmt.Sprintf("avail:%d:%s:%d", staffID, day, serviceID)
}

// Get returns the cached slots for a staff/day/service, or ok=false
// on a miss, a decode failure, or a disabled cache.
func (a *Availability) Get(ctx context.Context, staffID uint64, day string, serviceID uint64) ([]model.Slot, bool) {
	if a == nil || a.rdb == nil {
		return nil, false
	}
	bs, err := a.rdb.Get(ctx, slotKey(staffID, day, serviceID)).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []model.Slot
	if err := json.Unmarshal(bs, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores the computed slots. Failures are ignored; the cache is
// purely an optimization.
func (a *Availability) Set(ctx context.Context, staffID uint64, day string, serviceID uint64, slots []model.Slot) {
	if a == nil || a.rdb == nil {
		return
	}
	bs, err := json.Marshal(slots)
	if err != nil {
		return
	}
	_ = a.rdb.SetEx(ctx, slotKey(staffID, day, serviceID), bs, a.TTL).Err()
}

// InvalidateStaffDay drops every cached slot list for one staff
// member's day, across all services. Called after a booking commit,
// a reschedule, or an appointment completing.
func (a *Availability) InvalidateStaffDay(ctx context.Context, staffID uint64, day string) {
	if a == nil || a.rdb == nil {
		return
	}
	pattern := fmt.Sprintf("avail:%d:%s:*", staffID, day)
	iter := a.rdb.Scan(ctx, 0, pattern, 64).Iterator()
	for iter.Next(ctx) {
		_ = a.rdb.Del(ctx, iter.Val()).Err()
	}
}
