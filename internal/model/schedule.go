package model

import "time"

// WorkingHours is one weekday entry of a staff member's recurring
// weekly schedule.  Times are wall-clock strings in "HH:MM" 24h
// format interpreted in the business's timezone; the availability
// resolver turns them into concrete instants for a requested date.
// A weekday without a row, or with IsWorking=false, yields no open
// intervals for that day.
//
// Fields:
//  ID         – primary key identifier.
//  StaffID    – staff member this entry belongs to.
//  Weekday    – 0 (Sunday) through 6 (Saturday), matching time.Weekday.
//  IsWorking  – whether the staff member works this weekday at all.
//  StartTime  – shift start, "HH:MM".
//  EndTime    – shift end, "HH:MM"; must be after StartTime.
//  BreakStart – optional break start, "HH:MM".
//  BreakEnd   – optional break end, "HH:MM".
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type WorkingHours struct {
	ID         uint64    // working_hours.id
	StaffID    uint64    // working_hours.staff_id
	Weekday    uint8     // working_hours.weekday (0=Sunday .. 6=Saturday)
	IsWorking  bool      // working_hours.is_working
	StartTime  string    // working_hours.start_time ("HH:MM")
	EndTime    string    // working_hours.end_time ("HH:MM")
	BreakStart *string   // working_hours.break_start (nullable, "HH:MM")
	BreakEnd   *string   // working_hours.break_end (nullable, "HH:MM")
	CreatedAt  time.Time // working_hours.created_at
	UpdatedAt  time.Time // working_hours.updated_at
}

// TimeOff is a date-time range during which a staff member cannot be
// booked regardless of the weekly schedule (vacation, sick leave,
// training).  A range fully covering a working day removes the day;
// a partial range is subtracted from the day's open intervals.
//
// Fields:
//  ID        – primary key identifier.
//  StaffID   – staff member taking time off.
//  StartsAt  – beginning of the blocked range (UTC).
//  EndsAt    – end of the blocked range (UTC); must be after StartsAt.
//  Reason    – optional short note ("vacation", "dentist").
//  CreatedAt – creation timestamp.
type TimeOff struct {
	ID        uint64    // time_off.id
	StaffID   uint64    // time_off.staff_id
	StartsAt  time.Time // time_off.starts_at
	EndsAt    time.Time // time_off.ends_at
	Reason    *string   // time_off.reason (nullable)
	CreatedAt time.Time // time_off.created_at
}
