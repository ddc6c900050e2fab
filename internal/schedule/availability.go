package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDoctorID   = errors.New("doctor id is required")
	ErrInvalidDateRange  = errors.New("start date must not be after end date")
	ErrInvalidDuration   = errors.New("duration must be a positive number of minutes")
	ErrInvalidHorizon    = errors.New("horizon must be a positive number of days")
	ErrNoScheduleDefined = errors.New("no weekly schedule defined for this doctor")
)

type ConflictRule string

const (
	ConflictNoSchedule   ConflictRule = "no_schedule"
	ConflictOutsideHours ConflictRule = "outside_working_hours"
	ConflictBlockout     ConflictRule = "blockout"
	ConflictAppointment  ConflictRule = "appointment"
)

// Conflict describes the first scheduling rule a proposed interval violates.
// The message is surfaced verbatim to the caller as the booking rejection
// reason.
type Conflict struct {
	Rule    ConflictRule
	Message string
}

// Engine computes bookable slots and validates proposed appointment times
// against weekly shifts, blockouts and occupying appointments. It is
// stateless and read-only: every call batch-fetches once and then runs pure
// interval arithmetic, so concurrent calls need no coordination.
type Engine struct {
	shifts       ShiftRepository
	blockouts    BlockoutRepository
	appointments AppointmentRepository
	loc          *time.Location
	now          func() time.Time
}

func NewEngine(shifts ShiftRepository, blockouts BlockoutRepository, appointments AppointmentRepository, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		shifts:       shifts,
		blockouts:    blockouts,
		appointments: appointments,
		loc:          loc,
		now:          time.Now,
	}
}

// AvailableSlots enumerates every conflict-free slot of durationMinutes for
// the doctor across the calendar days in [from, to). Day boundaries are local
// midnights in the engine's location. Candidate windows step from shift start
// to shift end minus duration on a non-overlapping grid of durationMinutes.
//
// A doctor with no weekly shifts at all yields ErrNoScheduleDefined rather
// than an empty result, so callers can distinguish "fully booked" from
// "schedule never set up".
func (e *Engine) AvailableSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time, durationMinutes int) ([]Slot, error) {
	if doctorID == uuid.Nil {
		return nil, ErrInvalidDoctorID
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	rangeStart := midnightOf(from, e.loc)
	rangeEnd := midnightOf(to, e.loc)
	if rangeEnd.Before(rangeStart) {
		return nil, ErrInvalidDateRange
	}

	shifts, err := e.shifts.ListShifts(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	if len(shifts) == 0 {
		return nil, ErrNoScheduleDefined
	}

	busy, err := e.busyIntervals(ctx, doctorID, rangeStart, rangeEnd, nil)
	if err != nil {
		return nil, err
	}

	byWeekday := groupShiftsByWeekday(shifts)

	var slots []Slot
	for day := rangeStart; day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
		daySlots, err := enumerateDay(day, byWeekday[day.Weekday()], busy, durationMinutes, time.Time{})
		if err != nil {
			return nil, err
		}
		slots = append(slots, daySlots...)
	}
	return slots, nil
}

// NextAvailableSlot returns the earliest conflict-free slot of
// durationMinutes within horizonDays of now, or nil when the horizon is
// exhausted. Candidates ending at or before now are skipped even on the
// first day.
func (e *Engine) NextAvailableSlot(ctx context.Context, doctorID uuid.UUID, durationMinutes, horizonDays int) (*Slot, error) {
	if doctorID == uuid.Nil {
		return nil, ErrInvalidDoctorID
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if horizonDays <= 0 {
		return nil, ErrInvalidHorizon
	}

	shifts, err := e.shifts.ListShifts(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	if len(shifts) == 0 {
		return nil, ErrNoScheduleDefined
	}

	now := e.now()
	firstDay := midnightOf(now, e.loc)
	rangeEnd := firstDay.AddDate(0, 0, horizonDays)

	// One fetch for the whole horizon, not one per day.
	busy, err := e.busyIntervals(ctx, doctorID, now, rangeEnd, nil)
	if err != nil {
		return nil, err
	}

	byWeekday := groupShiftsByWeekday(shifts)

	for day := firstDay; day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
		daySlots, err := enumerateDay(day, byWeekday[day.Weekday()], busy, durationMinutes, now)
		if err != nil {
			return nil, err
		}
		if len(daySlots) > 0 {
			first := daySlots[0]
			return &first, nil
		}
	}
	return nil, nil
}

// CheckTimeConflicts is the authoritative gate run before any appointment
// write. It short-circuits on the first violated rule: working-hours
// containment, then blockout overlap, then overlap with another occupying
// appointment (excludeID carves out the appointment being rescheduled).
// A nil Conflict means the interval is legal.
func (e *Engine) CheckTimeConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*Conflict, error) {
	if doctorID == uuid.Nil {
		return nil, ErrInvalidDoctorID
	}
	if !start.Before(end) {
		return nil, ErrInvalidDateRange
	}

	shifts, err := e.shifts.ListShifts(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}

	localStart := start.In(e.loc)
	day := midnightOf(localStart, e.loc)
	weekday := localStart.Weekday()

	contained := false
	sawShift := false
	for _, sh := range shifts {
		if sh.DayOfWeek != weekday {
			continue
		}
		sawShift = true
		window, err := shiftWindow(day, sh)
		if err != nil {
			return nil, err
		}
		if !start.Before(window.Start) && !end.After(window.End) {
			contained = true
			break
		}
	}
	if !sawShift {
		return &Conflict{
			Rule:    ConflictNoSchedule,
			Message: fmt.Sprintf("schedule not defined for %s", weekday),
		}, nil
	}
	if !contained {
		return &Conflict{
			Rule:    ConflictOutsideHours,
			Message: "requested time falls outside working hours",
		}, nil
	}

	blockouts, err := e.blockouts.ListBlockouts(ctx, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list blockouts: %w", err)
	}
	proposed := Interval{Start: start, End: end}
	for _, b := range blockouts {
		if proposed.Overlaps(Interval{Start: b.StartTime, End: b.EndTime}) {
			return &Conflict{
				Rule:    ConflictBlockout,
				Message: fmt.Sprintf("doctor unavailable (%s): %s", b.Type, b.Reason),
			}, nil
		}
	}

	appts, err := e.appointments.ListOccupying(ctx, doctorID, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	for _, a := range appts {
		if proposed.Overlaps(Interval{Start: a.StartTime, End: a.EndTime}) {
			return &Conflict{
				Rule: ConflictAppointment,
				Message: fmt.Sprintf("overlaps an existing appointment from %s to %s",
					a.StartTime.In(e.loc).Format("15:04"), a.EndTime.In(e.loc).Format("15:04")),
			}, nil
		}
	}

	return nil, nil
}

// busyIntervals merges blockouts and occupying appointments overlapping the
// range into one list of occupied intervals.
func (e *Engine) busyIntervals(ctx context.Context, doctorID uuid.UUID, rangeStart, rangeEnd time.Time, excludeID *uuid.UUID) ([]Interval, error) {
	blockouts, err := e.blockouts.ListBlockouts(ctx, doctorID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("list blockouts: %w", err)
	}
	appts, err := e.appointments.ListOccupying(ctx, doctorID, rangeStart, rangeEnd, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	busy := make([]Interval, 0, len(blockouts)+len(appts))
	for _, b := range blockouts {
		busy = append(busy, Interval{Start: b.StartTime, End: b.EndTime})
	}
	for _, a := range appts {
		busy = append(busy, Interval{Start: a.StartTime, End: a.EndTime})
	}
	return busy, nil
}

// enumerateDay walks every shift on one calendar day and collects the
// conflict-free candidate windows, ordered by time then shift order.
// Candidates ending at or before notBefore are skipped (zero value disables
// the cutoff).
func enumerateDay(day time.Time, shifts []WeeklyShift, busy []Interval, durationMinutes int, notBefore time.Time) ([]Slot, error) {
	if len(shifts) == 0 {
		return nil, nil
	}

	step := time.Duration(durationMinutes) * time.Minute

	var slots []Slot
	for _, sh := range shifts {
		window, err := shiftWindow(day, sh)
		if err != nil {
			return nil, err
		}
		for s := window.Start; !s.Add(step).After(window.End); s = s.Add(step) {
			candidate := Interval{Start: s, End: s.Add(step)}
			if !notBefore.IsZero() && !candidate.End.After(notBefore) {
				continue
			}
			if overlapsAny(candidate, busy) {
				continue
			}
			slots = append(slots, Slot{
				StartTime:       candidate.Start,
				EndTime:         candidate.End,
				DurationMinutes: durationMinutes,
			})
		}
	}

	// Shifts may arrive in any order; slot output is chronological.
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots, nil
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, iv := range busy {
		if candidate.Overlaps(iv) {
			return true
		}
	}
	return false
}

func groupShiftsByWeekday(shifts []WeeklyShift) map[time.Weekday][]WeeklyShift {
	byWeekday := make(map[time.Weekday][]WeeklyShift, len(shifts))
	for _, sh := range shifts {
		byWeekday[sh.DayOfWeek] = append(byWeekday[sh.DayOfWeek], sh)
	}
	return byWeekday
}
