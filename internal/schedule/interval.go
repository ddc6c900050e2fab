package schedule

import (
	"fmt"
	"time"
)

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps applies the half-open overlap rule: two intervals conflict when
// each starts before the other ends. Touching endpoints do not overlap, so
// back-to-back slots are legal.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// parseClock converts an "HH:MM" civil-time string to minutes past midnight.
func parseClock(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return h*60 + m, nil
}

// midnightOf truncates an instant to the start of its calendar day in loc.
func midnightOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// clockOn anchors a minutes-past-midnight offset on a calendar day.
// day must already be a local midnight. Across a DST transition this follows
// time.Time arithmetic: the offset is a fixed duration, not a wall-clock
// reading, matching how the rest of the engine steps through a day.
func clockOn(day time.Time, minutes int) time.Time {
	return day.Add(time.Duration(minutes) * time.Minute)
}

// shiftWindow resolves a shift's clock boundaries on a concrete day.
func shiftWindow(day time.Time, sh WeeklyShift) (Interval, error) {
	startMin, err := parseClock(sh.StartClock)
	if err != nil {
		return Interval{}, err
	}
	endMin, err := parseClock(sh.EndClock)
	if err != nil {
		return Interval{}, err
	}
	if startMin >= endMin {
		return Interval{}, fmt.Errorf("shift %s: start %q not before end %q", sh.ID, sh.StartClock, sh.EndClock)
	}
	return Interval{Start: clockOn(day, startMin), End: clockOn(day, endMin)}, nil
}
