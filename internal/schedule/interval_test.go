package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	iv := func(startMin, endMin int) Interval {
		return Interval{
			Start: base.Add(time.Duration(startMin) * time.Minute),
			End:   base.Add(time.Duration(endMin) * time.Minute),
		}
	}

	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", iv(0, 30), iv(0, 30), true},
		{"contained", iv(0, 60), iv(15, 30), true},
		{"partial front", iv(0, 30), iv(15, 45), true},
		{"partial back", iv(15, 45), iv(0, 30), true},
		{"touching end to start", iv(0, 30), iv(30, 60), false},
		{"touching start to end", iv(30, 60), iv(0, 30), false},
		{"disjoint", iv(0, 30), iv(60, 90), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"nonsense", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseClock(tt.clock)
		if tt.wantErr {
			assert.Error(t, err, "clock %q", tt.clock)
			continue
		}
		require.NoError(t, err, "clock %q", tt.clock)
		assert.Equal(t, tt.want, got, "clock %q", tt.clock)
	}
}

func TestMidnightOf(t *testing.T) {
	loc := time.UTC
	instant := time.Date(2025, 6, 2, 15, 42, 7, 123, loc)

	got := midnightOf(instant, loc)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), got)

	// Already midnight stays put.
	assert.Equal(t, got, midnightOf(got, loc))
}

func TestShiftWindow(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	window, err := shiftWindow(day, WeeklyShift{StartClock: "09:00", EndClock: "17:00"})
	require.NoError(t, err)
	assert.Equal(t, day.Add(9*time.Hour), window.Start)
	assert.Equal(t, day.Add(17*time.Hour), window.End)

	_, err = shiftWindow(day, WeeklyShift{StartClock: "17:00", EndClock: "09:00"})
	assert.Error(t, err, "inverted shift must be rejected")

	_, err = shiftWindow(day, WeeklyShift{StartClock: "junk", EndClock: "09:00"})
	assert.Error(t, err)
}
