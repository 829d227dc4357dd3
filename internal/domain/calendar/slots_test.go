package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondaySchedule(t *testing.T) Schedule {
	t.Helper()
	s, err := NewSchedule(time.UTC, 15*time.Minute, map[time.Weekday]DayHours{
		time.Monday: {OpenMin: 9 * 60, CloseMin: 11 * 60},
	})
	require.NoError(t, err)
	return s
}

// 2026-10-19 é segunda-feira.
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2026, 10, 19, h, m, 0, 0, time.UTC)
}

func TestComputeSlotsBasicBooking(t *testing.T) {
	s := mondaySchedule(t)

	slots := s.ComputeSlots(monday, 30*time.Minute, nil)

	require.Len(t, slots, 7)
	assert.Equal(t, at(9, 0), slots[0])
	assert.Equal(t, at(10, 30), slots[6])
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 15*time.Minute, slots[i].Sub(slots[i-1]))
	}
}

func TestComputeSlotsOverlapRejection(t *testing.T) {
	s := mondaySchedule(t)
	occupied := []Interval{{Start: at(9, 30), End: at(10, 0)}}

	slots := s.ComputeSlots(monday, 30*time.Minute, occupied)

	assert.True(t, Contains(slots, at(9, 0)))
	assert.True(t, Contains(slots, at(10, 0)))
	assert.False(t, Contains(slots, at(9, 15)))
	assert.False(t, Contains(slots, at(9, 30)))
	assert.False(t, Contains(slots, at(9, 45)))
}

func TestComputeSlotsClosedDay(t *testing.T) {
	s := mondaySchedule(t)
	tuesday := monday.AddDate(0, 0, 1)

	for _, d := range []time.Duration{15 * time.Minute, time.Hour, 3 * time.Hour} {
		slots := s.ComputeSlots(tuesday, d, nil)
		assert.NotNil(t, slots)
		assert.Empty(t, slots)
	}
}

func TestComputeSlotsDurationThatNeverFits(t *testing.T) {
	s := mondaySchedule(t)

	assert.Empty(t, s.ComputeSlots(monday, 3*time.Hour, nil))
	assert.Empty(t, s.ComputeSlots(monday, 0, nil))
}

func TestComputeSlotsStayInsideWindow(t *testing.T) {
	s, err := NewSchedule(time.UTC, 15*time.Minute, map[time.Weekday]DayHours{
		time.Monday: {OpenMin: 8 * 60, CloseMin: 18 * 60},
	})
	require.NoError(t, err)

	occupied := []Interval{
		{Start: at(9, 10), End: at(9, 50)},
		{Start: at(12, 0), End: at(14, 0)},
		{Start: at(17, 45), End: at(19, 0)},
	}
	open, close, ok := s.Window(monday)
	require.True(t, ok)

	for minutes := 5; minutes <= 240; minutes += 5 {
		d := time.Duration(minutes) * time.Minute
		slots := s.ComputeSlots(monday, d, occupied)

		for i, slot := range slots {
			assert.False(t, slot.Before(open))
			assert.False(t, slot.Add(d).After(close))
			for _, iv := range occupied {
				assert.False(t, iv.Overlaps(slot, slot.Add(d)), "slot %s overlaps %v", slot, iv)
			}
			if i > 0 {
				assert.True(t, slot.After(slots[i-1]), "slots must be strictly ascending")
			}
		}
	}
}

func TestComputeSlotsIsRestartable(t *testing.T) {
	s := mondaySchedule(t)
	occupied := []Interval{{Start: at(10, 0), End: at(10, 15)}}

	first := s.ComputeSlots(monday, 45*time.Minute, occupied)
	second := s.ComputeSlots(monday, 45*time.Minute, occupied)

	assert.Equal(t, first, second)
}

func TestComputeSlotsUsesClinicTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	s, err := NewSchedule(loc, 15*time.Minute, map[time.Weekday]DayHours{
		time.Monday: {OpenMin: 9 * 60, CloseMin: 10 * 60},
	})
	require.NoError(t, err)

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)
	slots := s.ComputeSlots(day, 30*time.Minute, nil)

	require.Len(t, slots, 3)
	assert.Equal(t, 9, slots[0].In(loc).Hour())
}
