package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-03-10T"+hhmm+":00Z")
	require.NoError(t, err)
	return ts
}

func TestAppointmentOverlaps(t *testing.T) {
	a := Appointment{StartsAt: at(t, "10:00"), EndsAt: at(t, "11:00")}

	assert.True(t, a.Overlaps(at(t, "10:30"), at(t, "11:30")))
	assert.True(t, a.Overlaps(at(t, "09:30"), at(t, "10:30")))
	assert.True(t, a.Overlaps(at(t, "09:00"), at(t, "12:00")))
	// Touching boundaries do not conflict.
	assert.False(t, a.Overlaps(at(t, "11:00"), at(t, "12:00")))
	assert.False(t, a.Overlaps(at(t, "09:00"), at(t, "10:00")))
}

func TestAppointmentBlocking(t *testing.T) {
	assert.True(t, Appointment{Status: AppointmentStatusScheduled}.Blocking())
	assert.True(t, Appointment{Status: AppointmentStatusCompleted}.Blocking())
	assert.False(t, Appointment{Status: AppointmentStatusCancelled}.Blocking())
	assert.False(t, Appointment{Status: AppointmentStatusNoShow}.Blocking())
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	slots := AvailableSlots(at(t, "08:00"), at(t, "12:00"), time.Hour, time.Hour, time.Time{}, nil)

	require.Len(t, slots, 4)
	assert.Equal(t, at(t, "08:00"), slots[0].StartsAt)
	assert.Equal(t, at(t, "11:00"), slots[3].StartsAt)
	assert.Equal(t, at(t, "12:00"), slots[3].EndsAt)
}

func TestAvailableSlotsSkipsBookedIntervals(t *testing.T) {
	existing := []Appointment{
		{StartsAt: at(t, "09:00"), EndsAt: at(t, "10:30")},
	}
	slots := AvailableSlots(at(t, "08:00"), at(t, "12:00"), time.Hour, 30*time.Minute, time.Time{}, existing)

	for _, s := range slots {
		assert.False(t, existing[0].Overlaps(s.StartsAt, s.EndsAt), "slot %s overlaps booking", s.StartsAt)
	}
	// 08:00 fits before the booking, 10:30 and 11:00 after it.
	starts := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartsAt)
	}
	assert.Contains(t, starts, at(t, "08:00"))
	assert.Contains(t, starts, at(t, "10:30"))
	assert.NotContains(t, starts, at(t, "09:00"))
	assert.NotContains(t, starts, at(t, "10:00"))
}

func TestAvailableSlotsHonorsNotBefore(t *testing.T) {
	slots := AvailableSlots(at(t, "08:00"), at(t, "12:00"), time.Hour, time.Hour, at(t, "10:00"), nil)

	require.NotEmpty(t, slots)
	assert.Equal(t, at(t, "10:00"), slots[0].StartsAt)
}

func TestAvailableSlotsDegenerateInput(t *testing.T) {
	assert.Empty(t, AvailableSlots(at(t, "12:00"), at(t, "08:00"), time.Hour, time.Hour, time.Time{}, nil))
	assert.Empty(t, AvailableSlots(at(t, "08:00"), at(t, "12:00"), 0, time.Hour, time.Time{}, nil))
}
