package domain

import "time"

// Blocking reports whether the appointment still occupies its interval.
// Cancelled and no-show visits free their slot.
func (a Appointment) Blocking() bool {
	return a.Status != AppointmentStatusCancelled && a.Status != AppointmentStatusNoShow
}

// Overlaps reports whether the half-open interval [startsAt, endsAt)
// intersects the appointment's own interval.
func (a Appointment) Overlaps(startsAt, endsAt time.Time) bool {
	return a.StartsAt.Before(endsAt) && startsAt.Before(a.EndsAt)
}

// Slot represents a bookable interval for one inspector.
type Slot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// AvailableSlots sweeps the working window [dayStart, dayEnd) in increments
// of step and collects every interval of length slotLen that starts at or
// after notBefore and overlaps none of the existing appointments. existing
// must be sorted by StartsAt and contain only blocking appointments; the
// sweep advances through it with a single index instead of rescanning.
func AvailableSlots(dayStart, dayEnd time.Time, slotLen, step time.Duration, notBefore time.Time, existing []Appointment) []Slot {
	slots := make([]Slot, 0, 16)
	if slotLen <= 0 || step <= 0 || !dayStart.Before(dayEnd) {
		return slots
	}

	idx := 0
	for start := dayStart; !start.Add(slotLen).After(dayEnd); start = start.Add(step) {
		end := start.Add(slotLen)
		if start.Before(notBefore) {
			continue
		}

		for idx < len(existing) && !existing[idx].EndsAt.After(start) {
			idx++
		}

		conflict := false
		for i := idx; i < len(existing); i++ {
			if !existing[i].StartsAt.Before(end) {
				break
			}
			if existing[i].Overlaps(start, end) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, Slot{StartsAt: start, EndsAt: end})
		}
	}
	return slots
}
