package domain

import "time"

// CanTransition reports whether the agreement may move to the target status.
// Active and paused agreements convert into each other; termination is final.
func (s ServiceAgreement) CanTransition(to AgreementStatus) bool {
	if s.Status == AgreementStatusTerminated {
		return false
	}
	switch to {
	case AgreementStatusActive:
		return s.Status == AgreementStatusPaused
	case AgreementStatusPaused:
		return s.Status == AgreementStatusActive
	case AgreementStatusTerminated:
		return true
	default:
		return false
	}
}

// Due reports whether the agreement should have its next visit generated.
func (s ServiceAgreement) Due(today time.Time) bool {
	return s.Status == AgreementStatusActive && !s.NextDueOn.After(today)
}

// AdvanceNextDue moves NextDueOn forward by the agreement interval, stepping
// repeatedly until it lands after the given visit date. Stepping from the
// previous due date rather than the visit date keeps the cadence anchored to
// the contract start.
func (s *ServiceAgreement) AdvanceNextDue(visitedOn time.Time) {
	if s.IntervalMonths <= 0 {
		return
	}
	next := s.NextDueOn
	for !next.After(visitedOn) {
		next = next.AddDate(0, s.IntervalMonths, 0)
	}
	s.NextDueOn = next
	v := visitedOn
	s.LastVisitOn = &v
}
