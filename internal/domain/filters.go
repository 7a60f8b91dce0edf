package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportFilters narrows branch report listings. Zero values mean "no filter".
type ReportFilters struct {
	Status      ReportStatus
	CustomerID  uuid.UUID
	InspectorID uuid.UUID
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

// OfferFilters narrows branch offer listings.
type OfferFilters struct {
	Status     OfferStatus
	CustomerID uuid.UUID
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

// AppointmentFilters narrows branch appointment listings.
type AppointmentFilters struct {
	Status      AppointmentStatus
	InspectorID uuid.UUID
	CustomerID  uuid.UUID
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

// AgreementFilters narrows branch service agreement listings.
type AgreementFilters struct {
	Status     AgreementStatus
	CustomerID uuid.UUID
	Offset     int
	Limit      int
}

// AuditFilters narrows branch audit listings.
type AuditFilters struct {
	EntityType string
	Action     AuditAction
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}
