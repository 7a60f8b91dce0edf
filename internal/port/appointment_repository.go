package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// AppointmentRepository defines the contract for appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AppointmentFilters) ([]domain.Appointment, int, error)
	// ListBlockingForInspector returns non-cancelled appointments of one
	// inspector intersecting [from, to), ordered by start. Used for conflict
	// checks and availability sweeps.
	ListBlockingForInspector(ctx context.Context, inspectorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) error
	// ClaimDueReminders stamps reminder_sent_at on scheduled appointments
	// starting before windowEnd that have no reminder yet, and returns the
	// stamped rows. Safe to call from multiple instances.
	ClaimDueReminders(ctx context.Context, windowEnd time.Time, limit int) ([]domain.Appointment, error)
}
