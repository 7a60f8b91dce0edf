package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

type appointmentRepo struct {
	db *sqlx.DB
}

// NewAppointmentRepo creates a new PostgreSQL-backed AppointmentRepository.
func NewAppointmentRepo(db *sqlx.DB) port.AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	appt.ID = uuid.New()
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	query := `INSERT INTO appointments (
		id, branch_id, customer_id, building_id, report_id, agreement_id,
		inspector_id, type, status, starts_at, ends_at, time_zone, notes,
		cancel_reason, created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17
	)`
	_, err := r.db.ExecContext(ctx, query,
		appt.ID, appt.BranchID, appt.CustomerID, appt.BuildingID,
		appt.ReportID, appt.AgreementID, appt.InspectorID,
		appt.Type, appt.Status, appt.StartsAt, appt.EndsAt, appt.TimeZone,
		appt.Notes, appt.CancelReason, appt.CreatedBy,
		appt.CreatedAt, appt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointmentRepo.Create: %w", err)
	}
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	var appt domain.Appointment
	err := r.db.GetContext(ctx, &appt, "SELECT * FROM appointments WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("appointmentRepo.GetByID: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AppointmentFilters) ([]domain.Appointment, int, error) {
	args := []interface{}{branchID}
	where := "WHERE branch_id = $1"
	argN := 2

	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, filters.Status)
		argN++
	}
	if filters.InspectorID != uuid.Nil {
		where += fmt.Sprintf(" AND inspector_id = $%d", argN)
		args = append(args, filters.InspectorID)
		argN++
	}
	if filters.CustomerID != uuid.Nil {
		where += fmt.Sprintf(" AND customer_id = $%d", argN)
		args = append(args, filters.CustomerID)
		argN++
	}
	if filters.From != nil {
		where += fmt.Sprintf(" AND starts_at >= $%d", argN)
		args = append(args, *filters.From)
		argN++
	}
	if filters.To != nil {
		where += fmt.Sprintf(" AND starts_at < $%d", argN)
		args = append(args, *filters.To)
		argN++
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM appointments "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("appointmentRepo.ListByBranch count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM appointments %s ORDER BY starts_at ASC LIMIT $%d OFFSET $%d",
		where, argN, argN+1)
	args = append(args, filters.Limit, filters.Offset)

	var appts []domain.Appointment
	err = r.db.SelectContext(ctx, &appts, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("appointmentRepo.ListByBranch: %w", err)
	}
	return appts, total, nil
}

func (r *appointmentRepo) ListBlockingForInspector(ctx context.Context, inspectorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	query := `SELECT * FROM appointments
		WHERE inspector_id = $1
		  AND status NOT IN ($2, $3)
		  AND starts_at < $4 AND ends_at > $5
		ORDER BY starts_at ASC`
	err := r.db.SelectContext(ctx, &appts, query,
		inspectorID, domain.AppointmentStatusCancelled, domain.AppointmentStatusNoShow, to, from)
	if err != nil {
		return nil, fmt.Errorf("appointmentRepo.ListBlockingForInspector: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()

	query := `UPDATE appointments SET
		customer_id = $1, building_id = $2, report_id = $3, inspector_id = $4,
		type = $5, status = $6, starts_at = $7, ends_at = $8, time_zone = $9,
		notes = $10, cancel_reason = $11, reminder_sent_at = $12,
		cancelled_at = $13, completed_at = $14, updated_at = $15
	WHERE id = $16`
	result, err := r.db.ExecContext(ctx, query,
		appt.CustomerID, appt.BuildingID, appt.ReportID, appt.InspectorID,
		appt.Type, appt.Status, appt.StartsAt, appt.EndsAt, appt.TimeZone,
		appt.Notes, appt.CancelReason, appt.ReminderSentAt,
		appt.CancelledAt, appt.CompletedAt, appt.UpdatedAt, appt.ID)
	if err != nil {
		return fmt.Errorf("appointmentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimDueReminders uses SKIP LOCKED so concurrent workers never stamp the
// same appointment twice.
func (r *appointmentRepo) ClaimDueReminders(ctx context.Context, windowEnd time.Time, limit int) ([]domain.Appointment, error) {
	query := `UPDATE appointments SET reminder_sent_at = $1, updated_at = $1
		WHERE id IN (
			SELECT id FROM appointments
			WHERE status = $2
			  AND reminder_sent_at IS NULL
			  AND starts_at > $1
			  AND starts_at <= $3
			ORDER BY starts_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var appts []domain.Appointment
	err := r.db.SelectContext(ctx, &appts, query,
		time.Now().UTC(), domain.AppointmentStatusScheduled, windowEnd, limit)
	if err != nil {
		return nil, fmt.Errorf("appointmentRepo.ClaimDueReminders: %w", err)
	}
	return appts, nil
}
