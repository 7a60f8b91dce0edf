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

type agreementRepo struct {
	db *sqlx.DB
}

// NewAgreementRepo creates a new PostgreSQL-backed AgreementRepository.
func NewAgreementRepo(db *sqlx.DB) port.AgreementRepository {
	return &agreementRepo{db: db}
}

func (r *agreementRepo) Create(ctx context.Context, agreement *domain.ServiceAgreement) error {
	agreement.ID = uuid.New()
	now := time.Now().UTC()
	agreement.CreatedAt = now
	agreement.UpdatedAt = now

	query := `INSERT INTO service_agreements (
		id, branch_id, customer_id, building_id, title, description, status,
		interval_months, price_per_visit, currency, start_date, next_due_on,
		last_visit_on, created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15, $16
	)`
	_, err := r.db.ExecContext(ctx, query,
		agreement.ID, agreement.BranchID, agreement.CustomerID, agreement.BuildingID,
		agreement.Title, agreement.Description, agreement.Status,
		agreement.IntervalMonths, agreement.PricePerVisit, agreement.Currency,
		agreement.StartDate, agreement.NextDueOn, agreement.LastVisitOn,
		agreement.CreatedBy, agreement.CreatedAt, agreement.UpdatedAt)
	if err != nil {
		return fmt.Errorf("agreementRepo.Create: %w", err)
	}
	return nil
}

func (r *agreementRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceAgreement, error) {
	var agreement domain.ServiceAgreement
	err := r.db.GetContext(ctx, &agreement, "SELECT * FROM service_agreements WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("agreementRepo.GetByID: %w", err)
	}
	return &agreement, nil
}

func (r *agreementRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AgreementFilters) ([]domain.ServiceAgreement, int, error) {
	args := []interface{}{branchID}
	where := "WHERE branch_id = $1"
	argN := 2

	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, filters.Status)
		argN++
	}
	if filters.CustomerID != uuid.Nil {
		where += fmt.Sprintf(" AND customer_id = $%d", argN)
		args = append(args, filters.CustomerID)
		argN++
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM service_agreements "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("agreementRepo.ListByBranch count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM service_agreements %s ORDER BY next_due_on ASC LIMIT $%d OFFSET $%d",
		where, argN, argN+1)
	args = append(args, filters.Limit, filters.Offset)

	var agreements []domain.ServiceAgreement
	err = r.db.SelectContext(ctx, &agreements, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("agreementRepo.ListByBranch: %w", err)
	}
	return agreements, total, nil
}

func (r *agreementRepo) ListDue(ctx context.Context, asOf time.Time, limit int) ([]domain.ServiceAgreement, error) {
	var agreements []domain.ServiceAgreement
	query := `SELECT * FROM service_agreements
		WHERE status = $1 AND next_due_on <= $2
		ORDER BY next_due_on ASC
		LIMIT $3`
	err := r.db.SelectContext(ctx, &agreements, query, domain.AgreementStatusActive, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("agreementRepo.ListDue: %w", err)
	}
	return agreements, nil
}

func (r *agreementRepo) Update(ctx context.Context, agreement *domain.ServiceAgreement) error {
	agreement.UpdatedAt = time.Now().UTC()

	query := `UPDATE service_agreements SET
		title = $1, description = $2, status = $3, interval_months = $4,
		price_per_visit = $5, currency = $6, next_due_on = $7,
		last_visit_on = $8, terminated_at = $9, updated_at = $10
	WHERE id = $11`
	result, err := r.db.ExecContext(ctx, query,
		agreement.Title, agreement.Description, agreement.Status,
		agreement.IntervalMonths, agreement.PricePerVisit, agreement.Currency,
		agreement.NextDueOn, agreement.LastVisitOn, agreement.TerminatedAt,
		agreement.UpdatedAt, agreement.ID)
	if err != nil {
		return fmt.Errorf("agreementRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *agreementRepo) HasOpenGeneratedVisit(ctx context.Context, agreementID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
		SELECT 1 FROM appointments
		WHERE agreement_id = $1 AND status = $2
	)`
	err := r.db.GetContext(ctx, &exists, query, agreementID, domain.AppointmentStatusScheduled)
	if err != nil {
		return false, fmt.Errorf("agreementRepo.HasOpenGeneratedVisit: %w", err)
	}
	return exists, nil
}
