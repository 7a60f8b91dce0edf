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

type offerRepo struct {
	db *sqlx.DB
}

// NewOfferRepo creates a new PostgreSQL-backed OfferRepository.
func NewOfferRepo(db *sqlx.DB) port.OfferRepository {
	return &offerRepo{db: db}
}

func (r *offerRepo) Create(ctx context.Context, offer *domain.Offer) error {
	offer.ID = uuid.New()
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("offerRepo.Create begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO offers (
		id, branch_id, customer_id, report_id, title, intro_text, currency,
		vat_rate, subtotal, vat_amount, total, valid_until, status,
		decline_reason, created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17
	)`
	_, err = tx.ExecContext(ctx, query,
		offer.ID, offer.BranchID, offer.CustomerID, offer.ReportID,
		offer.Title, offer.IntroText, offer.Currency,
		offer.VATRate, offer.Subtotal, offer.VATAmount, offer.Total,
		offer.ValidUntil, offer.Status, offer.DeclineReason,
		offer.CreatedBy, offer.CreatedAt, offer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("offerRepo.Create: %w", err)
	}

	if err := insertLines(ctx, tx, offer); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("offerRepo.Create commit: %w", err)
	}
	return nil
}

func insertLines(ctx context.Context, tx *sqlx.Tx, offer *domain.Offer) error {
	query := `INSERT INTO offer_lines (
		id, offer_id, branch_id, position, description, quantity, unit,
		unit_price, discount_pct, line_total, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now().UTC()
	for i := range offer.Lines {
		line := &offer.Lines[i]
		line.ID = uuid.New()
		line.OfferID = offer.ID
		line.BranchID = offer.BranchID
		line.Position = i
		line.CreatedAt = now

		_, err := tx.ExecContext(ctx, query,
			line.ID, line.OfferID, line.BranchID, line.Position,
			line.Description, line.Quantity, line.Unit,
			line.UnitPrice, line.DiscountPct, line.LineTotal, line.CreatedAt)
		if err != nil {
			return fmt.Errorf("offerRepo insert line %d: %w", i, err)
		}
	}
	return nil
}

func (r *offerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	var offer domain.Offer
	err := r.db.GetContext(ctx, &offer, "SELECT * FROM offers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("offerRepo.GetByID: %w", err)
	}
	if err := r.loadLines(ctx, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepo) GetByPublicToken(ctx context.Context, token string) (*domain.Offer, error) {
	var offer domain.Offer
	err := r.db.GetContext(ctx, &offer, "SELECT * FROM offers WHERE public_token = $1", token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("offerRepo.GetByPublicToken: %w", err)
	}
	if err := r.loadLines(ctx, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepo) loadLines(ctx context.Context, offer *domain.Offer) error {
	err := r.db.SelectContext(ctx, &offer.Lines,
		"SELECT * FROM offer_lines WHERE offer_id = $1 ORDER BY position ASC", offer.ID)
	if err != nil {
		return fmt.Errorf("offerRepo.loadLines: %w", err)
	}
	return nil
}

func (r *offerRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.OfferFilters) ([]domain.Offer, int, error) {
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
	if filters.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, *filters.From)
		argN++
	}
	if filters.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argN)
		args = append(args, *filters.To)
		argN++
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM offers "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("offerRepo.ListByBranch count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM offers %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, argN, argN+1)
	args = append(args, filters.Limit, filters.Offset)

	var offers []domain.Offer
	err = r.db.SelectContext(ctx, &offers, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("offerRepo.ListByBranch: %w", err)
	}
	return offers, total, nil
}

// Update rewrites the offer row and replaces its lines in one transaction.
func (r *offerRepo) Update(ctx context.Context, offer *domain.Offer) error {
	offer.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("offerRepo.Update begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `UPDATE offers SET
		title = $1, intro_text = $2, currency = $3, vat_rate = $4,
		subtotal = $5, vat_amount = $6, total = $7, valid_until = $8,
		customer_id = $9, report_id = $10, updated_at = $11
	WHERE id = $12`
	result, err := tx.ExecContext(ctx, query,
		offer.Title, offer.IntroText, offer.Currency, offer.VATRate,
		offer.Subtotal, offer.VATAmount, offer.Total, offer.ValidUntil,
		offer.CustomerID, offer.ReportID, offer.UpdatedAt, offer.ID)
	if err != nil {
		return fmt.Errorf("offerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM offer_lines WHERE offer_id = $1", offer.ID); err != nil {
		return fmt.Errorf("offerRepo.Update clear lines: %w", err)
	}
	if err := insertLines(ctx, tx, offer); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("offerRepo.Update commit: %w", err)
	}
	return nil
}

func (r *offerRepo) MarkSent(ctx context.Context, offerID uuid.UUID, publicToken string, sentAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE offers SET status = $1, public_token = $2, sent_at = $3, updated_at = $4
		 WHERE id = $5 AND status = $6`,
		domain.OfferStatusPending, publicToken, sentAt, time.Now().UTC(),
		offerID, domain.OfferStatusDraft)
	if err != nil {
		return fmt.Errorf("offerRepo.MarkSent: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvalidStatusChange
	}
	return nil
}

// Decide finalizes a pending offer. The status guard in the WHERE clause
// makes concurrent portal decisions race-safe: only one wins.
func (r *offerRepo) Decide(ctx context.Context, offerID uuid.UUID, status domain.OfferStatus, declineReason string, decidedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE offers SET status = $1, decline_reason = $2, decided_at = $3, updated_at = $4
		 WHERE id = $5 AND status = $6`,
		status, declineReason, decidedAt, time.Now().UTC(),
		offerID, domain.OfferStatusPending)
	if err != nil {
		return fmt.Errorf("offerRepo.Decide: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrOfferNotPending
	}
	return nil
}

func (r *offerRepo) Archive(ctx context.Context, offerID uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE offers SET status = $1, archived_at = $2, updated_at = $3 WHERE id = $4`,
		domain.OfferStatusArchived, at, time.Now().UTC(), offerID)
	if err != nil {
		return fmt.Errorf("offerRepo.Archive: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
