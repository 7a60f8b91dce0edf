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

type pdfJobRepo struct {
	db *sqlx.DB
}

// NewPDFJobRepo creates a new PostgreSQL-backed PDFJobRepository.
func NewPDFJobRepo(db *sqlx.DB) port.PDFJobRepository {
	return &pdfJobRepo{db: db}
}

func (r *pdfJobRepo) Enqueue(ctx context.Context, job *domain.PDFJob) error {
	job.ID = uuid.New()
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.Status = domain.PDFJobStatusQueued

	query := `INSERT INTO pdf_jobs (
		id, branch_id, entity_type, entity_id, status, attempts,
		requested_by, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.BranchID, job.EntityType, job.EntityID,
		job.Status, job.Attempts, job.RequestedBy,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pdfJobRepo.Enqueue: %w", err)
	}
	return nil
}

func (r *pdfJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PDFJob, error) {
	var job domain.PDFJob
	err := r.db.GetContext(ctx, &job, "SELECT * FROM pdf_jobs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("pdfJobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *pdfJobRepo) FindOpen(ctx context.Context, entityType domain.PDFEntityType, entityID uuid.UUID) (*domain.PDFJob, error) {
	var job domain.PDFJob
	query := `SELECT * FROM pdf_jobs
		WHERE entity_type = $1 AND entity_id = $2 AND status IN ($3, $4)
		ORDER BY created_at DESC
		LIMIT 1`
	err := r.db.GetContext(ctx, &job, query,
		entityType, entityID, domain.PDFJobStatusQueued, domain.PDFJobStatusRendering)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("pdfJobRepo.FindOpen: %w", err)
	}
	return &job, nil
}

func (r *pdfJobRepo) FindLatestDone(ctx context.Context, entityType domain.PDFEntityType, entityID uuid.UUID) (*domain.PDFJob, error) {
	var job domain.PDFJob
	query := `SELECT * FROM pdf_jobs
		WHERE entity_type = $1 AND entity_id = $2 AND status = $3
		ORDER BY completed_at DESC
		LIMIT 1`
	err := r.db.GetContext(ctx, &job, query,
		entityType, entityID, domain.PDFJobStatusDone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("pdfJobRepo.FindLatestDone: %w", err)
	}
	return &job, nil
}

// ClaimNext uses SKIP LOCKED so concurrent workers each claim a distinct job.
func (r *pdfJobRepo) ClaimNext(ctx context.Context) (*domain.PDFJob, error) {
	query := `UPDATE pdf_jobs
		SET status = $1, attempts = attempts + 1, claimed_at = $2, updated_at = $2
		WHERE id = (
			SELECT id FROM pdf_jobs
			WHERE status = $3
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var job domain.PDFJob
	err := r.db.GetContext(ctx, &job, query,
		domain.PDFJobStatusRendering, time.Now().UTC(), domain.PDFJobStatusQueued)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("pdfJobRepo.ClaimNext: %w", err)
	}
	return &job, nil
}

func (r *pdfJobRepo) MarkDone(ctx context.Context, jobID uuid.UUID, s3Key string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE pdf_jobs SET status = $1, s3_key = $2, error_message = '',
			completed_at = $3, updated_at = $3
		 WHERE id = $4`,
		domain.PDFJobStatusDone, s3Key, now, jobID)
	if err != nil {
		return fmt.Errorf("pdfJobRepo.MarkDone: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pdfJobRepo) MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string, requeue bool) error {
	status := domain.PDFJobStatusFailed
	if requeue {
		status = domain.PDFJobStatusQueued
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE pdf_jobs SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
		status, errMsg, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("pdfJobRepo.MarkFailed: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
