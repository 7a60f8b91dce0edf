package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

type branchRepo struct {
	db *sqlx.DB
}

// NewBranchRepo creates a new PostgreSQL-backed BranchRepository.
func NewBranchRepo(db *sqlx.DB) port.BranchRepository {
	return &branchRepo{db: db}
}

func (r *branchRepo) Create(ctx context.Context, branch *domain.Branch) error {
	branch.ID = uuid.New()
	now := time.Now().UTC()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	query := `INSERT INTO branches (
		id, name, slug, org_number, email, phone,
		address_line, postal_code, city, country,
		is_active, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12, $13
	)`

	_, err := r.db.ExecContext(ctx, query,
		branch.ID, branch.Name, branch.Slug, branch.OrgNumber, branch.Email, branch.Phone,
		branch.AddressLine, branch.PostalCode, branch.City, branch.Country,
		branch.IsActive, branch.CreatedAt, branch.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "slug") {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("branchRepo.Create: %w", err)
	}
	return nil
}

func (r *branchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.db.GetContext(ctx, &branch, "SELECT * FROM branches WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("branchRepo.GetByID: %w", err)
	}
	return &branch, nil
}

func (r *branchRepo) GetBySlug(ctx context.Context, slug string) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.db.GetContext(ctx, &branch, "SELECT * FROM branches WHERE slug = $1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("branchRepo.GetBySlug: %w", err)
	}
	return &branch, nil
}

func (r *branchRepo) List(ctx context.Context, offset, limit int) ([]domain.Branch, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM branches")
	if err != nil {
		return nil, 0, fmt.Errorf("branchRepo.List count: %w", err)
	}

	var branches []domain.Branch
	err = r.db.SelectContext(ctx, &branches,
		"SELECT * FROM branches ORDER BY name ASC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("branchRepo.List: %w", err)
	}
	return branches, total, nil
}

func (r *branchRepo) Update(ctx context.Context, branch *domain.Branch) error {
	branch.UpdatedAt = time.Now().UTC()
	query := `UPDATE branches SET
		name = $1, slug = $2, org_number = $3, email = $4, phone = $5,
		address_line = $6, postal_code = $7, city = $8, country = $9,
		is_active = $10, updated_at = $11
	WHERE id = $12`
	result, err := r.db.ExecContext(ctx, query,
		branch.Name, branch.Slug, branch.OrgNumber, branch.Email, branch.Phone,
		branch.AddressLine, branch.PostalCode, branch.City, branch.Country,
		branch.IsActive, branch.UpdatedAt, branch.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "slug") {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("branchRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *branchRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE branches SET is_active = $1, updated_at = $2 WHERE id = $3",
		active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("branchRepo.SetActive: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
