package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

type auditRepo struct {
	db *sqlx.DB
}

// NewAuditRepo creates a new PostgreSQL-backed AuditRepository.
func NewAuditRepo(db *sqlx.DB) port.AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	entry.ID = uuid.New()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO audit_entries (
		id, branch_id, actor_id, actor_email, action, entity_type, entity_id,
		metadata, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.BranchID, entry.ActorID, entry.ActorEmail,
		entry.Action, entry.EntityType, entry.EntityID,
		entry.Metadata, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("auditRepo.Insert: %w", err)
	}
	return nil
}

func (r *auditRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AuditFilters) ([]domain.AuditEntry, int, error) {
	args := []interface{}{branchID}
	where := "WHERE branch_id = $1"
	argN := 2

	if filters.EntityType != "" {
		where += fmt.Sprintf(" AND entity_type = $%d", argN)
		args = append(args, filters.EntityType)
		argN++
	}
	if filters.Action != "" {
		where += fmt.Sprintf(" AND action = $%d", argN)
		args = append(args, filters.Action)
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
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM audit_entries "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.ListByBranch count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM audit_entries %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, argN, argN+1)
	args = append(args, filters.Limit, filters.Offset)

	var entries []domain.AuditEntry
	err = r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.ListByBranch: %w", err)
	}
	return entries, total, nil
}
