package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// AuditRepository defines the contract for audit trail persistence.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AuditFilters) ([]domain.AuditEntry, int, error)
}
