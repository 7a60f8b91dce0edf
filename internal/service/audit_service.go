package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// AuditService exposes the audit trail to branch admins. Writes go through
// the dispatcher, never through this service.
type AuditService interface {
	List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AuditFilters) ([]domain.AuditEntry, int, error)
}

type auditService struct {
	repo port.AuditRepository
}

// NewAuditService creates a new AuditService implementation.
func NewAuditService(repo port.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AuditFilters) ([]domain.AuditEntry, int, error) {
	resolved, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.CanReadAudit(actor, resolved) {
		return nil, 0, domain.ErrForbidden
	}
	return s.repo.ListByBranch(ctx, resolved, filters)
}
