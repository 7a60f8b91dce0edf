package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// MockAuditService is a mock implementation of service.AuditService.
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AuditFilters) ([]domain.AuditEntry, int, error) {
	args := m.Called(ctx, actor, branchID, filters)
	return args.Get(0).([]domain.AuditEntry), args.Int(1), args.Error(2)
}
