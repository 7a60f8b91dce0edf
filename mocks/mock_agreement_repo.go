package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// MockAgreementRepo is a mock implementation of port.AgreementRepository.
type MockAgreementRepo struct {
	mock.Mock
}

func (m *MockAgreementRepo) Create(ctx context.Context, agreement *domain.ServiceAgreement) error {
	args := m.Called(ctx, agreement)
	return args.Error(0)
}

func (m *MockAgreementRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceAgreement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AgreementFilters) ([]domain.ServiceAgreement, int, error) {
	args := m.Called(ctx, branchID, filters)
	return args.Get(0).([]domain.ServiceAgreement), args.Int(1), args.Error(2)
}

func (m *MockAgreementRepo) ListDue(ctx context.Context, asOf time.Time, limit int) ([]domain.ServiceAgreement, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementRepo) Update(ctx context.Context, agreement *domain.ServiceAgreement) error {
	args := m.Called(ctx, agreement)
	return args.Error(0)
}

func (m *MockAgreementRepo) HasOpenGeneratedVisit(ctx context.Context, agreementID uuid.UUID) (bool, error) {
	args := m.Called(ctx, agreementID)
	return args.Bool(0), args.Error(1)
}
