package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockAgreementService is a mock implementation of service.AgreementService.
type MockAgreementService struct {
	mock.Mock
}

func (m *MockAgreementService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input service.CreateAgreementInput) (*domain.ServiceAgreement, error) {
	args := m.Called(ctx, actor, branchID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AgreementFilters) ([]domain.ServiceAgreement, int, error) {
	args := m.Called(ctx, actor, branchID, filters)
	return args.Get(0).([]domain.ServiceAgreement), args.Int(1), args.Error(2)
}

func (m *MockAgreementService) ListDue(ctx context.Context, actor authz.Principal, horizonDays int) ([]domain.ServiceAgreement, error) {
	args := m.Called(ctx, actor, horizonDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.UpdateAgreementInput) (*domain.ServiceAgreement, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementService) Pause(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementService) Resume(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementService) Terminate(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceAgreement), args.Error(1)
}

func (m *MockAgreementService) GenerateVisit(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAgreementService) GenerateDueVisits(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}
