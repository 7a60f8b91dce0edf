package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockCustomerService is a mock implementation of service.CustomerService.
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input service.CreateCustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, actor, branchID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error) {
	args := m.Called(ctx, actor, branchID, search, offset, limit)
	return args.Get(0).([]domain.Customer), args.Int(1), args.Error(2)
}

func (m *MockCustomerService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.UpdateCustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
