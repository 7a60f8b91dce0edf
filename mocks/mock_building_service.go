package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockBuildingService is a mock implementation of service.BuildingService.
type MockBuildingService struct {
	mock.Mock
}

func (m *MockBuildingService) Create(ctx context.Context, actor authz.Principal, input service.CreateBuildingInput) (*domain.Building, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Building), args.Error(1)
}

func (m *MockBuildingService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Building, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Building), args.Error(1)
}

func (m *MockBuildingService) ListByCustomer(ctx context.Context, actor authz.Principal, customerID uuid.UUID) ([]domain.Building, error) {
	args := m.Called(ctx, actor, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Building), args.Error(1)
}

func (m *MockBuildingService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.UpdateBuildingInput) (*domain.Building, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Building), args.Error(1)
}

func (m *MockBuildingService) Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
