package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockBranchService is a mock implementation of service.BranchService.
type MockBranchService struct {
	mock.Mock
}

func (m *MockBranchService) Create(ctx context.Context, actor authz.Principal, input service.CreateBranchInput) (*domain.Branch, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Branch, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchService) List(ctx context.Context, actor authz.Principal) ([]domain.Branch, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Branch), args.Error(1)
}

func (m *MockBranchService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.UpdateBranchInput) (*domain.Branch, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchService) SetActive(ctx context.Context, actor authz.Principal, id uuid.UUID, active bool) error {
	args := m.Called(ctx, actor, id, active)
	return args.Error(0)
}
