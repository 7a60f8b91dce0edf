package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockOfferService is a mock implementation of service.OfferService.
type MockOfferService struct {
	mock.Mock
}

func (m *MockOfferService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input service.CreateOfferInput) (*domain.Offer, error) {
	args := m.Called(ctx, actor, branchID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.OfferFilters) ([]domain.Offer, int, error) {
	args := m.Called(ctx, actor, branchID, filters)
	return args.Get(0).([]domain.Offer), args.Int(1), args.Error(2)
}

func (m *MockOfferService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.UpdateOfferInput) (*domain.Offer, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferService) Send(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferService) Accept(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferService) Decline(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.DeclineOfferInput) (*domain.Offer, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferService) Archive(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}
