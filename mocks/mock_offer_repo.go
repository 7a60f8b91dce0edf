package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// MockOfferRepo is a mock implementation of port.OfferRepository.
type MockOfferRepo struct {
	mock.Mock
}

func (m *MockOfferRepo) Create(ctx context.Context, offer *domain.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferRepo) GetByPublicToken(ctx context.Context, token string) (*domain.Offer, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.OfferFilters) ([]domain.Offer, int, error) {
	args := m.Called(ctx, branchID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Offer), args.Int(1), args.Error(2)
}

func (m *MockOfferRepo) Update(ctx context.Context, offer *domain.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepo) MarkSent(ctx context.Context, offerID uuid.UUID, publicToken string, sentAt time.Time) error {
	args := m.Called(ctx, offerID, publicToken, sentAt)
	return args.Error(0)
}

func (m *MockOfferRepo) Decide(ctx context.Context, offerID uuid.UUID, status domain.OfferStatus, declineReason string, decidedAt time.Time) error {
	args := m.Called(ctx, offerID, status, declineReason, decidedAt)
	return args.Error(0)
}

func (m *MockOfferRepo) Archive(ctx context.Context, offerID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, offerID, at)
	return args.Error(0)
}
