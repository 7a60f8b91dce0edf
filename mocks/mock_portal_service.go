package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockPortalService is a mock implementation of service.PortalService.
type MockPortalService struct {
	mock.Mock
}

func (m *MockPortalService) GetOffer(ctx context.Context, token string) (*service.PortalOfferView, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PortalOfferView), args.Error(1)
}

func (m *MockPortalService) AcceptOffer(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockPortalService) DeclineOffer(ctx context.Context, token, reason string) error {
	args := m.Called(ctx, token, reason)
	return args.Error(0)
}

func (m *MockPortalService) GetReport(ctx context.Context, token string) (*service.PortalReportView, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PortalReportView), args.Error(1)
}

func (m *MockPortalService) GetReportPDFURL(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
