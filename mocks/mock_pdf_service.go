package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// MockPDFService is a mock implementation of service.PDFService.
type MockPDFService struct {
	mock.Mock
}

func (m *MockPDFService) EnqueueReport(ctx context.Context, actor authz.Principal, reportID uuid.UUID) (*domain.PDFJob, error) {
	args := m.Called(ctx, actor, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PDFJob), args.Error(1)
}

func (m *MockPDFService) EnqueueOffer(ctx context.Context, actor authz.Principal, offerID uuid.UUID) (*domain.PDFJob, error) {
	args := m.Called(ctx, actor, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PDFJob), args.Error(1)
}

func (m *MockPDFService) GetJob(ctx context.Context, actor authz.Principal, jobID uuid.UUID) (*domain.PDFJob, error) {
	args := m.Called(ctx, actor, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PDFJob), args.Error(1)
}

func (m *MockPDFService) DownloadURL(ctx context.Context, actor authz.Principal, jobID uuid.UUID) (string, error) {
	args := m.Called(ctx, actor, jobID)
	return args.String(0), args.Error(1)
}
