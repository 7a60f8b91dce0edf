package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// MockPDFJobRepo is a mock implementation of port.PDFJobRepository.
type MockPDFJobRepo struct {
	mock.Mock
}

func (m *MockPDFJobRepo) Enqueue(ctx context.Context, job *domain.PDFJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockPDFJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PDFJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PDFJob), args.Error(1)
}

func (m *MockPDFJobRepo) FindOpen(ctx context.Context, entityType domain.PDFEntityType, entityID uuid.UUID) (*domain.PDFJob, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PDFJob), args.Error(1)
}

func (m *MockPDFJobRepo) FindLatestDone(ctx context.Context, entityType domain.PDFEntityType, entityID uuid.UUID) (*domain.PDFJob, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PDFJob), args.Error(1)
}

func (m *MockPDFJobRepo) ClaimNext(ctx context.Context) (*domain.PDFJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PDFJob), args.Error(1)
}

func (m *MockPDFJobRepo) MarkDone(ctx context.Context, jobID uuid.UUID, s3Key string) error {
	args := m.Called(ctx, jobID, s3Key)
	return args.Error(0)
}

func (m *MockPDFJobRepo) MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string, requeue bool) error {
	args := m.Called(ctx, jobID, errMsg, requeue)
	return args.Error(0)
}
