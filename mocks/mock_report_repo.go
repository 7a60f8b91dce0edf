package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// MockReportRepo is a mock implementation of port.ReportRepository.
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) Create(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportRepo) GetByShareToken(ctx context.Context, token string) (*domain.Report, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.ReportFilters) ([]domain.Report, int, error) {
	args := m.Called(ctx, branchID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Report), args.Int(1), args.Error(2)
}

func (m *MockReportRepo) Update(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepo) UpdateStatus(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepo) SetShareToken(ctx context.Context, reportID uuid.UUID, token string) error {
	args := m.Called(ctx, reportID, token)
	return args.Error(0)
}

func (m *MockReportRepo) AddFinding(ctx context.Context, finding *domain.ReportFinding) error {
	args := m.Called(ctx, finding)
	return args.Error(0)
}

func (m *MockReportRepo) UpdateFinding(ctx context.Context, finding *domain.ReportFinding) error {
	args := m.Called(ctx, finding)
	return args.Error(0)
}

func (m *MockReportRepo) DeleteFinding(ctx context.Context, reportID, findingID uuid.UUID) error {
	args := m.Called(ctx, reportID, findingID)
	return args.Error(0)
}

func (m *MockReportRepo) ListFindings(ctx context.Context, reportID uuid.UUID) ([]domain.ReportFinding, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportFinding), args.Error(1)
}

func (m *MockReportRepo) AddPhoto(ctx context.Context, photo *domain.ReportPhoto) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockReportRepo) GetPhoto(ctx context.Context, reportID, photoID uuid.UUID) (*domain.ReportPhoto, error) {
	args := m.Called(ctx, reportID, photoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportPhoto), args.Error(1)
}

func (m *MockReportRepo) DeletePhoto(ctx context.Context, reportID, photoID uuid.UUID) error {
	args := m.Called(ctx, reportID, photoID)
	return args.Error(0)
}

func (m *MockReportRepo) ListPhotos(ctx context.Context, reportID uuid.UUID) ([]domain.ReportPhoto, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportPhoto), args.Error(1)
}
