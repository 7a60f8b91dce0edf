package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input service.CreateReportInput) (*domain.Report, error) {
	args := m.Called(ctx, actor, branchID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.ReportFilters) ([]domain.Report, int, error) {
	args := m.Called(ctx, actor, branchID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Report), args.Int(1), args.Error(2)
}

func (m *MockReportService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.UpdateReportInput) (*domain.Report, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) AddFinding(ctx context.Context, actor authz.Principal, reportID uuid.UUID, input service.FindingInput) (*domain.ReportFinding, error) {
	args := m.Called(ctx, actor, reportID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportFinding), args.Error(1)
}

func (m *MockReportService) UpdateFinding(ctx context.Context, actor authz.Principal, reportID, findingID uuid.UUID, input service.FindingInput) (*domain.ReportFinding, error) {
	args := m.Called(ctx, actor, reportID, findingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportFinding), args.Error(1)
}

func (m *MockReportService) DeleteFinding(ctx context.Context, actor authz.Principal, reportID, findingID uuid.UUID) error {
	args := m.Called(ctx, actor, reportID, findingID)
	return args.Error(0)
}

func (m *MockReportService) UploadPhoto(ctx context.Context, actor authz.Principal, input service.PhotoUploadInput) (*domain.ReportPhoto, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportPhoto), args.Error(1)
}

func (m *MockReportService) DeletePhoto(ctx context.Context, actor authz.Principal, reportID, photoID uuid.UUID) error {
	args := m.Called(ctx, actor, reportID, photoID)
	return args.Error(0)
}

func (m *MockReportService) GetPhotoURL(ctx context.Context, actor authz.Principal, reportID, photoID uuid.UUID) (string, error) {
	args := m.Called(ctx, actor, reportID, photoID)
	return args.String(0), args.Error(1)
}

func (m *MockReportService) Complete(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) Send(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) Archive(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}
