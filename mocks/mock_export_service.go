package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/export"
)

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ReportsRegister(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.ReportFilters) (*export.Workbook, string, error) {
	args := m.Called(ctx, actor, branchID, filters)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*export.Workbook), args.String(1), args.Error(2)
}

func (m *MockExportService) OffersRegister(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.OfferFilters) (*export.Workbook, string, error) {
	args := m.Called(ctx, actor, branchID, filters)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*export.Workbook), args.String(1), args.Error(2)
}
