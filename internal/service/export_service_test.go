package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/export"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

type exportServiceFixture struct {
	svc          service.ExportService
	reportRepo   *mocks.MockReportRepo
	offerRepo    *mocks.MockOfferRepo
	customerRepo *mocks.MockCustomerRepo
	buildingRepo *mocks.MockBuildingRepo
	userRepo     *mocks.MockUserRepo
	branchRepo   *mocks.MockBranchRepo
}

func setupExportService() *exportServiceFixture {
	f := &exportServiceFixture{
		reportRepo:   new(mocks.MockReportRepo),
		offerRepo:    new(mocks.MockOfferRepo),
		customerRepo: new(mocks.MockCustomerRepo),
		buildingRepo: new(mocks.MockBuildingRepo),
		userRepo:     new(mocks.MockUserRepo),
		branchRepo:   new(mocks.MockBranchRepo),
	}
	f.svc = service.NewExportService(
		f.reportRepo, f.offerRepo, f.customerRepo, f.buildingRepo, f.userRepo, f.branchRepo,
		testAuditor(), zap.NewNop(),
	)
	return f
}

// allowNameLookups lets id-to-name resolution miss without failing a test
// that does not assert on names.
func (f *exportServiceFixture) allowNameLookups() {
	f.customerRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
	f.buildingRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
	f.userRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
}

// openWorkbook round-trips the workbook through its xlsx bytes so cell
// assertions run against what a spreadsheet would actually open.
func openWorkbook(t *testing.T, wb *export.Workbook) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	_, err := wb.WriteTo(&buf)
	require.NoError(t, err)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
		_ = wb.Close()
	})
	return f
}

func TestExportService_ReportsRegister_BranchAdminExportsOwnBranch(t *testing.T) {
	f := setupExportService()
	branchID := uuid.New()
	actor := branchAdminActor(branchID)
	customer := branchCustomer(branchID)

	first := *draftReport(branchID)
	second := *draftReport(branchID)
	first.CustomerID = customer.ID
	second.CustomerID = customer.ID

	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", Slug: "taklaget-oslo", IsActive: true,
	}, nil)
	f.reportRepo.On("ListByBranch", mock.Anything, branchID, mock.Anything).
		Return([]domain.Report{first, second}, 2, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil).Once()
	f.buildingRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
	f.userRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound).Maybe()

	wb, filename, err := f.svc.ReportsRegister(context.Background(), actor, uuid.Nil, domain.ReportFilters{})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "reports_taklaget-oslo_"), filename)
	assert.True(t, strings.HasSuffix(filename, ".xlsx"), filename)

	xl := openWorkbook(t, wb)
	branchCell, _ := xl.GetCellValue(export.ReportsSheet, "A2")
	assert.Equal(t, "Taklaget Oslo", branchCell)
	customerCell, _ := xl.GetCellValue(export.ReportsSheet, "D2")
	assert.Equal(t, customer.Name, customerCell)
	repeatCell, _ := xl.GetCellValue(export.ReportsSheet, "D3")
	assert.Equal(t, customer.Name, repeatCell)
	// Both rows reference the same customer; the cache fetches it once.
	f.customerRepo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestExportService_ReportsRegister_PaginatesThroughAllPages(t *testing.T) {
	f := setupExportService()
	branchID := uuid.New()
	f.allowNameLookups()

	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", Slug: "taklaget-oslo", IsActive: true,
	}, nil)
	f.reportRepo.On("ListByBranch", mock.Anything, branchID, mock.MatchedBy(func(fl domain.ReportFilters) bool {
		return fl.Offset == 0 && fl.Limit == 500
	})).Return([]domain.Report{*draftReport(branchID), *draftReport(branchID)}, 3, nil)
	f.reportRepo.On("ListByBranch", mock.Anything, branchID, mock.MatchedBy(func(fl domain.ReportFilters) bool {
		return fl.Offset == 2
	})).Return([]domain.Report{*draftReport(branchID)}, 3, nil)

	wb, _, err := f.svc.ReportsRegister(context.Background(), branchAdminActor(branchID), uuid.Nil, domain.ReportFilters{})

	require.NoError(t, err)
	xl := openWorkbook(t, wb)
	thirdRowTitle, _ := xl.GetCellValue(export.ReportsSheet, "B4")
	assert.Equal(t, "Takinspeksjon Solhøydveien 12", thirdRowTitle)
	f.reportRepo.AssertExpectations(t)
}

func TestExportService_ReportsRegister_InspectorForbidden(t *testing.T) {
	f := setupExportService()
	branchID := uuid.New()

	_, _, err := f.svc.ReportsRegister(context.Background(), inspectorActor(branchID), uuid.Nil, domain.ReportFilters{})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.branchRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestExportService_ReportsRegister_ForeignBranchForbidden(t *testing.T) {
	f := setupExportService()

	_, _, err := f.svc.ReportsRegister(context.Background(), branchAdminActor(uuid.New()), uuid.New(), domain.ReportFilters{})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.reportRepo.AssertNotCalled(t, "ListByBranch", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportService_ReportsRegister_SuperadminSweepsAllBranches(t *testing.T) {
	f := setupExportService()
	f.allowNameLookups()
	oslo := domain.Branch{ID: uuid.New(), Name: "Taklaget Oslo", Slug: "taklaget-oslo", IsActive: true}
	bergen := domain.Branch{ID: uuid.New(), Name: "Taklaget Bergen", Slug: "taklaget-bergen", IsActive: true}

	f.branchRepo.On("List", mock.Anything, 0, mock.AnythingOfType("int")).
		Return([]domain.Branch{oslo, bergen}, 2, nil)
	f.reportRepo.On("ListByBranch", mock.Anything, oslo.ID, mock.Anything).
		Return([]domain.Report{*draftReport(oslo.ID)}, 1, nil)
	f.reportRepo.On("ListByBranch", mock.Anything, bergen.ID, mock.Anything).
		Return([]domain.Report{*draftReport(bergen.ID)}, 1, nil)

	wb, filename, err := f.svc.ReportsRegister(context.Background(), superadminActor(), uuid.Nil, domain.ReportFilters{})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "reports_all_branches_"), filename)

	xl := openWorkbook(t, wb)
	firstBranch, _ := xl.GetCellValue(export.ReportsSheet, "A2")
	secondBranch, _ := xl.GetCellValue(export.ReportsSheet, "A3")
	assert.Equal(t, "Taklaget Oslo", firstBranch)
	assert.Equal(t, "Taklaget Bergen", secondBranch)
}

func TestExportService_ReportsRegister_NameLookupFailureLeavesCellEmpty(t *testing.T) {
	f := setupExportService()
	branchID := uuid.New()
	f.allowNameLookups()

	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", Slug: "taklaget-oslo", IsActive: true,
	}, nil)
	f.reportRepo.On("ListByBranch", mock.Anything, branchID, mock.Anything).
		Return([]domain.Report{*draftReport(branchID)}, 1, nil)

	wb, _, err := f.svc.ReportsRegister(context.Background(), branchAdminActor(branchID), uuid.Nil, domain.ReportFilters{})

	require.NoError(t, err)
	xl := openWorkbook(t, wb)
	customerCell, _ := xl.GetCellValue(export.ReportsSheet, "D2")
	assert.Empty(t, customerCell)
}

func TestExportService_OffersRegister_WritesMoneyCells(t *testing.T) {
	f := setupExportService()
	branchID := uuid.New()
	f.allowNameLookups()

	offer := draftOffer(branchID)
	offer.Recalculate()

	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", Slug: "taklaget-oslo", IsActive: true,
	}, nil)
	f.offerRepo.On("ListByBranch", mock.Anything, branchID, mock.Anything).
		Return([]domain.Offer{*offer}, 1, nil)

	wb, filename, err := f.svc.OffersRegister(context.Background(), branchAdminActor(branchID), uuid.Nil, domain.OfferFilters{})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "offers_taklaget-oslo_"), filename)

	xl := openWorkbook(t, wb)
	subtotal, _ := xl.GetCellValue(export.OffersSheet, "F2")
	assert.Equal(t, "51600.00", subtotal)
	vat, _ := xl.GetCellValue(export.OffersSheet, "G2")
	assert.Equal(t, "12900.00", vat)
	total, _ := xl.GetCellValue(export.OffersSheet, "H2")
	assert.Equal(t, "64500.00", total)
}

func TestExportService_OffersRegister_SuperadminNamesOneBranch(t *testing.T) {
	f := setupExportService()
	branchID := uuid.New()
	f.allowNameLookups()

	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Bergen", Slug: "taklaget-bergen", IsActive: true,
	}, nil)
	f.offerRepo.On("ListByBranch", mock.Anything, branchID, mock.Anything).
		Return([]domain.Offer{}, 0, nil)

	_, filename, err := f.svc.OffersRegister(context.Background(), superadminActor(), branchID, domain.OfferFilters{})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "offers_taklaget-bergen_"), filename)
	f.branchRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}
