package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

type portalServiceFixture struct {
	svc          service.PortalService
	offerRepo    *mocks.MockOfferRepo
	reportRepo   *mocks.MockReportRepo
	customerRepo *mocks.MockCustomerRepo
	buildingRepo *mocks.MockBuildingRepo
	branchRepo   *mocks.MockBranchRepo
	pdfJobRepo   *mocks.MockPDFJobRepo
	storage      *mocks.MockObjectStorage
	emails       *mocks.MockEmailSender
}

func setupPortalService() *portalServiceFixture {
	f := &portalServiceFixture{
		offerRepo:    new(mocks.MockOfferRepo),
		reportRepo:   new(mocks.MockReportRepo),
		customerRepo: new(mocks.MockCustomerRepo),
		buildingRepo: new(mocks.MockBuildingRepo),
		branchRepo:   new(mocks.MockBranchRepo),
		pdfJobRepo:   new(mocks.MockPDFJobRepo),
		storage:      new(mocks.MockObjectStorage),
		emails:       new(mocks.MockEmailSender),
	}
	f.svc = service.NewPortalService(
		f.offerRepo, f.reportRepo, f.customerRepo, f.buildingRepo, f.branchRepo,
		f.pdfJobRepo, f.storage, f.emails, testAuditor(),
		config.S3Config{PresignExpiry: 900},
		zap.NewNop(),
	)
	return f
}

const portalToken = "4f1c9b0d73aa4e21b0de6c2a8f5e9310"

func pendingPortalOffer(branchID uuid.UUID) *domain.Offer {
	offer := draftOffer(branchID)
	offer.Status = domain.OfferStatusPending
	token := portalToken
	offer.PublicToken = &token
	offer.Recalculate()
	return offer
}

func sentPortalReport(branchID uuid.UUID) *domain.Report {
	report := draftReport(branchID)
	report.Status = domain.ReportStatusSent
	token := portalToken
	report.ShareToken = &token
	return report
}

// --- Offers ---

func TestPortalService_GetOffer_BuildsCustomerView(t *testing.T) {
	f := setupPortalService()
	branchID := uuid.New()
	offer := pendingPortalOffer(branchID)
	customer := branchCustomer(branchID)
	offer.CustomerID = customer.ID

	f.offerRepo.On("GetByPublicToken", mock.Anything, portalToken).Return(offer, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", Email: "oslo@taklaget.no", City: "Oslo", IsActive: true,
	}, nil)

	view, err := f.svc.GetOffer(context.Background(), portalToken)

	assert.NoError(t, err)
	assert.Equal(t, offer.Title, view.Title)
	assert.Equal(t, customer.Name, view.CustomerName)
	assert.Equal(t, "Taklaget Oslo", view.Branch.Name)
	assert.Len(t, view.Lines, len(offer.Lines))
	assert.True(t, view.Total.Equal(offer.Total))
}

func TestPortalService_GetOffer_UnknownTokenInvalid(t *testing.T) {
	f := setupPortalService()

	f.offerRepo.On("GetByPublicToken", mock.Anything, "deadbeef").Return(nil, domain.ErrNotFound)

	_, err := f.svc.GetOffer(context.Background(), "deadbeef")

	assert.ErrorIs(t, err, domain.ErrPublicLinkInvalid)
}

func TestPortalService_GetOffer_DecidedOfferInvisible(t *testing.T) {
	f := setupPortalService()
	branchID := uuid.New()
	offer := pendingPortalOffer(branchID)
	offer.Status = domain.OfferStatusAccepted

	f.offerRepo.On("GetByPublicToken", mock.Anything, portalToken).Return(offer, nil)

	_, err := f.svc.GetOffer(context.Background(), portalToken)

	// Decided offers and unknown tokens read identically from outside.
	assert.ErrorIs(t, err, domain.ErrPublicLinkInvalid)
}

func TestPortalService_GetOffer_EmptyToken(t *testing.T) {
	f := setupPortalService()

	_, err := f.svc.GetOffer(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrPublicLinkInvalid)
	f.offerRepo.AssertNotCalled(t, "GetByPublicToken", mock.Anything, mock.Anything)
}

func TestPortalService_AcceptOffer_NotifiesBranch(t *testing.T) {
	f := setupPortalService()
	branchID := uuid.New()
	offer := pendingPortalOffer(branchID)
	customer := branchCustomer(branchID)
	offer.CustomerID = customer.ID

	f.offerRepo.On("GetByPublicToken", mock.Anything, portalToken).Return(offer, nil)
	f.offerRepo.On("Decide", mock.Anything, offer.ID, domain.OfferStatusAccepted, "", mock.Anything).Return(nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", Email: "oslo@taklaget.no", IsActive: true,
	}, nil)
	f.emails.On("SendOfferDecidedEmail", mock.Anything, "oslo@taklaget.no", offer.Title, "accepted", "").Return(nil)

	err := f.svc.AcceptOffer(context.Background(), portalToken)

	assert.NoError(t, err)
	f.offerRepo.AssertExpectations(t)
	f.emails.AssertExpectations(t)
}

func TestPortalService_DeclineOffer_PassesReason(t *testing.T) {
	f := setupPortalService()
	branchID := uuid.New()
	offer := pendingPortalOffer(branchID)
	customer := branchCustomer(branchID)
	offer.CustomerID = customer.ID

	f.offerRepo.On("GetByPublicToken", mock.Anything, portalToken).Return(offer, nil)
	f.offerRepo.On("Decide", mock.Anything, offer.ID, domain.OfferStatusDeclined, "Venter til våren", mock.Anything).Return(nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", Email: "oslo@taklaget.no", IsActive: true,
	}, nil)
	f.emails.On("SendOfferDecidedEmail", mock.Anything, "oslo@taklaget.no", offer.Title, "declined", "Venter til våren").Return(nil)

	err := f.svc.DeclineOffer(context.Background(), portalToken, "Venter til våren")

	assert.NoError(t, err)
	f.emails.AssertExpectations(t)
}

func TestPortalService_AcceptOffer_ConcurrentDecisionReadsAsDeadLink(t *testing.T) {
	f := setupPortalService()
	branchID := uuid.New()
	offer := pendingPortalOffer(branchID)

	f.offerRepo.On("GetByPublicToken", mock.Anything, portalToken).Return(offer, nil)
	f.offerRepo.On("Decide", mock.Anything, offer.ID, domain.OfferStatusAccepted, "", mock.Anything).
		Return(domain.ErrOfferNotPending)

	err := f.svc.AcceptOffer(context.Background(), portalToken)

	assert.ErrorIs(t, err, domain.ErrPublicLinkInvalid)
	f.emails.AssertNotCalled(t, "SendOfferDecidedEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Reports ---

func TestPortalService_GetReport_BuildsCustomerView(t *testing.T) {
	f := setupPortalService()
	branchID := uuid.New()
	report := sentPortalReport(branchID)
	customer := branchCustomer(branchID)
	building := customerBuilding(branchID, customer.ID)
	report.CustomerID = customer.ID
	report.BuildingID = building.ID

	f.reportRepo.On("GetByShareToken", mock.Anything, portalToken).Return(report, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.buildingRepo.On("GetByID", mock.Anything, building.ID).Return(building, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.reportRepo.On("ListFindings", mock.Anything, report.ID).Return([]domain.ReportFinding{
		{Position: 1, Component: "Taktekking", Severity: domain.SeverityHigh, Description: "Sprekker i membran"},
	}, nil)
	f.reportRepo.On("ListPhotos", mock.Anything, report.ID).Return([]domain.ReportPhoto{
		{S3Key: "branches/b/reports/r/photos/p.jpg", Caption: "Sluk"},
	}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "branches/b/reports/r/photos/p.jpg", int64(900)).
		Return("https://s3/presigned-photo", nil)

	view, err := f.svc.GetReport(context.Background(), portalToken)

	assert.NoError(t, err)
	assert.Equal(t, report.Title, view.Title)
	assert.Equal(t, building.AddressLine, view.BuildingAddress)
	assert.Len(t, view.Findings, 1)
	assert.Equal(t, "high", view.Findings[0].Severity)
	assert.Len(t, view.Photos, 1)
	assert.Equal(t, "https://s3/presigned-photo", view.Photos[0].URL)
}

func TestPortalService_GetReport_DraftInvisible(t *testing.T) {
	f := setupPortalService()
	report := draftReport(uuid.New())
	token := portalToken
	report.ShareToken = &token

	f.reportRepo.On("GetByShareToken", mock.Anything, portalToken).Return(report, nil)

	_, err := f.svc.GetReport(context.Background(), portalToken)

	assert.ErrorIs(t, err, domain.ErrPublicLinkInvalid)
}

func TestPortalService_GetReport_ArchivedInvisible(t *testing.T) {
	f := setupPortalService()
	report := sentPortalReport(uuid.New())
	report.Status = domain.ReportStatusArchived

	f.reportRepo.On("GetByShareToken", mock.Anything, portalToken).Return(report, nil)

	_, err := f.svc.GetReport(context.Background(), portalToken)

	assert.ErrorIs(t, err, domain.ErrPublicLinkInvalid)
}

// --- Report PDF ---

func TestPortalService_GetReportPDFURL_PresignsLatestRender(t *testing.T) {
	f := setupPortalService()
	branchID := uuid.New()
	report := sentPortalReport(branchID)
	done := &domain.PDFJob{
		ID:         uuid.New(),
		BranchID:   branchID,
		EntityType: domain.PDFEntityReport,
		EntityID:   report.ID,
		Status:     domain.PDFJobStatusDone,
		S3Key:      "branches/b/reports/r/report.pdf",
	}

	f.reportRepo.On("GetByShareToken", mock.Anything, portalToken).Return(report, nil)
	f.pdfJobRepo.On("FindLatestDone", mock.Anything, domain.PDFEntityReport, report.ID).Return(done, nil)
	f.storage.On("GetPresignedURL", mock.Anything, done.S3Key, int64(900)).
		Return("https://s3/presigned-pdf", nil)

	url, err := f.svc.GetReportPDFURL(context.Background(), portalToken)

	assert.NoError(t, err)
	assert.Equal(t, "https://s3/presigned-pdf", url)
}

func TestPortalService_GetReportPDFURL_NoRenderYet(t *testing.T) {
	f := setupPortalService()
	report := sentPortalReport(uuid.New())

	f.reportRepo.On("GetByShareToken", mock.Anything, portalToken).Return(report, nil)
	f.pdfJobRepo.On("FindLatestDone", mock.Anything, domain.PDFEntityReport, report.ID).
		Return(nil, domain.ErrNotFound)

	_, err := f.svc.GetReportPDFURL(context.Background(), portalToken)

	assert.ErrorIs(t, err, domain.ErrPDFJobNotReady)
	f.storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything)
}

// An offer token must never resolve a report and vice versa; the two token
// namespaces live in different columns, so a cross lookup is just a miss.
func TestPortalService_CrossTokenNamespacesDoNotLeak(t *testing.T) {
	f := setupPortalService()

	f.reportRepo.On("GetByShareToken", mock.Anything, portalToken).Return(nil, domain.ErrNotFound)

	_, err := f.svc.GetReport(context.Background(), portalToken)

	assert.ErrorIs(t, err, domain.ErrPublicLinkInvalid)
}
