package service_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/pdf"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

type pdfRenderWorkerFixture struct {
	worker       *service.PDFRenderWorker
	jobRepo      *mocks.MockPDFJobRepo
	reportRepo   *mocks.MockReportRepo
	offerRepo    *mocks.MockOfferRepo
	customerRepo *mocks.MockCustomerRepo
	buildingRepo *mocks.MockBuildingRepo
	branchRepo   *mocks.MockBranchRepo
	userRepo     *mocks.MockUserRepo
	renderer     *mocks.MockPDFRenderer
	storage      *mocks.MockObjectStorage
}

func setupPDFRenderWorker(t *testing.T, cfg config.PDFConfig) *pdfRenderWorkerFixture {
	t.Helper()
	templates, err := pdf.NewTemplateEngine()
	require.NoError(t, err)

	f := &pdfRenderWorkerFixture{
		jobRepo:      new(mocks.MockPDFJobRepo),
		reportRepo:   new(mocks.MockReportRepo),
		offerRepo:    new(mocks.MockOfferRepo),
		customerRepo: new(mocks.MockCustomerRepo),
		buildingRepo: new(mocks.MockBuildingRepo),
		branchRepo:   new(mocks.MockBranchRepo),
		userRepo:     new(mocks.MockUserRepo),
		renderer:     new(mocks.MockPDFRenderer),
		storage:      new(mocks.MockObjectStorage),
	}
	f.worker = service.NewPDFRenderWorker(
		f.jobRepo, f.reportRepo, f.offerRepo, f.customerRepo, f.buildingRepo,
		f.branchRepo, f.userRepo, f.renderer, templates, f.storage,
		cfg, config.S3Config{PresignExpiry: 900}, zap.NewNop(),
	)
	return f
}

func testPDFConfig() config.PDFConfig {
	return config.PDFConfig{PollIntervalSecs: 1, RenderTimeoutSec: 5, MaxRetries: 2, Concurrency: 1}
}

// claimOnce hands one job to the loop and nothing after it.
func (f *pdfRenderWorkerFixture) claimOnce(job *domain.PDFJob) {
	f.jobRepo.On("ClaimNext", mock.Anything).Return(job, nil).Once()
	f.jobRepo.On("ClaimNext", mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
}

func TestPDFRenderWorker_RendersOfferJob(t *testing.T) {
	f := setupPDFRenderWorker(t, testPDFConfig())
	branchID := uuid.New()
	offer := draftOffer(branchID)
	offer.Recalculate()
	customer := branchCustomer(branchID)
	offer.CustomerID = customer.ID
	job := &domain.PDFJob{
		ID:         uuid.New(),
		BranchID:   branchID,
		EntityType: domain.PDFEntityOffer,
		EntityID:   offer.ID,
		Status:     domain.PDFJobStatusRendering,
		Attempts:   1,
	}
	pdfBytes := []byte("%PDF-1.7 offer")

	f.claimOnce(job)
	f.offerRepo.On("GetByID", mock.Anything, offer.ID).Return(offer, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", AddressLine: "Industriveien 8",
		PostalCode: "0581", City: "Oslo", OrgNumber: "987 654 321", IsActive: true,
	}, nil)
	f.renderer.On("RenderHTML", mock.Anything, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, offer.Title) && strings.Contains(html, "Taklaget Oslo")
	})).Return(pdfBytes, nil)

	expectedKey := fmt.Sprintf("branches/%s/pdf/offers/%s/%s.pdf", branchID, offer.ID, job.ID)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Key == expectedKey &&
			in.ContentType == "application/pdf" &&
			in.Size == int64(len(pdfBytes))
	})).Return(&port.UploadOutput{}, nil)

	done := make(chan struct{})
	f.jobRepo.On("MarkDone", mock.Anything, job.ID, expectedKey).
		Run(func(mock.Arguments) { close(done) }).Return(nil)

	stop := runWorker(f.worker.Start)
	awaitSignal(t, done, "offer render")
	stop()

	f.renderer.AssertExpectations(t)
	f.storage.AssertExpectations(t)
	f.jobRepo.AssertExpectations(t)
}

func TestPDFRenderWorker_RendersReportJobWithPresignedPhotos(t *testing.T) {
	f := setupPDFRenderWorker(t, testPDFConfig())
	branchID := uuid.New()
	customer := branchCustomer(branchID)
	building := customerBuilding(branchID, customer.ID)
	report := draftReport(branchID)
	report.CustomerID = customer.ID
	report.BuildingID = building.ID
	job := &domain.PDFJob{
		ID:         uuid.New(),
		BranchID:   branchID,
		EntityType: domain.PDFEntityReport,
		EntityID:   report.ID,
		Status:     domain.PDFJobStatusRendering,
		Attempts:   1,
	}

	f.claimOnce(job)
	f.reportRepo.On("GetByID", mock.Anything, report.ID).Return(report, nil)
	f.reportRepo.On("ListFindings", mock.Anything, report.ID).Return([]domain.ReportFinding{
		{Position: 1, Component: "Taktekking", Severity: domain.SeverityHigh, Description: "Sprekker i membran"},
	}, nil)
	f.reportRepo.On("ListPhotos", mock.Anything, report.ID).Return([]domain.ReportPhoto{
		{S3Key: "branches/b/reports/r/photos/p.jpg", Caption: "Sluk"},
	}, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.buildingRepo.On("GetByID", mock.Anything, building.ID).Return(building, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.userRepo.On("GetByID", mock.Anything, report.InspectorID).Return(&domain.User{
		ID: report.InspectorID, FullName: "Ola Takmontør", IsActive: true,
	}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "branches/b/reports/r/photos/p.jpg", int64(900)).
		Return("https://s3.example/photo.jpg", nil)
	f.renderer.On("RenderHTML", mock.Anything, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, report.Title) &&
			strings.Contains(html, "Sprekker i membran") &&
			strings.Contains(html, "https://s3.example/photo.jpg")
	})).Return([]byte("%PDF-1.7 report"), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)

	done := make(chan struct{})
	f.jobRepo.On("MarkDone", mock.Anything, job.ID, mock.MatchedBy(func(key string) bool {
		return strings.Contains(key, "/pdf/reports/")
	})).Run(func(mock.Arguments) { close(done) }).Return(nil)

	stop := runWorker(f.worker.Start)
	awaitSignal(t, done, "report render")
	stop()

	f.renderer.AssertExpectations(t)
}

func TestPDFRenderWorker_FailedRenderRequeuesWhileRetriesRemain(t *testing.T) {
	f := setupPDFRenderWorker(t, testPDFConfig())
	branchID := uuid.New()
	offer := draftOffer(branchID)
	customer := branchCustomer(branchID)
	offer.CustomerID = customer.ID
	job := &domain.PDFJob{
		ID:         uuid.New(),
		BranchID:   branchID,
		EntityType: domain.PDFEntityOffer,
		EntityID:   offer.ID,
		Status:     domain.PDFJobStatusRendering,
		Attempts:   1,
	}

	f.claimOnce(job)
	f.offerRepo.On("GetByID", mock.Anything, offer.ID).Return(offer, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.renderer.On("RenderHTML", mock.Anything, mock.Anything).
		Return(nil, errors.New("chromium exited with status 1"))

	failed := make(chan struct{})
	f.jobRepo.On("MarkFailed", mock.Anything, job.ID, "chromium exited with status 1", true).
		Run(func(mock.Arguments) { close(failed) }).Return(nil)

	stop := runWorker(f.worker.Start)
	awaitSignal(t, failed, "requeue after failed render")
	stop()

	f.jobRepo.AssertExpectations(t)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestPDFRenderWorker_ExhaustedRetriesNotRequeued(t *testing.T) {
	f := setupPDFRenderWorker(t, testPDFConfig())
	branchID := uuid.New()
	offer := draftOffer(branchID)
	customer := branchCustomer(branchID)
	offer.CustomerID = customer.ID
	job := &domain.PDFJob{
		ID:         uuid.New(),
		BranchID:   branchID,
		EntityType: domain.PDFEntityOffer,
		EntityID:   offer.ID,
		Status:     domain.PDFJobStatusRendering,
		Attempts:   2,
	}

	f.claimOnce(job)
	f.offerRepo.On("GetByID", mock.Anything, offer.ID).Return(offer, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.renderer.On("RenderHTML", mock.Anything, mock.Anything).
		Return(nil, errors.New("chromium exited with status 1"))

	failed := make(chan struct{})
	f.jobRepo.On("MarkFailed", mock.Anything, job.ID, mock.AnythingOfType("string"), false).
		Run(func(mock.Arguments) { close(failed) }).Return(nil)

	stop := runWorker(f.worker.Start)
	awaitSignal(t, failed, "terminal failure")
	stop()

	f.jobRepo.AssertExpectations(t)
}
