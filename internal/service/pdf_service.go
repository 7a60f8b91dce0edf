package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// PDFService queues document renders and exposes finished downloads.
// Enqueueing is idempotent per entity: while a job is queued or rendering,
// repeated requests return that job instead of adding another.
type PDFService interface {
	EnqueueReport(ctx context.Context, actor authz.Principal, reportID uuid.UUID) (*domain.PDFJob, error)
	EnqueueOffer(ctx context.Context, actor authz.Principal, offerID uuid.UUID) (*domain.PDFJob, error)
	GetJob(ctx context.Context, actor authz.Principal, jobID uuid.UUID) (*domain.PDFJob, error)
	// DownloadURL returns a presigned link for a finished job, or
	// ErrPDFJobNotReady while it is still in the queue.
	DownloadURL(ctx context.Context, actor authz.Principal, jobID uuid.UUID) (string, error)
}

type pdfService struct {
	jobRepo    port.PDFJobRepository
	reportRepo port.ReportRepository
	offerRepo  port.OfferRepository
	storage    port.ObjectStorage
	s3Cfg      config.S3Config
}

// NewPDFService creates a new PDFService implementation.
func NewPDFService(
	jobRepo port.PDFJobRepository,
	reportRepo port.ReportRepository,
	offerRepo port.OfferRepository,
	storage port.ObjectStorage,
	s3Cfg config.S3Config,
) PDFService {
	return &pdfService{
		jobRepo:    jobRepo,
		reportRepo: reportRepo,
		offerRepo:  offerRepo,
		storage:    storage,
		s3Cfg:      s3Cfg,
	}
}

func (s *pdfService) EnqueueReport(ctx context.Context, actor authz.Principal, reportID uuid.UUID) (*domain.PDFJob, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, report.BranchID) {
		return nil, domain.ErrForbidden
	}
	return s.enqueue(ctx, actor, report.BranchID, domain.PDFEntityReport, report.ID)
}

func (s *pdfService) EnqueueOffer(ctx context.Context, actor authz.Principal, offerID uuid.UUID) (*domain.PDFJob, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, offer.BranchID) {
		return nil, domain.ErrForbidden
	}
	return s.enqueue(ctx, actor, offer.BranchID, domain.PDFEntityOffer, offer.ID)
}

func (s *pdfService) enqueue(ctx context.Context, actor authz.Principal, branchID uuid.UUID, entityType domain.PDFEntityType, entityID uuid.UUID) (*domain.PDFJob, error) {
	existing, err := s.jobRepo.FindOpen(ctx, entityType, entityID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	job := &domain.PDFJob{
		BranchID:    branchID,
		EntityType:  entityType,
		EntityID:    entityID,
		RequestedBy: actor.UserID,
	}
	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *pdfService) GetJob(ctx context.Context, actor authz.Principal, jobID uuid.UUID) (*domain.PDFJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, job.BranchID) {
		return nil, domain.ErrForbidden
	}
	return job, nil
}

func (s *pdfService) DownloadURL(ctx context.Context, actor authz.Principal, jobID uuid.UUID) (string, error) {
	job, err := s.GetJob(ctx, actor, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != domain.PDFJobStatusDone || job.S3Key == "" {
		return "", domain.ErrPDFJobNotReady
	}
	return s.storage.GetPresignedURL(ctx, job.S3Key, s.s3Cfg.PresignExpiry)
}
