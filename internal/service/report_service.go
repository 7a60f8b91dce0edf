package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// CreateReportInput is the DTO for creating a draft report.
type CreateReportInput struct {
	CustomerID   uuid.UUID  `json:"customer_id" binding:"required"`
	BuildingID   uuid.UUID  `json:"building_id" binding:"required"`
	InspectorID  *uuid.UUID `json:"inspector_id"`
	Title        string     `json:"title" binding:"required"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// UpdateReportInput is the DTO for updating a draft report's metadata.
type UpdateReportInput struct {
	Title              *string    `json:"title"`
	Summary            *string    `json:"summary"`
	WeatherConditions  *string    `json:"weather_conditions"`
	RoofConditionGrade *int       `json:"roof_condition_grade"`
	ScheduledFor       *time.Time `json:"scheduled_for"`
	InspectedAt        *time.Time `json:"inspected_at"`
	InspectorID        *uuid.UUID `json:"inspector_id"`
}

// FindingInput is the DTO for adding or updating a finding.
type FindingInput struct {
	Position       int                    `json:"position"`
	Component      string                 `json:"component" binding:"required"`
	Severity       domain.FindingSeverity `json:"severity" binding:"required"`
	Description    string                 `json:"description" binding:"required"`
	Recommendation string                 `json:"recommendation"`
}

// PhotoUploadInput carries a multipart photo upload.
type PhotoUploadInput struct {
	ReportID  uuid.UUID
	FindingID *uuid.UUID
	Caption   string
	File      multipart.File
	Header    *multipart.FileHeader
}

// ReportService defines the inspection report contract. Content edits are
// only allowed while the report is a draft; Complete freezes it.
type ReportService interface {
	Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateReportInput) (*domain.Report, error)
	GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.ReportFilters) ([]domain.Report, int, error)
	Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateReportInput) (*domain.Report, error)

	AddFinding(ctx context.Context, actor authz.Principal, reportID uuid.UUID, input FindingInput) (*domain.ReportFinding, error)
	UpdateFinding(ctx context.Context, actor authz.Principal, reportID, findingID uuid.UUID, input FindingInput) (*domain.ReportFinding, error)
	DeleteFinding(ctx context.Context, actor authz.Principal, reportID, findingID uuid.UUID) error

	UploadPhoto(ctx context.Context, actor authz.Principal, input PhotoUploadInput) (*domain.ReportPhoto, error)
	DeletePhoto(ctx context.Context, actor authz.Principal, reportID, photoID uuid.UUID) error
	GetPhotoURL(ctx context.Context, actor authz.Principal, reportID, photoID uuid.UUID) (string, error)

	Complete(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error)
	// Send moves completed -> sent, mints the share token if absent and
	// emails the customer a portal link.
	Send(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error)
	Archive(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error)
}

type reportService struct {
	repo         port.ReportRepository
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	branchRepo   port.BranchRepository
	storage      port.ObjectStorage
	emailSender  port.EmailSender
	auditor      *audit.Dispatcher
	s3Cfg        config.S3Config
	portalCfg    config.PortalConfig
	logger       *zap.Logger
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	repo port.ReportRepository,
	customerRepo port.CustomerRepository,
	buildingRepo port.BuildingRepository,
	branchRepo port.BranchRepository,
	storage port.ObjectStorage,
	emailSender port.EmailSender,
	auditor *audit.Dispatcher,
	s3Cfg config.S3Config,
	portalCfg config.PortalConfig,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		repo:         repo,
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		branchRepo:   branchRepo,
		storage:      storage,
		emailSender:  emailSender,
		auditor:      auditor,
		s3Cfg:        s3Cfg,
		portalCfg:    portalCfg,
		logger:       logger,
	}
}

// newShareToken returns an opaque 32-hex-char token for public links.
func newShareToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *reportService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateReportInput) (*domain.Report, error) {
	branch, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.BranchID != branch {
		return nil, domain.ErrForbidden
	}
	building, err := s.buildingRepo.GetByID(ctx, input.BuildingID)
	if err != nil {
		return nil, err
	}
	if building.CustomerID != customer.ID {
		return nil, domain.ErrBuildingMismatch
	}

	inspector := actor.UserID
	if input.InspectorID != nil {
		inspector = *input.InspectorID
	}

	report := &domain.Report{
		BranchID:     branch,
		CustomerID:   customer.ID,
		BuildingID:   building.ID,
		InspectorID:  inspector,
		Title:        input.Title,
		Status:       domain.ReportStatusDraft,
		ScheduledFor: input.ScheduledFor,
		CreatedBy:    actor.UserID,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &report.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "report",
		EntityID:   report.ID,
		Metadata:   map[string]any{"title": report.Title},
	})
	return report, nil
}

func (s *reportService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, report.BranchID) {
		return nil, domain.ErrForbidden
	}
	if err := s.loadChildren(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) loadChildren(ctx context.Context, report *domain.Report) error {
	findings, err := s.repo.ListFindings(ctx, report.ID)
	if err != nil {
		return err
	}
	photos, err := s.repo.ListPhotos(ctx, report.ID)
	if err != nil {
		return err
	}
	report.Findings = findings
	report.Photos = photos
	return nil
}

func (s *reportService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.ReportFilters) ([]domain.Report, int, error) {
	branch, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByBranch(ctx, branch, filters)
}

// editable loads a report and checks both the branch rule and that the
// report is still a draft.
func (s *reportService) editable(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, report.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !report.Editable() {
		return nil, domain.ErrReportNotEditable
	}
	return report, nil
}

func (s *reportService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateReportInput) (*domain.Report, error) {
	report, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		report.Title = *input.Title
	}
	if input.Summary != nil {
		report.Summary = *input.Summary
	}
	if input.WeatherConditions != nil {
		report.WeatherConditions = *input.WeatherConditions
	}
	if input.RoofConditionGrade != nil {
		if *input.RoofConditionGrade < 1 || *input.RoofConditionGrade > 5 {
			return nil, domain.ErrValidation
		}
		report.RoofConditionGrade = input.RoofConditionGrade
	}
	if input.ScheduledFor != nil {
		report.ScheduledFor = input.ScheduledFor
	}
	if input.InspectedAt != nil {
		report.InspectedAt = input.InspectedAt
	}
	if input.InspectorID != nil {
		report.InspectorID = *input.InspectorID
	}

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &report.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "report",
		EntityID:   report.ID,
	})
	return report, nil
}

func (s *reportService) AddFinding(ctx context.Context, actor authz.Principal, reportID uuid.UUID, input FindingInput) (*domain.ReportFinding, error) {
	report, err := s.editable(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidSeverities[input.Severity] {
		return nil, domain.ErrValidation
	}

	finding := &domain.ReportFinding{
		ReportID:       report.ID,
		BranchID:       report.BranchID,
		Position:       input.Position,
		Component:      input.Component,
		Severity:       input.Severity,
		Description:    input.Description,
		Recommendation: input.Recommendation,
	}
	if err := s.repo.AddFinding(ctx, finding); err != nil {
		return nil, err
	}
	return finding, nil
}

func (s *reportService) UpdateFinding(ctx context.Context, actor authz.Principal, reportID, findingID uuid.UUID, input FindingInput) (*domain.ReportFinding, error) {
	report, err := s.editable(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidSeverities[input.Severity] {
		return nil, domain.ErrValidation
	}

	finding := &domain.ReportFinding{
		ID:             findingID,
		ReportID:       report.ID,
		BranchID:       report.BranchID,
		Position:       input.Position,
		Component:      input.Component,
		Severity:       input.Severity,
		Description:    input.Description,
		Recommendation: input.Recommendation,
	}
	if err := s.repo.UpdateFinding(ctx, finding); err != nil {
		return nil, err
	}
	return finding, nil
}

func (s *reportService) DeleteFinding(ctx context.Context, actor authz.Principal, reportID, findingID uuid.UUID) error {
	if _, err := s.editable(ctx, actor, reportID); err != nil {
		return err
	}
	return s.repo.DeleteFinding(ctx, reportID, findingID)
}

func (s *reportService) UploadPhoto(ctx context.Context, actor authz.Principal, input PhotoUploadInput) (*domain.ReportPhoto, error) {
	report, err := s.editable(ctx, actor, input.ReportID)
	if err != nil {
		return nil, err
	}

	maxBytes := s.s3Cfg.MaxPhotoSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrPhotoTooLarge
	}

	// The client-declared content type is not trusted; sniff the bytes.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading photo header: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])
	ext, ok := domain.AllowedPhotoTypes[contentType]
	if !ok {
		return nil, domain.ErrUnsupportedPhotoType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding photo stream: %w", err)
	}

	photoID := uuid.New()
	s3Key := fmt.Sprintf("branches/%s/reports/%s/photos/%s.%s",
		report.BranchID, report.ID, photoID, ext)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Key:         s3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		s.logger.Error("photo upload failed",
			zap.String("report_id", report.ID.String()), zap.Error(err))
		return nil, domain.ErrUploadFailed
	}

	photo := &domain.ReportPhoto{
		ID:          photoID,
		ReportID:    report.ID,
		FindingID:   input.FindingID,
		BranchID:    report.BranchID,
		S3Key:       s3Key,
		ContentType: contentType,
		FileSize:    input.Header.Size,
		Caption:     input.Caption,
		UploadedBy:  actor.UserID,
	}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		// The metadata row failed, so the object must not linger.
		if delErr := s.storage.Delete(ctx, s3Key); delErr != nil {
			s.logger.Warn("orphaned photo object left in storage",
				zap.String("key", s3Key), zap.Error(delErr))
		}
		return nil, err
	}
	return photo, nil
}

func (s *reportService) DeletePhoto(ctx context.Context, actor authz.Principal, reportID, photoID uuid.UUID) error {
	report, err := s.editable(ctx, actor, reportID)
	if err != nil {
		return err
	}
	photo, err := s.repo.GetPhoto(ctx, report.ID, photoID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, photo.S3Key); err != nil {
		return fmt.Errorf("deleting photo from storage: %w", err)
	}
	return s.repo.DeletePhoto(ctx, report.ID, photoID)
}

func (s *reportService) GetPhotoURL(ctx context.Context, actor authz.Principal, reportID, photoID uuid.UUID) (string, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return "", err
	}
	if !authz.CanReadBranchDoc(actor, report.BranchID) {
		return "", domain.ErrForbidden
	}
	photo, err := s.repo.GetPhoto(ctx, report.ID, photoID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, photo.S3Key, s.s3Cfg.PresignExpiry)
}

func (s *reportService) Complete(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, report.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !report.CanTransition(domain.ReportStatusCompleted) {
		return nil, domain.ErrInvalidStatusChange
	}

	findings, err := s.repo.ListFindings(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Findings = findings
	if !report.Completable() {
		return nil, domain.ErrReportIncomplete
	}

	now := time.Now().UTC()
	report.Status = domain.ReportStatusCompleted
	report.CompletedAt = &now
	if report.InspectedAt == nil {
		report.InspectedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, report); err != nil {
		return nil, err
	}

	s.recordStatusChange(actor, report)
	return report, nil
}

func (s *reportService) Send(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, report.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !report.CanTransition(domain.ReportStatusSent) {
		return nil, domain.ErrInvalidStatusChange
	}

	customer, err := s.customerRepo.GetByID(ctx, report.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Email == "" {
		return nil, domain.ErrCustomerNoEmail
	}
	branch, err := s.branchRepo.GetByID(ctx, report.BranchID)
	if err != nil {
		return nil, err
	}

	if report.ShareToken == nil {
		token, err := newShareToken()
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetShareToken(ctx, report.ID, token); err != nil {
			return nil, err
		}
		report.ShareToken = &token
	}

	now := time.Now().UTC()
	report.Status = domain.ReportStatusSent
	report.SentAt = &now
	if err := s.repo.UpdateStatus(ctx, report); err != nil {
		return nil, err
	}

	portalURL := fmt.Sprintf("%s/portal/reports/%s", s.portalCfg.BaseURL, *report.ShareToken)
	if err := s.emailSender.SendReportEmail(ctx, customer.Email, customer.ContactName, branch.Name, report.Title, portalURL); err != nil {
		s.logger.Warn("report share email failed",
			zap.String("report_id", report.ID.String()), zap.Error(err))
	}

	s.auditor.Record(audit.Event{
		BranchID:   &report.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionSend,
		EntityType: "report",
		EntityID:   report.ID,
		Metadata:   map[string]any{"customer_email": customer.Email},
	})
	return report, nil
}

func (s *reportService) Archive(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanArchiveBranchDoc(actor, report.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !report.CanTransition(domain.ReportStatusArchived) {
		return nil, domain.ErrInvalidStatusChange
	}

	now := time.Now().UTC()
	report.Status = domain.ReportStatusArchived
	report.ArchivedAt = &now
	if err := s.repo.UpdateStatus(ctx, report); err != nil {
		return nil, err
	}
	s.recordStatusChange(actor, report)
	return report, nil
}

func (s *reportService) recordStatusChange(actor authz.Principal, report *domain.Report) {
	s.auditor.Record(audit.Event{
		BranchID:   &report.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionStatusChange,
		EntityType: "report",
		EntityID:   report.ID,
		Metadata:   map[string]any{"status": string(report.Status)},
	})
}
