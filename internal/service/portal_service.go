package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// Portal views are rebuilt field by field instead of reusing the domain
// structs, so internal IDs and staff-only data never reach an
// unauthenticated response.

// PortalBranchView identifies the branch behind a shared document.
type PortalBranchView struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
}

// PortalOfferLineView is one priced position on a shared offer.
type PortalOfferLineView struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PortalOfferView is the offer as the customer sees it.
type PortalOfferView struct {
	Title        string                `json:"title"`
	IntroText    string                `json:"intro_text"`
	CustomerName string                `json:"customer_name"`
	Currency     string                `json:"currency"`
	VATRate      decimal.Decimal       `json:"vat_rate"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	VATAmount    decimal.Decimal       `json:"vat_amount"`
	Total        decimal.Decimal       `json:"total"`
	ValidUntil   *time.Time            `json:"valid_until"`
	Expired      bool                  `json:"expired"`
	SentAt       *time.Time            `json:"sent_at"`
	Lines        []PortalOfferLineView `json:"lines"`
	Branch       PortalBranchView      `json:"branch"`
}

// PortalFindingView is one finding on a shared report.
type PortalFindingView struct {
	Position       int    `json:"position"`
	Component      string `json:"component"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// PortalPhotoView carries a short-lived URL for one inspection photo.
type PortalPhotoView struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// PortalReportView is the report as the customer sees it.
type PortalReportView struct {
	Title              string              `json:"title"`
	Summary            string              `json:"summary"`
	WeatherConditions  string              `json:"weather_conditions"`
	RoofConditionGrade *int                `json:"roof_condition_grade"`
	InspectedAt        *time.Time          `json:"inspected_at"`
	CustomerName       string              `json:"customer_name"`
	BuildingAddress    string              `json:"building_address"`
	Findings           []PortalFindingView `json:"findings"`
	Photos             []PortalPhotoView   `json:"photos"`
	Branch             PortalBranchView    `json:"branch"`
}

// PortalService serves token-addressed documents to unauthenticated
// customers. Every lookup that does not resolve to a visible document
// returns ErrPublicLinkInvalid, so outsiders cannot probe what exists.
type PortalService interface {
	GetOffer(ctx context.Context, token string) (*PortalOfferView, error)
	AcceptOffer(ctx context.Context, token string) error
	DeclineOffer(ctx context.Context, token, reason string) error
	GetReport(ctx context.Context, token string) (*PortalReportView, error)
	// GetReportPDFURL returns a presigned link to the rendered PDF, or
	// ErrPDFJobNotReady when no finished render exists yet.
	GetReportPDFURL(ctx context.Context, token string) (string, error)
}

type portalService struct {
	offerRepo    port.OfferRepository
	reportRepo   port.ReportRepository
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	branchRepo   port.BranchRepository
	pdfJobRepo   port.PDFJobRepository
	storage      port.ObjectStorage
	emailSender  port.EmailSender
	auditor      *audit.Dispatcher
	s3Cfg        config.S3Config
	logger       *zap.Logger
}

// NewPortalService creates a new PortalService implementation.
func NewPortalService(
	offerRepo port.OfferRepository,
	reportRepo port.ReportRepository,
	customerRepo port.CustomerRepository,
	buildingRepo port.BuildingRepository,
	branchRepo port.BranchRepository,
	pdfJobRepo port.PDFJobRepository,
	storage port.ObjectStorage,
	emailSender port.EmailSender,
	auditor *audit.Dispatcher,
	s3Cfg config.S3Config,
	logger *zap.Logger,
) PortalService {
	return &portalService{
		offerRepo:    offerRepo,
		reportRepo:   reportRepo,
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		branchRepo:   branchRepo,
		pdfJobRepo:   pdfJobRepo,
		storage:      storage,
		emailSender:  emailSender,
		auditor:      auditor,
		s3Cfg:        s3Cfg,
		logger:       logger,
	}
}

// visibleOffer resolves a token to a pending offer or reports the link as
// invalid. Missing rows and decided offers are indistinguishable on purpose.
func (s *portalService) visibleOffer(ctx context.Context, token string) (*domain.Offer, error) {
	if token == "" {
		return nil, domain.ErrPublicLinkInvalid
	}
	offer, err := s.offerRepo.GetByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPublicLinkInvalid
		}
		return nil, err
	}
	if !offer.PubliclyVisible() {
		return nil, domain.ErrPublicLinkInvalid
	}
	return offer, nil
}

func (s *portalService) branchView(ctx context.Context, branchID uuid.UUID) (PortalBranchView, error) {
	branch, err := s.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		return PortalBranchView{}, err
	}
	return PortalBranchView{
		Name:        branch.Name,
		Email:       branch.Email,
		Phone:       branch.Phone,
		AddressLine: branch.AddressLine,
		PostalCode:  branch.PostalCode,
		City:        branch.City,
	}, nil
}

func (s *portalService) GetOffer(ctx context.Context, token string) (*PortalOfferView, error) {
	offer, err := s.visibleOffer(ctx, token)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, offer.CustomerID)
	if err != nil {
		return nil, err
	}
	branch, err := s.branchView(ctx, offer.BranchID)
	if err != nil {
		return nil, err
	}

	lines := make([]PortalOfferLineView, 0, len(offer.Lines))
	for _, l := range offer.Lines {
		lines = append(lines, PortalOfferLineView{
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			LineTotal:   l.LineTotal,
		})
	}

	return &PortalOfferView{
		Title:        offer.Title,
		IntroText:    offer.IntroText,
		CustomerName: customer.Name,
		Currency:     offer.Currency,
		VATRate:      offer.VATRate,
		Subtotal:     offer.Subtotal,
		VATAmount:    offer.VATAmount,
		Total:        offer.Total,
		ValidUntil:   offer.ValidUntil,
		Expired:      offer.Expired(time.Now().UTC()),
		SentAt:       offer.SentAt,
		Lines:        lines,
		Branch:       branch,
	}, nil
}

func (s *portalService) AcceptOffer(ctx context.Context, token string) error {
	return s.decideOffer(ctx, token, domain.OfferStatusAccepted, "")
}

func (s *portalService) DeclineOffer(ctx context.Context, token, reason string) error {
	return s.decideOffer(ctx, token, domain.OfferStatusDeclined, reason)
}

func (s *portalService) decideOffer(ctx context.Context, token string, status domain.OfferStatus, reason string) error {
	offer, err := s.visibleOffer(ctx, token)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.offerRepo.Decide(ctx, offer.ID, status, reason, now); err != nil {
		// A concurrent decision got there first; to this visitor the link
		// has simply stopped resolving.
		if errors.Is(err, domain.ErrOfferNotPending) {
			return domain.ErrPublicLinkInvalid
		}
		return err
	}

	customer, err := s.customerRepo.GetByID(ctx, offer.CustomerID)
	if err != nil {
		s.logger.Warn("loading customer for decision notice failed", zap.Error(err))
		customer = &domain.Customer{}
	}
	s.notifyBranch(ctx, offer, status, reason)

	action := domain.AuditActionPortalAccept
	if status == domain.OfferStatusDeclined {
		action = domain.AuditActionPortalDecline
	}
	s.auditor.Record(audit.Event{
		BranchID:   &offer.BranchID,
		ActorEmail: customer.Email,
		Action:     action,
		EntityType: "offer",
		EntityID:   offer.ID,
		Metadata:   map[string]any{"reason": reason},
	})
	return nil
}

func (s *portalService) notifyBranch(ctx context.Context, offer *domain.Offer, status domain.OfferStatus, reason string) {
	branch, err := s.branchRepo.GetByID(ctx, offer.BranchID)
	if err != nil || branch.Email == "" {
		if err != nil {
			s.logger.Warn("loading branch for decision notice failed", zap.Error(err))
		}
		return
	}
	if err := s.emailSender.SendOfferDecidedEmail(ctx, branch.Email, offer.Title, string(status), reason); err != nil {
		s.logger.Warn("offer decision email failed",
			zap.String("offer_id", offer.ID.String()), zap.Error(err))
	}
}

// visibleReport resolves a token to a completed or sent report.
func (s *portalService) visibleReport(ctx context.Context, token string) (*domain.Report, error) {
	if token == "" {
		return nil, domain.ErrPublicLinkInvalid
	}
	report, err := s.reportRepo.GetByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPublicLinkInvalid
		}
		return nil, err
	}
	if !report.PubliclyVisible() {
		return nil, domain.ErrPublicLinkInvalid
	}
	return report, nil
}

func (s *portalService) GetReport(ctx context.Context, token string) (*PortalReportView, error) {
	report, err := s.visibleReport(ctx, token)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, report.CustomerID)
	if err != nil {
		return nil, err
	}
	building, err := s.buildingRepo.GetByID(ctx, report.BuildingID)
	if err != nil {
		return nil, err
	}
	branch, err := s.branchView(ctx, report.BranchID)
	if err != nil {
		return nil, err
	}

	findings, err := s.reportRepo.ListFindings(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	findingViews := make([]PortalFindingView, 0, len(findings))
	for _, f := range findings {
		findingViews = append(findingViews, PortalFindingView{
			Position:       f.Position,
			Component:      f.Component,
			Severity:       string(f.Severity),
			Description:    f.Description,
			Recommendation: f.Recommendation,
		})
	}

	photos, err := s.reportRepo.ListPhotos(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	photoViews := make([]PortalPhotoView, 0, len(photos))
	for _, p := range photos {
		url, err := s.storage.GetPresignedURL(ctx, p.S3Key, s.s3Cfg.PresignExpiry)
		if err != nil {
			s.logger.Warn("presigning portal photo failed",
				zap.String("key", p.S3Key), zap.Error(err))
			continue
		}
		photoViews = append(photoViews, PortalPhotoView{URL: url, Caption: p.Caption})
	}

	return &PortalReportView{
		Title:              report.Title,
		Summary:            report.Summary,
		WeatherConditions:  report.WeatherConditions,
		RoofConditionGrade: report.RoofConditionGrade,
		InspectedAt:        report.InspectedAt,
		CustomerName:       customer.Name,
		BuildingAddress:    building.AddressLine,
		Findings:           findingViews,
		Photos:             photoViews,
		Branch:             branch,
	}, nil
}

func (s *portalService) GetReportPDFURL(ctx context.Context, token string) (string, error) {
	report, err := s.visibleReport(ctx, token)
	if err != nil {
		return "", err
	}
	job, err := s.pdfJobRepo.FindLatestDone(ctx, domain.PDFEntityReport, report.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrPDFJobNotReady
		}
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, job.S3Key, s.s3Cfg.PresignExpiry)
}
