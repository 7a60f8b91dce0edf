package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// OfferLineInput is the DTO for a single offer line. Totals are always
// recomputed server-side.
type OfferLineInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

// CreateOfferInput is the DTO for creating a draft offer. When ReportID is
// set and no lines are given, the report's finding recommendations are
// prefilled as lines.
type CreateOfferInput struct {
	CustomerID uuid.UUID        `json:"customer_id" binding:"required"`
	ReportID   *uuid.UUID       `json:"report_id"`
	Title      string           `json:"title" binding:"required"`
	IntroText  string           `json:"intro_text"`
	Currency   string           `json:"currency"`
	VATRate    *decimal.Decimal `json:"vat_rate"`
	ValidUntil *time.Time       `json:"valid_until"`
	Lines      []OfferLineInput `json:"lines"`
}

// UpdateOfferInput is the DTO for updating a draft offer. A non-nil Lines
// slice replaces all lines.
type UpdateOfferInput struct {
	Title      *string          `json:"title"`
	IntroText  *string          `json:"intro_text"`
	Currency   *string          `json:"currency"`
	VATRate    *decimal.Decimal `json:"vat_rate"`
	ValidUntil *time.Time       `json:"valid_until"`
	Lines      []OfferLineInput `json:"lines"`
}

// DeclineOfferInput carries the optional reason recorded with a decline.
type DeclineOfferInput struct {
	Reason string `json:"reason"`
}

// OfferService defines the offer contract. Accept and Decline exist here for
// decisions taken over the phone; customers normally decide through the
// public portal.
type OfferService interface {
	Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateOfferInput) (*domain.Offer, error)
	GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error)
	List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.OfferFilters) ([]domain.Offer, int, error)
	Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateOfferInput) (*domain.Offer, error)
	// Send moves draft -> pending, mints the public token and emails the
	// customer a portal link.
	Send(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error)
	Accept(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error)
	Decline(ctx context.Context, actor authz.Principal, id uuid.UUID, input DeclineOfferInput) (*domain.Offer, error)
	Archive(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error)
}

type offerService struct {
	repo         port.OfferRepository
	customerRepo port.CustomerRepository
	reportRepo   port.ReportRepository
	branchRepo   port.BranchRepository
	emailSender  port.EmailSender
	auditor      *audit.Dispatcher
	portalCfg    config.PortalConfig
	logger       *zap.Logger
}

// NewOfferService creates a new OfferService implementation.
func NewOfferService(
	repo port.OfferRepository,
	customerRepo port.CustomerRepository,
	reportRepo port.ReportRepository,
	branchRepo port.BranchRepository,
	emailSender port.EmailSender,
	auditor *audit.Dispatcher,
	portalCfg config.PortalConfig,
	logger *zap.Logger,
) OfferService {
	return &offerService{
		repo:         repo,
		customerRepo: customerRepo,
		reportRepo:   reportRepo,
		branchRepo:   branchRepo,
		emailSender:  emailSender,
		auditor:      auditor,
		portalCfg:    portalCfg,
		logger:       logger,
	}
}

func buildLines(inputs []OfferLineInput) []domain.OfferLine {
	lines := make([]domain.OfferLine, 0, len(inputs))
	for _, in := range inputs {
		qty := in.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		lines = append(lines, domain.OfferLine{
			Description: in.Description,
			Quantity:    qty,
			Unit:        in.Unit,
			UnitPrice:   in.UnitPrice,
			DiscountPct: in.DiscountPct,
		})
	}
	return lines
}

func (s *offerService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateOfferInput) (*domain.Offer, error) {
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

	offer := &domain.Offer{
		BranchID:   branch,
		CustomerID: customer.ID,
		ReportID:   input.ReportID,
		Title:      input.Title,
		IntroText:  input.IntroText,
		Currency:   input.Currency,
		VATRate:    decimal.NewFromInt(25),
		ValidUntil: input.ValidUntil,
		Status:     domain.OfferStatusDraft,
		CreatedBy:  actor.UserID,
		Lines:      buildLines(input.Lines),
	}
	if offer.Currency == "" {
		offer.Currency = "NOK"
	}
	if input.VATRate != nil {
		offer.VATRate = *input.VATRate
	}

	if input.ReportID != nil {
		report, err := s.reportRepo.GetByID(ctx, *input.ReportID)
		if err != nil {
			return nil, err
		}
		if report.BranchID != branch || report.CustomerID != customer.ID {
			return nil, domain.ErrForbidden
		}
		if len(offer.Lines) == 0 {
			lines, err := s.linesFromFindings(ctx, report.ID)
			if err != nil {
				return nil, err
			}
			offer.Lines = lines
		}
	}

	offer.Recalculate()
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &offer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "offer",
		EntityID:   offer.ID,
		Metadata:   map[string]any{"title": offer.Title},
	})
	return offer, nil
}

// linesFromFindings turns a report's recommendations into priced-at-zero
// offer lines for the branch to fill in.
func (s *offerService) linesFromFindings(ctx context.Context, reportID uuid.UUID) ([]domain.OfferLine, error) {
	findings, err := s.reportRepo.ListFindings(ctx, reportID)
	if err != nil {
		return nil, err
	}
	var lines []domain.OfferLine
	for _, f := range findings {
		if f.Recommendation == "" {
			continue
		}
		lines = append(lines, domain.OfferLine{
			Description: fmt.Sprintf("%s: %s", f.Component, f.Recommendation),
			Quantity:    decimal.NewFromInt(1),
			Unit:        "job",
		})
	}
	return lines, nil
}

func (s *offerService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, offer.BranchID) {
		return nil, domain.ErrForbidden
	}
	offer.IsExpired = offer.Expired(time.Now().UTC())
	return offer, nil
}

func (s *offerService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.OfferFilters) ([]domain.Offer, int, error) {
	branch, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, 0, err
	}
	offers, total, err := s.repo.ListByBranch(ctx, branch, filters)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now().UTC()
	for i := range offers {
		offers[i].IsExpired = offers[i].Expired(now)
	}
	return offers, total, nil
}

func (s *offerService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateOfferInput) (*domain.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, offer.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !offer.Editable() {
		return nil, domain.ErrOfferNotEditable
	}

	if input.Title != nil {
		offer.Title = *input.Title
	}
	if input.IntroText != nil {
		offer.IntroText = *input.IntroText
	}
	if input.Currency != nil {
		offer.Currency = *input.Currency
	}
	if input.VATRate != nil {
		offer.VATRate = *input.VATRate
	}
	if input.ValidUntil != nil {
		offer.ValidUntil = input.ValidUntil
	}
	if input.Lines != nil {
		offer.Lines = buildLines(input.Lines)
	}

	offer.Recalculate()
	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &offer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "offer",
		EntityID:   offer.ID,
	})
	return offer, nil
}

func (s *offerService) Send(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, offer.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !offer.CanTransition(domain.OfferStatusPending) {
		return nil, domain.ErrInvalidStatusChange
	}
	if len(offer.Lines) == 0 {
		return nil, domain.ErrOfferEmpty
	}

	customer, err := s.customerRepo.GetByID(ctx, offer.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Email == "" {
		return nil, domain.ErrCustomerNoEmail
	}
	branch, err := s.branchRepo.GetByID(ctx, offer.BranchID)
	if err != nil {
		return nil, err
	}

	token, err := newShareToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.repo.MarkSent(ctx, offer.ID, token, now); err != nil {
		return nil, err
	}
	offer.Status = domain.OfferStatusPending
	offer.PublicToken = &token
	offer.SentAt = &now

	portalURL := fmt.Sprintf("%s/portal/offers/%s", s.portalCfg.BaseURL, token)
	if err := s.emailSender.SendOfferEmail(ctx, customer.Email, customer.ContactName, branch.Name, offer.Title, portalURL); err != nil {
		s.logger.Warn("offer email failed",
			zap.String("offer_id", offer.ID.String()), zap.Error(err))
	}

	s.auditor.Record(audit.Event{
		BranchID:   &offer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionSend,
		EntityType: "offer",
		EntityID:   offer.ID,
		Metadata:   map[string]any{"customer_email": customer.Email},
	})
	return offer, nil
}

func (s *offerService) Accept(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	return s.decide(ctx, actor, id, domain.OfferStatusAccepted, "")
}

func (s *offerService) Decline(ctx context.Context, actor authz.Principal, id uuid.UUID, input DeclineOfferInput) (*domain.Offer, error) {
	return s.decide(ctx, actor, id, domain.OfferStatusDeclined, input.Reason)
}

func (s *offerService) decide(ctx context.Context, actor authz.Principal, id uuid.UUID, status domain.OfferStatus, reason string) (*domain.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, offer.BranchID) {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	if err := s.repo.Decide(ctx, offer.ID, status, reason, now); err != nil {
		return nil, err
	}
	offer.Status = status
	offer.DecidedAt = &now
	offer.DeclineReason = reason

	s.auditor.Record(audit.Event{
		BranchID:   &offer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionStatusChange,
		EntityType: "offer",
		EntityID:   offer.ID,
		Metadata:   map[string]any{"status": string(status)},
	})
	return offer, nil
}

func (s *offerService) Archive(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanArchiveBranchDoc(actor, offer.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !offer.CanTransition(domain.OfferStatusArchived) {
		return nil, domain.ErrInvalidStatusChange
	}

	now := time.Now().UTC()
	if err := s.repo.Archive(ctx, offer.ID, now); err != nil {
		return nil, err
	}
	offer.Status = domain.OfferStatusArchived
	offer.ArchivedAt = &now

	s.auditor.Record(audit.Event{
		BranchID:   &offer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionStatusChange,
		EntityType: "offer",
		EntityID:   offer.ID,
		Metadata:   map[string]any{"status": string(domain.OfferStatusArchived)},
	})
	return offer, nil
}
