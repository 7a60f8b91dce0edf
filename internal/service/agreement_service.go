package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// Generated agreement visits are booked into a default morning window; the
// branch moves them afterwards like any other appointment.
const (
	generatedVisitStart = "09:00"
	generatedVisitEnd   = "11:00"
)

// CreateAgreementInput is the DTO for creating a service agreement.
type CreateAgreementInput struct {
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	BuildingID     *uuid.UUID      `json:"building_id"`
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description"`
	IntervalMonths int             `json:"interval_months" binding:"required,min=1,max=60"`
	PricePerVisit  decimal.Decimal `json:"price_per_visit"`
	Currency       string          `json:"currency"`
	StartDate      string          `json:"start_date" binding:"required"`
}

// UpdateAgreementInput is the DTO for updating agreement terms. Status moves
// through Pause, Resume and Terminate instead.
type UpdateAgreementInput struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	IntervalMonths *int             `json:"interval_months"`
	PricePerVisit  *decimal.Decimal `json:"price_per_visit"`
	Currency       *string          `json:"currency"`
	BuildingID     *uuid.UUID       `json:"building_id"`
}

// AgreementService defines the service agreement contract.
type AgreementService interface {
	Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateAgreementInput) (*domain.ServiceAgreement, error)
	GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error)
	List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AgreementFilters) ([]domain.ServiceAgreement, int, error)
	ListDue(ctx context.Context, actor authz.Principal, horizonDays int) ([]domain.ServiceAgreement, error)
	Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateAgreementInput) (*domain.ServiceAgreement, error)
	Pause(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error)
	Resume(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error)
	Terminate(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error)
	// GenerateVisit books the next due visit as a draft appointment and
	// advances next_due_on. Refused while an earlier generated visit is
	// still scheduled.
	GenerateVisit(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error)
	// GenerateDueVisits is the worker entry point: it books visits for every
	// due agreement and reports how many were created.
	GenerateDueVisits(ctx context.Context, limit int) (int, error)
}

type agreementService struct {
	repo         port.AgreementRepository
	apptRepo     port.AppointmentRepository
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	auditor      *audit.Dispatcher
	logger       *zap.Logger
}

// NewAgreementService creates a new AgreementService implementation.
func NewAgreementService(
	repo port.AgreementRepository,
	apptRepo port.AppointmentRepository,
	customerRepo port.CustomerRepository,
	buildingRepo port.BuildingRepository,
	auditor *audit.Dispatcher,
	logger *zap.Logger,
) AgreementService {
	return &agreementService{
		repo:         repo,
		apptRepo:     apptRepo,
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		auditor:      auditor,
		logger:       logger,
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.ErrValidation
	}
	return t, nil
}

func (s *agreementService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateAgreementInput) (*domain.ServiceAgreement, error) {
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
	if input.BuildingID != nil {
		building, err := s.buildingRepo.GetByID(ctx, *input.BuildingID)
		if err != nil {
			return nil, err
		}
		if building.CustomerID != customer.ID {
			return nil, domain.ErrBuildingMismatch
		}
	}

	startDate, err := parseDate(input.StartDate)
	if err != nil {
		return nil, err
	}

	agreement := &domain.ServiceAgreement{
		BranchID:       branch,
		CustomerID:     customer.ID,
		BuildingID:     input.BuildingID,
		Title:          input.Title,
		Description:    input.Description,
		IntervalMonths: input.IntervalMonths,
		PricePerVisit:  input.PricePerVisit,
		Currency:       input.Currency,
		Status:         domain.AgreementStatusActive,
		StartDate:      startDate,
		NextDueOn:      startDate,
		CreatedBy:      actor.UserID,
	}
	if agreement.Currency == "" {
		agreement.Currency = "NOK"
	}
	if err := s.repo.Create(ctx, agreement); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &agreement.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "agreement",
		EntityID:   agreement.ID,
		Metadata:   map[string]any{"title": agreement.Title},
	})
	return agreement, nil
}

func (s *agreementService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	agreement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, agreement.BranchID) {
		return nil, domain.ErrForbidden
	}
	return agreement, nil
}

func (s *agreementService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AgreementFilters) ([]domain.ServiceAgreement, int, error) {
	branch, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByBranch(ctx, branch, filters)
}

func (s *agreementService) ListDue(ctx context.Context, actor authz.Principal, horizonDays int) ([]domain.ServiceAgreement, error) {
	if horizonDays < 0 {
		horizonDays = 0
	}
	asOf := time.Now().UTC().AddDate(0, 0, horizonDays)
	due, err := s.repo.ListDue(ctx, asOf, 500)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.ServiceAgreement, 0, len(due))
	for _, a := range due {
		if authz.CanReadBranchDoc(actor, a.BranchID) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

func (s *agreementService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateAgreementInput) (*domain.ServiceAgreement, error) {
	agreement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, agreement.BranchID) {
		return nil, domain.ErrForbidden
	}
	if agreement.Status == domain.AgreementStatusTerminated {
		return nil, domain.ErrInvalidStatusChange
	}

	if input.Title != nil {
		agreement.Title = *input.Title
	}
	if input.Description != nil {
		agreement.Description = *input.Description
	}
	if input.IntervalMonths != nil {
		if *input.IntervalMonths < 1 || *input.IntervalMonths > 60 {
			return nil, domain.ErrValidation
		}
		agreement.IntervalMonths = *input.IntervalMonths
	}
	if input.PricePerVisit != nil {
		agreement.PricePerVisit = *input.PricePerVisit
	}
	if input.Currency != nil {
		agreement.Currency = *input.Currency
	}
	if input.BuildingID != nil {
		building, err := s.buildingRepo.GetByID(ctx, *input.BuildingID)
		if err != nil {
			return nil, err
		}
		if building.CustomerID != agreement.CustomerID {
			return nil, domain.ErrBuildingMismatch
		}
		agreement.BuildingID = input.BuildingID
	}

	if err := s.repo.Update(ctx, agreement); err != nil {
		return nil, err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &agreement.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "agreement",
		EntityID:   agreement.ID,
	})
	return agreement, nil
}

func (s *agreementService) Pause(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	return s.transition(ctx, actor, id, domain.AgreementStatusPaused)
}

func (s *agreementService) Resume(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	return s.transition(ctx, actor, id, domain.AgreementStatusActive)
}

func (s *agreementService) Terminate(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error) {
	return s.transition(ctx, actor, id, domain.AgreementStatusTerminated)
}

func (s *agreementService) transition(ctx context.Context, actor authz.Principal, id uuid.UUID, to domain.AgreementStatus) (*domain.ServiceAgreement, error) {
	agreement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, agreement.BranchID) {
		return nil, domain.ErrForbidden
	}
	if !agreement.CanTransition(to) {
		return nil, domain.ErrInvalidStatusChange
	}

	agreement.Status = to
	if to == domain.AgreementStatusTerminated {
		now := time.Now().UTC()
		agreement.TerminatedAt = &now
	}
	if err := s.repo.Update(ctx, agreement); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &agreement.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionStatusChange,
		EntityType: "agreement",
		EntityID:   agreement.ID,
		Metadata:   map[string]any{"status": string(to)},
	})
	return agreement, nil
}

func (s *agreementService) GenerateVisit(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error) {
	agreement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, agreement.BranchID) {
		return nil, domain.ErrForbidden
	}
	return s.generateVisit(ctx, agreement, &actor)
}

func (s *agreementService) GenerateDueVisits(ctx context.Context, limit int) (int, error) {
	due, err := s.repo.ListDue(ctx, time.Now().UTC(), limit)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range due {
		if _, err := s.generateVisit(ctx, &due[i], nil); err != nil {
			if errors.Is(err, domain.ErrVisitAlreadyOpen) {
				continue
			}
			s.logger.Warn("generating agreement visit failed",
				zap.String("agreement_id", due[i].ID.String()), zap.Error(err))
			continue
		}
		created++
	}
	return created, nil
}

// generateVisit books the due visit and advances the agreement cadence.
// actor is nil when called from the daily worker.
func (s *agreementService) generateVisit(ctx context.Context, agreement *domain.ServiceAgreement, actor *authz.Principal) (*domain.Appointment, error) {
	if agreement.Status != domain.AgreementStatusActive {
		return nil, domain.ErrAgreementNotActive
	}
	open, err := s.repo.HasOpenGeneratedVisit(ctx, agreement.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, domain.ErrVisitAlreadyOpen
	}

	visitDate := agreement.NextDueOn.Format("2006-01-02")
	startsAt, endsAt, zone, err := resolveWindow(visitDate, generatedVisitStart, generatedVisitEnd, defaultTimeZone)
	if err != nil {
		return nil, err
	}

	createdBy := agreement.CreatedBy
	if actor != nil {
		createdBy = actor.UserID
	}
	appt := &domain.Appointment{
		BranchID:    agreement.BranchID,
		CustomerID:  agreement.CustomerID,
		BuildingID:  agreement.BuildingID,
		InspectorID: agreement.CreatedBy,
		AgreementID: &agreement.ID,
		Type:        domain.AppointmentTypeAgreementVisit,
		Status:      domain.AppointmentStatusScheduled,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		TimeZone:    zone,
		Notes:       fmt.Sprintf("Generated from service agreement %q", agreement.Title),
		CreatedBy:   createdBy,
	}
	if err := s.apptRepo.Create(ctx, appt); err != nil {
		return nil, err
	}

	agreement.AdvanceNextDue(agreement.NextDueOn)
	if err := s.repo.Update(ctx, agreement); err != nil {
		return nil, err
	}

	ev := audit.Event{
		BranchID:   &agreement.BranchID,
		ActorEmail: "system",
		Action:     domain.AuditActionCreate,
		EntityType: "appointment",
		EntityID:   appt.ID,
		Metadata:   map[string]any{"agreement_id": agreement.ID, "starts_at": appt.StartsAt},
	}
	if actor != nil {
		ev.ActorID = &actor.UserID
		ev.ActorEmail = actor.Email
	}
	s.auditor.Record(ev)
	return appt, nil
}
