package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

const defaultTimeZone = "Europe/Oslo"

// CreateAppointmentInput books a visit by wall-clock date and time in an IANA
// zone. The instants are stored in UTC together with the zone, so the booked
// local time never shifts with DST or the reader's machine.
type CreateAppointmentInput struct {
	CustomerID  uuid.UUID              `json:"customer_id" binding:"required"`
	BuildingID  *uuid.UUID             `json:"building_id"`
	InspectorID *uuid.UUID             `json:"inspector_id"`
	Type        domain.AppointmentType `json:"type" binding:"required"`
	Date        string                 `json:"date" binding:"required"`
	StartTime   string                 `json:"start_time" binding:"required"`
	EndTime     string                 `json:"end_time" binding:"required"`
	TimeZone    string                 `json:"time_zone"`
	Notes       string                 `json:"notes"`
}

// RescheduleAppointmentInput moves or edits a scheduled visit. Date, times
// and zone travel together; when any of them is set the full wall-clock
// window is re-derived.
type RescheduleAppointmentInput struct {
	InspectorID *uuid.UUID              `json:"inspector_id"`
	BuildingID  *uuid.UUID              `json:"building_id"`
	Type        *domain.AppointmentType `json:"type"`
	Date        *string                 `json:"date"`
	StartTime   *string                 `json:"start_time"`
	EndTime     *string                 `json:"end_time"`
	TimeZone    *string                 `json:"time_zone"`
	Notes       *string                 `json:"notes"`
}

// CancelAppointmentInput carries the reason recorded with a cancellation.
type CancelAppointmentInput struct {
	Reason string `json:"reason"`
}

// CompleteAppointmentInput optionally links the report the visit produced.
type CompleteAppointmentInput struct {
	ReportID *uuid.UUID `json:"report_id"`
}

// AppointmentService defines the scheduling contract.
type AppointmentService interface {
	Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateAppointmentInput) (*domain.Appointment, error)
	GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error)
	List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AppointmentFilters) ([]domain.Appointment, int, error)
	Reschedule(ctx context.Context, actor authz.Principal, id uuid.UUID, input RescheduleAppointmentInput) (*domain.Appointment, error)
	Cancel(ctx context.Context, actor authz.Principal, id uuid.UUID, input CancelAppointmentInput) (*domain.Appointment, error)
	Complete(ctx context.Context, actor authz.Principal, id uuid.UUID, input CompleteAppointmentInput) (*domain.Appointment, error)
	MarkNoShow(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error)
	// Availability returns the free slots of an inspector on a wall-clock
	// date, swept over the branch working window.
	Availability(ctx context.Context, actor authz.Principal, inspectorID uuid.UUID, date, timeZone string, durationMins int) ([]domain.Slot, error)
}

type appointmentService struct {
	repo         port.AppointmentRepository
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	userRepo     port.UserRepository
	reportRepo   port.ReportRepository
	auditor      *audit.Dispatcher
	bookingCfg   config.BookingConfig
}

// NewAppointmentService creates a new AppointmentService implementation.
func NewAppointmentService(
	repo port.AppointmentRepository,
	customerRepo port.CustomerRepository,
	buildingRepo port.BuildingRepository,
	userRepo port.UserRepository,
	reportRepo port.ReportRepository,
	auditor *audit.Dispatcher,
	bookingCfg config.BookingConfig,
) AppointmentService {
	return &appointmentService{
		repo:         repo,
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		userRepo:     userRepo,
		reportRepo:   reportRepo,
		auditor:      auditor,
		bookingCfg:   bookingCfg,
	}
}

// resolveWindow converts a wall-clock date, start and end time in an IANA
// zone into UTC instants. An end at or before the start is rejected.
func resolveWindow(date, startTime, endTime, timeZone string) (startsAt, endsAt time.Time, zone string, err error) {
	if timeZone == "" {
		timeZone = defaultTimeZone
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return time.Time{}, time.Time{}, "", domain.ErrInvalidTimeZone
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", domain.ErrValidation
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", date+" "+endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", domain.ErrValidation
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, "", domain.ErrInvalidTimeRange
	}
	return start.UTC(), end.UTC(), timeZone, nil
}

func (s *appointmentService) minLead() time.Duration {
	return time.Duration(s.bookingCfg.MinLeadMins) * time.Minute
}

// checkConflict rejects the window when the inspector already has a blocking
// appointment intersecting it. excludeID skips the appointment being moved.
func (s *appointmentService) checkConflict(ctx context.Context, inspectorID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) error {
	blocking, err := s.repo.ListBlockingForInspector(ctx, inspectorID, startsAt, endsAt)
	if err != nil {
		return err
	}
	for _, b := range blocking {
		if b.ID == excludeID {
			continue
		}
		if b.Overlaps(startsAt, endsAt) {
			return domain.ErrAppointmentConflict
		}
	}
	return nil
}

// resolveInspector checks that the chosen inspector is an active member of
// the branch the appointment belongs to.
func (s *appointmentService) resolveInspector(ctx context.Context, inspectorID, branchID uuid.UUID) error {
	inspector, err := s.userRepo.GetByID(ctx, inspectorID)
	if err != nil {
		return err
	}
	if !inspector.IsActive {
		return domain.ErrUserInactive
	}
	if inspector.BranchID == nil || *inspector.BranchID != branchID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *appointmentService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateAppointmentInput) (*domain.Appointment, error) {
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

	startsAt, endsAt, zone, err := resolveWindow(input.Date, input.StartTime, input.EndTime, input.TimeZone)
	if err != nil {
		return nil, err
	}
	if startsAt.Before(time.Now().UTC().Add(s.minLead())) {
		return nil, domain.ErrAppointmentPast
	}

	inspector := actor.UserID
	if input.InspectorID != nil {
		inspector = *input.InspectorID
	}
	if err := s.resolveInspector(ctx, inspector, branch); err != nil {
		return nil, err
	}
	if err := s.checkConflict(ctx, inspector, startsAt, endsAt, uuid.Nil); err != nil {
		return nil, err
	}

	appt := &domain.Appointment{
		BranchID:    branch,
		CustomerID:  customer.ID,
		BuildingID:  input.BuildingID,
		InspectorID: inspector,
		Type:        input.Type,
		Status:      domain.AppointmentStatusScheduled,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		TimeZone:    zone,
		Notes:       input.Notes,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &appt.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "appointment",
		EntityID:   appt.ID,
		Metadata:   map[string]any{"starts_at": appt.StartsAt, "inspector_id": appt.InspectorID},
	})
	return appt, nil
}

func (s *appointmentService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, appt.BranchID) {
		return nil, domain.ErrForbidden
	}
	return appt, nil
}

func (s *appointmentService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AppointmentFilters) ([]domain.Appointment, int, error) {
	branch, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByBranch(ctx, branch, filters)
}

func (s *appointmentService) Reschedule(ctx context.Context, actor authz.Principal, id uuid.UUID, input RescheduleAppointmentInput) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, appt.BranchID) {
		return nil, domain.ErrForbidden
	}
	if appt.Status != domain.AppointmentStatusScheduled {
		return nil, domain.ErrInvalidStatusChange
	}

	if input.Type != nil {
		appt.Type = *input.Type
	}
	if input.Notes != nil {
		appt.Notes = *input.Notes
	}
	if input.BuildingID != nil {
		building, err := s.buildingRepo.GetByID(ctx, *input.BuildingID)
		if err != nil {
			return nil, err
		}
		if building.CustomerID != appt.CustomerID {
			return nil, domain.ErrBuildingMismatch
		}
		appt.BuildingID = input.BuildingID
	}
	if input.InspectorID != nil {
		if err := s.resolveInspector(ctx, *input.InspectorID, appt.BranchID); err != nil {
			return nil, err
		}
		appt.InspectorID = *input.InspectorID
	}

	if input.Date != nil || input.StartTime != nil || input.TimeZone != nil || input.EndTime != nil {
		zone := appt.TimeZone
		if input.TimeZone != nil {
			zone = *input.TimeZone
		}
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return nil, domain.ErrInvalidTimeZone
		}
		date := appt.StartsAt.In(loc).Format("2006-01-02")
		if input.Date != nil {
			date = *input.Date
		}
		startTime := appt.StartsAt.In(loc).Format("15:04")
		if input.StartTime != nil {
			startTime = *input.StartTime
		}
		endTime := appt.EndsAt.In(loc).Format("15:04")
		if input.EndTime != nil {
			endTime = *input.EndTime
		}

		startsAt, endsAt, zone, err := resolveWindow(date, startTime, endTime, zone)
		if err != nil {
			return nil, err
		}
		if startsAt.Before(time.Now().UTC().Add(s.minLead())) {
			return nil, domain.ErrAppointmentPast
		}
		appt.StartsAt = startsAt
		appt.EndsAt = endsAt
		appt.TimeZone = zone
	}

	if err := s.checkConflict(ctx, appt.InspectorID, appt.StartsAt, appt.EndsAt, appt.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &appt.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "appointment",
		EntityID:   appt.ID,
		Metadata:   map[string]any{"starts_at": appt.StartsAt},
	})
	return appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, actor authz.Principal, id uuid.UUID, input CancelAppointmentInput) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, appt.BranchID) {
		return nil, domain.ErrForbidden
	}
	if appt.Status != domain.AppointmentStatusScheduled {
		return nil, domain.ErrInvalidStatusChange
	}

	now := time.Now().UTC()
	appt.Status = domain.AppointmentStatusCancelled
	appt.CancelReason = input.Reason
	appt.CancelledAt = &now
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.recordStatusChange(actor, appt)
	return appt, nil
}

func (s *appointmentService) Complete(ctx context.Context, actor authz.Principal, id uuid.UUID, input CompleteAppointmentInput) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, appt.BranchID) {
		return nil, domain.ErrForbidden
	}
	if appt.Status != domain.AppointmentStatusScheduled {
		return nil, domain.ErrInvalidStatusChange
	}

	if input.ReportID != nil {
		report, err := s.reportRepo.GetByID(ctx, *input.ReportID)
		if err != nil {
			return nil, err
		}
		if report.BranchID != appt.BranchID {
			return nil, domain.ErrForbidden
		}
		appt.ReportID = input.ReportID
	}

	now := time.Now().UTC()
	appt.Status = domain.AppointmentStatusCompleted
	appt.CompletedAt = &now
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.recordStatusChange(actor, appt)
	return appt, nil
}

func (s *appointmentService) MarkNoShow(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, appt.BranchID) {
		return nil, domain.ErrForbidden
	}
	if appt.Status != domain.AppointmentStatusScheduled {
		return nil, domain.ErrInvalidStatusChange
	}

	appt.Status = domain.AppointmentStatusNoShow
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.recordStatusChange(actor, appt)
	return appt, nil
}

func (s *appointmentService) Availability(ctx context.Context, actor authz.Principal, inspectorID uuid.UUID, date, timeZone string, durationMins int) ([]domain.Slot, error) {
	inspector, err := s.userRepo.GetByID(ctx, inspectorID)
	if err != nil {
		return nil, err
	}
	if inspector.BranchID == nil {
		return nil, domain.ErrNotFound
	}
	if !authz.CanReadBranchDoc(actor, *inspector.BranchID) {
		return nil, domain.ErrForbidden
	}

	if timeZone == "" {
		timeZone = defaultTimeZone
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, domain.ErrInvalidTimeZone
	}

	dayStart, err := time.ParseInLocation("2006-01-02 15:04", date+" "+s.bookingCfg.DayStart, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing working window: %w", err)
	}
	dayEnd, err := time.ParseInLocation("2006-01-02 15:04", date+" "+s.bookingCfg.DayEnd, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing working window: %w", err)
	}

	step := time.Duration(s.bookingCfg.SlotStepMins) * time.Minute
	slotLen := time.Duration(durationMins) * time.Minute
	if slotLen <= 0 {
		slotLen = step
	}

	existing, err := s.repo.ListBlockingForInspector(ctx, inspectorID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}

	notBefore := time.Now().UTC().Add(s.minLead())
	return domain.AvailableSlots(dayStart.UTC(), dayEnd.UTC(), slotLen, step, notBefore, existing), nil
}

func (s *appointmentService) recordStatusChange(actor authz.Principal, appt *domain.Appointment) {
	s.auditor.Record(audit.Event{
		BranchID:   &appt.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionStatusChange,
		EntityType: "appointment",
		EntityID:   appt.ID,
		Metadata:   map[string]any{"status": string(appt.Status)},
	})
}
