package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// CreateBuildingInput is the DTO for registering a building on a customer.
type CreateBuildingInput struct {
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Label            string          `json:"label"`
	AddressLine      string          `json:"address_line" binding:"required"`
	PostalCode       string          `json:"postal_code"`
	City             string          `json:"city"`
	RoofType         domain.RoofType `json:"roof_type"`
	RoofAreaM2       *float64        `json:"roof_area_m2"`
	HeightM          *float64        `json:"height_m"`
	ConstructionYear *int            `json:"construction_year"`
	Latitude         *float64        `json:"latitude"`
	Longitude        *float64        `json:"longitude"`
	AccessNotes      string          `json:"access_notes"`
}

// UpdateBuildingInput is the DTO for updating a building.
type UpdateBuildingInput struct {
	Label            *string          `json:"label"`
	AddressLine      *string          `json:"address_line"`
	PostalCode       *string          `json:"postal_code"`
	City             *string          `json:"city"`
	RoofType         *domain.RoofType `json:"roof_type"`
	RoofAreaM2       *float64         `json:"roof_area_m2"`
	HeightM          *float64         `json:"height_m"`
	ConstructionYear *int             `json:"construction_year"`
	Latitude         *float64         `json:"latitude"`
	Longitude        *float64         `json:"longitude"`
	AccessNotes      *string          `json:"access_notes"`
}

// BuildingService defines the building management contract.
type BuildingService interface {
	Create(ctx context.Context, actor authz.Principal, input CreateBuildingInput) (*domain.Building, error)
	GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Building, error)
	ListByCustomer(ctx context.Context, actor authz.Principal, customerID uuid.UUID) ([]domain.Building, error)
	Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateBuildingInput) (*domain.Building, error)
	Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error
}

type buildingService struct {
	repo         port.BuildingRepository
	customerRepo port.CustomerRepository
	auditor      *audit.Dispatcher
}

// NewBuildingService creates a new BuildingService implementation.
func NewBuildingService(
	repo port.BuildingRepository,
	customerRepo port.CustomerRepository,
	auditor *audit.Dispatcher,
) BuildingService {
	return &buildingService{repo: repo, customerRepo: customerRepo, auditor: auditor}
}

func (s *buildingService) Create(ctx context.Context, actor authz.Principal, input CreateBuildingInput) (*domain.Building, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, customer.BranchID) {
		return nil, domain.ErrForbidden
	}

	building := &domain.Building{
		BranchID:         customer.BranchID,
		CustomerID:       customer.ID,
		Label:            input.Label,
		AddressLine:      input.AddressLine,
		PostalCode:       input.PostalCode,
		City:             input.City,
		RoofType:         input.RoofType,
		RoofAreaM2:       input.RoofAreaM2,
		HeightM:          input.HeightM,
		ConstructionYear: input.ConstructionYear,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		AccessNotes:      input.AccessNotes,
	}
	if err := s.repo.Create(ctx, building); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &building.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "building",
		EntityID:   building.ID,
	})
	return building, nil
}

func (s *buildingService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Building, error) {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, building.BranchID) {
		return nil, domain.ErrForbidden
	}
	return building, nil
}

func (s *buildingService) ListByCustomer(ctx context.Context, actor authz.Principal, customerID uuid.UUID) ([]domain.Building, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, customer.BranchID) {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *buildingService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateBuildingInput) (*domain.Building, error) {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, building.BranchID) {
		return nil, domain.ErrForbidden
	}

	if input.Label != nil {
		building.Label = *input.Label
	}
	if input.AddressLine != nil {
		building.AddressLine = *input.AddressLine
	}
	if input.PostalCode != nil {
		building.PostalCode = *input.PostalCode
	}
	if input.City != nil {
		building.City = *input.City
	}
	if input.RoofType != nil {
		building.RoofType = *input.RoofType
	}
	if input.RoofAreaM2 != nil {
		building.RoofAreaM2 = input.RoofAreaM2
	}
	if input.HeightM != nil {
		building.HeightM = input.HeightM
	}
	if input.ConstructionYear != nil {
		building.ConstructionYear = input.ConstructionYear
	}
	if input.Latitude != nil {
		building.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		building.Longitude = input.Longitude
	}
	if input.AccessNotes != nil {
		building.AccessNotes = *input.AccessNotes
	}

	if err := s.repo.Update(ctx, building); err != nil {
		return nil, err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &building.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "building",
		EntityID:   building.ID,
	})
	return building, nil
}

func (s *buildingService) Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanArchiveBranchDoc(actor, building.BranchID) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &building.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionDelete,
		EntityType: "building",
		EntityID:   building.ID,
	})
	return nil
}
