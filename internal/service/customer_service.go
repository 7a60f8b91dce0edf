package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// CreateCustomerInput is the DTO for creating a customer.
type CreateCustomerInput struct {
	Name        string `json:"name" binding:"required"`
	OrgNumber   string `json:"org_number"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Notes       string `json:"notes"`
}

// UpdateCustomerInput is the DTO for updating a customer.
type UpdateCustomerInput struct {
	Name        *string `json:"name"`
	OrgNumber   *string `json:"org_number"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	AddressLine *string `json:"address_line"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
	Notes       *string `json:"notes"`
}

// CustomerService defines the customer management contract.
type CustomerService interface {
	Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateCustomerInput) (*domain.Customer, error)
	GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error)
	// Delete refuses when reports, offers, appointments or agreements still
	// reference the customer.
	Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error
}

type customerService struct {
	repo    port.CustomerRepository
	auditor *audit.Dispatcher
}

// NewCustomerService creates a new CustomerService implementation.
func NewCustomerService(repo port.CustomerRepository, auditor *audit.Dispatcher) CustomerService {
	return &customerService{repo: repo, auditor: auditor}
}

func (s *customerService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input CreateCustomerInput) (*domain.Customer, error) {
	branch, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		BranchID:    branch,
		Name:        input.Name,
		OrgNumber:   input.OrgNumber,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		AddressLine: input.AddressLine,
		PostalCode:  input.PostalCode,
		City:        input.City,
		Country:     input.Country,
		Notes:       input.Notes,
		CreatedBy:   actor.UserID,
	}
	if customer.Country == "" {
		customer.Country = "NO"
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &customer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "customer",
		EntityID:   customer.ID,
		Metadata:   map[string]any{"name": customer.Name},
	})
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadBranchDoc(actor, customer.BranchID) {
		return nil, domain.ErrForbidden
	}
	return customer, nil
}

func (s *customerService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error) {
	branch, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByBranch(ctx, branch, search, offset, limit)
}

func (s *customerService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteBranchDoc(actor, customer.BranchID) {
		return nil, domain.ErrForbidden
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.OrgNumber != nil {
		customer.OrgNumber = *input.OrgNumber
	}
	if input.ContactName != nil {
		customer.ContactName = *input.ContactName
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.AddressLine != nil {
		customer.AddressLine = *input.AddressLine
	}
	if input.PostalCode != nil {
		customer.PostalCode = *input.PostalCode
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.Country != nil {
		customer.Country = *input.Country
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &customer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "customer",
		EntityID:   customer.ID,
	})
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanArchiveBranchDoc(actor, customer.BranchID) {
		return domain.ErrForbidden
	}

	linked, err := s.repo.CountLinkedDocuments(ctx, id)
	if err != nil {
		return err
	}
	if linked > 0 {
		return domain.ErrCustomerInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &customer.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionDelete,
		EntityType: "customer",
		EntityID:   customer.ID,
		Metadata:   map[string]any{"name": customer.Name},
	})
	return nil
}
