package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// CreateBranchInput is the DTO for creating a branch.
type CreateBranchInput struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	OrgNumber   string `json:"org_number"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// UpdateBranchInput is the DTO for updating a branch.
type UpdateBranchInput struct {
	Name        *string `json:"name"`
	OrgNumber   *string `json:"org_number"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	AddressLine *string `json:"address_line"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
}

// BranchService defines the branch management contract. Only superadmins
// mutate branches; members see their own branch.
type BranchService interface {
	Create(ctx context.Context, actor authz.Principal, input CreateBranchInput) (*domain.Branch, error)
	GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Branch, error)
	List(ctx context.Context, actor authz.Principal) ([]domain.Branch, error)
	Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateBranchInput) (*domain.Branch, error)
	SetActive(ctx context.Context, actor authz.Principal, id uuid.UUID, active bool) error
}

type branchService struct {
	repo    port.BranchRepository
	auditor *audit.Dispatcher
}

// NewBranchService creates a new BranchService implementation.
func NewBranchService(repo port.BranchRepository, auditor *audit.Dispatcher) BranchService {
	return &branchService{repo: repo, auditor: auditor}
}

func (s *branchService) Create(ctx context.Context, actor authz.Principal, input CreateBranchInput) (*domain.Branch, error) {
	if !authz.CanManageBranches(actor) {
		return nil, domain.ErrForbidden
	}

	branch := &domain.Branch{
		Name:        input.Name,
		Slug:        input.Slug,
		OrgNumber:   input.OrgNumber,
		Email:       input.Email,
		Phone:       input.Phone,
		AddressLine: input.AddressLine,
		PostalCode:  input.PostalCode,
		City:        input.City,
		Country:     input.Country,
		IsActive:    true,
	}
	if branch.Country == "" {
		branch.Country = "NO"
	}
	if err := s.repo.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.auditor.Record(audit.Event{
		BranchID:   &branch.ID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "branch",
		EntityID:   branch.ID,
		Metadata:   map[string]any{"slug": branch.Slug},
	})
	return branch, nil
}

func (s *branchService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Branch, error) {
	if !authz.CanReadBranchDoc(actor, id) {
		return nil, domain.ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

func (s *branchService) List(ctx context.Context, actor authz.Principal) ([]domain.Branch, error) {
	if actor.IsSuperadmin() {
		// Branch fleets stay small, so the listing is not paginated.
		branches, _, err := s.repo.List(ctx, 0, 500)
		return branches, err
	}
	branch, err := s.repo.GetByID(ctx, actor.BranchID)
	if err != nil {
		return nil, err
	}
	return []domain.Branch{*branch}, nil
}

func (s *branchService) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, input UpdateBranchInput) (*domain.Branch, error) {
	if !authz.CanManageBranches(actor) {
		return nil, domain.ErrForbidden
	}

	branch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		branch.Name = *input.Name
	}
	if input.OrgNumber != nil {
		branch.OrgNumber = *input.OrgNumber
	}
	if input.Email != nil {
		branch.Email = *input.Email
	}
	if input.Phone != nil {
		branch.Phone = *input.Phone
	}
	if input.AddressLine != nil {
		branch.AddressLine = *input.AddressLine
	}
	if input.PostalCode != nil {
		branch.PostalCode = *input.PostalCode
	}
	if input.City != nil {
		branch.City = *input.City
	}
	if input.Country != nil {
		branch.Country = *input.Country
	}

	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &branch.ID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "branch",
		EntityID:   branch.ID,
	})
	return branch, nil
}

func (s *branchService) SetActive(ctx context.Context, actor authz.Principal, id uuid.UUID, active bool) error {
	if !authz.CanManageBranches(actor) {
		return domain.ErrForbidden
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.auditor.Record(audit.Event{
		BranchID:   &id,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "branch",
		EntityID:   id,
		Metadata:   map[string]any{"is_active": active},
	})
	return nil
}
