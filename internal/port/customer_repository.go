package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// CustomerRepository defines the contract for customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountLinkedDocuments(ctx context.Context, customerID uuid.UUID) (int, error)
}

// BuildingRepository defines the contract for building persistence.
type BuildingRepository interface {
	Create(ctx context.Context, building *domain.Building) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Building, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Building, error)
	Update(ctx context.Context, building *domain.Building) error
	Delete(ctx context.Context, id uuid.UUID) error
}
