package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// AgreementRepository defines the contract for service agreement persistence.
type AgreementRepository interface {
	Create(ctx context.Context, agreement *domain.ServiceAgreement) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceAgreement, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AgreementFilters) ([]domain.ServiceAgreement, int, error)
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]domain.ServiceAgreement, error)
	Update(ctx context.Context, agreement *domain.ServiceAgreement) error
	// HasOpenGeneratedVisit reports whether a scheduled appointment generated
	// from this agreement already exists, which blocks generating another.
	HasOpenGeneratedVisit(ctx context.Context, agreementID uuid.UUID) (bool, error)
}
