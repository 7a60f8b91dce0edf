package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// BranchRepository defines the contract for branch persistence.
type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Branch, error)
	List(ctx context.Context, offset, limit int) ([]domain.Branch, int, error)
	Update(ctx context.Context, branch *domain.Branch) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// UserRepository defines the contract for user persistence. Lookups by id
// and email are global: cross-branch visibility is decided by authz checks
// on the returned row, not by the data layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, offset, limit int) ([]domain.User, int, error)
	ListAll(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	SetPasswordResetToken(ctx context.Context, userID uuid.UUID, tokenID string) error
	ResetPassword(ctx context.Context, userID uuid.UUID, passwordHash, expectedTokenID string) error
}
