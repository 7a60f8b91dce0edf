package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// OfferRepository defines the contract for offer persistence. Create and
// Update persist the offer together with its lines in one transaction.
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	GetByPublicToken(ctx context.Context, token string) (*domain.Offer, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.OfferFilters) ([]domain.Offer, int, error)
	Update(ctx context.Context, offer *domain.Offer) error
	MarkSent(ctx context.Context, offerID uuid.UUID, publicToken string, sentAt time.Time) error
	Decide(ctx context.Context, offerID uuid.UUID, status domain.OfferStatus, declineReason string, decidedAt time.Time) error
	Archive(ctx context.Context, offerID uuid.UUID, at time.Time) error
}
