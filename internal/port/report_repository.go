package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// ReportRepository defines the contract for inspection report persistence.
// GetByID and GetByShareToken return the bare report row; findings and
// photos are loaded explicitly where a full document is needed.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	GetByShareToken(ctx context.Context, token string) (*domain.Report, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.ReportFilters) ([]domain.Report, int, error)
	Update(ctx context.Context, report *domain.Report) error
	UpdateStatus(ctx context.Context, report *domain.Report) error
	SetShareToken(ctx context.Context, reportID uuid.UUID, token string) error

	AddFinding(ctx context.Context, finding *domain.ReportFinding) error
	UpdateFinding(ctx context.Context, finding *domain.ReportFinding) error
	DeleteFinding(ctx context.Context, reportID, findingID uuid.UUID) error
	ListFindings(ctx context.Context, reportID uuid.UUID) ([]domain.ReportFinding, error)

	AddPhoto(ctx context.Context, photo *domain.ReportPhoto) error
	GetPhoto(ctx context.Context, reportID, photoID uuid.UUID) (*domain.ReportPhoto, error)
	DeletePhoto(ctx context.Context, reportID, photoID uuid.UUID) error
	ListPhotos(ctx context.Context, reportID uuid.UUID) ([]domain.ReportPhoto, error)
}
