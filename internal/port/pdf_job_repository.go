package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// PDFJobRepository defines the contract for the render queue.
type PDFJobRepository interface {
	Enqueue(ctx context.Context, job *domain.PDFJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PDFJob, error)
	// FindOpen returns a queued or rendering job for the entity, so repeated
	// requests reuse the same job instead of piling up.
	FindOpen(ctx context.Context, entityType domain.PDFEntityType, entityID uuid.UUID) (*domain.PDFJob, error)
	// FindLatestDone returns the newest finished render for the entity.
	FindLatestDone(ctx context.Context, entityType domain.PDFEntityType, entityID uuid.UUID) (*domain.PDFJob, error)
	// ClaimNext atomically moves the oldest queued job to rendering and
	// returns it. Returns domain.ErrNotFound when the queue is empty.
	ClaimNext(ctx context.Context) (*domain.PDFJob, error)
	MarkDone(ctx context.Context, jobID uuid.UUID, s3Key string) error
	// MarkFailed records the error; requeue puts the job back in the queue
	// for another attempt instead of finishing it as failed.
	MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string, requeue bool) error
}
