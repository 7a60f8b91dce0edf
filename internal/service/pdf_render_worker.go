package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/pdf"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// PDFRenderWorker polls the render queue, turns claimed jobs into PDFs and
// uploads the result. Claims use row locks, so several instances can run the
// worker side by side.
type PDFRenderWorker struct {
	jobRepo      port.PDFJobRepository
	reportRepo   port.ReportRepository
	offerRepo    port.OfferRepository
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	branchRepo   port.BranchRepository
	userRepo     port.UserRepository
	renderer     port.PDFRenderer
	templates    *pdf.TemplateEngine
	storage      port.ObjectStorage
	cfg          config.PDFConfig
	s3Cfg        config.S3Config
	logger       *zap.Logger
	wg           sync.WaitGroup
}

// NewPDFRenderWorker creates a new PDFRenderWorker.
func NewPDFRenderWorker(
	jobRepo port.PDFJobRepository,
	reportRepo port.ReportRepository,
	offerRepo port.OfferRepository,
	customerRepo port.CustomerRepository,
	buildingRepo port.BuildingRepository,
	branchRepo port.BranchRepository,
	userRepo port.UserRepository,
	renderer port.PDFRenderer,
	templates *pdf.TemplateEngine,
	storage port.ObjectStorage,
	cfg config.PDFConfig,
	s3Cfg config.S3Config,
	logger *zap.Logger,
) *PDFRenderWorker {
	return &PDFRenderWorker{
		jobRepo:      jobRepo,
		reportRepo:   reportRepo,
		offerRepo:    offerRepo,
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		branchRepo:   branchRepo,
		userRepo:     userRepo,
		renderer:     renderer,
		templates:    templates,
		storage:      storage,
		cfg:          cfg,
		s3Cfg:        s3Cfg,
		logger:       logger,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight renders have finished.
func (w *PDFRenderWorker) Start(ctx context.Context) {
	interval := time.Duration(w.cfg.PollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	concurrency := w.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	w.logger.Info("pdf render worker started",
		zap.Duration("poll", interval),
		zap.Int("concurrency", concurrency),
		zap.Int("max_retries", w.cfg.MaxRetries))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pdf render worker shutting down, waiting for in-flight renders")
			w.wg.Wait()
			w.logger.Info("pdf render worker stopped")
			return
		case <-ticker.C:
			for len(sem) < concurrency {
				job, err := w.jobRepo.ClaimNext(ctx)
				if err != nil {
					if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
						w.logger.Error("claiming pdf job failed", zap.Error(err))
					}
					break
				}

				sem <- struct{}{}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()

					// Fresh context so an in-flight render survives shutdown.
					renderCtx, cancel := context.WithTimeout(context.Background(),
						time.Duration(w.cfg.RenderTimeoutSec)*time.Second+30*time.Second)
					defer cancel()
					w.process(renderCtx, job)
				}()
			}
		}
	}
}

func (w *PDFRenderWorker) process(ctx context.Context, job *domain.PDFJob) {
	w.logger.Info("rendering pdf job",
		zap.String("job_id", job.ID.String()),
		zap.String("entity_type", string(job.EntityType)),
		zap.Int("attempt", job.Attempts))

	key, err := w.render(ctx, job)
	if err != nil {
		requeue := job.Attempts < w.cfg.MaxRetries
		w.logger.Warn("pdf render failed",
			zap.String("job_id", job.ID.String()),
			zap.Bool("requeue", requeue),
			zap.Error(err))
		if markErr := w.jobRepo.MarkFailed(ctx, job.ID, err.Error(), requeue); markErr != nil {
			w.logger.Error("marking pdf job failed", zap.Error(markErr))
		}
		return
	}

	if err := w.jobRepo.MarkDone(ctx, job.ID, key); err != nil {
		w.logger.Error("marking pdf job done failed",
			zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}
	w.logger.Info("pdf job done",
		zap.String("job_id", job.ID.String()), zap.String("key", key))
}

func (w *PDFRenderWorker) render(ctx context.Context, job *domain.PDFJob) (string, error) {
	var html string
	var err error
	switch job.EntityType {
	case domain.PDFEntityReport:
		html, err = w.reportHTML(ctx, job)
	case domain.PDFEntityOffer:
		html, err = w.offerHTML(ctx, job)
	default:
		return "", fmt.Errorf("unknown entity type %q", job.EntityType)
	}
	if err != nil {
		return "", err
	}

	data, err := w.renderer.RenderHTML(ctx, html)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("branches/%s/pdf/%ss/%s/%s.pdf",
		job.BranchID, job.EntityType, job.EntityID, job.ID)
	_, err = w.storage.Upload(ctx, port.UploadInput{
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: "application/pdf",
		Size:        int64(len(data)),
	})
	if err != nil {
		return "", fmt.Errorf("uploading pdf: %w", err)
	}
	return key, nil
}

func (w *PDFRenderWorker) reportHTML(ctx context.Context, job *domain.PDFJob) (string, error) {
	report, err := w.reportRepo.GetByID(ctx, job.EntityID)
	if err != nil {
		return "", fmt.Errorf("loading report: %w", err)
	}
	findings, err := w.reportRepo.ListFindings(ctx, report.ID)
	if err != nil {
		return "", err
	}
	report.Findings = findings
	photos, err := w.reportRepo.ListPhotos(ctx, report.ID)
	if err != nil {
		return "", err
	}

	customer, err := w.customerRepo.GetByID(ctx, report.CustomerID)
	if err != nil {
		return "", err
	}
	building, err := w.buildingRepo.GetByID(ctx, report.BuildingID)
	if err != nil {
		return "", err
	}
	branch, err := w.branchRepo.GetByID(ctx, report.BranchID)
	if err != nil {
		return "", err
	}
	inspector, err := w.userRepo.GetByID(ctx, report.InspectorID)
	if err != nil {
		return "", err
	}

	// Chrome fetches the photos itself, so they are presigned for the
	// duration of the render.
	photoViews := make([]pdf.ReportPhotoView, 0, len(photos))
	for _, p := range photos {
		url, err := w.storage.GetPresignedURL(ctx, p.S3Key, w.s3Cfg.PresignExpiry)
		if err != nil {
			w.logger.Warn("presigning photo for render failed",
				zap.String("key", p.S3Key), zap.Error(err))
			continue
		}
		photoViews = append(photoViews, pdf.ReportPhotoView{URL: url, Caption: p.Caption})
	}

	return w.templates.ReportHTML(pdf.ReportData{
		Report:      report,
		Customer:    customer,
		Building:    building,
		Branch:      branch,
		Inspector:   inspector,
		Photos:      photoViews,
		GeneratedAt: time.Now().UTC(),
	})
}

func (w *PDFRenderWorker) offerHTML(ctx context.Context, job *domain.PDFJob) (string, error) {
	offer, err := w.offerRepo.GetByID(ctx, job.EntityID)
	if err != nil {
		return "", fmt.Errorf("loading offer: %w", err)
	}
	customer, err := w.customerRepo.GetByID(ctx, offer.CustomerID)
	if err != nil {
		return "", err
	}
	branch, err := w.branchRepo.GetByID(ctx, offer.BranchID)
	if err != nil {
		return "", err
	}

	return w.templates.OfferHTML(pdf.OfferData{
		Offer:       offer,
		Customer:    customer,
		Branch:      branch,
		GeneratedAt: time.Now().UTC(),
	})
}
