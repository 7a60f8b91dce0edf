package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) error {
	report.ID = uuid.New()
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	query := `INSERT INTO reports (
		id, branch_id, customer_id, building_id, inspector_id,
		title, status, summary, weather_conditions, roof_condition_grade,
		scheduled_for, inspected_at, created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15
	)`

	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.BranchID, report.CustomerID, report.BuildingID, report.InspectorID,
		report.Title, report.Status, report.Summary, report.WeatherConditions, report.RoofConditionGrade,
		report.ScheduledFor, report.InspectedAt, report.CreatedBy, report.CreatedAt, report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.GetContext(ctx, &report, "SELECT * FROM reports WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	return &report, nil
}

func (r *reportRepo) GetByShareToken(ctx context.Context, token string) (*domain.Report, error) {
	var report domain.Report
	err := r.db.GetContext(ctx, &report, "SELECT * FROM reports WHERE share_token = $1", token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByShareToken: %w", err)
	}
	return &report, nil
}

// reportWhereClause builds the WHERE clause for branch report listings.
func reportWhereClause(branchID uuid.UUID, filters domain.ReportFilters) (clause string, args []interface{}) {
	args = []interface{}{branchID}
	clause = "WHERE branch_id = $1"
	argN := 2

	if filters.Status != "" {
		clause += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, filters.Status)
		argN++
	}
	if filters.CustomerID != uuid.Nil {
		clause += fmt.Sprintf(" AND customer_id = $%d", argN)
		args = append(args, filters.CustomerID)
		argN++
	}
	if filters.InspectorID != uuid.Nil {
		clause += fmt.Sprintf(" AND inspector_id = $%d", argN)
		args = append(args, filters.InspectorID)
		argN++
	}
	if filters.From != nil {
		clause += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, *filters.From)
		argN++
	}
	if filters.To != nil {
		clause += fmt.Sprintf(" AND created_at <= $%d", argN)
		args = append(args, *filters.To)
		argN++
	}
	return clause, args
}

func (r *reportRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.ReportFilters) ([]domain.Report, int, error) {
	where, args := reportWhereClause(branchID, filters)

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("reportRepo.ListByBranch count: %w", err)
	}

	query := fmt.Sprintf(`SELECT r.*,
		(SELECT COUNT(*) FROM report_findings f WHERE f.report_id = r.id) AS finding_count
	FROM reports r %s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset)

	var reports []domain.Report
	err = r.db.SelectContext(ctx, &reports, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("reportRepo.ListByBranch: %w", err)
	}
	return reports, total, nil
}

func (r *reportRepo) Update(ctx context.Context, report *domain.Report) error {
	report.UpdatedAt = time.Now().UTC()
	query := `UPDATE reports SET
		title = $1, summary = $2, weather_conditions = $3, roof_condition_grade = $4,
		scheduled_for = $5, inspected_at = $6, inspector_id = $7, building_id = $8,
		updated_at = $9
	WHERE id = $10`
	result, err := r.db.ExecContext(ctx, query,
		report.Title, report.Summary, report.WeatherConditions, report.RoofConditionGrade,
		report.ScheduledFor, report.InspectedAt, report.InspectorID, report.BuildingID,
		report.UpdatedAt, report.ID)
	if err != nil {
		return fmt.Errorf("reportRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) UpdateStatus(ctx context.Context, report *domain.Report) error {
	report.UpdatedAt = time.Now().UTC()
	query := `UPDATE reports SET
		status = $1, completed_at = $2, sent_at = $3, archived_at = $4, updated_at = $5
	WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		report.Status, report.CompletedAt, report.SentAt, report.ArchivedAt,
		report.UpdatedAt, report.ID)
	if err != nil {
		return fmt.Errorf("reportRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) SetShareToken(ctx context.Context, reportID uuid.UUID, token string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE reports SET share_token = $1, updated_at = $2 WHERE id = $3",
		token, time.Now().UTC(), reportID)
	if err != nil {
		return fmt.Errorf("reportRepo.SetShareToken: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) AddFinding(ctx context.Context, finding *domain.ReportFinding) error {
	finding.ID = uuid.New()
	now := time.Now().UTC()
	finding.CreatedAt = now
	finding.UpdatedAt = now

	query := `INSERT INTO report_findings (
		id, report_id, branch_id, position, component, severity,
		description, recommendation, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		finding.ID, finding.ReportID, finding.BranchID, finding.Position,
		finding.Component, finding.Severity, finding.Description, finding.Recommendation,
		finding.CreatedAt, finding.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.AddFinding: %w", err)
	}
	return nil
}

func (r *reportRepo) UpdateFinding(ctx context.Context, finding *domain.ReportFinding) error {
	finding.UpdatedAt = time.Now().UTC()
	query := `UPDATE report_findings SET
		position = $1, component = $2, severity = $3, description = $4,
		recommendation = $5, updated_at = $6
	WHERE id = $7 AND report_id = $8`
	result, err := r.db.ExecContext(ctx, query,
		finding.Position, finding.Component, finding.Severity, finding.Description,
		finding.Recommendation, finding.UpdatedAt, finding.ID, finding.ReportID)
	if err != nil {
		return fmt.Errorf("reportRepo.UpdateFinding: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) DeleteFinding(ctx context.Context, reportID, findingID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM report_findings WHERE id = $1 AND report_id = $2", findingID, reportID)
	if err != nil {
		return fmt.Errorf("reportRepo.DeleteFinding: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) ListFindings(ctx context.Context, reportID uuid.UUID) ([]domain.ReportFinding, error) {
	var findings []domain.ReportFinding
	err := r.db.SelectContext(ctx, &findings,
		"SELECT * FROM report_findings WHERE report_id = $1 ORDER BY position ASC, created_at ASC",
		reportID)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.ListFindings: %w", err)
	}
	return findings, nil
}

func (r *reportRepo) AddPhoto(ctx context.Context, photo *domain.ReportPhoto) error {
	photo.ID = uuid.New()
	photo.CreatedAt = time.Now().UTC()

	query := `INSERT INTO report_photos (
		id, report_id, finding_id, branch_id, s3_key, content_type,
		file_size, caption, uploaded_by, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.ReportID, photo.FindingID, photo.BranchID, photo.S3Key,
		photo.ContentType, photo.FileSize, photo.Caption, photo.UploadedBy, photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.AddPhoto: %w", err)
	}
	return nil
}

func (r *reportRepo) GetPhoto(ctx context.Context, reportID, photoID uuid.UUID) (*domain.ReportPhoto, error) {
	var photo domain.ReportPhoto
	err := r.db.GetContext(ctx, &photo,
		"SELECT * FROM report_photos WHERE id = $1 AND report_id = $2", photoID, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetPhoto: %w", err)
	}
	return &photo, nil
}

func (r *reportRepo) DeletePhoto(ctx context.Context, reportID, photoID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM report_photos WHERE id = $1 AND report_id = $2", photoID, reportID)
	if err != nil {
		return fmt.Errorf("reportRepo.DeletePhoto: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) ListPhotos(ctx context.Context, reportID uuid.UUID) ([]domain.ReportPhoto, error) {
	var photos []domain.ReportPhoto
	err := r.db.SelectContext(ctx, &photos,
		"SELECT * FROM report_photos WHERE report_id = $1 ORDER BY created_at ASC", reportID)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.ListPhotos: %w", err)
	}
	return photos, nil
}
