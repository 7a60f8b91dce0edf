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

type buildingRepo struct {
	db *sqlx.DB
}

// NewBuildingRepo creates a new PostgreSQL-backed BuildingRepository.
func NewBuildingRepo(db *sqlx.DB) port.BuildingRepository {
	return &buildingRepo{db: db}
}

func (r *buildingRepo) Create(ctx context.Context, building *domain.Building) error {
	building.ID = uuid.New()
	now := time.Now().UTC()
	building.CreatedAt = now
	building.UpdatedAt = now

	query := `INSERT INTO buildings (
		id, branch_id, customer_id, label, address_line, postal_code, city,
		roof_type, roof_area_m2, height_m, construction_year,
		latitude, longitude, access_notes, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11,
		$12, $13, $14, $15, $16
	)`

	_, err := r.db.ExecContext(ctx, query,
		building.ID, building.BranchID, building.CustomerID, building.Label,
		building.AddressLine, building.PostalCode, building.City,
		building.RoofType, building.RoofAreaM2, building.HeightM, building.ConstructionYear,
		building.Latitude, building.Longitude, building.AccessNotes,
		building.CreatedAt, building.UpdatedAt)
	if err != nil {
		return fmt.Errorf("buildingRepo.Create: %w", err)
	}
	return nil
}

func (r *buildingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Building, error) {
	var building domain.Building
	err := r.db.GetContext(ctx, &building, "SELECT * FROM buildings WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("buildingRepo.GetByID: %w", err)
	}
	return &building, nil
}

func (r *buildingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Building, error) {
	var buildings []domain.Building
	err := r.db.SelectContext(ctx, &buildings,
		"SELECT * FROM buildings WHERE customer_id = $1 ORDER BY label ASC", customerID)
	if err != nil {
		return nil, fmt.Errorf("buildingRepo.ListByCustomer: %w", err)
	}
	return buildings, nil
}

func (r *buildingRepo) Update(ctx context.Context, building *domain.Building) error {
	building.UpdatedAt = time.Now().UTC()
	query := `UPDATE buildings SET
		label = $1, address_line = $2, postal_code = $3, city = $4,
		roof_type = $5, roof_area_m2 = $6, height_m = $7, construction_year = $8,
		latitude = $9, longitude = $10, access_notes = $11, updated_at = $12
	WHERE id = $13`
	result, err := r.db.ExecContext(ctx, query,
		building.Label, building.AddressLine, building.PostalCode, building.City,
		building.RoofType, building.RoofAreaM2, building.HeightM, building.ConstructionYear,
		building.Latitude, building.Longitude, building.AccessNotes, building.UpdatedAt,
		building.ID)
	if err != nil {
		return fmt.Errorf("buildingRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *buildingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM buildings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("buildingRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
