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

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	customer.ID = uuid.New()
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `INSERT INTO customers (
		id, branch_id, name, org_number, contact_name, email, phone,
		address_line, postal_code, city, country, notes,
		created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15
	)`

	_, err := r.db.ExecContext(ctx, query,
		customer.ID, customer.BranchID, customer.Name, customer.OrgNumber,
		customer.ContactName, customer.Email, customer.Phone,
		customer.AddressLine, customer.PostalCode, customer.City, customer.Country, customer.Notes,
		customer.CreatedBy, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &customer, nil
}

func (r *customerRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error) {
	where := "WHERE branch_id = $1"
	args := []interface{}{branchID}
	if search != "" {
		where += " AND (name ILIKE $2 OR contact_name ILIKE $2 OR email ILIKE $2)"
		args = append(args, "%"+search+"%")
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.ListByBranch count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM customers %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var customers []domain.Customer
	err = r.db.SelectContext(ctx, &customers, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.ListByBranch: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	query := `UPDATE customers SET
		name = $1, org_number = $2, contact_name = $3, email = $4, phone = $5,
		address_line = $6, postal_code = $7, city = $8, country = $9, notes = $10,
		updated_at = $11
	WHERE id = $12`
	result, err := r.db.ExecContext(ctx, query,
		customer.Name, customer.OrgNumber, customer.ContactName, customer.Email, customer.Phone,
		customer.AddressLine, customer.PostalCode, customer.City, customer.Country, customer.Notes,
		customer.UpdatedAt, customer.ID)
	if err != nil {
		return fmt.Errorf("customerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("customerRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepo) CountLinkedDocuments(ctx context.Context, customerID uuid.UUID) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT
		(SELECT COUNT(*) FROM reports WHERE customer_id = $1) +
		(SELECT COUNT(*) FROM offers WHERE customer_id = $1) +
		(SELECT COUNT(*) FROM appointments WHERE customer_id = $1) +
		(SELECT COUNT(*) FROM service_agreements WHERE customer_id = $1)`,
		customerID)
	if err != nil {
		return 0, fmt.Errorf("customerRepo.CountLinkedDocuments: %w", err)
	}
	return total, nil
}
