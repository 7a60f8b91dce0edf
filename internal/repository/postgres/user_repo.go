package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (
		id, branch_id, email, password_hash, full_name, phone,
		permission_level, is_active, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.BranchID, user.Email, user.PasswordHash, user.FullName, user.Phone,
		user.PermissionLevel, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "email") {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("userRepo.Create: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE lower(email) = lower($1)", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByEmail: %w", err)
	}
	return &user, nil
}

func (r *userRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, offset, limit int) ([]domain.User, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM users WHERE branch_id = $1", branchID)
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.ListByBranch count: %w", err)
	}

	var users []domain.User
	err = r.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE branch_id = $1
		 ORDER BY full_name ASC LIMIT $2 OFFSET $3`,
		branchID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.ListByBranch: %w", err)
	}
	return users, total, nil
}

func (r *userRepo) ListAll(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users")
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.ListAll count: %w", err)
	}

	var users []domain.User
	err = r.db.SelectContext(ctx, &users,
		"SELECT * FROM users ORDER BY full_name ASC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.ListAll: %w", err)
	}
	return users, total, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET
		branch_id = $1, email = $2, full_name = $3, phone = $4,
		permission_level = $5, is_active = $6, updated_at = $7
	WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		user.BranchID, user.Email, user.FullName, user.Phone,
		user.PermissionLevel, user.IsActive, user.UpdatedAt, user.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "email") {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("userRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3",
		active, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("userRepo.SetActive: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login_at = $1 WHERE id = $2", at, userID)
	if err != nil {
		return fmt.Errorf("userRepo.SetLastLogin: %w", err)
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3",
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("userRepo.UpdatePassword: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetPasswordResetToken(ctx context.Context, userID uuid.UUID, tokenID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_reset_token_id = $1, updated_at = $2 WHERE id = $3",
		tokenID, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("userRepo.SetPasswordResetToken: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResetPassword consumes the stored reset token: the update only applies
// when the stored token id matches, and it clears the token so the link
// cannot be replayed.
func (r *userRepo) ResetPassword(ctx context.Context, userID uuid.UUID, passwordHash, expectedTokenID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, password_reset_token_id = NULL, updated_at = $2
		 WHERE id = $3 AND password_reset_token_id = $4`,
		passwordHash, time.Now().UTC(), userID, expectedTokenID)
	if err != nil {
		return fmt.Errorf("userRepo.ResetPassword: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrResetTokenInvalid
	}
	return nil
}
