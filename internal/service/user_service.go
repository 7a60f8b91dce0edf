package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// CreateUserInput is the DTO for creating a user. BranchID is nil only for
// superadmins. When Password is empty the user is invited by email instead.
type CreateUserInput struct {
	Email           string                 `json:"email" binding:"required,email"`
	Password        string                 `json:"password" binding:"omitempty,min=8"`
	FullName        string                 `json:"full_name" binding:"required"`
	Phone           string                 `json:"phone"`
	PermissionLevel domain.PermissionLevel `json:"permission_level"`
	BranchID        *uuid.UUID             `json:"branch_id"`
}

// UpdateUserInput is the DTO for updating a user.
type UpdateUserInput struct {
	Email           *string                 `json:"email"`
	FullName        *string                 `json:"full_name"`
	Phone           *string                 `json:"phone"`
	PermissionLevel *domain.PermissionLevel `json:"permission_level"`
}

// UpdateProfileInput is the DTO for self-service profile updates.
type UpdateProfileInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

// ChangePasswordInput is the DTO for self-service password changes.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UserService defines the user management contract.
type UserService interface {
	Create(ctx context.Context, actor authz.Principal, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, actor authz.Principal, userID uuid.UUID) (*domain.User, error)
	// List returns the users the actor may see. Superadmins list any branch
	// through branchID, or every user when branchID is uuid.Nil.
	List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, actor authz.Principal, userID uuid.UUID, input UpdateUserInput) (*domain.User, error)
	SetActive(ctx context.Context, actor authz.Principal, userID uuid.UUID, active bool) error

	UpdateProfile(ctx context.Context, actor authz.Principal, input UpdateProfileInput) (*domain.User, error)
	// ChangePassword revokes every existing session and returns a fresh pair
	// for the current one.
	ChangePassword(ctx context.Context, actor authz.Principal, input ChangePasswordInput) (*TokenPair, error)
}

type userService struct {
	repo        port.UserRepository
	emailSender port.EmailSender
	blacklist   port.TokenBlacklist
	authSvc     AuthService
	auditor     *audit.Dispatcher
	jwtCfg      config.JWTConfig
	logger      *zap.Logger
}

// NewUserService creates a new UserService implementation.
func NewUserService(
	repo port.UserRepository,
	emailSender port.EmailSender,
	blacklist port.TokenBlacklist,
	authSvc AuthService,
	auditor *audit.Dispatcher,
	jwtCfg config.JWTConfig,
	logger *zap.Logger,
) UserService {
	return &userService{
		repo:        repo,
		emailSender: emailSender,
		blacklist:   blacklist,
		authSvc:     authSvc,
		auditor:     auditor,
		jwtCfg:      jwtCfg,
		logger:      logger,
	}
}

func (s *userService) Create(ctx context.Context, actor authz.Principal, input CreateUserInput) (*domain.User, error) {
	if !input.PermissionLevel.Valid() {
		return nil, domain.ErrValidation
	}
	if input.PermissionLevel == domain.LevelSuperadmin {
		if input.BranchID != nil {
			return nil, domain.ErrForbidden
		}
	} else if input.BranchID == nil {
		return nil, domain.ErrBranchRequired
	}

	targetBranch := uuid.Nil
	if input.BranchID != nil {
		targetBranch = *input.BranchID
	}
	if !authz.CanManageUser(actor, targetBranch, input.PermissionLevel) {
		return nil, domain.ErrForbidden
	}

	user := &domain.User{
		BranchID:        input.BranchID,
		Email:           input.Email,
		FullName:        input.FullName,
		Phone:           input.Phone,
		PermissionLevel: input.PermissionLevel,
		IsActive:        true,
	}

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 12)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if input.Password == "" {
		s.sendActivation(ctx, user)
	}

	s.auditor.Record(audit.Event{
		BranchID:   user.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionCreate,
		EntityType: "user",
		EntityID:   user.ID,
		Metadata:   map[string]any{"email": user.Email, "permission_level": int(user.PermissionLevel)},
	})
	return user, nil
}

// sendActivation emails an invite link carrying a reset-style token, so new
// users choose their own password and none travels in plaintext.
func (s *userService) sendActivation(ctx context.Context, user *domain.User) {
	token, jti, err := mintPasswordResetToken(s.jwtCfg, user, 72*time.Hour)
	if err != nil {
		s.logger.Warn("activation token generation failed", zap.String("email", user.Email), zap.Error(err))
		return
	}
	if err := s.repo.SetPasswordResetToken(ctx, user.ID, jti); err != nil {
		s.logger.Warn("storing activation token failed", zap.String("email", user.Email), zap.Error(err))
		return
	}
	if err := s.emailSender.SendActivationEmail(ctx, user.Email, user.FullName, token); err != nil {
		s.logger.Warn("sending activation email failed", zap.String("email", user.Email), zap.Error(err))
	}
}

func (s *userService) GetByID(ctx context.Context, actor authz.Principal, userID uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.BranchID == nil {
		if !actor.IsSuperadmin() && actor.UserID != user.ID {
			return nil, domain.ErrForbidden
		}
		return user, nil
	}
	if !authz.CanReadBranchDoc(actor, *user.BranchID) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, offset, limit int) ([]domain.User, int, error) {
	if actor.IsSuperadmin() && branchID == uuid.Nil {
		return s.repo.ListAll(ctx, offset, limit)
	}
	resolved, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByBranch(ctx, resolved, offset, limit)
}

func (s *userService) Update(ctx context.Context, actor authz.Principal, userID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, user) {
		return nil, domain.ErrForbidden
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.PermissionLevel != nil {
		if !input.PermissionLevel.Valid() {
			return nil, domain.ErrValidation
		}
		// Level changes are re-checked against the new level, so a branch
		// admin cannot promote anyone to their own level or above.
		targetBranch := uuid.Nil
		if user.BranchID != nil {
			targetBranch = *user.BranchID
		}
		if !authz.CanManageUser(actor, targetBranch, *input.PermissionLevel) {
			return nil, domain.ErrForbidden
		}
		user.PermissionLevel = *input.PermissionLevel
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.auditor.Record(audit.Event{
		BranchID:   user.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "user",
		EntityID:   user.ID,
	})
	return user, nil
}

func (s *userService) SetActive(ctx context.Context, actor authz.Principal, userID uuid.UUID, active bool) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.canManage(actor, user) {
		return domain.ErrForbidden
	}
	if actor.UserID == user.ID {
		return domain.ErrForbidden
	}

	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		if err := s.blacklist.InvalidateUser(ctx, userID.String(), time.Now()); err != nil {
			s.logger.Warn("revoking sessions of deactivated user failed",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	s.auditor.Record(audit.Event{
		BranchID:   user.BranchID,
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionUpdate,
		EntityType: "user",
		EntityID:   user.ID,
		Metadata:   map[string]any{"is_active": active},
	})
	return nil
}

func (s *userService) canManage(actor authz.Principal, target *domain.User) bool {
	targetBranch := uuid.Nil
	if target.BranchID != nil {
		targetBranch = *target.BranchID
	}
	return authz.CanManageUser(actor, targetBranch, target.PermissionLevel)
}

func (s *userService) UpdateProfile(ctx context.Context, actor authz.Principal, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, actor authz.Principal, input ChangePasswordInput) (*TokenPair, error) {
	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), 12)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}

	if err := s.blacklist.InvalidateUser(ctx, user.ID.String(), time.Now()); err != nil {
		s.logger.Warn("revoking sessions after password change failed",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return s.authSvc.GenerateTokenPairForUser(user)
}
