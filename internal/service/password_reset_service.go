package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// ForgotPasswordInput is the DTO for forgot-password requests.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput is the DTO for reset-password requests.
type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// PasswordResetService defines the password reset contract.
type PasswordResetService interface {
	// ForgotPassword always returns nil so responses never reveal whether
	// an account exists.
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

type passwordResetService struct {
	userRepo    port.UserRepository
	emailSender port.EmailSender
	blacklist   port.TokenBlacklist
	jwtCfg      config.JWTConfig
	logger      *zap.Logger
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(
	userRepo port.UserRepository,
	emailSender port.EmailSender,
	blacklist port.TokenBlacklist,
	jwtCfg config.JWTConfig,
	logger *zap.Logger,
) PasswordResetService {
	return &passwordResetService{
		userRepo:    userRepo,
		emailSender: emailSender,
		blacklist:   blacklist,
		jwtCfg:      jwtCfg,
		logger:      logger,
	}
}

func (s *passwordResetService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("forgot-password lookup failed", zap.Error(err))
		}
		return nil
	}
	if !user.IsActive {
		return nil
	}

	tokenString, jti, err := mintPasswordResetToken(s.jwtCfg, user, 1*time.Hour)
	if err != nil {
		s.logger.Warn("reset token generation failed", zap.String("email", user.Email), zap.Error(err))
		return nil
	}

	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, jti); err != nil {
		s.logger.Warn("storing reset token failed", zap.String("email", user.Email), zap.Error(err))
		return nil
	}

	if err := s.emailSender.SendPasswordResetEmail(ctx, user.Email, user.FullName, tokenString); err != nil {
		s.logger.Warn("sending reset email failed", zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	claims, err := s.parseResetToken(input.Token)
	if err != nil {
		return domain.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.userRepo.ResetPassword(ctx, claims.UserID, string(hash), claims.ID); err != nil {
		return err
	}

	// Old sessions stay signed-in with the old password otherwise.
	if err := s.blacklist.InvalidateUser(ctx, claims.UserID.String(), time.Now()); err != nil {
		s.logger.Warn("revoking sessions after reset failed",
			zap.String("user_id", claims.UserID.String()), zap.Error(err))
	}
	return nil
}

// mintPasswordResetToken issues a single-purpose token also used for
// account activation invites, which share the consume-once reset flow.
func mintPasswordResetToken(jwtCfg config.JWTConfig, user *domain.User, ttl time.Duration) (tokenString, jti string, err error) {
	now := time.Now()
	jti = uuid.New().String()
	branchID := ""
	if user.BranchID != nil {
		branchID = user.BranchID.String()
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
			Audience:  jwt.ClaimStrings{"password-reset"},
		},
		UserID:          user.ID,
		BranchID:        branchID,
		Email:           user.Email,
		PermissionLevel: user.PermissionLevel,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(jwtCfg.Secret))
	if err != nil {
		return "", "", err
	}
	return tokenString, jti, nil
}

func (s *passwordResetService) parseResetToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing reset token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrResetTokenInvalid
	}

	aud, _ := claims.GetAudience()
	found := false
	for _, a := range aud {
		if a == "password-reset" {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrResetTokenInvalid
	}

	return claims, nil
}
