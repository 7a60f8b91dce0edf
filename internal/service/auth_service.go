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

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// Claims represents the JWT claims with branch context. BranchID is the
// empty string for superadmins.
type Claims struct {
	jwt.RegisteredClaims
	UserID          uuid.UUID              `json:"user_id"`
	BranchID        string                 `json:"branch_id"`
	Email           string                 `json:"email"`
	PermissionLevel domain.PermissionLevel `json:"permission_level"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginOutput contains the signed-in user and their tokens.
type LoginOutput struct {
	User   *domain.User `json:"user"`
	Tokens *TokenPair   `json:"tokens"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput is the DTO for logout requests. RefreshToken is optional.
type LogoutInput struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout revokes the presented tokens for the remainder of their lifetime.
	Logout(ctx context.Context, accessToken, refreshToken string) error
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
	GenerateTokenPairForUser(user *domain.User) (*TokenPair, error)
}

type authService struct {
	userRepo   port.UserRepository
	branchRepo port.BranchRepository
	blacklist  port.TokenBlacklist
	auditor    *audit.Dispatcher
	cfg        config.JWTConfig
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(
	userRepo port.UserRepository,
	branchRepo port.BranchRepository,
	blacklist port.TokenBlacklist,
	auditor *audit.Dispatcher,
	cfg config.JWTConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		blacklist:  blacklist,
		auditor:    auditor,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if user.BranchID != nil {
		branch, err := s.branchRepo.GetByID(ctx, *user.BranchID)
		if err != nil {
			return nil, fmt.Errorf("auth.Login: %w", err)
		}
		if !branch.IsActive {
			return nil, domain.ErrBranchInactive
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.GenerateTokenPairForUser(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("recording last login failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	s.auditor.Record(audit.Event{
		BranchID:   user.BranchID,
		ActorID:    &user.ID,
		ActorEmail: user.Email,
		Action:     domain.AuditActionLogin,
		EntityType: "user",
		EntityID:   user.ID,
	})

	return &LoginOutput{User: user, Tokens: tokens}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(ctx, refreshToken, "refresh")
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	return s.GenerateTokenPairForUser(user)
}

func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.revoke(ctx, accessToken, "access"); err != nil {
		return err
	}
	if refreshToken != "" {
		if err := s.revoke(ctx, refreshToken, "refresh"); err != nil {
			return err
		}
	}
	return nil
}

func (s *authService) revoke(ctx context.Context, tokenString, audience string) error {
	claims, err := s.validateTokenString(ctx, tokenString, audience)
	if err != nil {
		// Already invalid tokens need no blacklist entry.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validateTokenString(ctx, tokenString, "access")
}

func (s *authService) GenerateTokenPairForUser(user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)
	refreshExpiry := now.Add(s.cfg.RefreshTokenExpiry)

	branchID := ""
	if user.BranchID != nil {
		branchID = user.BranchID.String()
	}

	accessClaims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{"access"},
		},
		UserID:          user.ID,
		BranchID:        branchID,
		Email:           user.Email,
		PermissionLevel: user.PermissionLevel,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refreshClaims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{"refresh"},
		},
		UserID:          user.ID,
		BranchID:        branchID,
		Email:           user.Email,
		PermissionLevel: user.PermissionLevel,
	}

	refreshTokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshTokenObj.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) validateTokenString(ctx context.Context, tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	found := false
	for _, a := range aud {
		if a == audience {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrUnauthorized
	}

	blocked, err := s.blacklist.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking token revocation: %w", err)
	}
	if blocked {
		return nil, domain.ErrTokenRevoked
	}

	if claims.IssuedAt != nil {
		invalidated, err := s.blacklist.IsUserInvalidated(ctx, claims.UserID.String(), claims.IssuedAt.Time)
		if err != nil {
			return nil, fmt.Errorf("checking user revocation: %w", err)
		}
		if invalidated {
			return nil, domain.ErrTokenRevoked
		}
	}

	return claims, nil
}
