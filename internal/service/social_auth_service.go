package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// SocialLoginInput is the DTO for social login requests.
type SocialLoginInput struct {
	Provider string `json:"provider" binding:"required"`
	IDToken  string `json:"id_token" binding:"required"`
}

// SocialAuthService signs in existing staff through an identity provider.
// Accounts are provisioned by admins, so an unknown email is rejected
// rather than auto-created.
type SocialAuthService interface {
	SocialLogin(ctx context.Context, input SocialLoginInput) (*LoginOutput, error)
}

type socialAuthService struct {
	verifiers  map[string]port.SocialTokenVerifier
	userRepo   port.UserRepository
	branchRepo port.BranchRepository
	authSvc    AuthService
}

// NewSocialAuthService creates a new SocialAuthService.
func NewSocialAuthService(
	verifiers map[string]port.SocialTokenVerifier,
	userRepo port.UserRepository,
	branchRepo port.BranchRepository,
	authSvc AuthService,
) SocialAuthService {
	return &socialAuthService{
		verifiers:  verifiers,
		userRepo:   userRepo,
		branchRepo: branchRepo,
		authSvc:    authSvc,
	}
}

func (s *socialAuthService) SocialLogin(ctx context.Context, input SocialLoginInput) (*LoginOutput, error) {
	verifier, ok := s.verifiers[input.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported social auth provider: %s", input.Provider)
	}

	claims, err := verifier.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !claims.EmailVerified {
		return nil, fmt.Errorf("email not verified by %s", input.Provider)
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("social login lookup: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}
	if user.BranchID != nil {
		branch, err := s.branchRepo.GetByID(ctx, *user.BranchID)
		if err != nil {
			return nil, fmt.Errorf("social login branch lookup: %w", err)
		}
		if !branch.IsActive {
			return nil, domain.ErrBranchInactive
		}
	}

	tokens, err := s.authSvc.GenerateTokenPairForUser(user)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}
	return &LoginOutput{User: user, Tokens: tokens}, nil
}
