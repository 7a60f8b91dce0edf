package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

func setupSocialAuthService() (service.SocialAuthService, *mocks.MockSocialTokenVerifier, *mocks.MockUserRepo, *mocks.MockBranchRepo) {
	verifier := new(mocks.MockSocialTokenVerifier)
	userRepo := new(mocks.MockUserRepo)
	branchRepo := new(mocks.MockBranchRepo)
	authSvc := service.NewAuthService(userRepo, branchRepo, new(mocks.MockTokenBlacklist), testAuditor(), testJWTConfig(), zap.NewNop())
	svc := service.NewSocialAuthService(map[string]port.SocialTokenVerifier{"google": verifier}, userRepo, branchRepo, authSvc)
	return svc, verifier, userRepo, branchRepo
}

func TestSocialAuthService_SocialLogin_Success(t *testing.T) {
	svc, verifier, userRepo, branchRepo := setupSocialAuthService()
	branchID := uuid.New()
	user := activeBranchUser(branchID, "sommer2024tak")

	verifier.On("VerifyIDToken", mock.Anything, "google-id-token").Return(&port.SocialAuthClaims{
		Subject:       "1093802184",
		Email:         user.Email,
		EmailVerified: true,
		FullName:      user.FullName,
	}, nil)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{ID: branchID, IsActive: true}, nil)

	out, err := svc.SocialLogin(context.Background(), service.SocialLoginInput{Provider: "google", IDToken: "google-id-token"})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)
	assert.NotEmpty(t, out.Tokens.AccessToken)
	assert.NotEmpty(t, out.Tokens.RefreshToken)
}

func TestSocialAuthService_SocialLogin_UnsupportedProvider(t *testing.T) {
	svc, _, _, _ := setupSocialAuthService()

	_, err := svc.SocialLogin(context.Background(), service.SocialLoginInput{Provider: "facebook", IDToken: "tok"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported social auth provider")
}

func TestSocialAuthService_SocialLogin_BadIDToken(t *testing.T) {
	svc, verifier, userRepo, _ := setupSocialAuthService()

	verifier.On("VerifyIDToken", mock.Anything, "forged").Return(nil, errors.New("signature mismatch"))

	_, err := svc.SocialLogin(context.Background(), service.SocialLoginInput{Provider: "google", IDToken: "forged"})

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	userRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestSocialAuthService_SocialLogin_UnverifiedEmail(t *testing.T) {
	svc, verifier, userRepo, _ := setupSocialAuthService()

	verifier.On("VerifyIDToken", mock.Anything, mock.Anything).Return(&port.SocialAuthClaims{
		Subject: "1093802184",
		Email:   "inspector@taklaget.no",
	}, nil)

	_, err := svc.SocialLogin(context.Background(), service.SocialLoginInput{Provider: "google", IDToken: "tok"})

	assert.Error(t, err)
	userRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestSocialAuthService_SocialLogin_UnknownAccountNotProvisioned(t *testing.T) {
	svc, verifier, userRepo, _ := setupSocialAuthService()

	verifier.On("VerifyIDToken", mock.Anything, mock.Anything).Return(&port.SocialAuthClaims{
		Subject:       "1093802184",
		Email:         "fremmed@gmail.com",
		EmailVerified: true,
	}, nil)
	userRepo.On("GetByEmail", mock.Anything, "fremmed@gmail.com").Return(nil, domain.ErrNotFound)

	_, err := svc.SocialLogin(context.Background(), service.SocialLoginInput{Provider: "google", IDToken: "tok"})

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSocialAuthService_SocialLogin_InactiveUser(t *testing.T) {
	svc, verifier, userRepo, _ := setupSocialAuthService()
	user := activeBranchUser(uuid.New(), "sommer2024tak")
	user.IsActive = false

	verifier.On("VerifyIDToken", mock.Anything, mock.Anything).Return(&port.SocialAuthClaims{
		Subject:       "1093802184",
		Email:         user.Email,
		EmailVerified: true,
	}, nil)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := svc.SocialLogin(context.Background(), service.SocialLoginInput{Provider: "google", IDToken: "tok"})

	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestSocialAuthService_SocialLogin_InactiveBranch(t *testing.T) {
	svc, verifier, userRepo, branchRepo := setupSocialAuthService()
	branchID := uuid.New()
	user := activeBranchUser(branchID, "sommer2024tak")

	verifier.On("VerifyIDToken", mock.Anything, mock.Anything).Return(&port.SocialAuthClaims{
		Subject:       "1093802184",
		Email:         user.Email,
		EmailVerified: true,
	}, nil)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{ID: branchID, IsActive: false}, nil)

	_, err := svc.SocialLogin(context.Background(), service.SocialLoginInput{Provider: "google", IDToken: "tok"})

	assert.ErrorIs(t, err, domain.ErrBranchInactive)
}
