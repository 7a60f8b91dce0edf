package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-key-for-unit-tests",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "taklaget-test",
	}
}

func hashPassword(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(hash)
}

// testAuditor returns a dispatcher whose writes land in a permissive mock,
// so async audit activity never fails an expectation.
func testAuditor() *audit.Dispatcher {
	auditRepo := new(mocks.MockAuditRepo)
	auditRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Maybe()
	return audit.NewDispatcher(auditRepo, zap.NewNop())
}

func setupAuthService() (service.AuthService, *mocks.MockUserRepo, *mocks.MockBranchRepo, *mocks.MockTokenBlacklist) {
	userRepo := new(mocks.MockUserRepo)
	branchRepo := new(mocks.MockBranchRepo)
	blacklist := new(mocks.MockTokenBlacklist)
	svc := service.NewAuthService(userRepo, branchRepo, blacklist, testAuditor(), testJWTConfig(), zap.NewNop())
	return svc, userRepo, branchRepo, blacklist
}

func activeBranchUser(branchID uuid.UUID, password string) *domain.User {
	return &domain.User{
		ID:              uuid.New(),
		BranchID:        &branchID,
		Email:           "inspector@taklaget.no",
		PasswordHash:    hashPassword(password),
		FullName:        "Kari Nordmann",
		PermissionLevel: domain.LevelInspector,
		IsActive:        true,
	}
}

// --- Login ---

func TestAuthService_Login_Success(t *testing.T) {
	svc, userRepo, branchRepo, _ := setupAuthService()

	branchID := uuid.New()
	user := activeBranchUser(branchID, "password123")

	userRepo.On("GetByEmail", mock.Anything, "inspector@taklaget.no").Return(user, nil)
	branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{ID: branchID, IsActive: true}, nil)
	userRepo.On("SetLastLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

	result, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "inspector@taklaget.no",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.True(t, result.Tokens.ExpiresAt.After(time.Now()))

	userRepo.AssertExpectations(t)
	branchRepo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo, branchRepo, _ := setupAuthService()

	branchID := uuid.New()
	user := activeBranchUser(branchID, "password123")

	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{ID: branchID, IsActive: true}, nil)

	result, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "not-the-password",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Nil(t, result)
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	svc, userRepo, _, _ := setupAuthService()

	userRepo.On("GetByEmail", mock.Anything, "nobody@taklaget.no").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@taklaget.no",
		Password: "password123",
	})

	// Unknown accounts and wrong passwords are indistinguishable.
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	svc, userRepo, _, _ := setupAuthService()

	branchID := uuid.New()
	user := activeBranchUser(branchID, "password123")
	user.IsActive = false

	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "password123",
	})

	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthService_Login_InactiveBranchBlocksLogin(t *testing.T) {
	svc, userRepo, branchRepo, _ := setupAuthService()

	branchID := uuid.New()
	user := activeBranchUser(branchID, "password123")

	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{ID: branchID, IsActive: false}, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "password123",
	})

	assert.ErrorIs(t, err, domain.ErrBranchInactive)
}

func TestAuthService_Login_SuperadminHasNoBranch(t *testing.T) {
	svc, userRepo, branchRepo, _ := setupAuthService()

	user := &domain.User{
		ID:              uuid.New(),
		Email:           "root@taklaget.no",
		PasswordHash:    hashPassword("password123"),
		PermissionLevel: domain.LevelSuperadmin,
		IsActive:        true,
	}

	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	userRepo.On("SetLastLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

	result, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	branchRepo.AssertNotCalled(t, "GetByID")
}

// --- RefreshToken ---

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, userRepo, _, blacklist := setupAuthService()

	branchID := uuid.New()
	user := activeBranchUser(branchID, "password123")

	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, nil)
	blacklist.On("IsUserInvalidated", mock.Anything, user.ID.String(), mock.Anything).Return(false, nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	fresh, err := svc.RefreshToken(context.Background(), pair.RefreshToken)

	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEmpty(t, fresh.RefreshToken)
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, _, _, blacklist := setupAuthService()

	user := activeBranchUser(uuid.New(), "password123")
	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, nil).Maybe()
	blacklist.On("IsUserInvalidated", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Maybe()

	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_RefreshToken_InactiveUser(t *testing.T) {
	svc, userRepo, _, blacklist := setupAuthService()

	user := activeBranchUser(uuid.New(), "password123")
	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	user.IsActive = false
	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, nil)
	blacklist.On("IsUserInvalidated", mock.Anything, user.ID.String(), mock.Anything).Return(false, nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err = svc.RefreshToken(context.Background(), pair.RefreshToken)

	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

// --- ValidateToken ---

func TestAuthService_ValidateToken_Success(t *testing.T) {
	svc, _, _, blacklist := setupAuthService()

	branchID := uuid.New()
	user := activeBranchUser(branchID, "password123")
	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, nil)
	blacklist.On("IsUserInvalidated", mock.Anything, user.ID.String(), mock.Anything).Return(false, nil)

	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken)

	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, branchID.String(), claims.BranchID)
	assert.Equal(t, domain.LevelInspector, claims.PermissionLevel)
}

func TestAuthService_ValidateToken_RejectsRefreshToken(t *testing.T) {
	svc, _, _, blacklist := setupAuthService()

	user := activeBranchUser(uuid.New(), "password123")
	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, nil).Maybe()
	blacklist.On("IsUserInvalidated", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Maybe()

	_, err = svc.ValidateToken(context.Background(), pair.RefreshToken)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_Blacklisted(t *testing.T) {
	svc, _, _, blacklist := setupAuthService()

	user := activeBranchUser(uuid.New(), "password123")
	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(true, nil)

	_, err = svc.ValidateToken(context.Background(), pair.AccessToken)

	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestAuthService_ValidateToken_UserSessionsRevoked(t *testing.T) {
	svc, _, _, blacklist := setupAuthService()

	user := activeBranchUser(uuid.New(), "password123")
	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, nil)
	blacklist.On("IsUserInvalidated", mock.Anything, user.ID.String(), mock.Anything).Return(true, nil)

	_, err = svc.ValidateToken(context.Background(), pair.AccessToken)

	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	svc, _, _, _ := setupAuthService()

	_, err := svc.ValidateToken(context.Background(), "not-a-jwt")

	assert.Error(t, err)
}

// --- Logout ---

func TestAuthService_Logout_BlacklistsBothTokens(t *testing.T) {
	svc, _, _, blacklist := setupAuthService()

	user := activeBranchUser(uuid.New(), "password123")
	pair, err := svc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	blacklist.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, nil)
	blacklist.On("IsUserInvalidated", mock.Anything, user.ID.String(), mock.Anything).Return(false, nil)
	blacklist.On("BlacklistToken", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	err = svc.Logout(context.Background(), pair.AccessToken, pair.RefreshToken)

	assert.NoError(t, err)
	blacklist.AssertExpectations(t)
}

func TestAuthService_Logout_IgnoresInvalidToken(t *testing.T) {
	svc, _, _, blacklist := setupAuthService()

	err := svc.Logout(context.Background(), "garbage", "")

	assert.NoError(t, err)
	blacklist.AssertNotCalled(t, "BlacklistToken")
}
