package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

func setupPasswordResetService() (service.PasswordResetService, *mocks.MockUserRepo, *mocks.MockEmailSender, *mocks.MockTokenBlacklist) {
	repo := new(mocks.MockUserRepo)
	emails := new(mocks.MockEmailSender)
	blacklist := new(mocks.MockTokenBlacklist)
	svc := service.NewPasswordResetService(repo, emails, blacklist, testJWTConfig(), zap.NewNop())
	return svc, repo, emails, blacklist
}

// --- ForgotPassword ---

func TestPasswordResetService_ForgotPassword_SendsEmail(t *testing.T) {
	svc, repo, emails, _ := setupPasswordResetService()
	user := activeBranchUser(uuid.New(), "sommer2024tak")

	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("SetPasswordResetToken", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)
	emails.On("SendPasswordResetEmail", mock.Anything, user.Email, user.FullName, mock.AnythingOfType("string")).Return(nil)

	err := svc.ForgotPassword(context.Background(), service.ForgotPasswordInput{Email: user.Email})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	emails.AssertExpectations(t)
}

func TestPasswordResetService_ForgotPassword_UnknownEmailSilentlyOK(t *testing.T) {
	svc, repo, emails, _ := setupPasswordResetService()

	repo.On("GetByEmail", mock.Anything, "ukjent@taklaget.no").Return(nil, domain.ErrNotFound)

	err := svc.ForgotPassword(context.Background(), service.ForgotPasswordInput{Email: "ukjent@taklaget.no"})

	assert.NoError(t, err)
	emails.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPasswordResetService_ForgotPassword_InactiveUserSilentlyOK(t *testing.T) {
	svc, repo, emails, _ := setupPasswordResetService()
	user := activeBranchUser(uuid.New(), "sommer2024tak")
	user.IsActive = false

	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	err := svc.ForgotPassword(context.Background(), service.ForgotPasswordInput{Email: user.Email})

	assert.NoError(t, err)
	emails.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPasswordResetService_ForgotPassword_LookupFailureSilentlyOK(t *testing.T) {
	svc, repo, emails, _ := setupPasswordResetService()

	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	err := svc.ForgotPassword(context.Background(), service.ForgotPasswordInput{Email: "noen@taklaget.no"})

	assert.NoError(t, err)
	emails.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ResetPassword ---

func TestPasswordResetService_ResetPassword_ConsumesTokenOnce(t *testing.T) {
	svc, repo, emails, blacklist := setupPasswordResetService()
	user := activeBranchUser(uuid.New(), "sommer2024tak")

	var mintedToken, mintedJTI string
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("SetPasswordResetToken", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil).Run(func(args mock.Arguments) {
		mintedJTI = args.Get(2).(string)
	})
	emails.On("SendPasswordResetEmail", mock.Anything, user.Email, user.FullName, mock.AnythingOfType("string")).Return(nil).Run(func(args mock.Arguments) {
		mintedToken = args.Get(3).(string)
	})

	assert.NoError(t, svc.ForgotPassword(context.Background(), service.ForgotPasswordInput{Email: user.Email}))
	assert.NotEmpty(t, mintedToken)

	repo.On("ResetPassword", mock.Anything, user.ID, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("nytt-passord-123")) == nil
	}), mintedJTI).Return(nil)
	blacklist.On("InvalidateUser", mock.Anything, user.ID.String(), mock.Anything).Return(nil)

	err := svc.ResetPassword(context.Background(), service.ResetPasswordInput{
		Token:       mintedToken,
		NewPassword: "nytt-passord-123",
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	blacklist.AssertExpectations(t)
}

func TestPasswordResetService_ResetPassword_GarbageToken(t *testing.T) {
	svc, repo, _, _ := setupPasswordResetService()

	err := svc.ResetPassword(context.Background(), service.ResetPasswordInput{
		Token:       "not-a-jwt",
		NewPassword: "nytt-passord-123",
	})

	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
	repo.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPasswordResetService_ResetPassword_RejectsAccessToken(t *testing.T) {
	svc, _, _, _ := setupPasswordResetService()
	user := activeBranchUser(uuid.New(), "sommer2024tak")

	authSvc := service.NewAuthService(new(mocks.MockUserRepo), new(mocks.MockBranchRepo), new(mocks.MockTokenBlacklist), testAuditor(), testJWTConfig(), zap.NewNop())
	pair, err := authSvc.GenerateTokenPairForUser(user)
	assert.NoError(t, err)

	err = svc.ResetPassword(context.Background(), service.ResetPasswordInput{
		Token:       pair.AccessToken,
		NewPassword: "nytt-passord-123",
	})

	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestPasswordResetService_ResetPassword_AlreadyConsumed(t *testing.T) {
	svc, repo, emails, blacklist := setupPasswordResetService()
	user := activeBranchUser(uuid.New(), "sommer2024tak")

	var mintedToken string
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("SetPasswordResetToken", mock.Anything, user.ID, mock.Anything).Return(nil)
	emails.On("SendPasswordResetEmail", mock.Anything, user.Email, user.FullName, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		mintedToken = args.Get(3).(string)
	})
	assert.NoError(t, svc.ForgotPassword(context.Background(), service.ForgotPasswordInput{Email: user.Email}))

	repo.On("ResetPassword", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(domain.ErrResetTokenInvalid)

	err := svc.ResetPassword(context.Background(), service.ResetPasswordInput{
		Token:       mintedToken,
		NewPassword: "nytt-passord-123",
	})

	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
	blacklist.AssertNotCalled(t, "InvalidateUser", mock.Anything, mock.Anything, mock.Anything)
}
