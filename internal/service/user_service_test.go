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

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

func setupUserService() (service.UserService, *mocks.MockUserRepo, *mocks.MockEmailSender, *mocks.MockTokenBlacklist) {
	repo := new(mocks.MockUserRepo)
	emails := new(mocks.MockEmailSender)
	blacklist := new(mocks.MockTokenBlacklist)
	authSvc := service.NewAuthService(repo, new(mocks.MockBranchRepo), blacklist, testAuditor(), testJWTConfig(), zap.NewNop())
	svc := service.NewUserService(repo, emails, blacklist, authSvc, testAuditor(), testJWTConfig(), zap.NewNop())
	return svc, repo, emails, blacklist
}

func superadminActor() authz.Principal {
	return authz.Principal{UserID: uuid.New(), Email: "root@taklaget.no", Level: domain.LevelSuperadmin}
}

func branchAdminActor(branchID uuid.UUID) authz.Principal {
	return authz.Principal{UserID: uuid.New(), BranchID: branchID, Email: "admin@taklaget.no", Level: domain.LevelBranchAdmin}
}

func inspectorActor(branchID uuid.UUID) authz.Principal {
	return authz.Principal{UserID: uuid.New(), BranchID: branchID, Email: "felt@taklaget.no", Level: domain.LevelInspector}
}

// --- Create ---

func TestUserService_Create_BranchAdminCreatesInspector(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()

	var created *domain.User
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
		created.ID = uuid.New()
	})

	user, err := svc.Create(context.Background(), branchAdminActor(branchID), service.CreateUserInput{
		Email:           "ny@taklaget.no",
		Password:        "sommer2024tak",
		FullName:        "Ola Taktekker",
		PermissionLevel: domain.LevelInspector,
		BranchID:        &branchID,
	})

	assert.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, branchID, *user.BranchID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("sommer2024tak")))
	repo.AssertExpectations(t)
}

func TestUserService_Create_BranchAdminCannotCreatePeer(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()

	_, err := svc.Create(context.Background(), branchAdminActor(branchID), service.CreateUserInput{
		Email:           "peer@taklaget.no",
		Password:        "sommer2024tak",
		FullName:        "Per Admin",
		PermissionLevel: domain.LevelBranchAdmin,
		BranchID:        &branchID,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create_BranchAdminForeignBranchForbidden(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	foreign := uuid.New()

	_, err := svc.Create(context.Background(), branchAdminActor(uuid.New()), service.CreateUserInput{
		Email:           "ny@taklaget.no",
		Password:        "sommer2024tak",
		FullName:        "Ola Taktekker",
		PermissionLevel: domain.LevelInspector,
		BranchID:        &foreign,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create_SuperadminTargetMustNotHaveBranch(t *testing.T) {
	svc, _, _, _ := setupUserService()
	branchID := uuid.New()

	_, err := svc.Create(context.Background(), superadminActor(), service.CreateUserInput{
		Email:           "root2@taklaget.no",
		Password:        "sommer2024tak",
		FullName:        "Rot Bruker",
		PermissionLevel: domain.LevelSuperadmin,
		BranchID:        &branchID,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserService_Create_BranchRequiredForScopedLevels(t *testing.T) {
	svc, _, _, _ := setupUserService()

	_, err := svc.Create(context.Background(), superadminActor(), service.CreateUserInput{
		Email:           "ny@taklaget.no",
		Password:        "sommer2024tak",
		FullName:        "Ola Taktekker",
		PermissionLevel: domain.LevelInspector,
	})

	assert.ErrorIs(t, err, domain.ErrBranchRequired)
}

func TestUserService_Create_InvalidLevel(t *testing.T) {
	svc, _, _, _ := setupUserService()
	branchID := uuid.New()

	_, err := svc.Create(context.Background(), superadminActor(), service.CreateUserInput{
		Email:           "ny@taklaget.no",
		Password:        "sommer2024tak",
		FullName:        "Ola Taktekker",
		PermissionLevel: domain.PermissionLevel(9),
		BranchID:        &branchID,
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_Create_WithoutPasswordSendsActivation(t *testing.T) {
	svc, repo, emails, _ := setupUserService()
	branchID := uuid.New()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = uuid.New()
	})
	repo.On("SetPasswordResetToken", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)
	emails.On("SendActivationEmail", mock.Anything, "invitert@taklaget.no", "Ola Taktekker", mock.AnythingOfType("string")).Return(nil)

	user, err := svc.Create(context.Background(), branchAdminActor(branchID), service.CreateUserInput{
		Email:           "invitert@taklaget.no",
		FullName:        "Ola Taktekker",
		PermissionLevel: domain.LevelInspector,
		BranchID:        &branchID,
	})

	assert.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	repo.AssertExpectations(t)
	emails.AssertExpectations(t)
}

func TestUserService_Create_ActivationEmailFailureDoesNotFailCreate(t *testing.T) {
	svc, repo, emails, _ := setupUserService()
	branchID := uuid.New()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	repo.On("SetPasswordResetToken", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)
	emails.On("SendActivationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("ses throttled"))

	_, err := svc.Create(context.Background(), branchAdminActor(branchID), service.CreateUserInput{
		Email:           "invitert@taklaget.no",
		FullName:        "Ola Taktekker",
		PermissionLevel: domain.LevelInspector,
		BranchID:        &branchID,
	})

	assert.NoError(t, err)
}

// --- GetByID ---

func TestUserService_GetByID_SameBranch(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()
	target := activeBranchUser(branchID, "sommer2024tak")

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)

	user, err := svc.GetByID(context.Background(), inspectorActor(branchID), target.ID)

	assert.NoError(t, err)
	assert.Equal(t, target.ID, user.ID)
}

func TestUserService_GetByID_ForeignBranchForbidden(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	target := activeBranchUser(uuid.New(), "sommer2024tak")

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)

	_, err := svc.GetByID(context.Background(), inspectorActor(uuid.New()), target.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserService_GetByID_SuperadminRecordHiddenFromBranchAdmin(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	target := &domain.User{
		ID:              uuid.New(),
		Email:           "root@taklaget.no",
		FullName:        "Rot Bruker",
		PermissionLevel: domain.LevelSuperadmin,
		IsActive:        true,
	}

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)

	_, err := svc.GetByID(context.Background(), branchAdminActor(uuid.New()), target.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// --- List ---

func TestUserService_List_SuperadminWithoutBranchListsAll(t *testing.T) {
	svc, repo, _, _ := setupUserService()

	repo.On("ListAll", mock.Anything, 0, 50).Return([]domain.User{}, 0, nil)

	_, _, err := svc.List(context.Background(), superadminActor(), uuid.Nil, 0, 50)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "ListByBranch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_List_BranchAdminPinnedToOwnBranch(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()

	repo.On("ListByBranch", mock.Anything, branchID, 0, 50).Return([]domain.User{}, 0, nil)

	_, _, err := svc.List(context.Background(), branchAdminActor(branchID), uuid.Nil, 0, 50)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUserService_List_ForeignBranchOverrideForbidden(t *testing.T) {
	svc, repo, _, _ := setupUserService()

	_, _, err := svc.List(context.Background(), branchAdminActor(uuid.New()), uuid.New(), 0, 50)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "ListByBranch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Update ---

func TestUserService_Update_BranchAdminEditsInspector(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()
	target := activeBranchUser(branchID, "sommer2024tak")

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == target.ID && u.FullName == "Kari Etternavn"
	})).Return(nil)

	name := "Kari Etternavn"
	user, err := svc.Update(context.Background(), branchAdminActor(branchID), target.ID, service.UpdateUserInput{
		FullName: &name,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Kari Etternavn", user.FullName)
	repo.AssertExpectations(t)
}

func TestUserService_Update_PromotionToOwnLevelForbidden(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()
	target := activeBranchUser(branchID, "sommer2024tak")

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)

	level := domain.LevelBranchAdmin
	_, err := svc.Update(context.Background(), branchAdminActor(branchID), target.ID, service.UpdateUserInput{
		PermissionLevel: &level,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_Update_InspectorCannotManage(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()
	target := activeBranchUser(branchID, "sommer2024tak")

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)

	name := "Nytt Navn"
	_, err := svc.Update(context.Background(), inspectorActor(branchID), target.ID, service.UpdateUserInput{
		FullName: &name,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- SetActive ---

func TestUserService_SetActive_DeactivationRevokesSessions(t *testing.T) {
	svc, repo, _, blacklist := setupUserService()
	branchID := uuid.New()
	target := activeBranchUser(branchID, "sommer2024tak")

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
	repo.On("SetActive", mock.Anything, target.ID, false).Return(nil)
	blacklist.On("InvalidateUser", mock.Anything, target.ID.String(), mock.Anything).Return(nil)

	err := svc.SetActive(context.Background(), branchAdminActor(branchID), target.ID, false)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	blacklist.AssertExpectations(t)
}

func TestUserService_SetActive_ReactivationKeepsSessions(t *testing.T) {
	svc, repo, _, blacklist := setupUserService()
	branchID := uuid.New()
	target := activeBranchUser(branchID, "sommer2024tak")
	target.IsActive = false

	repo.On("GetByID", mock.Anything, target.ID).Return(target, nil)
	repo.On("SetActive", mock.Anything, target.ID, true).Return(nil)

	err := svc.SetActive(context.Background(), branchAdminActor(branchID), target.ID, true)

	assert.NoError(t, err)
	blacklist.AssertNotCalled(t, "InvalidateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_SetActive_SelfForbidden(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	actor := superadminActor()
	self := &domain.User{
		ID:              actor.UserID,
		Email:           actor.Email,
		FullName:        "Rot Bruker",
		PermissionLevel: domain.LevelSuperadmin,
		IsActive:        true,
	}

	repo.On("GetByID", mock.Anything, actor.UserID).Return(self, nil)

	err := svc.SetActive(context.Background(), actor, actor.UserID, false)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

// --- Profile and password ---

func TestUserService_UpdateProfile_EditsOwnRecord(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()
	actor := inspectorActor(branchID)
	self := activeBranchUser(branchID, "sommer2024tak")
	self.ID = actor.UserID

	repo.On("GetByID", mock.Anything, actor.UserID).Return(self, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == actor.UserID && u.Phone == "+47 900 12 345"
	})).Return(nil)

	phone := "+47 900 12 345"
	user, err := svc.UpdateProfile(context.Background(), actor, service.UpdateProfileInput{Phone: &phone})

	assert.NoError(t, err)
	assert.Equal(t, "+47 900 12 345", user.Phone)
	repo.AssertExpectations(t)
}

func TestUserService_ChangePassword_Success(t *testing.T) {
	svc, repo, _, blacklist := setupUserService()
	branchID := uuid.New()
	actor := inspectorActor(branchID)
	self := activeBranchUser(branchID, "gammelt-passord")
	self.ID = actor.UserID

	repo.On("GetByID", mock.Anything, actor.UserID).Return(self, nil)
	repo.On("UpdatePassword", mock.Anything, actor.UserID, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("nytt-passord-123")) == nil
	})).Return(nil)
	blacklist.On("InvalidateUser", mock.Anything, actor.UserID.String(), mock.Anything).Return(nil)

	pair, err := svc.ChangePassword(context.Background(), actor, service.ChangePasswordInput{
		OldPassword: "gammelt-passord",
		NewPassword: "nytt-passord-123",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	repo.AssertExpectations(t)
	blacklist.AssertExpectations(t)
}

func TestUserService_ChangePassword_WrongOldPassword(t *testing.T) {
	svc, repo, _, _ := setupUserService()
	branchID := uuid.New()
	actor := inspectorActor(branchID)
	self := activeBranchUser(branchID, "gammelt-passord")
	self.ID = actor.UserID

	repo.On("GetByID", mock.Anything, actor.UserID).Return(self, nil)

	_, err := svc.ChangePassword(context.Background(), actor, service.ChangePasswordInput{
		OldPassword: "feil-passord",
		NewPassword: "nytt-passord-123",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}
