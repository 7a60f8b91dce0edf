package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

func setupCustomerService() (service.CustomerService, *mocks.MockCustomerRepo) {
	repo := new(mocks.MockCustomerRepo)
	svc := service.NewCustomerService(repo, testAuditor())
	return svc, repo
}

func branchCustomer(branchID uuid.UUID) *domain.Customer {
	return &domain.Customer{
		ID:          uuid.New(),
		BranchID:    branchID,
		Name:        "Borettslaget Solhøyden",
		ContactName: "Anne Styremedlem",
		Email:       "styret@solhoyden.no",
		Phone:       "+47 900 11 222",
		City:        "Oslo",
		Country:     "NO",
	}
}

func TestCustomerService_Create_InspectorInOwnBranch(t *testing.T) {
	svc, repo := setupCustomerService()
	branchID := uuid.New()
	actor := inspectorActor(branchID)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.BranchID == branchID && c.CreatedBy == actor.UserID && c.Country == "NO"
	})).Return(nil)

	customer, err := svc.Create(context.Background(), actor, uuid.Nil, service.CreateCustomerInput{
		Name: "Borettslaget Solhøyden",
	})

	assert.NoError(t, err)
	assert.Equal(t, branchID, customer.BranchID)
	repo.AssertExpectations(t)
}

func TestCustomerService_Create_SuperadminMustNameBranch(t *testing.T) {
	svc, repo := setupCustomerService()

	_, err := svc.Create(context.Background(), superadminActor(), uuid.Nil, service.CreateCustomerInput{
		Name: "Borettslaget Solhøyden",
	})

	assert.ErrorIs(t, err, domain.ErrBranchRequired)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerService_Create_ForeignBranchForbidden(t *testing.T) {
	svc, repo := setupCustomerService()

	_, err := svc.Create(context.Background(), inspectorActor(uuid.New()), uuid.New(), service.CreateCustomerInput{
		Name: "Borettslaget Solhøyden",
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerService_GetByID_ForeignBranchForbidden(t *testing.T) {
	svc, repo := setupCustomerService()
	customer := branchCustomer(uuid.New())

	repo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)

	_, err := svc.GetByID(context.Background(), inspectorActor(uuid.New()), customer.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCustomerService_List_ScopedToBranch(t *testing.T) {
	svc, repo := setupCustomerService()
	branchID := uuid.New()

	repo.On("ListByBranch", mock.Anything, branchID, "solhøyden", 0, 25).
		Return([]domain.Customer{*branchCustomer(branchID)}, 1, nil)

	customers, total, err := svc.List(context.Background(), branchAdminActor(branchID), uuid.Nil, "solhøyden", 0, 25)

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, customers, 1)
}

func TestCustomerService_Update_MemberEditsCustomer(t *testing.T) {
	svc, repo := setupCustomerService()
	branchID := uuid.New()
	customer := branchCustomer(branchID)

	repo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.ID == customer.ID && c.Email == "nytt-styre@solhoyden.no"
	})).Return(nil)

	email := "nytt-styre@solhoyden.no"
	updated, err := svc.Update(context.Background(), inspectorActor(branchID), customer.ID, service.UpdateCustomerInput{
		Email: &email,
	})

	assert.NoError(t, err)
	assert.Equal(t, "nytt-styre@solhoyden.no", updated.Email)
	repo.AssertExpectations(t)
}

func TestCustomerService_Delete_BranchAdminWithNoLinkedDocuments(t *testing.T) {
	svc, repo := setupCustomerService()
	branchID := uuid.New()
	customer := branchCustomer(branchID)

	repo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	repo.On("CountLinkedDocuments", mock.Anything, customer.ID).Return(0, nil)
	repo.On("Delete", mock.Anything, customer.ID).Return(nil)

	err := svc.Delete(context.Background(), branchAdminActor(branchID), customer.ID)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCustomerService_Delete_RefusedWhileDocumentsLinked(t *testing.T) {
	svc, repo := setupCustomerService()
	branchID := uuid.New()
	customer := branchCustomer(branchID)

	repo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	repo.On("CountLinkedDocuments", mock.Anything, customer.ID).Return(3, nil)

	err := svc.Delete(context.Background(), branchAdminActor(branchID), customer.ID)

	assert.ErrorIs(t, err, domain.ErrCustomerInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCustomerService_Delete_InspectorForbidden(t *testing.T) {
	svc, repo := setupCustomerService()
	branchID := uuid.New()
	customer := branchCustomer(branchID)

	repo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)

	err := svc.Delete(context.Background(), inspectorActor(branchID), customer.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "CountLinkedDocuments", mock.Anything, mock.Anything)
}
