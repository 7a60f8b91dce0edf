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

func setupBuildingService() (service.BuildingService, *mocks.MockBuildingRepo, *mocks.MockCustomerRepo) {
	repo := new(mocks.MockBuildingRepo)
	customerRepo := new(mocks.MockCustomerRepo)
	svc := service.NewBuildingService(repo, customerRepo, testAuditor())
	return svc, repo, customerRepo
}

func customerBuilding(branchID, customerID uuid.UUID) *domain.Building {
	area := 430.0
	return &domain.Building{
		ID:          uuid.New(),
		BranchID:    branchID,
		CustomerID:  customerID,
		Label:       "Blokk A",
		AddressLine: "Solhøydveien 12",
		PostalCode:  "0768",
		City:        "Oslo",
		RoofType:    domain.RoofTypeFlat,
		RoofAreaM2:  &area,
	}
}

func TestBuildingService_Create_InheritsCustomerBranch(t *testing.T) {
	svc, repo, customerRepo := setupBuildingService()
	branchID := uuid.New()
	customer := branchCustomer(branchID)

	customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Building) bool {
		return b.BranchID == branchID && b.CustomerID == customer.ID
	})).Return(nil)

	building, err := svc.Create(context.Background(), inspectorActor(branchID), service.CreateBuildingInput{
		CustomerID:  customer.ID,
		AddressLine: "Solhøydveien 12",
		RoofType:    domain.RoofTypeFlat,
	})

	assert.NoError(t, err)
	assert.Equal(t, branchID, building.BranchID)
	repo.AssertExpectations(t)
}

func TestBuildingService_Create_ForeignCustomerForbidden(t *testing.T) {
	svc, repo, customerRepo := setupBuildingService()
	customer := branchCustomer(uuid.New())

	customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)

	_, err := svc.Create(context.Background(), inspectorActor(uuid.New()), service.CreateBuildingInput{
		CustomerID:  customer.ID,
		AddressLine: "Solhøydveien 12",
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBuildingService_ListByCustomer_ChecksCustomerBranch(t *testing.T) {
	svc, repo, customerRepo := setupBuildingService()
	branchID := uuid.New()
	customer := branchCustomer(branchID)

	customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	repo.On("ListByCustomer", mock.Anything, customer.ID).Return([]domain.Building{
		*customerBuilding(branchID, customer.ID),
	}, nil)

	buildings, err := svc.ListByCustomer(context.Background(), inspectorActor(branchID), customer.ID)

	assert.NoError(t, err)
	assert.Len(t, buildings, 1)
}

func TestBuildingService_Update_MemberEditsRoofData(t *testing.T) {
	svc, repo, _ := setupBuildingService()
	branchID := uuid.New()
	building := customerBuilding(branchID, uuid.New())

	repo.On("GetByID", mock.Anything, building.ID).Return(building, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Building) bool {
		return b.ID == building.ID && b.RoofType == domain.RoofTypePitched && *b.RoofAreaM2 == 512.5
	})).Return(nil)

	roofType := domain.RoofTypePitched
	area := 512.5
	updated, err := svc.Update(context.Background(), inspectorActor(branchID), building.ID, service.UpdateBuildingInput{
		RoofType:   &roofType,
		RoofAreaM2: &area,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoofTypePitched, updated.RoofType)
	repo.AssertExpectations(t)
}

func TestBuildingService_Delete_InspectorForbidden(t *testing.T) {
	svc, repo, _ := setupBuildingService()
	branchID := uuid.New()
	building := customerBuilding(branchID, uuid.New())

	repo.On("GetByID", mock.Anything, building.ID).Return(building, nil)

	err := svc.Delete(context.Background(), inspectorActor(branchID), building.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestBuildingService_Delete_BranchAdmin(t *testing.T) {
	svc, repo, _ := setupBuildingService()
	branchID := uuid.New()
	building := customerBuilding(branchID, uuid.New())

	repo.On("GetByID", mock.Anything, building.ID).Return(building, nil)
	repo.On("Delete", mock.Anything, building.ID).Return(nil)

	err := svc.Delete(context.Background(), branchAdminActor(branchID), building.ID)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
