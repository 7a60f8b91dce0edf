package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

type reminderWorkerFixture struct {
	worker       *service.ReminderWorker
	apptRepo     *mocks.MockAppointmentRepo
	customerRepo *mocks.MockCustomerRepo
	buildingRepo *mocks.MockBuildingRepo
	userRepo     *mocks.MockUserRepo
	branchRepo   *mocks.MockBranchRepo
	emails       *mocks.MockEmailSender
}

func setupReminderWorker(cfg config.RemindersConfig) *reminderWorkerFixture {
	f := &reminderWorkerFixture{
		apptRepo:     new(mocks.MockAppointmentRepo),
		customerRepo: new(mocks.MockCustomerRepo),
		buildingRepo: new(mocks.MockBuildingRepo),
		userRepo:     new(mocks.MockUserRepo),
		branchRepo:   new(mocks.MockBranchRepo),
		emails:       new(mocks.MockEmailSender),
	}
	f.worker = service.NewReminderWorker(
		f.apptRepo, f.customerRepo, f.buildingRepo, f.userRepo, f.branchRepo, f.emails,
		cfg, zap.NewNop(),
	)
	return f
}

// runWorker starts fn and returns a stop func that cancels it and waits for
// the loop to exit, so mock assertions never race a live goroutine.
func runWorker(fn func(ctx context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		fn(ctx)
		close(stopped)
	}()
	return func() {
		cancel()
		<-stopped
	}
}

func awaitSignal(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestReminderWorker_RemindsCustomerAndInspector(t *testing.T) {
	f := setupReminderWorker(config.RemindersConfig{LeadTime: 24 * time.Hour, PollInterval: 5 * time.Millisecond})
	branchID := uuid.New()
	customer := branchCustomer(branchID)
	building := customerBuilding(branchID, customer.ID)
	appt := scheduledAppointment(branchID)
	appt.CustomerID = customer.ID
	appt.BuildingID = &building.ID

	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.MatchedBy(func(windowEnd time.Time) bool {
		lag := time.Until(windowEnd) - 24*time.Hour
		return lag > -time.Minute && lag < time.Minute
	}), 50).Return([]domain.Appointment{*appt}, nil).Once()
	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Appointment{}, nil).Maybe()

	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.buildingRepo.On("GetByID", mock.Anything, building.ID).Return(building, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.userRepo.On("GetByID", mock.Anything, appt.InspectorID).Return(&domain.User{
		ID: appt.InspectorID, Email: "felt@taklaget.no", FullName: "Ola Takmontør", IsActive: true,
	}, nil)

	// 09:00 UTC reads as 10:00 on the Oslo winter clock.
	f.emails.On("SendAppointmentReminder", mock.Anything,
		"styret@solhoyden.no", "Anne Styremedlem", "Taklaget Oslo",
		"Tuesday 15 Jan 2030, 10:00", "Solhøydveien 12, 0768 Oslo").Return(nil)
	inspectorMailed := make(chan struct{})
	f.emails.On("SendAppointmentReminder", mock.Anything,
		"felt@taklaget.no", "Ola Takmontør", "Taklaget Oslo",
		"Tuesday 15 Jan 2030, 10:00", "Solhøydveien 12, 0768 Oslo").
		Run(func(mock.Arguments) { close(inspectorMailed) }).Return(nil)

	stop := runWorker(f.worker.Start)
	awaitSignal(t, inspectorMailed, "inspector reminder")
	stop()

	f.emails.AssertExpectations(t)
}

func TestReminderWorker_CustomerWithoutEmailStillRemindsInspector(t *testing.T) {
	f := setupReminderWorker(config.RemindersConfig{LeadTime: 24 * time.Hour, PollInterval: 5 * time.Millisecond})
	branchID := uuid.New()
	customer := branchCustomer(branchID)
	customer.Email = ""
	appt := scheduledAppointment(branchID)
	appt.CustomerID = customer.ID

	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Appointment{*appt}, nil).Once()
	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Appointment{}, nil).Maybe()
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.userRepo.On("GetByID", mock.Anything, appt.InspectorID).Return(&domain.User{
		ID: appt.InspectorID, Email: "felt@taklaget.no", FullName: "Ola Takmontør", IsActive: true,
	}, nil)

	inspectorMailed := make(chan struct{})
	f.emails.On("SendAppointmentReminder", mock.Anything,
		"felt@taklaget.no", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(inspectorMailed) }).Return(nil)

	stop := runWorker(f.worker.Start)
	awaitSignal(t, inspectorMailed, "inspector reminder")
	stop()

	f.emails.AssertNumberOfCalls(t, "SendAppointmentReminder", 1)
}

func TestReminderWorker_UnknownZoneFallsBackToUTC(t *testing.T) {
	f := setupReminderWorker(config.RemindersConfig{LeadTime: time.Hour, PollInterval: 5 * time.Millisecond})
	branchID := uuid.New()
	customer := branchCustomer(branchID)
	appt := scheduledAppointment(branchID)
	appt.CustomerID = customer.ID
	appt.TimeZone = "Mars/Olympus"

	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Appointment{*appt}, nil).Once()
	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Appointment{}, nil).Maybe()
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.userRepo.On("GetByID", mock.Anything, appt.InspectorID).Return(&domain.User{
		ID: appt.InspectorID, Email: "felt@taklaget.no", FullName: "Ola Takmontør", IsActive: true,
	}, nil)

	customerMailed := make(chan struct{})
	f.emails.On("SendAppointmentReminder", mock.Anything,
		customer.Email, mock.Anything, mock.Anything, "Tuesday 15 Jan 2030, 09:00", mock.Anything).
		Run(func(mock.Arguments) { close(customerMailed) }).Return(nil)
	f.emails.On("SendAppointmentReminder", mock.Anything,
		"felt@taklaget.no", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	stop := runWorker(f.worker.Start)
	awaitSignal(t, customerMailed, "customer reminder")
	stop()
}

func TestReminderWorker_ClaimFailureDoesNotStopPolling(t *testing.T) {
	f := setupReminderWorker(config.RemindersConfig{LeadTime: time.Hour, PollInterval: 5 * time.Millisecond})
	branchID := uuid.New()
	customer := branchCustomer(branchID)
	appt := scheduledAppointment(branchID)
	appt.CustomerID = customer.ID

	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("deadlock detected")).Once()
	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Appointment{*appt}, nil).Once()
	f.apptRepo.On("ClaimDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Appointment{}, nil).Maybe()
	f.branchRepo.On("GetByID", mock.Anything, branchID).Return(&domain.Branch{
		ID: branchID, Name: "Taklaget Oslo", IsActive: true,
	}, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.userRepo.On("GetByID", mock.Anything, appt.InspectorID).Return(&domain.User{
		ID: appt.InspectorID, Email: "felt@taklaget.no", FullName: "Ola Takmontør", IsActive: true,
	}, nil)

	mailed := make(chan struct{})
	var once bool
	f.emails.On("SendAppointmentReminder", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			if !once {
				once = true
				close(mailed)
			}
		}).Return(nil)

	stop := runWorker(f.worker.Start)
	awaitSignal(t, mailed, "reminder after failed claim")
	stop()
}
