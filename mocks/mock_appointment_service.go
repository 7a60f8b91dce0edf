package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// MockAppointmentService is a mock implementation of service.AppointmentService.
type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) Create(ctx context.Context, actor authz.Principal, branchID uuid.UUID, input service.CreateAppointmentInput) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, branchID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) GetByID(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) List(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.AppointmentFilters) ([]domain.Appointment, int, error) {
	args := m.Called(ctx, actor, branchID, filters)
	return args.Get(0).([]domain.Appointment), args.Int(1), args.Error(2)
}

func (m *MockAppointmentService) Reschedule(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.RescheduleAppointmentInput) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Cancel(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.CancelAppointmentInput) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Complete(ctx context.Context, actor authz.Principal, id uuid.UUID, input service.CompleteAppointmentInput) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) MarkNoShow(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Availability(ctx context.Context, actor authz.Principal, inspectorID uuid.UUID, date, timeZone string, durationMins int) ([]domain.Slot, error) {
	args := m.Called(ctx, actor, inspectorID, date, timeZone, durationMins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Slot), args.Error(1)
}
