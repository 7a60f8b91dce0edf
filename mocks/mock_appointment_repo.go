package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// MockAppointmentRepo is a mock implementation of port.AppointmentRepository.
type MockAppointmentRepo struct {
	mock.Mock
}

func (m *MockAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, filters domain.AppointmentFilters) ([]domain.Appointment, int, error) {
	args := m.Called(ctx, branchID, filters)
	return args.Get(0).([]domain.Appointment), args.Int(1), args.Error(2)
}

func (m *MockAppointmentRepo) ListBlockingForInspector(ctx context.Context, inspectorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error) {
	args := m.Called(ctx, inspectorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepo) ClaimDueReminders(ctx context.Context, windowEnd time.Time, limit int) ([]domain.Appointment, error) {
	args := m.Called(ctx, windowEnd, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
}
