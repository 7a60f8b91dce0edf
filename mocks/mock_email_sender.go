package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendActivationEmail(ctx context.Context, toEmail, toName, activationToken string) error {
	args := m.Called(ctx, toEmail, toName, activationToken)
	return args.Error(0)
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	args := m.Called(ctx, toEmail, toName, resetToken)
	return args.Error(0)
}

func (m *MockEmailSender) SendOfferEmail(ctx context.Context, toEmail, toName, branchName, offerTitle, portalURL string) error {
	args := m.Called(ctx, toEmail, toName, branchName, offerTitle, portalURL)
	return args.Error(0)
}

func (m *MockEmailSender) SendOfferDecidedEmail(ctx context.Context, toEmail, offerTitle, decision, reason string) error {
	args := m.Called(ctx, toEmail, offerTitle, decision, reason)
	return args.Error(0)
}

func (m *MockEmailSender) SendReportEmail(ctx context.Context, toEmail, toName, branchName, reportTitle, portalURL string) error {
	args := m.Called(ctx, toEmail, toName, branchName, reportTitle, portalURL)
	return args.Error(0)
}

func (m *MockEmailSender) SendAppointmentReminder(ctx context.Context, toEmail, toName, branchName, startsAtLocal, address string) error {
	args := m.Called(ctx, toEmail, toName, branchName, startsAtLocal, address)
	return args.Error(0)
}
