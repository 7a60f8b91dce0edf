package noop

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

type noopSender struct {
	frontendURL string
	logger      *zap.Logger
}

// NewNoopSender creates a no-op EmailSender that logs the links it would
// have mailed. Used in development and in tests.
func NewNoopSender(frontendURL string, logger *zap.Logger) port.EmailSender {
	return &noopSender{frontendURL: frontendURL, logger: logger}
}

func (s *noopSender) SendActivationEmail(_ context.Context, toEmail, toName, activationToken string) error {
	activateURL := fmt.Sprintf("%s/activate?token=%s", s.frontendURL, url.QueryEscape(activationToken))
	s.logger.Info("noop email: activation",
		zap.String("to", toEmail), zap.String("name", toName), zap.String("url", activateURL))
	return nil
}

func (s *noopSender) SendPasswordResetEmail(_ context.Context, toEmail, toName, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(resetToken))
	s.logger.Info("noop email: password reset",
		zap.String("to", toEmail), zap.String("name", toName), zap.String("url", resetURL))
	return nil
}

func (s *noopSender) SendOfferEmail(_ context.Context, toEmail, toName, branchName, offerTitle, portalURL string) error {
	s.logger.Info("noop email: offer",
		zap.String("to", toEmail), zap.String("branch", branchName),
		zap.String("offer", offerTitle), zap.String("url", portalURL))
	return nil
}

func (s *noopSender) SendOfferDecidedEmail(_ context.Context, toEmail, offerTitle, decision, reason string) error {
	s.logger.Info("noop email: offer decided",
		zap.String("to", toEmail), zap.String("offer", offerTitle),
		zap.String("decision", decision), zap.String("reason", reason))
	return nil
}

func (s *noopSender) SendReportEmail(_ context.Context, toEmail, toName, branchName, reportTitle, portalURL string) error {
	s.logger.Info("noop email: report",
		zap.String("to", toEmail), zap.String("branch", branchName),
		zap.String("report", reportTitle), zap.String("url", portalURL))
	return nil
}

func (s *noopSender) SendAppointmentReminder(_ context.Context, toEmail, toName, branchName, startsAtLocal, address string) error {
	s.logger.Info("noop email: appointment reminder",
		zap.String("to", toEmail), zap.String("branch", branchName),
		zap.String("starts_at", startsAtLocal), zap.String("address", address))
	return nil
}
