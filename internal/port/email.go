package port

import "context"

// EmailSender defines the contract for sending transactional emails.
type EmailSender interface {
	SendActivationEmail(ctx context.Context, toEmail, toName, activationToken string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error
	SendOfferEmail(ctx context.Context, toEmail, toName, branchName, offerTitle, portalURL string) error
	SendOfferDecidedEmail(ctx context.Context, toEmail, offerTitle, decision, reason string) error
	SendReportEmail(ctx context.Context, toEmail, toName, branchName, reportTitle, portalURL string) error
	SendAppointmentReminder(ctx context.Context, toEmail, toName, branchName, startsAtLocal, address string) error
}
