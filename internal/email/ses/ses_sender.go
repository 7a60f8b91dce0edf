package ses

import (
	"context"
	"fmt"
	"html"
	"net/url"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendActivationEmail(ctx context.Context, toEmail, toName, activationToken string) error {
	activateURL := fmt.Sprintf("%s/activate?token=%s", s.frontendURL, url.QueryEscape(activationToken))

	subject := fmt.Sprintf("Activate your %s account", s.fromName)
	htmlBody := buildActivationHTML(s.fromName, toName, activateURL)
	textBody := fmt.Sprintf("Hi %s,\n\nAn account has been created for you on %s. Choose a password to activate it:\n%s\n\nThis link expires in 72 hours.\n\n%s", toName, s.fromName, activateURL, s.fromName)

	return s.send(ctx, s.fromName, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(resetToken))

	subject := fmt.Sprintf("Reset your %s password", s.fromName)
	htmlBody := buildPasswordResetHTML(s.fromName, toName, resetURL)
	textBody := fmt.Sprintf("Hi %s,\n\nWe received a request to reset your password. Visit the link below to set a new password:\n%s\n\nThis link expires in 1 hour. If you didn't request this, you can safely ignore this email.\n\n%s", toName, resetURL, s.fromName)

	return s.send(ctx, s.fromName, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendOfferEmail(ctx context.Context, toEmail, toName, branchName, offerTitle, portalURL string) error {
	subject := fmt.Sprintf("New offer from %s", branchName)
	htmlBody := buildOfferHTML(branchName, toName, offerTitle, portalURL)
	textBody := fmt.Sprintf("Hi %s,\n\n%s has sent you an offer: %s\n\nReview it and respond online:\n%s\n\nYou can accept or decline directly from that page.\n\n%s", toName, branchName, offerTitle, portalURL, branchName)

	return s.send(ctx, s.fromDisplay(branchName), toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendOfferDecidedEmail(ctx context.Context, toEmail, offerTitle, decision, reason string) error {
	subject := fmt.Sprintf("Offer %s: %s", decision, offerTitle)
	htmlBody := buildOfferDecidedHTML(s.fromName, offerTitle, decision, reason)
	textBody := fmt.Sprintf("The offer %q has been %s by the customer.", offerTitle, decision)
	if reason != "" {
		textBody += fmt.Sprintf("\n\nReason given:\n%s", reason)
	}

	return s.send(ctx, s.fromName, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendReportEmail(ctx context.Context, toEmail, toName, branchName, reportTitle, portalURL string) error {
	subject := fmt.Sprintf("Your roof inspection report from %s", branchName)
	htmlBody := buildReportHTML(branchName, toName, reportTitle, portalURL)
	textBody := fmt.Sprintf("Hi %s,\n\nYour roof inspection report is ready: %s\n\nView it online:\n%s\n\n%s", toName, reportTitle, portalURL, branchName)

	return s.send(ctx, s.fromDisplay(branchName), toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendAppointmentReminder(ctx context.Context, toEmail, toName, branchName, startsAtLocal, address string) error {
	subject := fmt.Sprintf("Reminder: roof inspection %s", startsAtLocal)
	htmlBody := buildReminderHTML(branchName, toName, startsAtLocal, address)
	textBody := fmt.Sprintf("Hi %s,\n\nThis is a reminder of the upcoming roof inspection.\n\nWhen: %s\nWhere: %s\n\nIf the time no longer suits, please contact %s as soon as possible.\n\n%s", toName, startsAtLocal, address, branchName, branchName)

	return s.send(ctx, s.fromDisplay(branchName), toEmail, subject, htmlBody, textBody)
}

// fromDisplay names the sending branch in the from header while keeping the
// shared verified address.
func (s *sesSender) fromDisplay(branchName string) string {
	if branchName == "" {
		return s.fromName
	}
	return fmt.Sprintf("%s via %s", branchName, s.fromName)
}

func (s *sesSender) send(ctx context.Context, fromName, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

// emailFrame wraps message-specific content in the shared layout.
func emailFrame(brand, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
%s
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`, inner, brand)
}

// actionButton renders the primary link button.
func actionButton(label, href string) string {
	return fmt.Sprintf(`  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #14532d; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">%s</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>`, href, label, href)
}

func buildActivationHTML(brand, name, activateURL string) string {
	name = html.EscapeString(name)
	inner := fmt.Sprintf(`  <h2 style="color: #333;">Activate your account</h2>
  <p>Hi %s,</p>
  <p>An account has been created for you on %s. Choose a password to activate it:</p>
%s
  <p style="color: #999; font-size: 12px;">This link expires in 72 hours.</p>`,
		name, brand, actionButton("Activate Account", activateURL))
	return emailFrame(brand, inner)
}

func buildPasswordResetHTML(brand, name, resetURL string) string {
	name = html.EscapeString(name)
	inner := fmt.Sprintf(`  <h2 style="color: #333;">Reset your password</h2>
  <p>Hi %s,</p>
  <p>We received a request to reset your password. Click the button below to set a new one:</p>
%s
  <p style="color: #999; font-size: 12px;">This link expires in 1 hour. If you didn't request a password reset, you can safely ignore this email.</p>`,
		name, actionButton("Reset Password", resetURL))
	return emailFrame(brand, inner)
}

func buildOfferHTML(branchName, name, offerTitle, portalURL string) string {
	name, offerTitle = html.EscapeString(name), html.EscapeString(offerTitle)
	inner := fmt.Sprintf(`  <h2 style="color: #333;">You have received an offer</h2>
  <p>Hi %s,</p>
  <p>%s has sent you an offer: <strong>%s</strong></p>
  <p>Review it online; you can accept or decline directly from that page.</p>
%s`,
		name, branchName, offerTitle, actionButton("View Offer", portalURL))
	return emailFrame(branchName, inner)
}

// buildOfferDecidedHTML escapes the reason, which arrives straight from the
// public portal form.
func buildOfferDecidedHTML(brand, offerTitle, decision, reason string) string {
	offerTitle, reason = html.EscapeString(offerTitle), html.EscapeString(reason)
	inner := fmt.Sprintf(`  <h2 style="color: #333;">Offer %s</h2>
  <p>The offer <strong>%s</strong> has been %s by the customer.</p>`, decision, offerTitle, decision)
	if reason != "" {
		inner += fmt.Sprintf(`
  <p>Reason given:</p>
  <p style="color: #666; border-left: 3px solid #ddd; padding-left: 12px;">%s</p>`, reason)
	}
	return emailFrame(brand, inner)
}

func buildReportHTML(branchName, name, reportTitle, portalURL string) string {
	name, reportTitle = html.EscapeString(name), html.EscapeString(reportTitle)
	inner := fmt.Sprintf(`  <h2 style="color: #333;">Your inspection report is ready</h2>
  <p>Hi %s,</p>
  <p>%s has completed the roof inspection: <strong>%s</strong></p>
%s`,
		name, branchName, reportTitle, actionButton("View Report", portalURL))
	return emailFrame(branchName, inner)
}

func buildReminderHTML(branchName, name, startsAtLocal, address string) string {
	name, address = html.EscapeString(name), html.EscapeString(address)
	inner := fmt.Sprintf(`  <h2 style="color: #333;">Upcoming roof inspection</h2>
  <p>Hi %s,</p>
  <p>This is a reminder of the scheduled visit.</p>
  <p><strong>When:</strong> %s<br>
  <strong>Where:</strong> %s</p>
  <p>If the time no longer suits, please contact %s as soon as possible.</p>`,
		name, startsAtLocal, address, branchName)
	return emailFrame(branchName, inner)
}
