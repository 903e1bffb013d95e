// Package mailer delivers account-lifecycle emails. Delivery failures are
// logged but never fail the originating request; every token is also valid
// through the API regardless of whether the email arrived.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends account-lifecycle emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendVerification(ctx context.Context, toEmail, toName, token string) error
	SendPasswordReset(ctx context.Context, toEmail, toName, token string) error
	SendInvitation(ctx context.Context, toEmail string, role string, token string) error
}

// SendGridMailer delivers via the SendGrid v3 API.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	logger    *slog.Logger
}

func NewSendGrid(apiKey, fromName, fromEmail string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
	}
}

func (m *SendGridMailer) send(toEmail, toName, subject, plainText string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, "")

	response, err := m.client.Send(message)
	if err != nil {
		m.logger.Error("failed to send email",
			slog.String("to", toEmail),
			slog.String("subject", subject),
			slog.Any("error", err),
		)
		return err
	}
	if response.StatusCode >= 400 {
		m.logger.Error("sendgrid returned error status",
			slog.Int("status", response.StatusCode),
			slog.String("to", toEmail),
		)
		return fmt.Errorf("sendgrid: status %d", response.StatusCode)
	}
	return nil
}

func (m *SendGridMailer) SendVerification(_ context.Context, toEmail, toName, token string) error {
	body := fmt.Sprintf(
		"Welcome! Verify your email address by submitting this token:\n\n%s\n",
		token)
	return m.send(toEmail, toName, "Verify your email address", body)
}

func (m *SendGridMailer) SendPasswordReset(_ context.Context, toEmail, toName, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account. The reset token below expires in one hour:\n\n%s\n\nIf you did not request this, ignore this email.\n",
		token)
	return m.send(toEmail, toName, "Password reset request", body)
}

func (m *SendGridMailer) SendInvitation(_ context.Context, toEmail string, role string, token string) error {
	body := fmt.Sprintf(
		"You have been invited to join as %s. Register with this invitation token within 7 days:\n\n%s\n",
		role, token)
	return m.send(toEmail, "", "You have been invited", body)
}

// LogMailer is the fallback when no SendGrid API key is configured. It logs
// the email without the token so secrets never land in logs.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) log(kind, toEmail string) error {
	m.Logger.Info("email delivery skipped, no mail provider configured",
		slog.String("kind", kind),
		slog.String("to", toEmail),
	)
	return nil
}

func (m *LogMailer) SendVerification(_ context.Context, toEmail, _, _ string) error {
	return m.log("verification", toEmail)
}

func (m *LogMailer) SendPasswordReset(_ context.Context, toEmail, _, _ string) error {
	return m.log("password_reset", toEmail)
}

func (m *LogMailer) SendInvitation(_ context.Context, toEmail, _, _ string) error {
	return m.log("invitation", toEmail)
}
