package email

import (
	"context"
	"fmt"
	"time"

	"wardrobe/internal/config"
	"wardrobe/internal/logger"

	"github.com/mailgun/mailgun-go/v5"
)

type Service struct {
	client        mailgun.Mailgun
	domain        string
	senderEmail   string
	senderName    string
	resetLinkBase string
	enabled       bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:        client,
		domain:        cfg.MailgunDomain,
		senderEmail:   cfg.MailgunSenderEmail,
		senderName:    cfg.MailgunSenderName,
		resetLinkBase: cfg.ResetLinkBase,
		enabled:       enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendPasswordResetEmail delivers the reset code to the address with a link
// to the reset page.
func (s *Service) SendPasswordResetEmail(toEmail, code string) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	subject := "Wardrobe App - Reset Password"
	textBody := s.generateResetText(toEmail, code)
	htmlBody := s.generateResetHTML(toEmail, code)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		toEmail,
	)
	message.SetHTML(htmlBody)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send password reset email to %s: %w", toEmail, err)
	}

	logger.Info("Password reset email sent", "email", toEmail, "message_id", resp)
	return nil
}
