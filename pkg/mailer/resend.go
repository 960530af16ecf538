package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"
)

// ResendConfig holds Resend provider settings.
type ResendConfig struct {
	APIKey      string `yaml:"api_key"`
	SenderEmail string `yaml:"from_email"`
	SenderName  string `yaml:"from_name"`
}

// ResendSender implements Sender using the Resend API.
type ResendSender struct {
	client *resend.Client
	config ResendConfig
}

// NewResend creates a Resend-backed sender.
func NewResend(cfg ResendConfig) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, email *Email) error {
	if err := email.Validate(); err != nil {
		return err
	}

	from := email.From
	if from == "" {
		from = s.config.SenderEmail
		if s.config.SenderName != "" {
			from = fmt.Sprintf("%s <%s>", s.config.SenderName, s.config.SenderEmail)
		}
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
