package mailer

import (
	"context"
	"errors"
)

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("mailer: email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("mailer: email must have HTML content")

	// ErrSendFailed indicates email delivery failed.
	ErrSendFailed = errors.New("mailer: failed to send email")
)

// Email is a fully-prepared message ready for delivery.
type Email struct {
	Subject string
	HTML    string
	Text    string
	From    string // overrides the provider default when set
	ReplyTo string
	To      []string
}

// Sender is the minimal interface an email provider implements.
type Sender interface {
	// Send delivers an email. To, Subject and HTML must be set.
	Send(ctx context.Context, email *Email) error
}

// Validate checks the email has the fields every provider requires.
func (e *Email) Validate() error {
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	if e.Subject == "" {
		return ErrNoSubject
	}
	if e.HTML == "" {
		return ErrNoContent
	}
	return nil
}
