// Package email provides the outbound email transport used by the
// notification module. The provider (Brevo HTTP API or direct SMTP) is
// selected by configuration; callers only see the Sender interface.
package email

import (
	"context"
	"fmt"

	"imamportal_backend/platform/config"
)

// Sender delivers a single rendered email to one recipient and returns the
// provider message id when available. It is the only network egress of the
// notification subsystem.
type Sender interface {
	Send(ctx context.Context, toEmail, subject, htmlContent string) (string, error)
}

// TransportError wraps a provider rejection or connection failure for one
// recipient. Dispatch isolates these per recipient; they are never joined
// into a single returned error.
type TransportError struct {
	Recipient string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Recipient, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NoopSender is used when email sending is disabled (local development,
// tests). Sends succeed without any network call.
type NoopSender struct{}

func (NoopSender) Send(context.Context, string, string, string) (string, error) {
	return "", nil
}

// NewSender builds the configured Sender implementation.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "smtp":
		if cfg.GetSMTPHost() == "" {
			return nil, fmt.Errorf("email provider smtp selected but SMTP_HOST is empty")
		}
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	case "brevo":
		if cfg.GetBrevoAPIKey() == "" {
			return NoopSender{}, nil
		}
		return NewBrevoSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}
