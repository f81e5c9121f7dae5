// Package notification delivers transactional emails through the configured provider.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Message is a rendered transactional email
type Message struct {
	To       string
	Template string
	Subject  string
	Text     string
	Data     map[string]any
}

// Validate checks the message can be delivered
func (m Message) Validate() error {
	if m.To == "" {
		return errors.New("notification: recipient is required")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("notification: invalid recipient %q: %w", m.To, err)
	}
	if m.Subject == "" {
		return errors.New("notification: subject is required")
	}
	return nil
}

// Notifier sends a message through one provider
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From address
type Sender struct {
	Email string
	Name  string
}

func (s Sender) String() string {
	if s.Name == "" {
		return s.Email
	}
	return (&mail.Address{Name: s.Name, Address: s.Email}).String()
}

// New builds the notifier picked by NotificationConfig.ResolveProvider
func New(cfg config.NotificationConfig, mc config.MailchimpConfig, logger *zap.Logger) (Notifier, error) {
	from := Sender{Email: cfg.FromEmail, Name: cfg.FromName}
	provider := cfg.ResolveProvider()

	var (
		n   Notifier
		err error
	)
	switch provider {
	case config.NotificationProviderResend:
		n, err = NewResendNotifier(cfg.ResendAPIKey, from)
	case config.NotificationProviderSendGrid:
		n, err = NewSendGridNotifier(cfg.SendGridAPIKey, from)
	case config.NotificationProviderMailchimp:
		n, err = NewMandrillNotifier(mc.TransactionalKey, from, WithMandrillTimeout(mc.Timeout))
	default:
		n = NewLogNotifier(logger)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Notification provider selected", zap.String("provider", n.Name()))
	return n, nil
}
