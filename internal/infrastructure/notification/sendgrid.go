package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridSendPath = "/v3/mail/send"

// SendGridNotifier sends email through SendGrid
type SendGridNotifier struct {
	client *sendgrid.Client
	from   Sender
}

// NewSendGridNotifier creates a SendGrid notifier against the public API host
func NewSendGridNotifier(apiKey string, from Sender) (*SendGridNotifier, error) {
	return NewSendGridNotifierWithHost(apiKey, "", from)
}

// NewSendGridNotifierWithHost creates a SendGrid notifier for a custom host
func NewSendGridNotifierWithHost(apiKey, host string, from Sender) (*SendGridNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid: api key is required")
	}
	if from.Email == "" {
		return nil, errors.New("sendgrid: from email is required")
	}
	req := sendgrid.GetRequest(apiKey, sendGridSendPath, host)
	req.Method = "POST"
	return &SendGridNotifier{client: &sendgrid.Client{Request: req}, from: from}, nil
}

func (s *SendGridNotifier) Name() string { return "sendgrid" }

// Send delivers the message
func (s *SendGridNotifier) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m := mail.NewV3MailInit(
		mail.NewEmail(s.from.Name, s.from.Email),
		msg.Subject,
		mail.NewEmail("", msg.To),
		mail.NewContent("text/plain", msg.Text),
	)
	m.AddCategories(msg.Template)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send %s: %w", msg.Template, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: request failed with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
