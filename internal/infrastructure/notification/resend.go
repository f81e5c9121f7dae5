package notification

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier sends email through Resend
type ResendNotifier struct {
	client *resend.Client
	from   Sender
}

// NewResendNotifier creates a Resend notifier
func NewResendNotifier(apiKey string, from Sender) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("resend: api key is required")
	}
	if from.Email == "" {
		return nil, errors.New("resend: from email is required")
	}
	return &ResendNotifier{client: resend.NewClient(apiKey), from: from}, nil
}

// WithBaseURL points the client at another API host
func (r *ResendNotifier) WithBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("resend: invalid base url: %w", err)
	}
	r.client.BaseURL = u
	return nil
}

func (r *ResendNotifier) Name() string { return "resend" }

// Send delivers the message
func (r *ResendNotifier) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	req := &resend.SendEmailRequest{
		From:    r.from.String(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	}
	if msg.Template != "" {
		req.Tags = []resend.Tag{{Name: "template", Value: msg.Template}}
	}
	if _, err := r.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send %s: %w", msg.Template, err)
	}
	return nil
}
