package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const mandrillBaseURL = "https://mandrillapp.com/api/1.0"

// MandrillNotifier sends email through Mailchimp Transactional
type MandrillNotifier struct {
	apiKey     string
	baseURL    string
	from       Sender
	httpClient *http.Client
}

// MandrillOption configures a MandrillNotifier
type MandrillOption func(*MandrillNotifier)

// WithMandrillBaseURL overrides the API base URL
func WithMandrillBaseURL(u string) MandrillOption {
	return func(m *MandrillNotifier) {
		m.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMandrillTimeout sets the HTTP timeout
func WithMandrillTimeout(d time.Duration) MandrillOption {
	return func(m *MandrillNotifier) {
		if d > 0 {
			m.httpClient.Timeout = d
		}
	}
}

// NewMandrillNotifier creates a Mailchimp Transactional notifier
func NewMandrillNotifier(apiKey string, from Sender, opts ...MandrillOption) (*MandrillNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("mailchimp transactional: api key is required")
	}
	if from.Email == "" {
		return nil, errors.New("mailchimp transactional: from email is required")
	}
	m := &MandrillNotifier{
		apiKey:     apiKey,
		baseURL:    mandrillBaseURL,
		from:       from,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *MandrillNotifier) Name() string { return "mailchimp" }

type mandrillRecipient struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

type mandrillMessage struct {
	FromEmail string              `json:"from_email"`
	FromName  string              `json:"from_name,omitempty"`
	Subject   string              `json:"subject"`
	Text      string              `json:"text"`
	To        []mandrillRecipient `json:"to"`
	Tags      []string            `json:"tags,omitempty"`
}

type mandrillSendRequest struct {
	Key     string          `json:"key"`
	Message mandrillMessage `json:"message"`
}

type mandrillResult struct {
	Email        string `json:"email"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason"`
	ID           string `json:"_id"`
}

type mandrillError struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send delivers the message
func (m *MandrillNotifier) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	payload := mandrillSendRequest{
		Key: m.apiKey,
		Message: mandrillMessage{
			FromEmail: m.from.Email,
			FromName:  m.from.Name,
			Subject:   msg.Subject,
			Text:      msg.Text,
			To:        []mandrillRecipient{{Email: msg.To, Type: "to"}},
		},
	}
	if msg.Template != "" {
		payload.Message.Tags = []string{msg.Template}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailchimp transactional: failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/messages/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailchimp transactional: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailchimp transactional: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("mailchimp transactional: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var e mandrillError
		if json.Unmarshal(respBody, &e) == nil && e.Message != "" {
			return fmt.Errorf("mailchimp transactional: request failed with status %d: %s", resp.StatusCode, e.Message)
		}
		return fmt.Errorf("mailchimp transactional: request failed with status %d", resp.StatusCode)
	}

	var results []mandrillResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return fmt.Errorf("mailchimp transactional: failed to decode response: %w", err)
	}
	for _, r := range results {
		if r.Status == "rejected" || r.Status == "invalid" {
			return fmt.Errorf("mailchimp transactional: message to %s %s: %s", r.Email, r.Status, r.RejectReason)
		}
	}
	return nil
}
