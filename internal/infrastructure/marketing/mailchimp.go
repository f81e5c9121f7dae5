// Package marketing syncs newsletter subscribers to Mailchimp audiences.
package marketing

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MailchimpClient manages list members through the Mailchimp Marketing API
type MailchimpClient struct {
	apiKey     string
	listID     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a MailchimpClient
type Option func(*MailchimpClient)

// WithBaseURL overrides the datacenter URL derived from the API key
func WithBaseURL(u string) Option {
	return func(c *MailchimpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *MailchimpClient) {
		c.logger = logger
	}
}

// NewMailchimpClient creates a client for the configured audience
func NewMailchimpClient(cfg config.MailchimpConfig, opts ...Option) (*MailchimpClient, error) {
	if !cfg.MarketingEnabled() {
		return nil, errors.New("mailchimp: api key and list id are required")
	}
	dc, err := Datacenter(cfg.APIKey)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &MailchimpClient{
		apiKey:     cfg.APIKey,
		listID:     cfg.ListID,
		baseURL:    fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc),
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Datacenter extracts the datacenter from the "-usX" suffix of an API key
func Datacenter(apiKey string) (string, error) {
	i := strings.LastIndex(apiKey, "-")
	if i < 0 || i == len(apiKey)-1 {
		return "", errors.New("mailchimp: api key has no datacenter suffix")
	}
	return apiKey[i+1:], nil
}

// SubscriberHash is the member id Mailchimp derives from an email
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

type memberRequest struct {
	EmailAddress string            `json:"email_address"`
	StatusIfNew  string            `json:"status_if_new,omitempty"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

type mailchimpError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Subscribe upserts the member as subscribed
func (c *MailchimpClient) Subscribe(ctx context.Context, email, firstName, lastName string) error {
	req := memberRequest{
		EmailAddress: email,
		StatusIfNew:  "subscribed",
		Status:       "subscribed",
	}
	if firstName != "" || lastName != "" {
		req.MergeFields = map[string]string{"FNAME": firstName, "LNAME": lastName}
	}
	return c.putMember(ctx, email, req)
}

// Unsubscribe marks the member unsubscribed
func (c *MailchimpClient) Unsubscribe(ctx context.Context, email string) error {
	return c.putMember(ctx, email, memberRequest{
		EmailAddress: email,
		StatusIfNew:  "unsubscribed",
		Status:       "unsubscribed",
	})
}

func (c *MailchimpClient) putMember(ctx context.Context, email string, payload memberRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailchimp: failed to encode member: %w", err)
	}
	path := fmt.Sprintf("/lists/%s/members/%s", c.listID, SubscriberHash(email))
	return c.doRequest(ctx, http.MethodPut, path, body)
}

func (c *MailchimpClient) doRequest(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailchimp: failed to create request: %w", err)
	}
	req.SetBasicAuth("anystring", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailchimp: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("mailchimp: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var e mailchimpError
		if json.Unmarshal(respBody, &e) == nil && e.Detail != "" {
			return fmt.Errorf("mailchimp: request failed with status %d: %s: %s", resp.StatusCode, e.Title, e.Detail)
		}
		return fmt.Errorf("mailchimp: request failed with status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	c.logger.Debug("Mailchimp request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))
	return nil
}
