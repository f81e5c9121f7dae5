package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxResponseSize = 1 << 20
	maxLabelSize    = 10 << 20
)

// ErrResponseTooLarge is returned when Sendcloud sends more than the client accepts
var ErrResponseTooLarge = errors.New("sendcloud: response too large")

// SendcloudClient talks to the Sendcloud v2 REST API
type SendcloudClient struct {
	baseURL    string
	publicKey  string
	secretKey  string
	senderID   int
	maxBody    int64
	maxLabel   int64
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// ClientOption configures a SendcloudClient
type ClientOption func(*SendcloudClient)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(s *SendcloudClient) {
		s.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(s *SendcloudClient) {
		s.logger = logger
	}
}

// NewSendcloudClient creates a client from config
func NewSendcloudClient(cfg config.SendcloudConfig, opts ...ClientOption) (*SendcloudClient, error) {
	if cfg.PublicKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("sendcloud: public key and secret key are required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("sendcloud: base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	c := &SendcloudClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		publicKey:  cfg.PublicKey,
		secretKey:  cfg.SecretKey,
		senderID:   cfg.SenderAddressID,
		maxBody:    maxResponseSize,
		maxLabel:   maxLabelSize,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateParcel announces a parcel and requests its label
func (c *SendcloudClient) CreateParcel(ctx context.Context, in ParcelInput) (*Parcel, error) {
	if in.SenderAddress == 0 {
		in.SenderAddress = c.senderID
	}
	body, err := json.Marshal(parcelRequest{Parcel: in})
	if err != nil {
		return nil, fmt.Errorf("sendcloud: failed to encode parcel: %w", err)
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/parcels", body, c.maxBody)
	if err != nil {
		return nil, err
	}
	var env parcelEnvelope
	if err := json.Unmarshal(resp, &env); err != nil {
		return nil, fmt.Errorf("sendcloud: failed to decode parcel: %w", err)
	}
	c.logger.Info("Created Sendcloud parcel",
		zap.Int64("parcel_id", env.Parcel.ID),
		zap.String("order_number", in.OrderNumber),
		zap.Bool("is_return", in.IsReturn))
	return &env.Parcel, nil
}

// CancelParcel cancels an announced parcel, or deletes it when it was never announced
func (c *SendcloudClient) CancelParcel(ctx context.Context, parcelID string) (*CancelResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/parcels/"+url.PathEscape(parcelID)+"/cancel", nil, c.maxBody)
	if err != nil {
		return nil, err
	}
	var res CancelResult
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &res); err != nil {
			return nil, fmt.Errorf("sendcloud: failed to decode cancel result: %w", err)
		}
	}
	c.logger.Info("Canceled Sendcloud parcel",
		zap.String("parcel_id", parcelID),
		zap.String("status", res.Status))
	return &res, nil
}

// DownloadLabel fetches the label PDF of a parcel in the given printer format
func (c *SendcloudClient) DownloadLabel(ctx context.Context, parcelID, format string) ([]byte, error) {
	path := "/labels/" + url.PathEscape(format) + "/" + url.PathEscape(parcelID)
	return c.doRequest(ctx, http.MethodGet, path, nil, c.maxLabel)
}

// ShippingMethods lists the methods available towards a country
func (c *SendcloudClient) ShippingMethods(ctx context.Context, toCountry string, isReturn bool) ([]ShippingMethod, error) {
	q := url.Values{}
	q.Set("to_country", strings.ToUpper(toCountry))
	if c.senderID > 0 {
		q.Set("sender_address", strconv.Itoa(c.senderID))
	}
	if isReturn {
		q.Set("is_return", "true")
	}
	resp, err := c.doRequest(ctx, http.MethodGet, "/shipping_methods?"+q.Encode(), nil, c.maxBody)
	if err != nil {
		return nil, err
	}
	var env shippingMethodsEnvelope
	if err := json.Unmarshal(resp, &env); err != nil {
		return nil, fmt.Errorf("sendcloud: failed to decode shipping methods: %w", err)
	}
	return env.ShippingMethods, nil
}

// doRequest performs a rate limited, authenticated request
func (c *SendcloudClient) doRequest(ctx context.Context, method, path string, body []byte, limit int64) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("sendcloud: rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("sendcloud: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)
	req.Header.Set("Accept", "application/json, application/pdf")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendcloud: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("sendcloud: failed to read response: %w", err)
	}

	c.logger.Debug("Sendcloud request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp sendcloudError
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Detail = strings.TrimSuffix(errResp.Error.Message, ".")
		}
		return nil, apiErr
	}
	if int64(len(respBody)) > limit {
		return nil, fmt.Errorf("%w: %s %s exceeds %d bytes", ErrResponseTooLarge, method, path, limit)
	}
	return respBody, nil
}
