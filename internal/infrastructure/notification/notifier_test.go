package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testSender = Sender{Email: "shop@example.com", Name: "Example Shop"}

func testMessage() Message {
	return Message{
		To:       "jane@example.com",
		Template: "order-placed",
		Subject:  "Your order #1001",
		Text:     "Thanks for your order.",
	}
}

func captureServer(t *testing.T, status int, response string, got *map[string]any, path *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, testMessage().Validate())
	m := testMessage()
	m.To = "not an address"
	assert.ErrorContains(t, m.Validate(), "invalid recipient")
	m = testMessage()
	m.Subject = ""
	assert.ErrorContains(t, m.Validate(), "subject is required")
}

func TestNew_SelectsProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.NotificationConfig
		mc   config.MailchimpConfig
		want string
	}{
		{"resend", config.NotificationConfig{ResendAPIKey: "re_x", FromEmail: "a@b.co"}, config.MailchimpConfig{}, "resend"},
		{"sendgrid", config.NotificationConfig{SendGridAPIKey: "SG.x", FromEmail: "a@b.co"}, config.MailchimpConfig{}, "sendgrid"},
		{"mailchimp", config.NotificationConfig{MailchimpKey: "md", FromEmail: "a@b.co"}, config.MailchimpConfig{TransactionalKey: "md"}, "mailchimp"},
		{"log", config.NotificationConfig{}, config.MailchimpConfig{}, "log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.cfg, tt.mc, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Name())
		})
	}

	_, err := New(config.NotificationConfig{ResendAPIKey: "re_x"}, config.MailchimpConfig{}, zap.NewNop())
	assert.ErrorContains(t, err, "from email is required")
}

func TestResendNotifier_Send(t *testing.T) {
	var got map[string]any
	var path string
	srv := captureServer(t, http.StatusOK, `{"id":"email_1"}`, &got, &path)

	n, err := NewResendNotifier("re_test", testSender)
	require.NoError(t, err)
	require.NoError(t, n.WithBaseURL(srv.URL+"/"))

	require.NoError(t, n.Send(context.Background(), testMessage()))
	assert.Equal(t, "/emails", path)
	assert.Equal(t, `"Example Shop" <shop@example.com>`, got["from"])
	assert.Equal(t, []any{"jane@example.com"}, got["to"])
	assert.Equal(t, "Your order #1001", got["subject"])
}

func TestSendGridNotifier_Send(t *testing.T) {
	var got map[string]any
	var path string
	srv := captureServer(t, http.StatusAccepted, ``, &got, &path)

	n, err := NewSendGridNotifierWithHost("SG.test", srv.URL, testSender)
	require.NoError(t, err)
	require.NoError(t, n.Send(context.Background(), testMessage()))
	assert.Equal(t, "/v3/mail/send", path)
	assert.Equal(t, "Your order #1001", got["subject"])
	assert.Equal(t, []any{"order-placed"}, got["categories"])

	failing := captureServer(t, http.StatusUnauthorized, `{"errors":[{"message":"bad key"}]}`, &got, &path)
	n, err = NewSendGridNotifierWithHost("SG.test", failing.URL, testSender)
	require.NoError(t, err)
	err = n.Send(context.Background(), testMessage())
	assert.ErrorContains(t, err, "status 401")
}

func TestMandrillNotifier_Send(t *testing.T) {
	var got map[string]any
	var path string
	srv := captureServer(t, http.StatusOK, `[{"email":"jane@example.com","status":"sent","_id":"abc"}]`, &got, &path)

	n, err := NewMandrillNotifier("md-key", testSender, WithMandrillBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, n.Send(context.Background(), testMessage()))
	assert.Equal(t, "/messages/send", path)
	assert.Equal(t, "md-key", got["key"])
	msg := got["message"].(map[string]any)
	assert.Equal(t, "shop@example.com", msg["from_email"])

	rejected := captureServer(t, http.StatusOK, `[{"email":"jane@example.com","status":"rejected","reject_reason":"hard-bounce"}]`, &got, &path)
	n, err = NewMandrillNotifier("md-key", testSender, WithMandrillBaseURL(rejected.URL))
	require.NoError(t, err)
	assert.ErrorContains(t, n.Send(context.Background(), testMessage()), "hard-bounce")

	invalidKey := captureServer(t, http.StatusInternalServerError, `{"status":"error","name":"Invalid_Key","message":"Invalid API key"}`, &got, &path)
	n, err = NewMandrillNotifier("md-key", testSender, WithMandrillBaseURL(invalidKey.URL))
	require.NoError(t, err)
	assert.ErrorContains(t, n.Send(context.Background(), testMessage()), "Invalid API key")
}

func TestLogNotifier_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Send(context.Background(), testMessage()))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "order-placed", entry.ContextMap()["template"])
}
