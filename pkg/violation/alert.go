package violation

import (
	"context"
	"time"

	"github.com/openacs/tenantkit/pkg/webhook"
)

// WebhookAlerter delivers violation records to a configured webhook endpoint.
type WebhookAlerter struct {
	sender *webhook.Sender
	url    string
	secret string
}

// NewWebhookAlerter creates an alerter posting to url.
// When secret is non-empty, payloads are HMAC-signed.
func NewWebhookAlerter(sender *webhook.Sender, url, secret string) *WebhookAlerter {
	if sender == nil {
		sender = webhook.NewSender()
	}
	return &WebhookAlerter{sender: sender, url: url, secret: secret}
}

// alertPayload is the wire format of a violation alert.
type alertPayload struct {
	Type   string `json:"type"`
	Record Record `json:"record"`
	SentAt int64  `json:"sent_at"`
}

// Alert posts the record to the webhook endpoint.
func (a *WebhookAlerter) Alert(ctx context.Context, record Record) error {
	payload := alertPayload{
		Type:   "tenant.violation",
		Record: record,
		SentAt: time.Now().Unix(),
	}

	opts := []webhook.SendOption{webhook.WithMaxRetries(2)}
	if a.secret != "" {
		opts = append(opts, webhook.WithSignature(a.secret))
	}

	return a.sender.Send(ctx, a.url, payload, opts...)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(ctx context.Context, record Record) error

// Alert calls the function.
func (f AlerterFunc) Alert(ctx context.Context, record Record) error {
	return f(ctx, record)
}
