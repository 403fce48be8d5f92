package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/webhook"
)

type alertPayload struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	t.Run("delivers payload as JSON", func(t *testing.T) {
		t.Parallel()

		var got alertPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender := webhook.NewSender()
		err := sender.Send(context.Background(), srv.URL, alertPayload{
			Kind:        "session_hijack_suspected",
			Description: "login tenant mismatch",
		})
		require.NoError(t, err)
		assert.Equal(t, "session_hijack_suspected", got.Kind)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender := webhook.NewSender()
		err := sender.Send(context.Background(), srv.URL, alertPayload{Kind: "test"},
			webhook.WithMaxRetries(3),
			webhook.WithBackoff(webhook.FixedBackoff{Interval: time.Millisecond}))
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("4xx is permanent and not retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		sender := webhook.NewSender()
		err := sender.Send(context.Background(), srv.URL, alertPayload{Kind: "test"},
			webhook.WithMaxRetries(3),
			webhook.WithBackoff(webhook.FixedBackoff{Interval: time.Millisecond}))
		require.ErrorIs(t, err, webhook.ErrPermanentFailure)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("exhausted retries return delivery failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		sender := webhook.NewSender()
		err := sender.Send(context.Background(), srv.URL, alertPayload{Kind: "test"},
			webhook.WithMaxRetries(1),
			webhook.WithBackoff(webhook.FixedBackoff{Interval: time.Millisecond}))
		require.ErrorIs(t, err, webhook.ErrDeliveryFailed)
	})

	t.Run("custom headers are forwarded", func(t *testing.T) {
		t.Parallel()

		var header string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Get("X-Alert-Channel")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender := webhook.NewSender()
		err := sender.Send(context.Background(), srv.URL, alertPayload{Kind: "test"},
			webhook.WithHeader("X-Alert-Channel", "security"))
		require.NoError(t, err)
		assert.Equal(t, "security", header)
	})

	t.Run("signed request verifies at the receiver", func(t *testing.T) {
		t.Parallel()

		const secret = "alert-secret"
		var verifyErr error
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			ts, err := strconv.ParseInt(r.Header.Get("X-Webhook-Timestamp"), 10, 64)
			require.NoError(t, err)

			verifyErr = webhook.VerifySignature(secret, body, webhook.SignatureHeaders{
				Signature: r.Header.Get("X-Webhook-Signature"),
				Timestamp: ts,
				ID:        r.Header.Get("X-Webhook-ID"),
			}, time.Minute)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender := webhook.NewSender()
		err := sender.Send(context.Background(), srv.URL, alertPayload{Kind: "test"},
			webhook.WithSignature(secret))
		require.NoError(t, err)
		require.NoError(t, verifyErr)
	})

	t.Run("rejects invalid URLs", func(t *testing.T) {
		t.Parallel()

		sender := webhook.NewSender()
		for _, url := range []string{"", "ftp://example.com/hook", "http://"} {
			err := sender.Send(context.Background(), url, alertPayload{Kind: "test"})
			assert.ErrorIs(t, err, webhook.ErrInvalidURL, url)
		}
	})
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"kind":"cross_tenant_access_attempt"}`)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		require.NoError(t, webhook.VerifySignature("secret", payload, headers, time.Minute))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		require.ErrorIs(t, webhook.VerifySignature("other", payload, headers, time.Minute),
			webhook.ErrInvalidConfiguration)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		require.Error(t, webhook.VerifySignature("secret", []byte(`{"kind":"benign"}`), headers, time.Minute))
	})

	t.Run("stale timestamp fails", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		headers.Timestamp -= int64((2 * time.Hour).Seconds())
		require.Error(t, webhook.VerifySignature("secret", payload, headers, time.Minute))
	})
}

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()

	b := webhook.ExponentialBackoff{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
	}

	assert.Equal(t, 100*time.Millisecond, b.NextInterval(1))
	assert.Equal(t, 200*time.Millisecond, b.NextInterval(2))
	assert.Equal(t, 400*time.Millisecond, b.NextInterval(3))
	assert.Equal(t, time.Second, b.NextInterval(10), "capped at max interval")
}
