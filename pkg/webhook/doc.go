// Package webhook delivers signed JSON payloads to external endpoints with
// retries and exponential backoff.
//
// In this toolkit it carries security alerts for the violation reporter, but
// it has no knowledge of violations: any JSON-serializable value can be sent.
//
//	sender := webhook.NewSender()
//	err := sender.Send(ctx, alertURL, payload,
//		webhook.WithSignature(secret),
//		webhook.WithMaxRetries(3),
//	)
//
// Receivers verify authenticity with VerifySignature using the shared secret
// and the X-Webhook-Signature / X-Webhook-Timestamp headers.
package webhook
