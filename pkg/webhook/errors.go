package webhook

import "errors"

var (
	// ErrInvalidURL indicates the webhook URL is missing or malformed.
	ErrInvalidURL = errors.New("invalid webhook URL")

	// ErrInvalidPayload indicates an empty or unmarshalable payload.
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrInvalidConfiguration indicates missing or inconsistent signing settings.
	ErrInvalidConfiguration = errors.New("invalid webhook configuration")

	// ErrUnexpectedStatus indicates a non-2xx response from the endpoint.
	ErrUnexpectedStatus = errors.New("unexpected webhook response status")

	// ErrPermanentFailure indicates a failure that retrying cannot fix.
	ErrPermanentFailure = errors.New("permanent webhook delivery failure")

	// ErrDeliveryFailed indicates all retry attempts were exhausted.
	ErrDeliveryFailed = errors.New("webhook delivery failed")
)
