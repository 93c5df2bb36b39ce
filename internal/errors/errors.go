package errors

import "errors"

// Failure reasons surfaced by the payment endpoints. The confirmation
// endpoint returns them in the JSON error body; the webhook endpoint only
// distinguishes signature/parse failures at the transport level.
const (
	ReasonInvalidMethod      = "invalid_method"
	ReasonInvalidJSON        = "invalid_json"
	ReasonMissingFields      = "missing_fields"
	ReasonSignatureMismatch  = "signature_verification_failed"
	ReasonOrderNotFound      = "order_not_found"
	ReasonGatewayUnavailable = "gateway_unavailable"
)

var (
	// ErrOrderNotFound means no payment record exists for the gateway order id.
	ErrOrderNotFound = errors.New("payment order not found")

	// ErrSignatureMismatch means a gateway signature failed verification.
	ErrSignatureMismatch = errors.New("signature verification failed")

	// ErrInvalidPayload means a webhook body could not be parsed.
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrGatewayUnavailable wraps a failed order creation at the gateway.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrEventNotFound means the referenced event does not exist or is inactive.
	ErrEventNotFound = errors.New("event not found")

	// ErrBookingNotFound means the referenced booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
)

// IsNotFound reports whether err is one of the not-found sentinels,
// possibly wrapped.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

// IsGatewayUnavailable reports whether err wraps a gateway outage.
func IsGatewayUnavailable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}
