package payment

import "errors"

var (
	// ErrVerification indicates the referenced checkout session exists but
	// does not report a paid status.
	ErrVerification = errors.New("checkout session is not paid")

	// ErrGatewayUnavailable indicates the payment collaborator could not be
	// reached. Surfaced, not silently retried.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidTransition indicates a gate method was called in a state
	// that does not permit it.
	ErrInvalidTransition = errors.New("invalid payment state transition")
)
