package payment

import (
	"context"
	"fmt"
	"sync"
)

// State enum
type State string

const (
	StateUnpaid         State = "unpaid"
	StateCheckoutIssued State = "checkout_issued"
	StateVerified       State = "verified"
	StateConsumed       State = "consumed"
)

// Checkout is the gateway-issued transaction handle for one pending purchase.
type Checkout struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PaidStatus is the gateway status string that verifies a checkout.
const PaidStatus = "paid"

// Gateway port (interface ke payment collaborator)
type Gateway interface {
	CreateCheckout(ctx context.Context, customerEmail string) (Checkout, error)
	// RetrieveStatus returns the payment status of a checkout session,
	// e.g. "paid" or "unpaid".
	RetrieveStatus(ctx context.Context, checkoutSessionID string) (string, error)
}

// Gate tracks whether one session is entitled to run an audit.
// Unpaid -> CheckoutIssued -> Verified -> Consumed; one payment authorizes
// exactly one audit.
type Gate struct {
	mu       sync.Mutex
	state    State
	checkout Checkout
	gateway  Gateway
}

func NewGate(gw Gateway) *Gate {
	return &Gate{state: StateUnpaid, gateway: gw}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Checkout returns the retained checkout reference, if one was issued.
func (g *Gate) Checkout() Checkout {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkout
}

// StartCheckout creates a checkout session against the gateway and moves the
// gate to CheckoutIssued. Valid from Unpaid, from CheckoutIssued (the
// customer may abandon a checkout and start over) and from Consumed (a fresh
// purchase cycle). Not valid from Verified: the customer already paid.
func (g *Gate) StartCheckout(ctx context.Context, customerEmail string) (Checkout, error) {
	g.mu.Lock()
	if g.state == StateVerified {
		g.mu.Unlock()
		return Checkout{}, fmt.Errorf("%w: checkout while already verified", ErrInvalidTransition)
	}
	g.mu.Unlock()

	co, err := g.gateway.CreateCheckout(ctx, customerEmail)
	if err != nil {
		return Checkout{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	g.mu.Lock()
	g.state = StateCheckoutIssued
	g.checkout = co
	g.mu.Unlock()
	return co, nil
}

// Verify checks the returned checkout session identifier against the gateway
// and moves the gate to Verified. On a non-paid status or an unreachable
// gateway the gate stays in CheckoutIssued.
func (g *Gate) Verify(ctx context.Context, checkoutSessionID string) error {
	g.mu.Lock()
	if g.state != StateCheckoutIssued {
		g.mu.Unlock()
		return fmt.Errorf("%w: verify from %s", ErrInvalidTransition, g.state)
	}
	retained := g.checkout.SessionID
	g.mu.Unlock()

	if checkoutSessionID == "" || checkoutSessionID != retained {
		return fmt.Errorf("%w: unknown checkout session", ErrVerification)
	}

	status, err := g.gateway.RetrieveStatus(ctx, checkoutSessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if status != PaidStatus {
		return fmt.Errorf("%w: status %q", ErrVerification, status)
	}

	g.mu.Lock()
	g.state = StateVerified
	g.mu.Unlock()
	return nil
}

// Consume marks the single paid audit as used. Valid only from Verified.
func (g *Gate) Consume() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateVerified {
		return fmt.Errorf("%w: consume from %s", ErrInvalidTransition, g.state)
	}
	g.state = StateConsumed
	return nil
}

// Reset returns the gate to Unpaid after a terminal audit failure. The
// customer must purchase again: a failed paid run grants no automatic free
// retry.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateUnpaid
	g.checkout = Checkout{}
}
