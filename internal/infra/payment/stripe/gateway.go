package stripe

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/affordableaudits/audit-api/internal/domain/payment"
)

// fallbackAmountUSD is charged when no price ID is configured.
const fallbackAmountUSD = 9900

type Config struct {
	SecretKey  string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Gateway adapts the Stripe checkout API to the payment.Gateway port.
type Gateway struct {
	api *client.API
	cfg Config
}

func New(cfg Config) *Gateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Gateway{api: api, cfg: cfg}
}

func (g *Gateway) CreateCheckout(ctx context.Context, customerEmail string) (payment.Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(g.cfg.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(g.cfg.CancelURL),
		CustomerEmail: stripe.String(customerEmail),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"product": "affordable-smart-contract-audit"},
		},
	}
	params.Context = ctx

	if g.cfg.PriceID != "" {
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(g.cfg.PriceID),
			Quantity: stripe.Int64(1),
		}}
	} else {
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(fallbackAmountUSD),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Smart Contract Audit"),
				},
			},
			Quantity: stripe.Int64(1),
		}}
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return payment.Checkout{}, fmt.Errorf("create checkout session: %w", err)
	}
	return payment.Checkout{SessionID: sess.ID, URL: sess.URL}, nil
}

func (g *Gateway) RetrieveStatus(ctx context.Context, checkoutSessionID string) (string, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(checkoutSessionID, params)
	if err != nil {
		return "", fmt.Errorf("retrieve checkout session: %w", err)
	}
	return string(sess.PaymentStatus), nil
}
