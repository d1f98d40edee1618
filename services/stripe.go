package services

import (
	"context"
	"math"
	"os"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeClient wraps the official SDK with the one call this backend makes
// plus webhook verification.
type StripeClient struct {
	WebhookSecret string
	api           *client.API
}

// NewStripeFromEnv builds the client from STRIPE_SECRET_KEY and
// STRIPE_WEBHOOK_SECRET. backends is nil outside tests.
func NewStripeFromEnv(backends *stripe.Backends) *StripeClient {
	api := &client.API{}
	api.Init(os.Getenv("STRIPE_SECRET_KEY"), backends)
	return &StripeClient{
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		api:           api,
	}
}

// CreateCheckoutSession opens a hosted payment page for one invoice. The
// amount crosses the wire in cents.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, invoiceNumber, clientEmail string, amount float64, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(clientEmail),
		ClientReferenceID: stripe.String(invoiceNumber),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Invoice " + invoiceNumber),
				},
			},
		}},
	}
	return s.api.CheckoutSessions.New(params)
}

// VerifyWebhook checks the Stripe-Signature header against the payload and
// returns the parsed event. The SDK enforces the t=/v1= signing scheme and
// its replay tolerance window.
func (s *StripeClient) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookSecret)
}
