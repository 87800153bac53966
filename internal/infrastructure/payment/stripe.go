package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"tropharbour-backend/internal/shared/apperror"
)

// StripeGateway talks to Stripe Checkout.
type StripeGateway struct {
	sessions      session.Client
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	return &StripeGateway{
		sessions:      session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, item CheckoutItem) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(item.SuccessURL),
		CancelURL:          stripe.String(item.CancelURL),
		CustomerEmail:      stripe.String(item.CustomerEmail),
		ClientReferenceID:  stripe.String(item.ClientReference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(item.Currency),
					UnitAmount: stripe.Int64(ToCents(item.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(item.Name),
						Description: stripe.String(item.Description),
						Images:      stripe.StringSlice(item.Images),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, apperror.Dependency("Could not create the checkout session. Try again later!", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "Webhook error: invalid signature", err)
	}

	out := &Event{Type: string(event.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "Webhook error: malformed session", fmt.Errorf("decode session: %w", err))
	}
	out.SessionID = s.ID
	out.ClientReference = s.ClientReferenceID
	out.CustomerEmail = s.CustomerEmail
	out.AmountTotal = s.AmountTotal
	return out, nil
}
