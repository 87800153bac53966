package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// EventCheckoutCompleted is the only event the booking flow acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// Gateway creates hosted checkout sessions and verifies their webhooks.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, item CheckoutItem) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// CheckoutItem describes a single line item checkout.
type CheckoutItem struct {
	Name            string
	Description     string
	Images          []string
	Amount          decimal.Decimal // major units, e.g. 497.00
	Currency        string
	CustomerEmail   string
	ClientReference string
	SuccessURL      string
	CancelURL       string
}

type Session struct {
	ID  string
	URL string
}

// Event is a verified webhook event reduced to the fields bookings need.
type Event struct {
	Type            string `json:"type"`
	SessionID       string `json:"sessionId"`
	ClientReference string `json:"clientReference"`
	CustomerEmail   string `json:"customerEmail"`
	AmountTotal     int64  `json:"amountTotal"` // minor units
}

// ToCents converts a major unit amount to minor units, rounding half away
// from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromCents is the inverse of ToCents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
