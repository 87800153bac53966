package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingTTL is how long an unpaid booking is kept before the scheduler
// removes it.
const PendingTTL = 24 * time.Hour

// Booking is one row of the payment ledger. Tour and user ids are the hex
// ObjectIDs of the document store.
type Booking struct {
	ID        uuid.UUID       `json:"id"`
	TourID    string          `json:"tour"`
	UserID    string          `json:"user"`
	TourName  string          `json:"tourName"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	SessionID string          `json:"-"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"createdAt"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
}

// OwnedBy reports whether userID made the booking.
func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID == userID
}

// Page is one page of the admin listing.
type Page struct {
	Bookings []*Booking
	Total    int64
	Page     int
	Limit    int
}

// CheckoutResult is returned to the client so it can redirect to the
// hosted payment page.
type CheckoutResult struct {
	SessionID string   `json:"id"`
	URL       string   `json:"url"`
	Booking   *Booking `json:"booking"`
}
