package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tropharbour-backend/internal/domains/booking/model"
)

// BookingRepository persists the payment ledger.
type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindBySession(ctx context.Context, sessionID string) (*model.Booking, error)

	// MarkPaid flags the booking of a checkout session as paid. updated is
	// false when the booking was already paid, so webhook redeliveries are
	// harmless.
	MarkPaid(ctx context.Context, sessionID string, paidAt time.Time) (b *model.Booking, updated bool, err error)

	ListByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	List(ctx context.Context, page, limit int) (*model.Page, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteStalePending removes unpaid bookings created before the cutoff.
	DeleteStalePending(ctx context.Context, before time.Time) (int64, error)
}
