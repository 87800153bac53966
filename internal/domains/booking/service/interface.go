package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/domains/booking/model"
	tourmodel "tropharbour-backend/internal/domains/tour/model"
	usermodel "tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/ticket"
	"tropharbour-backend/internal/shared"
)

// TourFinder loads the tour being booked.
type TourFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*tourmodel.Tour, error)
}

// UserFinder loads the customer for emails and tickets.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*usermodel.User, error)
}

type Mailer interface {
	SendBookingConfirmation(ctx context.Context, name, address, tourName, ticketURL string) error
}

type TicketRenderer interface {
	Render(d ticket.Data) ([]byte, error)
}

// URLs are the public addresses checkout redirects and emails point at.
type URLs struct {
	Base   string // e.g. https://tropharbour.io
	Images string // public prefix of stored tour images
}

type BookingService interface {
	// CreateCheckoutSession opens a hosted checkout for a tour and records
	// the pending booking.
	CreateCheckoutSession(ctx context.Context, caller *shared.Principal, tourID string) (*model.CheckoutResult, error)

	// HandleWebhook verifies a gateway event and marks the booking paid.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	MyBookings(ctx context.Context, caller *shared.Principal) ([]*model.Booking, error)
	GetBooking(ctx context.Context, caller *shared.Principal, id string) (*model.Booking, error)

	// Ticket renders the PDF ticket of a paid booking.
	Ticket(ctx context.Context, caller *shared.Principal, id string) ([]byte, error)

	ListBookings(ctx context.Context, page, limit int) (*model.Page, error)
	DeleteBooking(ctx context.Context, id string) error

	// ExpirePending removes unpaid bookings older than model.PendingTTL.
	ExpirePending(ctx context.Context) (int64, error)
}
