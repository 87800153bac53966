package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tropharbour-backend/internal/domains/booking/model"
	"tropharbour-backend/internal/domains/booking/repository"
	usermodel "tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/infrastructure/payment"
	"tropharbour-backend/internal/infrastructure/ticket"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/pkg/logger"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type bookingService struct {
	repo     repository.BookingRepository
	tours    TourFinder
	users    UserFinder
	gateway  payment.Gateway
	mailer   Mailer
	tickets  TicketRenderer
	urls     URLs
	currency string
	now      func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	tours TourFinder,
	users UserFinder,
	gateway payment.Gateway,
	mailer Mailer,
	tickets TicketRenderer,
	urls URLs,
	currency string,
) BookingService {
	if currency == "" {
		currency = "usd"
	}
	return &bookingService{
		repo:     repo,
		tours:    tours,
		users:    users,
		gateway:  gateway,
		mailer:   mailer,
		tickets:  tickets,
		urls:     urls,
		currency: strings.ToLower(currency),
		now:      time.Now,
	}
}

func (s *bookingService) CreateCheckoutSession(ctx context.Context, caller *shared.Principal, tourID string) (*model.CheckoutResult, error) {
	id, err := database.ParseID(tourID)
	if err != nil {
		return nil, err
	}
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:        uuid.New(),
		TourID:    tour.ID.Hex(),
		UserID:    caller.ID,
		TourName:  tour.Name,
		Price:     tour.PriceDecimal(),
		Currency:  s.currency,
		CreatedAt: s.now().UTC(),
	}

	base := strings.TrimRight(s.urls.Base, "/")
	item := payment.CheckoutItem{
		Name:            tour.Name + " Tour",
		Description:     tour.Summary,
		Amount:          booking.Price,
		Currency:        s.currency,
		CustomerEmail:   caller.Email,
		ClientReference: tour.ID.Hex(),
		SuccessURL:      base + "/my-tours?alert=booking",
		CancelURL:       base + "/tour/" + tour.Slug,
	}
	if tour.ImageCover != "" && s.urls.Images != "" {
		item.Images = []string{strings.TrimRight(s.urls.Images, "/") + "/tours/" + tour.ImageCover}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, item)
	if err != nil {
		return nil, err
	}

	booking.SessionID = session.ID
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("Checkout session created", map[string]interface{}{
		"booking_id": booking.ID.String(),
		"tour_id":    booking.TourID,
		"user_id":    booking.UserID,
	})

	return &model.CheckoutResult{SessionID: session.ID, URL: session.URL, Booking: booking}, nil
}

func (s *bookingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.Type != payment.EventCheckoutCompleted {
		logger.Debug("Ignoring webhook event " + event.Type)
		return nil
	}

	pending, err := s.repo.FindBySession(ctx, event.SessionID)
	if err != nil {
		return err
	}
	if event.AmountTotal != payment.ToCents(pending.Price) {
		logger.Warn("Checkout amount mismatch", map[string]interface{}{
			"booking_id": pending.ID.String(),
			"expected":   payment.ToCents(pending.Price),
			"paid":       event.AmountTotal,
		})
		return model.ErrAmountMismatch
	}

	booking, updated, err := s.repo.MarkPaid(ctx, event.SessionID, s.now().UTC())
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}

	logger.Info("Booking paid", map[string]interface{}{"booking_id": booking.ID.String()})
	s.sendConfirmation(ctx, booking, event.CustomerEmail)
	return nil
}

// sendConfirmation is best effort; the payment is already recorded.
func (s *bookingService) sendConfirmation(ctx context.Context, b *model.Booking, fallbackEmail string) {
	name, address := "", fallbackEmail
	if user, err := s.lookupUser(ctx, b.UserID); err == nil {
		name, address = user.Name, user.Email
	}
	if address == "" {
		return
	}

	url := strings.TrimRight(s.urls.Base, "/") + "/api/v1/bookings/" + b.ID.String() + "/ticket"
	if err := s.mailer.SendBookingConfirmation(ctx, name, address, b.TourName, url); err != nil {
		logger.Error("Failed to send booking confirmation", err)
	}
}

func (s *bookingService) lookupUser(ctx context.Context, hex string) (*usermodel.User, error) {
	id, err := database.ParseID(hex)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

func (s *bookingService) MyBookings(ctx context.Context, caller *shared.Principal) ([]*model.Booking, error) {
	return s.repo.ListByUser(ctx, caller.ID)
}

func (s *bookingService) GetBooking(ctx context.Context, caller *shared.Principal, id string) (*model.Booking, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.OwnedBy(caller.ID) && !usermodel.Authorize(usermodel.Role(caller.Role), usermodel.RoleAdmin, usermodel.RoleLeadGuide) {
		return nil, model.ErrNotOwner
	}
	return booking, nil
}

func (s *bookingService) Ticket(ctx context.Context, caller *shared.Principal, id string) ([]byte, error) {
	booking, err := s.GetBooking(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !booking.Paid {
		return nil, model.ErrNotPaid
	}

	data := ticket.Data{
		BookingID: booking.ID.String(),
		TourName:  booking.TourName,
		Price:     booking.Price.StringFixed(2),
		Currency:  booking.Currency,
	}
	if booking.PaidAt != nil {
		data.PaidAt = *booking.PaidAt
	}
	if user, err := s.lookupUser(ctx, booking.UserID); err == nil {
		data.Customer, data.Email = user.Name, user.Email
	}

	pdf, err := s.tickets.Render(data)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("render ticket: %w", err))
	}
	return pdf, nil
}

func (s *bookingService) ListBookings(ctx context.Context, page, limit int) (*model.Page, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.repo.List(ctx, page, limit)
}

func (s *bookingService) DeleteBooking(ctx context.Context, id string) error {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, bookingID)
}

func (s *bookingService) ExpirePending(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-model.PendingTTL)
	n, err := s.repo.DeleteStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	logger.Info("Expired pending bookings", map[string]interface{}{
		"deleted": n,
		"before":  cutoff.Format(time.RFC3339),
	})
	return n, nil
}

func parseBookingID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, model.ErrInvalidID
	}
	return parsed, nil
}
