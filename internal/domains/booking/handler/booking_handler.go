package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/domains/booking/service"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/middleware"
	"tropharbour-backend/internal/shared/response"
)

// maxWebhookBytes bounds the webhook body; gateway events are small.
const maxWebhookBytes = 64 << 10

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// GetCheckoutSession godoc
// GET /api/v1/bookings/checkout-session/:tourId
func (h *BookingHandler) GetCheckoutSession(c *gin.Context) {
	caller, ok := caller(c)
	if !ok {
		return
	}

	session, err := h.bookingService.CreateCheckoutSession(c.Request.Context(), caller, c.Param("tourId"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// WebhookCheckout reads the raw body; the signature covers the exact bytes.
func (h *BookingHandler) WebhookCheckout(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.Fail(c, apperror.Validation("Webhook error: unreadable body"))
		return
	}

	if err := h.bookingService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	caller, ok := caller(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.MyBookings(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, gin.H{"data": bookings}, len(bookings), nil)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	caller, ok := caller(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": booking})
}

func (h *BookingHandler) GetTicket(c *gin.Context) {
	caller, ok := caller(c)
	if !ok {
		return
	}

	pdf, err := h.bookingService.Ticket(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ticket-`+c.Param("id")+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *BookingHandler) GetAllBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.bookingService.ListBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, gin.H{"data": result.Bookings}, len(result.Bookings), &response.Meta{
		Page:  int64(result.Page),
		Limit: int64(result.Limit),
		Total: result.Total,
	})
}

func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	if err := h.bookingService.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

func caller(c *gin.Context) (*shared.Principal, bool) {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, apperror.Authentication("You are not logged in! Please log in to get access."))
		return nil, false
	}
	return p, true
}
