package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tropharbour-backend/internal/domains/booking/model"
	"tropharbour-backend/internal/domains/booking/service"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockBookingService struct {
	service.BookingService
	mock.Mock
}

func (m *mockBookingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(string(payload), signature).Error(0)
}

func (m *mockBookingService) Ticket(ctx context.Context, caller *shared.Principal, id string) ([]byte, error) {
	args := m.Called(caller.ID, id)
	pdf, _ := args.Get(0).([]byte)
	return pdf, args.Error(1)
}

func (m *mockBookingService) ListBookings(ctx context.Context, page, limit int) (*model.Page, error) {
	args := m.Called(page, limit)
	return args.Get(0).(*model.Page), args.Error(1)
}

func withCaller(p *shared.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUser, p)
		c.Next()
	}
}

func TestWebhookPassesRawBodyAndSignature(t *testing.T) {
	svc := &mockBookingService{}
	body := `{"type":"checkout.session.completed"}`
	svc.On("HandleWebhook", body, "t=1,v1=abc").Return(nil)

	r := gin.New()
	r.POST("/webhook-checkout", NewBookingHandler(svc).WebhookCheckout)

	req := httptest.NewRequest(http.MethodPost, "/webhook-checkout", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestTicketIsServedAsPDF(t *testing.T) {
	svc := &mockBookingService{}
	svc.On("Ticket", "u1", "b1").Return([]byte("%PDF-1.3"), nil)

	r := gin.New()
	r.GET("/:id/ticket", withCaller(&shared.Principal{ID: "u1"}), NewBookingHandler(svc).GetTicket)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/b1/ticket", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ticket-b1.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestTicketRequiresLogin(t *testing.T) {
	r := gin.New()
	r.GET("/:id/ticket", NewBookingHandler(&mockBookingService{}).GetTicket)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/b1/ticket", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAllBookingsReportsPagingMeta(t *testing.T) {
	svc := &mockBookingService{}
	svc.On("ListBookings", 2, 5).Return(&model.Page{Bookings: []*model.Booking{}, Total: 7, Page: 2, Limit: 5}, nil)

	r := gin.New()
	r.GET("/bookings", NewBookingHandler(svc).GetAllBookings)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings?page=2&limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"results":0,"data":{"data":[]},"meta":{"page":2,"limit":5,"total":7}}`, w.Body.String())
}
