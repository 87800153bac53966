package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"

	"github.com/google/uuid"

	"tropharbour-backend/internal/shared/apperror"
)

// MockGateway stands in for Stripe in development. Webhook payloads are
// JSON Events signed with hex(HMAC-SHA256(secret, payload)).
type MockGateway struct {
	secret string
}

func NewMockGateway(secret string) *MockGateway {
	return &MockGateway{secret: secret}
}

func (g *MockGateway) CreateCheckoutSession(_ context.Context, item CheckoutItem) (*Session, error) {
	id := "cs_test_" + uuid.NewString()
	u, err := url.Parse(item.SuccessURL)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidArgument, "Invalid success URL", err)
	}
	q := u.Query()
	q.Set("session_id", id)
	u.RawQuery = q.Encode()
	return &Session{ID: id, URL: u.String()}, nil
}

// Sign returns the signature ParseWebhook expects for payload.
func (g *MockGateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *MockGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if !hmac.Equal([]byte(g.Sign(payload)), []byte(signature)) {
		return nil, apperror.Validation("Webhook error: invalid signature")
	}
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "Webhook error: malformed event", err)
	}
	return &event, nil
}
