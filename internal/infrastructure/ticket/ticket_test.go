package ticket

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadVerifies(t *testing.T) {
	g := NewGenerator("secret")

	id, ok := g.Verify(g.Payload("b-123"))
	assert.True(t, ok)
	assert.Equal(t, "b-123", id)

	_, ok = NewGenerator("other").Verify(g.Payload("b-123"))
	assert.False(t, ok)

	_, ok = g.Verify("b-123")
	assert.False(t, ok)
}

func TestRenderProducesPDF(t *testing.T) {
	pdf, err := NewGenerator("secret").Render(Data{
		BookingID: "b-123",
		TourName:  "The Forest Hiker",
		Customer:  "Laura Wilson",
		Email:     "laura@example.com",
		Price:     "397.00",
		Currency:  "usd",
		PaidAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
