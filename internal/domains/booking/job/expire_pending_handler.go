package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Expirer removes stale unpaid bookings.
type Expirer interface {
	ExpirePending(ctx context.Context) (int64, error)
}

// ExpirePendingHandler processes booking:expire_pending tasks.
type ExpirePendingHandler struct {
	bookings Expirer
}

func NewExpirePendingHandler(bookings Expirer) *ExpirePendingHandler {
	return &ExpirePendingHandler{bookings: bookings}
}

func (h *ExpirePendingHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	log.Info().Str("task", task.Type()).Msg("Expiring pending bookings")

	n, err := h.bookings.ExpirePending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to expire pending bookings")
		return fmt.Errorf("expire pending bookings: %w", err)
	}

	log.Info().Int64("deleted", n).Msg("Pending bookings expired")
	return nil
}
