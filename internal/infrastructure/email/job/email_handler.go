package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tropharbour-backend/internal/infrastructure/email"
)

// SendEmailHandler delivers queued messages.
type SendEmailHandler struct {
	sender email.Sender
}

func NewSendEmailHandler(sender email.Sender) *SendEmailHandler {
	return &SendEmailHandler{sender: sender}
}

func (h *SendEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var msg email.Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal email payload")
		// a malformed payload never succeeds
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("Processing email")

	if err := h.sender.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("to", msg.To).Msg("Failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().Str("to", msg.To).Msg("Email sent successfully")
	return nil
}
