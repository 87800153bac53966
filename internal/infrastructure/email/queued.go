package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeSendEmail is the task delivering a queued Message.
const TypeSendEmail = "email:send"

// Enqueuer is the part of *asynq.Client the queued sender needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueuedSender hands messages to the worker instead of dialing SMTP in the
// request path.
type QueuedSender struct {
	client Enqueuer
	queue  string
}

func NewQueuedSender(client Enqueuer, queue string) *QueuedSender {
	return &QueuedSender{client: client, queue: queue}
}

// NewSendEmailTask builds the task delivered by the email job.
func NewSendEmailTask(msg Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal email payload: %w", err)
	}
	return asynq.NewTask(TypeSendEmail, payload), nil
}

func (s *QueuedSender) Send(ctx context.Context, msg Message) error {
	task, err := NewSendEmailTask(msg)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.Queue(s.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}
