package main

import (
	"github.com/hibiken/asynq"

	bookingJob "tropharbour-backend/internal/domains/booking/job"
	"tropharbour-backend/internal/infrastructure/email"
	emailjob "tropharbour-backend/internal/infrastructure/email/job"
	"tropharbour-backend/internal/infrastructure/queue"
	"tropharbour-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	sendEmail      *emailjob.SendEmailHandler
	expireBookings *bookingJob.ExpirePendingHandler
}

// initializeHandlers creates the job handlers. Queued emails are delivered
// over SMTP directly.
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		sendEmail:      emailjob.NewSendEmailHandler(c.SMTPSender),
		expireBookings: bookingJob.NewExpirePendingHandler(c.BookingService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(email.TypeSendEmail, h.sendEmail.ProcessTask)
	mux.HandleFunc(queue.TypeExpirePendingBookings, h.expireBookings.ProcessTask)
}
