package email

import (
	"context"
	"fmt"
	"strings"
)

// Subjects
const (
	SubjectWelcome       = "Welcome to the TropHarbour family!"
	SubjectPasswordReset = "Your password reset token (valid for only 10 mins)"
	SubjectBooking       = "Your TropHarbour booking is confirmed"
)

// Mailer composes the application emails. Welcome and booking emails are
// deferred to the worker; the reset email is sent directly because the
// caller rolls the token back when delivery fails.
type Mailer struct {
	direct   Sender
	deferred Sender
}

func NewMailer(direct, deferred Sender) *Mailer {
	if deferred == nil {
		deferred = direct
	}
	return &Mailer{direct: direct, deferred: deferred}
}

func (m *Mailer) SendWelcome(ctx context.Context, name, address, url string) error {
	return m.deferred.Send(ctx, Message{
		To:      address,
		Subject: SubjectWelcome,
		Body:    fmt.Sprintf("Hi %s,\n\nWelcome aboard! Upload a profile photo so your guides can recognise you:\n%s\n", firstName(name), url),
	})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, name, address, url string) error {
	return m.direct.Send(ctx, Message{
		To:      address,
		Subject: SubjectPasswordReset,
		Body: fmt.Sprintf("Hi %s,\n\nForgot your password? Submit a PATCH request with your new password and passwordConfirm to:\n%s\n\nIf you didn't forget your password, please ignore this email.\n",
			firstName(name), url),
	})
}

func (m *Mailer) SendBookingConfirmation(ctx context.Context, name, address, tourName, ticketURL string) error {
	return m.deferred.Send(ctx, Message{
		To:      address,
		Subject: SubjectBooking,
		Body:    fmt.Sprintf("Hi %s,\n\nYour booking for %s is paid. Download your ticket here:\n%s\n", firstName(name), tourName, ticketURL),
	})
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
