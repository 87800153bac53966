package model

import "tropharbour-backend/internal/shared/apperror"

const (
	ErrCodeBookingNotFound = "BOOK001"
	ErrCodeNotOwner        = "BOOK002"
	ErrCodeNotPaid         = "BOOK003"
	ErrCodeInvalidID       = "BOOK004"
	ErrCodeAmountMismatch  = "BOOK005"
)

var (
	ErrBookingNotFound = apperror.NotFound("No booking found with that ID").WithCode(ErrCodeBookingNotFound)
	ErrNotOwner        = apperror.Authorization("You can only access your own bookings").WithCode(ErrCodeNotOwner)
	ErrNotPaid         = apperror.Validation("This booking has not been paid yet").WithCode(ErrCodeNotPaid)
	ErrInvalidID       = apperror.InvalidArgument("Invalid booking id").WithCode(ErrCodeInvalidID)
	ErrAmountMismatch  = apperror.Validation("Paid amount does not match the booking price").WithCode(ErrCodeAmountMismatch)
)
