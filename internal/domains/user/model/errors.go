package model

import "tropharbour-backend/internal/shared/apperror"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeIncorrectCredentials = "USR001"
	ErrCodeMissingCredentials   = "USR002"
	ErrCodeNotLoggedIn          = "USR003"
	ErrCodeUserGone             = "USR004"
	ErrCodePasswordChanged      = "USR005"
	ErrCodeNoUserWithEmail      = "USR006"
	ErrCodeEmailFailed          = "USR007"
	ErrCodeResetTokenInvalid    = "USR008"
	ErrCodeWrongPassword        = "USR009"
	ErrCodePasswordRoute        = "USR010"
	ErrCodeUseSignup            = "USR011"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrIncorrectCredentials = apperror.Authentication("Incorrect email or password").WithCode(ErrCodeIncorrectCredentials)
	ErrMissingCredentials   = apperror.Authentication("Please provide email and password").WithCode(ErrCodeMissingCredentials)
	ErrUserGone             = apperror.Authentication("The user belonging to this token no longer exists.").WithCode(ErrCodeUserGone)
	ErrPasswordChanged      = apperror.Authentication("User recently changed password! Please log in again.").WithCode(ErrCodePasswordChanged)
	ErrNoUserWithEmail      = apperror.NotFound("There is no user with that email address.").WithCode(ErrCodeNoUserWithEmail)
	ErrResetTokenInvalid    = apperror.InvalidArgument("Token is invalid or has expired").WithCode(ErrCodeResetTokenInvalid)
	ErrWrongPassword        = apperror.Authentication("Your current password is wrong.").WithCode(ErrCodeWrongPassword)
	ErrPasswordRoute        = apperror.Validation("This route is not for password updates. Please use /updateMyPassword.").WithCode(ErrCodePasswordRoute)
)

// ErrEmailFailed wraps the delivery failure of a password reset email.
func ErrEmailFailed(err error) *apperror.AppError {
	return apperror.Dependency("There was an error sending the email. Try again later!", err).WithCode(ErrCodeEmailFailed)
}
