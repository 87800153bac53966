package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const MinPasswordLength = 8

// ========================================
// AUTH DTOs
// ========================================

// SignupRequest carries no role: new accounts are always RoleUser.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Please tell us your name!")),
		validation.Field(&r.Email,
			validation.Required.Error("Please provide your email"),
			is.EmailFormat.Error("Please provide a valid email"),
		),
		passwordField(&r.Password),
		confirmField(&r.PasswordConfirm, r.Password),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		passwordField(&r.Password),
		confirmField(&r.PasswordConfirm, r.Password),
	)
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PasswordCurrent, validation.Required.Error("Please provide your current password")),
		passwordField(&r.Password),
		confirmField(&r.PasswordConfirm, r.Password),
	)
}

// AuthResult is returned by every operation that issues a session.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ========================================
// PROFILE DTOs
// ========================================

// UpdateMeRequest binds from JSON or multipart form. Password fields are
// only bound so the request can be rejected.
type UpdateMeRequest struct {
	Name            *string `json:"name" form:"name"`
	Email           *string `json:"email" form:"email"`
	Password        string  `json:"password" form:"password"`
	PasswordConfirm string  `json:"passwordConfirm" form:"passwordConfirm"`
}

// AdminUpdateUserRequest cannot change passwords.
type AdminUpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Photo  *string `json:"photo"`
	Role   *Role   `json:"role"`
	Active *bool   `json:"active"`

	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func passwordField(p *string) *validation.FieldRules {
	return validation.Field(p,
		validation.Required.Error("Please provide a password"),
		validation.RuneLength(MinPasswordLength, 0).Error("Password must have at least 8 characters"),
	)
}

func confirmField(confirm *string, password string) *validation.FieldRules {
	return validation.Field(confirm,
		validation.Required.Error("Please confirm your password"),
		validation.In(password).Error("Passwords are not the same!"),
	)
}
