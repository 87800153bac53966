package service

import (
	"context"
	"net/url"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/pkg/jwt"
)

// =====================================================
// COLLABORATORS
// =====================================================

// TokenManager signs and checks session tokens.
type TokenManager interface {
	Generate(userID string) (string, error)
	Validate(token string) (*jwt.Claims, error)
}

// Mailer delivers account emails.
type Mailer interface {
	SendWelcome(ctx context.Context, name, address, url string) error
	SendPasswordReset(ctx context.Context, name, address, url string) error
}

// PhotoStore resizes and stores profile photos, returning the file name.
type PhotoStore interface {
	UserPhoto(ctx context.Context, userID string, data []byte) (string, error)
}

// =====================================================
// AUTH SERVICE INTERFACE
// =====================================================
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest, accountURL string) (*model.AuthResult, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error)

	// Verify resolves a session token to the identity behind it.
	Verify(ctx context.Context, token string) (*shared.Principal, error)

	// ForgotPassword mails a reset link built from resetURLBase and the raw token.
	ForgotPassword(ctx context.Context, email, resetURLBase string) error
	ResetPassword(ctx context.Context, rawToken string, req model.ResetPasswordRequest) (*model.AuthResult, error)
	UpdatePassword(ctx context.Context, userID string, req model.UpdatePasswordRequest) (*model.AuthResult, error)
}

// =====================================================
// USER SERVICE INTERFACE
// =====================================================
type UserService interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, params url.Values) ([]map[string]interface{}, error)

	// Self service
	UpdateMe(ctx context.Context, userID string, req model.UpdateMeRequest, photo []byte) (*model.User, error)
	DeleteMe(ctx context.Context, userID string) error

	// Admin
	UpdateUser(ctx context.Context, id string, req model.AdminUpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}
