package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/response"
)

const (
	// Context keys set by Protect
	ContextUser   = "user"
	ContextUserID = "userID"
	ContextRole   = "role"

	// SessionCookie carries the session token for browser clients.
	SessionCookie = "jwt"
)

const msgNotLoggedIn = "You are not logged in! Please log in to get access."

// Verifier resolves a session token into the caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (*shared.Principal, error)
}

// Protect requires a valid session token from the Authorization header or
// the session cookie.
func Protect(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token
		token := tokenFromRequest(c)
		if token == "" {
			response.Fail(c, apperror.Authentication(msgNotLoggedIn))
			return
		}

		// 2. Verify token and resolve the user
		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}

		// 3. Expose identity to handlers
		c.Set(ContextUser, principal)
		c.Set(ContextUserID, principal.ID)
		c.Set(ContextRole, principal.Role)

		c.Next()
	}
}

// RestrictTo only lets callers with one of roles through. It must run after
// Protect.
func RestrictTo(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !model.Authorize(model.Role(c.GetString(ContextRole)), roles...) {
			response.Fail(c, apperror.Authorization("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller stored by Protect.
func CurrentUser(c *gin.Context) (*shared.Principal, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	p, ok := v.(*shared.Principal)
	return p, ok
}

// tokenFromRequest prefers a Bearer header and otherwise falls back to the
// session cookie.
func tokenFromRequest(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		if token := strings.TrimSpace(parts[1]); token != "" {
			return token
		}
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "loggedout" {
		return cookie
	}
	return ""
}
