package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/domains/user/service"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/middleware"
	"tropharbour-backend/internal/shared/request"
	"tropharbour-backend/internal/shared/response"
)

const loggedOutSeconds = 10

// CookieConfig controls the session cookie written after authentication.
type CookieConfig struct {
	ExpiresDays int
	Production  bool
}

// =====================================================
// AUTH HANDLER
// =====================================================
type AuthHandler struct {
	authService service.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// Signup godoc
// @Summary Create an account
// @Tags Auth
// @Router /api/v1/users/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req, request.BaseURL(c)+"/me")
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusCreated, result)
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Router /api/v1/users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, result)
}

// Logout replaces the session cookie with a short lived placeholder.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "loggedout", loggedOutSeconds, "/", "", h.secure(c), true)
	response.Success(c, http.StatusOK, nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !request.BindJSON(c, &req) {
		return
	}

	resetURL := request.BaseURL(c) + "/api/v1/users/resetPassword"
	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email, resetURL); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Token sent to email!"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, result)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	principal, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, apperror.Authentication("You are not logged in! Please log in to get access."))
		return
	}

	var req model.UpdatePasswordRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.UpdatePassword(c.Request.Context(), principal.ID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, result)
}

// =====================================================
// HELPERS
// =====================================================

func (h *AuthHandler) sendToken(c *gin.Context, status int, result *model.AuthResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, result.Token, h.cookie.ExpiresDays*24*60*60, "/", "", h.secure(c), true)
	response.WithToken(c, status, result.Token, gin.H{"user": result.User})
}

func (h *AuthHandler) secure(c *gin.Context) bool {
	return h.cookie.Production || c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}
