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

// =====================================================
// USER HANDLER
// =====================================================
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the caller's own document.
func (h *UserHandler) GetMe(c *gin.Context) {
	principal, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, apperror.Authentication("You are not logged in! Please log in to get access."))
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), principal.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": user})
}

// UpdateMe accepts JSON or a multipart form with an optional photo file.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	principal, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, apperror.Authentication("You are not logged in! Please log in to get access."))
		return
	}

	var req model.UpdateMeRequest
	var photo []byte

	if request.IsMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			response.Fail(c, request.BindError(err))
			return
		}
		data, err := request.FormFile(c, "photo")
		if err != nil {
			response.Fail(c, err)
			return
		}
		photo = data
	} else if !request.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), principal.ID, req, photo)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	principal, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, apperror.Authentication("You are not logged in! Please log in to get access."))
		return
	}

	if err := h.userService.DeleteMe(c.Request.Context(), principal.ID); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

// =====================================================
// ADMIN
// =====================================================

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, gin.H{"data": users}, len(users), nil)
}

// CreateUser exists so the route answers with a pointer to signup.
func (h *UserHandler) CreateUser(c *gin.Context) {
	response.ErrorResponse(c, http.StatusInternalServerError, model.ErrCodeUseSignup,
		"This route is not defined! Please use /signup instead")
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": user})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req model.AdminUpdateUserRequest
	if !request.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}
