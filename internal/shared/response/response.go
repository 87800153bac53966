package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/pkg/logger"
)

const genericMessage = "Something went very wrong!"

type Response struct {
	Success bool        `json:"success"`
	Token   string      `json:"token,omitempty"`
	Results *int        `json:"results,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	Page  int64 `json:"page,omitempty"`
	Limit int64 `json:"limit,omitempty"`
	Total int64 `json:"total,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// List writes a collection with its result count.
func List(c *gin.Context, data interface{}, results int, meta *Meta) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Results: &results,
		Data:    data,
		Meta:    meta,
	})
}

// WithToken writes a session token next to the payload.
func WithToken(c *gin.Context, statusCode int, token string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Token:   token,
		Data:    data,
	})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Fail translates err and writes it. Operational errors keep their message;
// anything else is logged and, in release mode, replaced with a generic one.
func Fail(c *gin.Context, err error) {
	translated := apperror.Translate(err)

	appErr, ok := apperror.As(translated)
	if !ok {
		appErr = apperror.Internal(translated)
	}

	if !appErr.Operational() || appErr.Kind == apperror.KindDependency {
		logger.Error("request failed", err)
	}

	if !appErr.Operational() {
		if gin.Mode() == gin.ReleaseMode {
			ErrorResponse(c, appErr.Status(), appErr.Code, genericMessage)
			return
		}
		ErrorWithDetails(c, appErr.Status(), appErr.Code, genericMessage, err.Error())
		return
	}

	if gin.Mode() != gin.ReleaseMode && appErr.Err != nil {
		ErrorWithDetails(c, appErr.Status(), appErr.Code, appErr.Message, appErr.Err.Error())
		return
	}
	ErrorResponse(c, appErr.Status(), appErr.Code, appErr.Message)
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	Fail(c, apperror.Validation(message))
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, apperror.Authentication(message))
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, apperror.Authorization(message))
}

func NotFound(c *gin.Context, message string) {
	Fail(c, apperror.NotFound(message))
}

func InternalServerError(c *gin.Context, err error) {
	Fail(c, apperror.Internal(err))
}
