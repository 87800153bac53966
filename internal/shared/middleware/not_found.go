package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/response"
)

func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Fail(c, apperror.NotFound(fmt.Sprintf("Can't find %s on this server!", c.Request.URL.RequestURI())))
	}
}
