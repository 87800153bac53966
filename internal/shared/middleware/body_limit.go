package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies. Multipart uploads get the larger
// multipartBytes allowance, everything else jsonBytes.
func BodyLimit(jsonBytes, multipartBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			limit := jsonBytes
			if strings.HasPrefix(c.ContentType(), "multipart/") {
				limit = multipartBytes
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
