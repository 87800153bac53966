// Package request holds the binding helpers shared by the HTTP handlers.
package request

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/response"
)

// BindJSON decodes the body into dest and answers the request on failure.
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Fail(c, BindError(err))
		return false
	}
	return true
}

// BindError keeps translated errors (oversized bodies) and reports anything
// else as a malformed body.
func BindError(err error) error {
	err = apperror.Translate(err)
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Wrap(apperror.KindValidation, "Invalid request body", err)
}

// IsMultipart reports whether the request carries a multipart form.
func IsMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// FormFile returns the bytes of an optional uploaded file.
func FormFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, BindError(err)
	}
	return readFile(fh)
}

// FormFiles returns up to max uploaded files of field.
func FormFiles(c *gin.Context, field string, max int) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, BindError(err)
	}

	headers := form.File[field]
	if len(headers) > max {
		return nil, apperror.Validation(fmt.Sprintf("Too many files for %s, at most %d allowed", field, max))
	}

	files := make([][]byte, 0, len(headers))
	for _, fh := range headers {
		data, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, data)
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, BindError(err)
	}
	return data, nil
}

// BaseURL is the scheme and host the client used to reach the API.
func BaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
