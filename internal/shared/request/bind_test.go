package request

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropharbour-backend/internal/shared/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBaseURLHonoursForwardedProto(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "http://api.tropharbour.io/x", nil)
	assert.Equal(t, "http://api.tropharbour.io", BaseURL(c))

	c.Request.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://api.tropharbour.io", BaseURL(c))
}

func TestBindJSONRejectsMalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var dest struct {
		Name string `json:"name"`
	}
	assert.False(t, BindJSON(c, &dest))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindErrorKeepsOversizedBody(t *testing.T) {
	err := BindError(&http.MaxBytesError{Limit: 10})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Request body is too large", appErr.Message)
}

func multipartContext(t *testing.T, field string, n int) *gin.Context {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for i := 0; i < n; i++ {
		part, err := w.CreateFormFile(field, "img.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPatch, "/", body)
	c.Request.Header.Set("Content-Type", w.FormDataContentType())
	return c
}

func TestFormFiles(t *testing.T) {
	c := multipartContext(t, "images", 2)
	assert.True(t, IsMultipart(c))

	files, err := FormFiles(c, "images", 3)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, []byte("data"), files[0])

	missing, err := FormFile(c, "imageCover")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFormFilesEnforcesMax(t *testing.T) {
	c := multipartContext(t, "images", 4)

	_, err := FormFiles(c, "images", 3)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
