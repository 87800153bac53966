package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropharbour-backend/internal/shared/apperror"
)

func withMode(t *testing.T, mode string) {
	prev := gin.Mode()
	gin.SetMode(mode)
	t.Cleanup(func() { gin.SetMode(prev) })
}

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func errorField(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "missing error object")
	return e
}

func TestFailUnknownErrorInTestMode(t *testing.T) {
	withMode(t, gin.TestMode)

	w, body := serve(t, func(c *gin.Context) { Fail(c, errors.New("nil pointer in aggregate")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	e := errorField(t, body)
	assert.Equal(t, apperror.CodeInternal, e["code"])
	assert.Equal(t, genericMessage, e["message"])
	assert.Equal(t, "nil pointer in aggregate", e["details"])
}

func TestFailUnknownErrorInReleaseMode(t *testing.T) {
	withMode(t, gin.ReleaseMode)

	w, body := serve(t, func(c *gin.Context) { Fail(c, errors.New("nil pointer in aggregate")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	e := errorField(t, body)
	assert.Equal(t, genericMessage, e["message"])
	assert.NotContains(t, e, "details")
}

func TestFailOperationalKeepsMessage(t *testing.T) {
	withMode(t, gin.ReleaseMode)

	err := fmt.Errorf("get tour: %w", apperror.NotFound("No tour found with that ID").WithCode("TOUR_NOT_FOUND"))
	w, body := serve(t, func(c *gin.Context) { Fail(c, err) })

	assert.Equal(t, http.StatusNotFound, w.Code)
	e := errorField(t, body)
	assert.Equal(t, "TOUR_NOT_FOUND", e["code"])
	assert.Equal(t, "No tour found with that ID", e["message"])
}

func TestFailTranslatesStoreErrors(t *testing.T) {
	withMode(t, gin.ReleaseMode)

	w, body := serve(t, func(c *gin.Context) { Fail(c, &http.MaxBytesError{Limit: 10}) })

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body is too large", errorField(t, body)["message"])
}

func TestListWritesResultsAndMeta(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		List(c, gin.H{"bookings": []string{"a", "b"}}, 2, &Meta{Page: 1, Limit: 20, Total: 42})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["results"])
	assert.Equal(t, map[string]interface{}{"page": float64(1), "limit": float64(20), "total": float64(42)}, body["meta"])
}

func TestListReportsZeroResults(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) { List(c, gin.H{"data": []string{}}, 0, nil) })

	assert.Equal(t, float64(0), body["results"])
	assert.NotContains(t, body, "meta")
}

func TestWithToken(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		WithToken(c, http.StatusCreated, "signed.jwt.value", gin.H{"user": gin.H{"name": "Laura"}})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "signed.jwt.value", body["token"])
	assert.NotContains(t, body, "error")
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	NoContent(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}
