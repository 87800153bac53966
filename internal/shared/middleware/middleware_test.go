package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	tokens map[string]*shared.Principal
	seen   string
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*shared.Principal, error) {
	v.seen = token
	if p, ok := v.tokens[token]; ok {
		return p, nil
	}
	return nil, apperror.Authentication(apperror.MsgTokenInvalid)
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code, body.Error.Message
}

func protectedRouter(v Verifier, roles ...model.Role) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{Protect(v)}
	if len(roles) > 0 {
		handlers = append(handlers, RestrictTo(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		p, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.ID)
	})
	r.GET("/private", handlers...)
	return r
}

func TestProtect(t *testing.T) {
	v := &stubVerifier{tokens: map[string]*shared.Principal{
		"good": {ID: "u1", Role: string(model.RoleUser)},
	}}
	r := protectedRouter(v)

	tests := []struct {
		name   string
		header string
		cookie string
		status int
		seen   string
	}{
		{name: "bearer header", header: "Bearer good", status: http.StatusOK, seen: "good"},
		{name: "session cookie", cookie: "good", status: http.StatusOK, seen: "good"},
		{name: "no token", status: http.StatusUnauthorized},
		{name: "logged out cookie", cookie: "loggedout", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "wrong scheme falls back to cookie", header: "Basic other", cookie: "good", status: http.StatusOK, seen: "good"},
		{name: "bearer wins over cookie", header: "Bearer bad", cookie: "good", status: http.StatusUnauthorized, seen: "bad"},
		{name: "rejected token", header: "Bearer bad", status: http.StatusUnauthorized, seen: "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.seen = ""
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.seen, v.seen)
			if tt.status == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

func TestProtectMissingTokenMessage(t *testing.T) {
	w := httptest.NewRecorder()
	protectedRouter(&stubVerifier{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	_, msg := errorBody(t, w)
	assert.Equal(t, "You are not logged in! Please log in to get access.", msg)
}

func TestRestrictTo(t *testing.T) {
	v := &stubVerifier{tokens: map[string]*shared.Principal{
		"user":  {ID: "u1", Role: string(model.RoleUser)},
		"guide": {ID: "g1", Role: string(model.RoleLeadGuide)},
	}}
	r := protectedRouter(v, model.RoleAdmin, model.RoleLeadGuide)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer user")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, msg := errorBody(t, w)
	assert.Equal(t, "You do not have permission to perform this action", msg)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer guide")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Hour)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/api/ping", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)
	w := hit("10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	w = hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	_, msg := errorBody(t, w)
	assert.Equal(t, "Too many requests from this IP, please try again in an hour!", msg)

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, hit("10.0.0.2").Code)

	// a bucket refills over the window
	now = now.Add(31 * time.Minute)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)
}

func TestRateLimiterZeroMaxAllowsOne(t *testing.T) {
	rl := NewRateLimiter(0, time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/api/ping", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestNoRoute(t *testing.T) {
	r := gin.New()
	r.NoRoute(NoRoute())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope?x=1", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	_, msg := errorBody(t, w)
	assert.Equal(t, "Can't find /api/v1/nope?x=1 on this server!", msg)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "2f1d1a2e-8c1b-4f8e-9d57-3c6a1a0f5e11")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "2f1d1a2e-8c1b-4f8e-9d57-3c6a1a0f5e11", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.GET("/", Recovery(), func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	code, _ := errorBody(t, w)
	assert.Equal(t, "SYS_001", code)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", BodyLimit(8, 64), func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(contentType, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post("application/json", `{"a":1}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, post("application/json", `{"name":"too long"}`))
	assert.Equal(t, http.StatusOK, post("multipart/form-data; boundary=x", `{"name":"too long"}`))
}
