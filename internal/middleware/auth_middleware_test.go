package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func authTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(testSecret)

	r := gin.New()
	r.GET("/private", m.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/admin", m.Authenticate(), m.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/optional", m.OptionalAuthenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func signToken(t *testing.T, userID uint, role string, expiry time.Duration) string {
	token, err := util.GenerateToken(userID, "user@example.com", role, testSecret, expiry)
	require.NoError(t, err)
	return token
}

func TestAuthenticate_TokenSources(t *testing.T) {
	r := authTestRouter(t)
	token := signToken(t, 42, "user", time.Hour)

	tests := []struct {
		name    string
		prepare func(req *http.Request)
	}{
		{
			name: "Cookie",
			prepare: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
			},
		},
		{
			name: "Bearer header",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			},
		},
		{
			name: "Query string",
			prepare: func(req *http.Request) {
				q := req.URL.Query()
				q.Set("token", token)
				req.URL.RawQuery = q.Encode()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.prepare(req)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"user_id":42`)
		})
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	r := authTestRouter(t)
	token := signToken(t, 1, "user", -time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_EXPIRED")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_INVALID")
}

func TestRequireRole(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, "admin", time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 2, "user", time.Hour))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAuthenticate(t *testing.T) {
	r := authTestRouter(t)

	// No credentials continues as guest
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)

	// Bad credentials also continue as guest
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)

	// Valid credentials attach the identity
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 7, "user", time.Hour))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}
