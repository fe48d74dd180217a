package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/middleware"
	"github.com/SscSPs/koperasi_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newRouter(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", append(handlers, func(c *gin.Context) {
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		roles := middleware.GetRolesFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userID": userID, "roles": roles})
	})...)
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(t, middleware.AuthMiddleware(testSecret))

	valid, err := utils.GenerateJWT("user-1", []string{"KETUA", "EMPLOYEE"}, testSecret, time.Hour, "koperasi-test")
	require.NoError(t, err)
	expired, err := utils.GenerateJWT("user-1", nil, testSecret, -time.Minute, "koperasi-test")
	require.NoError(t, err)
	foreign, err := utils.GenerateJWT("user-1", nil, "another-secret", time.Hour, "koperasi-test")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, `{"roles":["KETUA","EMPLOYEE"],"userID":"user-1"}`},
		{"missing header", "", http.StatusUnauthorized, `{"error":"Authorization header required"}`},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, `{"error":"Authorization header format must be Bearer {token}"}`},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, `{"error":"Token has expired"}`},
		{"bad signature", "Bearer " + foreign, http.StatusUnauthorized, `{"error":"Invalid token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRateLimit_PerUser(t *testing.T) {
	lim, err := middleware.NewMemoryLimiter("2-M")
	require.NoError(t, err)
	r := newRouter(t, middleware.AuthMiddleware(testSecret), middleware.RateLimit(lim))

	alice, err := utils.GenerateJWT("alice", nil, testSecret, time.Hour, "koperasi-test")
	require.NoError(t, err)
	bob, err := utils.GenerateJWT("bob", nil, testSecret, time.Hour, "koperasi-test")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+alice).Code)
	w := get(r, "Bearer "+alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, get(r, "Bearer "+alice).Code)

	// Another user has an independent budget from the same IP.
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+bob).Code)
}

func TestNewMemoryLimiter_InvalidRate(t *testing.T) {
	_, err := middleware.NewMemoryLimiter("lots")
	assert.Error(t, err)
}

func TestWithIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := middleware.GetUserIDFromContext(c)
	assert.False(t, ok)
	assert.Nil(t, middleware.GetRolesFromContext(c))

	c.Request = c.Request.WithContext(middleware.WithIdentity(c.Request.Context(), "user-9", []domain.Role{domain.RoleAnggota}))
	userID, ok := middleware.GetUserIDFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, "user-9", userID)
	assert.Equal(t, []domain.Role{domain.RoleAnggota}, middleware.GetRolesFromContext(c))
}
