package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests-only"

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestJWTProvider_RoundTrip(t *testing.T) {
	p := NewJWTProvider(testSecret, "drrisk")
	token, err := p.IssueToken(User{ID: "u-42", Email: "a@b.test"}, time.Hour)
	require.NoError(t, err)

	u, err := p.CurrentUser(bearer(token))
	require.NoError(t, err)
	assert.Equal(t, User{ID: "u-42", Email: "a@b.test"}, u)
}

func TestJWTProvider_Rejects(t *testing.T) {
	p := NewJWTProvider(testSecret, "drrisk")
	good, err := p.IssueToken(User{ID: "u-1"}, time.Hour)
	require.NoError(t, err)

	expired, err := p.IssueToken(User{ID: "u-1"}, -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := NewJWTProvider(testSecret, "someone-else").IssueToken(User{ID: "u-1"}, time.Hour)
	require.NoError(t, err)

	wrongKey, err := NewJWTProvider("another-secret", "drrisk").IssueToken(User{ID: "u-1"}, time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "drrisk"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", ErrMissingToken},
		{"basic auth", "Basic dXNlcjpwYXNz", ErrInvalidToken},
		{"empty bearer", "Bearer ", ErrInvalidToken},
		{"garbage", "Bearer not.a.jwt", ErrInvalidToken},
		{"expired", "Bearer " + expired, ErrInvalidToken},
		{"wrong issuer", "Bearer " + otherIssuer, ErrInvalidToken},
		{"wrong key", "Bearer " + wrongKey, ErrInvalidToken},
		{"no subject", "Bearer " + noSubject, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := p.CurrentUser(req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = p.CurrentUser(bearer(good))
	assert.NoError(t, err)
}

func TestDevProvider(t *testing.T) {
	u, err := NewDevProvider().CurrentUser(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "dev-user", u.ID)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewJWTProvider(testSecret, "drrisk")

	router := gin.New()
	router.Use(Middleware(p))
	router.GET("/me", func(c *gin.Context) {
		u, ok := UserFromGin(c)
		require.True(t, ok)
		fromCtx, ok := UserFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, u, fromCtx)
		c.JSON(http.StatusOK, u)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)

	token, err := p.IssueToken(User{ID: "u-7"}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u-7"`)
}
