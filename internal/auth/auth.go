// Package auth resolves the signed-in user for a request. The assessment flow
// only needs a stable user id to key history rows; account management lives
// with the identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type CurrentUserProvider interface {
	CurrentUser(r *http.Request) (User, error)
}

type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTProvider verifies HS256 bearer tokens signed with a shared secret.
type JWTProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTProvider(secret, issuer string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), issuer: issuer, now: time.Now}
}

func (p *JWTProvider) IssueToken(u User, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: u.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *JWTProvider) CurrentUser(r *http.Request) (User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return User{}, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return User{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.Subject == "" {
		return User{}, ErrInvalidToken
	}
	return User{ID: claims.Subject, Email: claims.Email}, nil
}

// DevProvider lets every request through as a fixed user. Only wired when
// running in development without a JWT secret.
type DevProvider struct {
	User User
}

func NewDevProvider() *DevProvider {
	return &DevProvider{User: User{ID: "dev-user", Email: "dev@localhost"}}
}

func (d *DevProvider) CurrentUser(*http.Request) (User, error) {
	return d.User, nil
}

type contextKey string

const userKey contextKey = "auth_user"

// Middleware rejects requests without a resolvable user and stores the user
// on both the gin and request contexts.
func Middleware(p CurrentUserProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := p.CurrentUser(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "unauthorized"})
			return
		}
		c.Set(string(userKey), u)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userKey, u))
		c.Next()
	}
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

func UserFromGin(c *gin.Context) (User, bool) {
	v, ok := c.Get(string(userKey))
	if !ok {
		return UserFromContext(c.Request.Context())
	}
	u, ok := v.(User)
	return u, ok
}
