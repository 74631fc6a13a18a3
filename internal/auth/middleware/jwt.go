package middleware

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/config"
	"github.com/corvusHold/outreach/internal/platform/apperror"
)

const (
	ctxUserIDKey   = "auth_user_id"
	ctxTenantIDKey = "auth_tenant_id"
)

var (
	ErrTokenRequired = apperror.Unauthorized("Token is required")
	ErrInvalidToken  = apperror.Unauthorized("Invalid token")
)

// NewJWT returns an Echo middleware that validates access JWTs and
// stores user and tenant IDs in the context.
func NewJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				return ErrTokenRequired
			}
			tokStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if tokStr == "" {
				return ErrTokenRequired
			}

			tok, err := jwt.Parse(tokStr, func(token *jwt.Token) (any, error) {
				return []byte(cfg.JWTSigningKey), nil
			}, jwt.WithLeeway(30*time.Second), jwt.WithIssuedAt(), jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !tok.Valid {
				return ErrInvalidToken.Wrap(err)
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ErrInvalidToken
			}
			sub, _ := claims["sub"].(string)
			ten, _ := claims["ten"].(string)
			uid, err1 := uuid.Parse(sub)
			tid, err2 := uuid.Parse(ten)
			if err1 != nil || err2 != nil {
				return ErrInvalidToken
			}

			c.Set(ctxUserIDKey, uid)
			c.Set(ctxTenantIDKey, tid)
			return next(c)
		}
	}
}

// Sign issues an HS256 access token for a user within a tenant.
func Sign(cfg config.Config, userID, tenantID uuid.UUID, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"ten": tenantID.String(),
		"iat": now.Unix(),
		"exp": now.Add(cfg.AccessTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSigningKey))
}

// UserID returns the authenticated user's ID from context.
func UserID(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(ctxUserIDKey)
	if v == nil {
		return uuid.UUID{}, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// TenantID returns the authenticated tenant's ID from context.
func TenantID(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(ctxTenantIDKey)
	if v == nil {
		return uuid.UUID{}, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// WithIdentity is used by tests and internal callers to seed the context
// the same way NewJWT does.
func WithIdentity(c echo.Context, userID, tenantID uuid.UUID) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxTenantIDKey, tenantID)
}
