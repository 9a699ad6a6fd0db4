package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-api/internal/core/domain"
)

const (
	identityKey = "identity"
	// UserIDKey is set alongside the identity so the request logger can read it.
	UserIDKey = "user_id"

	TokenCookie = "token"
)

// Authenticator resolves a raw session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// Auth resolves the session token and stores the caller's identity in the
// echo context. The token is read from "Authorization: Bearer <token>" and,
// failing that, from the token cookie.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := auth.Authenticate(c.Request().Context(), extractToken(c))
			if err != nil {
				return err
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(identityKey).(*domain.Identity)
	return id, ok && id != nil && id.UserID() != ""
}

// SetIdentity stores identity in c.
func SetIdentity(c echo.Context, identity *domain.Identity) {
	c.Set(identityKey, identity)
	c.Set(UserIDKey, identity.UserID())
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
