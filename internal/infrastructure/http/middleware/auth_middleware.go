package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/johnquangdev/practice-scoring/errors"
	"github.com/johnquangdev/practice-scoring/pkg/jwt"
)

// ContextKeyUserID is the Echo context key holding the caller's uuid.UUID
const ContextKeyUserID = "user_id"

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that validates the bearer token and
// sets "user_id" (uuid.UUID) into the Echo context. Failures are returned as
// AppError so the router's error handler renders them like any other error.
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return apperrors.ErrUnauthenticated()
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpired) {
					return apperrors.ErrTokenExpired()
				}
				return apperrors.ErrInvalidToken()
			}

			userID, err := claims.UserID()
			if err != nil {
				return apperrors.ErrInvalidToken()
			}

			c.Set(ContextKeyUserID, userID)
			return next(c)
		}
	}
}

// extractToken reads the Authorization header, falling back to the access_token cookie
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
