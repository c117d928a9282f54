package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/willianramosdev-stack/todoApp/internal/utils" // token verification
)

// UserIDKey is the context key under which JWTAuth stores the
// authenticated user's id (a uint64).
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject into the request context. The provided
// secret must be the access token secret; refresh tokens are signed with a
// different one and therefore never pass this check. Protected handlers
// read the identity via c.Get(UserIDKey).
//
// Every failure mode responds 401 with the same generic body: missing
// header, malformed token, wrong signature, expired token or an unusable
// subject claim.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			uid, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}

			c.Set(UserIDKey, uid)
			return next(c)
		}
	}
}
