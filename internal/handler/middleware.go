package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmadu/bookshelf/internal/domain"
	"github.com/jmadu/bookshelf/internal/token"
)

const contextKeyClaims = "auth_claims"

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	}
}

// TokenVerifier verifies a raw bearer token into claims.
type TokenVerifier interface {
	VerifyToken(raw string) (token.Claims, error)
}

// Authenticate extracts and verifies the Bearer credential and attaches the
// decoded claims to the request context. The account is not re-fetched:
// the token's claims are authoritative for the request's lifetime. All
// verification failures collapse to 401; the cause is only logged.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return domain.ErrUnauthenticated
			}

			claims, err := verifier.VerifyToken(parts[1])
			if err != nil {
				slog.Debug("token verification failed",
					"cause", err,
					"path", c.Request().URL.Path,
				)
				return domain.ErrUnauthenticated
			}

			c.Set(contextKeyClaims, claims)
			return next(c)
		}
	}
}

// RequireRole rejects requests whose authenticated role does not match.
// It must run after Authenticate; absent claims fail closed.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if claims.Role != role {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// GetClaims extracts the authenticated claims from echo context.
func GetClaims(c echo.Context) (token.Claims, bool) {
	claims, ok := c.Get(contextKeyClaims).(token.Claims)
	return claims, ok
}
