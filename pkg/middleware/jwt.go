package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"enotice/internal/auth"
)

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// JWT requires a valid session token and stores its claims under "user".
func JWT(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Token"})
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid Token"})
			}
			c.Set("user", claims)
			return next(c)
		}
	}
}

// OptionalJWT sets claims when a valid token is present but lets anonymous
// requests through. Used by routes whose behavior varies with the session.
func OptionalJWT(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tokenString := bearerToken(c); tokenString != "" {
				if claims, err := tokens.Parse(tokenString); err == nil {
					c.Set("user", claims)
				}
			}
			return next(c)
		}
	}
}
