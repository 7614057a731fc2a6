package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"enotice/internal/auth"
	"enotice/internal/guard"
)

// Casbin enforces the route-guard policy for each request. The subject comes
// from the token claims set by the JWT middleware; without claims the request
// is evaluated as anonymous. The registered route path is the policy object,
// so /api/notices/:id/approve matches as written in the policy.
func Casbin(enforcer *casbin.Enforcer, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := guard.SubjectAnonymous
			if claims, ok := c.Get("user").(*auth.JWTClaims); ok && claims != nil {
				subject = guard.Subject(true, claims.Role == auth.RoleHOD)
			}

			obj := c.Path()
			act := c.Request().Method

			allowed, err := enforcer.Enforce(subject, obj, act)
			if err != nil {
				logger.Error("casbin enforce failed",
					zap.String("subject", subject),
					zap.String("obj", obj),
					zap.String("act", act),
					zap.Error(err),
				)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
			}
			if !allowed {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
			}
			return next(c)
		}
	}
}
