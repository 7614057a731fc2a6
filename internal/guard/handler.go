package guard

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/labstack/echo/v4"

	"enotice/internal/auth"
)

type GuardHandler struct {
	enforcer *casbin.Enforcer
}

func NewGuardHandler(enforcer *casbin.Enforcer) *GuardHandler {
	return &GuardHandler{enforcer: enforcer}
}

// Views reports which client views the current session may reach. Works with
// or without a token; the JWT middleware in optional mode sets claims when a
// valid token is present.
func (h *GuardHandler) Views(c echo.Context) error {
	subject := SubjectAnonymous
	if claims, ok := c.Get("user").(*auth.JWTClaims); ok && claims != nil {
		subject = Subject(true, claims.Role == auth.RoleHOD)
	}

	access, err := Views(h.enforcer, subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Policy evaluation failed"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"subject": subject,
		"views":   access,
	})
}
