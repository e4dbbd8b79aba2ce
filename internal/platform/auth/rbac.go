package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role is the closed set of role labels this service recognizes. Claim
// strings are converted into this set exactly once at the boundary;
// unrecognized values are rejected as Forbidden rather than passed through.
type Role string

const (
	RoleDoctor     Role = "Dokter"
	RoleSuperAdmin Role = "SuperAdmin"
)

// ParseRole converts an untrusted claim string into a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDoctor:
		return RoleDoctor, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	}
	return "", false
}

// RequireRole returns middleware that rejects requests whose verified claims
// do not carry one of the given roles. It must run after JWTMiddleware; an
// unauthenticated request never reaches the role check.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c.Request().Context())
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			role, ok := ParseRole(claims.Role)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", joinRoles(roles)))
		}
	}
}

func joinRoles(roles []Role) string {
	labels := make([]string, len(roles))
	for i, r := range roles {
		labels[i] = string(r)
	}
	return strings.Join(labels, " or ")
}
