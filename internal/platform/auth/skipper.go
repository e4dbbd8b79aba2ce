package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: infrastructure
// endpoints, the trusted-network push-registration endpoint, and the GraphQL
// endpoint consumed by the front-end gateway.
var publicPaths = map[string]bool{
	"/health":                     true,
	"/graphql":                    true,
	"/patients/internal-register": true,
}

// Skipper reports whether the request path should bypass authentication.
// Pass it to JWTMiddleware so public endpoints remain reachable without a
// bearer token.
func Skipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}
