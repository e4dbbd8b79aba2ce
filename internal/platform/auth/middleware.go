package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// Claims is the verified set of assertions extracted from a bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Username returns the token subject.
func (c *Claims) Username() string { return c.Subject }

// JWTConfig configures the claim verifier. The signing key is a shared HMAC
// secret; Algorithm pins the accepted signing method.
type JWTConfig struct {
	SecretKey string
	Algorithm string
	Audience  string
	Issuer    string
}

// VerifyToken validates the token signature, algorithm, audience, issuer and
// expiry, and returns the extracted claims. All failure causes collapse into a
// single error so callers cannot distinguish a bad signature from an expired
// token.
func VerifyToken(tokenStr string, cfg JWTConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.SecretKey), nil
		},
		jwt.WithValidMethods([]string{cfg.Algorithm}),
		jwt.WithAudience(cfg.Audience),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return claims, nil
}

// JWTMiddleware verifies the Authorization bearer token on every request and
// stores the claims in the request context. Paths accepted by skipper bypass
// verification entirely.
func JWTMiddleware(cfg JWTConfig, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			tokenStr, err := BearerToken(c)
			if err != nil {
				return err
			}

			claims, err := VerifyToken(tokenStr, cfg)
			if err != nil {
				return err
			}

			ctx := context.WithValue(c.Request().Context(), claimsKey, claims)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// BearerToken extracts the raw bearer token from the Authorization header.
// The sync endpoint uses this to forward the caller's token upstream.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return parts[1], nil
}

// ClaimsFromContext retrieves the verified claims, or nil when the request was
// not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// WithClaims returns a context carrying the given claims. Used by tests and by
// the GraphQL gateway.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
