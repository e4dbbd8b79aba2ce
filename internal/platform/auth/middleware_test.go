package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testCfg = JWTConfig{
	SecretKey: "test-secret",
	Algorithm: "HS256",
	Audience:  "sentracare-users",
	Issuer:    "sentracare-auth",
}

func signToken(t *testing.T, cfg JWTConfig, mutate func(*Claims)) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dr.siti",
			Audience:  jwt.ClaimStrings{cfg.Audience},
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:  "Dokter",
		Name:  "Dr. Siti Rahma",
		Email: "siti@sentracare.id",
	}
	if mutate != nil {
		mutate(claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SecretKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifyToken_Valid(t *testing.T) {
	claims, err := VerifyToken(signToken(t, testCfg, nil), testCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Username() != "dr.siti" {
		t.Errorf("expected subject dr.siti, got %s", claims.Username())
	}
	if claims.Role != "Dokter" {
		t.Errorf("expected role Dokter, got %s", claims.Role)
	}
	if claims.Name != "Dr. Siti Rahma" {
		t.Errorf("expected display name, got %s", claims.Name)
	}
}

func TestVerifyToken_AllFailuresLookAlike(t *testing.T) {
	badSig := signToken(t, JWTConfig{SecretKey: "other", Algorithm: "HS256",
		Audience: testCfg.Audience, Issuer: testCfg.Issuer}, nil)
	expired := signToken(t, testCfg, func(c *Claims) {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	})
	wrongAud := signToken(t, testCfg, func(c *Claims) {
		c.Audience = jwt.ClaimStrings{"other-audience"}
	})
	wrongIss := signToken(t, testCfg, func(c *Claims) {
		c.Issuer = "other-issuer"
	})

	var messages []string
	for name, token := range map[string]string{
		"bad signature":  badSig,
		"expired":        expired,
		"wrong audience": wrongAud,
		"wrong issuer":   wrongIss,
		"garbage":        "not.a.token",
	} {
		_, err := VerifyToken(token, testCfg)
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %v", name, err)
			continue
		}
		messages = append(messages, he.Message.(string))
	}

	// The verifier must not leak which check failed.
	for _, m := range messages {
		if m != "invalid token" {
			t.Errorf("error message leaks failure cause: %q", m)
		}
	}
}

func TestJWTMiddleware_SetsClaims(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/patients-list", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testCfg, nil))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTMiddleware(testCfg, nil)
	err := mw(func(c echo.Context) error {
		claims := ClaimsFromContext(c.Request().Context())
		if claims == nil {
			t.Fatal("expected claims in context")
		}
		if claims.Email != "siti@sentracare.id" {
			t.Errorf("unexpected email claim: %s", claims.Email)
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/patients-list", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(testCfg, nil)
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_Skipper(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/health")

	mw := JWTMiddleware(testCfg, Skipper)
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to run without a token on a public path")
	}
}

func TestBearerToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/patients/sync-from-booking", nil)
	req.Header.Set("Authorization", "Bearer raw-token-value")
	c := e.NewContext(req, httptest.NewRecorder())

	token, err := BearerToken(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "raw-token-value" {
		t.Errorf("expected raw token, got %q", token)
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, err := BearerToken(c); err == nil {
		t.Error("expected error for non-bearer scheme")
	}
}
