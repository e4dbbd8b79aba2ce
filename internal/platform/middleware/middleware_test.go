package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID_Generates(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequestID()(func(c echo.Context) error {
		rid, _ := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected a generated request id")
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "incoming-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	if got := rec.Header().Get("X-Request-ID"); got != "incoming-id" {
		t.Errorf("expected incoming id to be propagated, got %q", got)
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/patients-list", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := Recovery(logger)(func(c echo.Context) error {
		panic("boom")
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 from recovered panic, got %v", err)
	}
}

func TestLogger_PassesThroughError(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/patients-list", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	wantErr := echo.NewHTTPError(http.StatusNotFound, "patient not found")
	err := Logger(logger)(func(c echo.Context) error {
		return wantErr
	})(c)
	if err != wantErr {
		t.Errorf("expected error to pass through, got %v", err)
	}
}
