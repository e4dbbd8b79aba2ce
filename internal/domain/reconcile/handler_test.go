package reconcile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sentracare/patient-service/internal/platform/auth"
	"github.com/sentracare/patient-service/internal/platform/booking"
)

func TestHandler_InternalRegister(t *testing.T) {
	svc, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	body := `{"booking_id": 41, "full_name": "Budi Santoso", "email": "budi@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/patients/internal-register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.InternalRegister(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp["patient_id"] != float64(1) {
		t.Errorf("expected patient_id 1, got %v", resp["patient_id"])
	}

	// Repeated delivery returns the same id.
	req = httptest.NewRequest(http.MethodPost, "/patients/internal-register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	if err := h.InternalRegister(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp["patient_id"] != float64(1) {
		t.Errorf("expected same patient_id on repeat, got %v", resp["patient_id"])
	}
}

func TestHandler_InternalRegister_FailureIs500(t *testing.T) {
	svc, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	body := `{"booking_id": 41}`
	req := httptest.NewRequest(http.MethodPost, "/patients/internal-register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.InternalRegister(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err)
	}
}

func TestHandler_SyncFromBooking_ForwardsToken(t *testing.T) {
	client := &mockBookingClient{bookings: []booking.Booking{
		{BookingID: 1, FullName: "A", Email: "a@example.com", DoctorName: "Dr. Siti Rahma"},
	}}
	svc, _ := newTestService(client)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/patients/sync-from-booking", nil)
	req.Header.Set("Authorization", "Bearer caller-token")
	req = req.WithContext(auth.WithClaims(req.Context(), doctorClaims("Dr. Siti Rahma")))
	rec := httptest.NewRecorder()

	if err := h.SyncFromBooking(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.gotToken != "caller-token" {
		t.Errorf("expected bearer token forwarded, got %q", client.gotToken)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp["synced"] != float64(1) {
		t.Errorf("expected 1 synced, got %v", resp["synced"])
	}
}

func TestHandler_SyncFromBooking_UpstreamFailureIs500(t *testing.T) {
	client := &mockBookingClient{err: booking.ErrUnavailable}
	svc, _ := newTestService(client)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/patients/sync-from-booking", nil)
	req.Header.Set("Authorization", "Bearer t")
	req = req.WithContext(auth.WithClaims(req.Context(), adminClaims()))
	rec := httptest.NewRecorder()

	err := h.SyncFromBooking(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err)
	}
}
