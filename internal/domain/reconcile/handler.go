package reconcile

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sentracare/patient-service/internal/platform/auth"
	"github.com/sentracare/patient-service/internal/platform/booking"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/patients")
	// internal-register is delivered over the trusted network and carries no
	// token; the auth skipper exempts it.
	g.POST("/internal-register", h.InternalRegister)
	g.POST("/sync-from-booking", h.SyncFromBooking,
		auth.RequireRole(auth.RoleDoctor, auth.RoleSuperAdmin))
}

func (h *Handler) InternalRegister(c echo.Context) error {
	var payload booking.Booking
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	patientID, err := h.svc.RegisterFromBooking(c.Request().Context(), payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "patient registered",
		"patient_id": patientID,
	})
}

func (h *Handler) SyncFromBooking(c echo.Context) error {
	token, err := auth.BearerToken(c)
	if err != nil {
		return err
	}
	claims := auth.ClaimsFromContext(c.Request().Context())

	created, err := h.svc.SyncFromBooking(c.Request().Context(), token, claims)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d patients synced from booking", created),
		"synced":  created,
	})
}
