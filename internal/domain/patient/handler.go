package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sentracare/patient-service/internal/platform/auth"
	"github.com/sentracare/patient-service/internal/platform/dates"
	"github.com/sentracare/patient-service/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/patients")

	read := g.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleSuperAdmin))
	read.GET("/patients-list", h.ListPatients)
	read.GET("/:id", h.GetPatient)
	read.POST("", h.CreatePatient)

	doctor := g.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/records", h.CreateRecord)
	doctor.POST("/prescriptions", h.UpsertPrescription)
}

// httpError maps domain errors onto the HTTP taxonomy.
func httpError(err error) error {
	var ve ValidationError
	switch {
	case errors.Is(err, ErrPatientNotFound),
		errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrPrescriptionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmailExists):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ve.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// doctorScope returns the doctor_email filter for list endpoints: doctors see
// only their own patients, admins see everything.
func doctorScope(c echo.Context) string {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return ""
	}
	if role, ok := auth.ParseRole(claims.Role); ok && role == auth.RoleDoctor {
		return claims.Email
	}
	return ""
}

func (h *Handler) ListPatients(c echo.Context) error {
	views, err := h.svc.ListPatientViews(c.Request().Context(), doctorScope(c))
	if err != nil {
		return httpError(err)
	}

	pg := pagination.FromContext(c)
	total := len(views)
	start := pg.Offset
	if start > total {
		start = total
	}
	end := start + pg.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views[start:end], total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.GetPatientView(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

type createPatientRequest struct {
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	PhoneNumber      string  `json:"phone_number"`
	Status           string  `json:"status"`
	Gender           string  `json:"gender"`
	Age              int     `json:"age"`
	BirthDate        string  `json:"birth_date"`
	BloodType        *string `json:"blood_type"`
	Allergies        *string `json:"allergies"`
	EmergencyContact *string `json:"emergency_contact"`
	Address          string  `json:"address"`
	DoctorEmail      string  `json:"doctor_email"`
	DoctorFullName   string  `json:"doctor_full_name"`
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := &Patient{
		FullName:         req.FullName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		Status:           req.Status,
		Gender:           req.Gender,
		Age:              req.Age,
		BloodType:        req.BloodType,
		Allergies:        req.Allergies,
		EmergencyContact: req.EmergencyContact,
		Address:          req.Address,
		DoctorEmail:      req.DoctorEmail,
		DoctorFullName:   req.DoctorFullName,
	}
	if req.BirthDate != "" {
		birthDate, err := dates.ParseVisitDate(req.BirthDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "birth_date must be ISO format YYYY-MM-DD")
		}
		p.BirthDate = &birthDate
	}

	if err := h.svc.CreatePatient(c.Request().Context(), p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

type createRecordRequest struct {
	PatientID    int64                  `json:"patient_id"`
	BookingID    *int64                 `json:"booking_id"`
	VisitDate    string                 `json:"visit_date"`
	VisitType    string                 `json:"visit_type"`
	Diagnosis    string                 `json:"diagnosis"`
	Treatment    string                 `json:"treatment"`
	Prescription string                 `json:"prescription"`
	VitalSigns   *VitalSigns            `json:"vital_signs"`
	ExtendedData map[string]interface{} `json:"extended_data"`
	Status       string                 `json:"status"`
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Doctor-entered dates are validated strictly, unlike the lenient
	// reconciliation path.
	visitDate, err := dates.ParseVisitDate(req.VisitDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	claims := auth.ClaimsFromContext(c.Request().Context())
	record, err := h.svc.AddRecord(c.Request().Context(), AddRecordInput{
		PatientID:      req.PatientID,
		BookingID:      req.BookingID,
		DoctorUsername: claims.Username(),
		DoctorFullName: claims.Name,
		VisitDate:      visitDate,
		VisitType:      req.VisitType,
		Diagnosis:      req.Diagnosis,
		Treatment:      req.Treatment,
		Prescription:   req.Prescription,
		VitalSigns:     req.VitalSigns,
		ExtendedData:   req.ExtendedData,
		PatientStatus:  req.Status,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, record)
}

type upsertPrescriptionRequest struct {
	PatientID          int64      `json:"patient_id"`
	RecordID           *int64     `json:"record_id"`
	PrescriptionNumber *string    `json:"prescription_number"`
	Medicines          []Medicine `json:"medicines"`
	Instructions       string     `json:"instructions"`
}

func (h *Handler) UpsertPrescription(c echo.Context) error {
	var req upsertPrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	claims := auth.ClaimsFromContext(c.Request().Context())
	prescription, err := h.svc.UpsertPrescription(c.Request().Context(), UpsertPrescriptionInput{
		PatientID:          req.PatientID,
		RecordID:           req.RecordID,
		PrescriptionNumber: req.PrescriptionNumber,
		DoctorUsername:     claims.Username(),
		DoctorFullName:     claims.Name,
		Medicines:          req.Medicines,
		Instructions:       req.Instructions,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prescription)
}
