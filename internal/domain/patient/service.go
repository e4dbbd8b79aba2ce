package patient

import (
	"context"
	"errors"
	"time"

	"github.com/sentracare/patient-service/internal/platform/db"
)

// Service implements the patient, record and prescription operations. Every
// write path runs inside one transaction via the TxRunner; read paths have no
// side effects.
type Service struct {
	patients      PatientRepository
	records       RecordRepository
	prescriptions PrescriptionRepository
	tx            db.TxRunner

	// enforceUniqueEmail gates the app-level duplicate-email check on the
	// doctor-facing create path. The storage layer does not enforce it.
	enforceUniqueEmail bool
}

func NewService(patients PatientRepository, records RecordRepository, prescriptions PrescriptionRepository, tx db.TxRunner, enforceUniqueEmail bool) *Service {
	return &Service{
		patients:           patients,
		records:            records,
		prescriptions:      prescriptions,
		tx:                 tx,
		enforceUniqueEmail: enforceUniqueEmail,
	}
}

// CreatePatient is the doctor-facing create path. Unlike reconciliation it
// rejects duplicate emails outright when enforcement is on: two different
// idempotency keys, two different conflict policies.
func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return ValidationError("full_name is required")
	}
	if p.Email == "" {
		return ValidationError("email is required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if s.enforceUniqueEmail {
			if _, err := s.patients.GetByEmail(ctx, p.Email); err == nil {
				return ErrEmailExists
			} else if !errors.Is(err, ErrPatientNotFound) {
				return err
			}
		}
		return s.patients.Create(ctx, p)
	})
}

// GetPatientView returns the detail projection: patient plus nested records
// and prescriptions.
func (s *Service) GetPatientView(ctx context.Context, id int64) (map[string]interface{}, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detailView(ctx, p)
}

// GetPatientViewByEmail is the email-keyed variant of GetPatientView.
func (s *Service) GetPatientViewByEmail(ctx context.Context, email string) (map[string]interface{}, error) {
	p, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.detailView(ctx, p)
}

func (s *Service) detailView(ctx context.Context, p *Patient) (map[string]interface{}, error) {
	records, err := s.records.ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	prescriptions, err := s.prescriptions.ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if prescriptions == nil {
		prescriptions = []*Prescription{}
	}
	return projectPatient(p, records, prescriptions, time.Now()), nil
}

// ListPatientViews returns patients-with-records. A non-empty doctorEmail
// scopes the list to that doctor's own patients.
func (s *Service) ListPatientViews(ctx context.Context, doctorEmail string) ([]map[string]interface{}, error) {
	patients, err := s.patients.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	return s.listViews(ctx, patients)
}

// SearchPatientViews matches q against name and email, with the same doctor
// scoping as ListPatientViews.
func (s *Service) SearchPatientViews(ctx context.Context, q, doctorEmail string) ([]map[string]interface{}, error) {
	patients, err := s.patients.Search(ctx, q, doctorEmail)
	if err != nil {
		return nil, err
	}
	return s.listViews(ctx, patients)
}

func (s *Service) listViews(ctx context.Context, patients []*Patient) ([]map[string]interface{}, error) {
	now := time.Now()
	views := make([]map[string]interface{}, 0, len(patients))
	for _, p := range patients {
		records, err := s.records.ListByPatient(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, projectPatient(p, records, nil, now))
	}
	return views, nil
}

// Stats aggregates patient counts by status and the new-this-month figure
// over the (optionally doctor-scoped) patient set.
func (s *Service) Stats(ctx context.Context, doctorEmail string) (map[string]interface{}, error) {
	patients, err := s.patients.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	recordsByPatient := make(map[int64][]*MedicalRecord, len(patients))
	for _, p := range patients {
		records, err := s.records.ListByPatient(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		recordsByPatient[p.ID] = records
	}
	return buildStats(patients, recordsByPatient, time.Now()), nil
}

// UpsertPatientInput carries the fields the email-keyed upsert may set.
type UpsertPatientInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Status      string
}

// UpsertPatient matches by email: on a hit the name, phone and status are
// overwritten where supplied; on a miss a new patient is created.
func (s *Service) UpsertPatient(ctx context.Context, in UpsertPatientInput) (map[string]interface{}, error) {
	if in.Email == "" {
		return nil, ValidationError("email is required")
	}

	var result *Patient
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.patients.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			if in.FullName != "" {
				existing.FullName = in.FullName
			}
			if in.PhoneNumber != "" {
				existing.PhoneNumber = in.PhoneNumber
			}
			if in.Status != "" {
				existing.Status = in.Status
			}
			result = existing
			return s.patients.Update(ctx, existing)
		case errors.Is(err, ErrPatientNotFound):
			if in.FullName == "" {
				return ValidationError("full_name is required")
			}
			p := &Patient{
				FullName:    in.FullName,
				Email:       in.Email,
				PhoneNumber: in.PhoneNumber,
				Status:      in.Status,
			}
			if p.Status == "" {
				p.Status = StatusActive
			}
			result = p
			return s.patients.Create(ctx, p)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return s.detailView(ctx, result)
}

// AddRecordInput carries a new visit record plus the optional explicit status
// for the parent patient.
type AddRecordInput struct {
	PatientID      int64
	BookingID      *int64
	DoctorUsername string
	DoctorFullName string
	VisitDate      time.Time
	VisitType      string
	Diagnosis      string
	Treatment      string
	Prescription   string
	VitalSigns     *VitalSigns
	ExtendedData   map[string]interface{}
	PatientStatus  string
}

// AddRecord creates a visit record for an existing patient and applies the
// two side effects on the parent row in the same transaction: the status
// moves to "Control" unless an explicit status was supplied, and the cached
// scheduled-visit date advances when the new visit date is more recent.
func (s *Service) AddRecord(ctx context.Context, in AddRecordInput) (*MedicalRecord, error) {
	if in.VisitDate.IsZero() {
		return nil, ValidationError("visit_date is required")
	}

	record := &MedicalRecord{
		PatientID:      in.PatientID,
		BookingID:      in.BookingID,
		DoctorUsername: in.DoctorUsername,
		DoctorFullName: in.DoctorFullName,
		VisitDate:      in.VisitDate,
		VisitType:      in.VisitType,
		Diagnosis:      in.Diagnosis,
		Treatment:      in.Treatment,
		Prescription:   in.Prescription,
		VitalSigns:     in.VitalSigns,
		ExtendedData:   in.ExtendedData,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetByID(ctx, in.PatientID)
		if err != nil {
			return err
		}
		if err := s.records.Create(ctx, record); err != nil {
			return err
		}

		if in.PatientStatus != "" {
			p.Status = in.PatientStatus
		} else {
			p.Status = StatusControl
		}
		if p.TanggalPemeriksaan == nil || in.VisitDate.After(*p.TanggalPemeriksaan) {
			visitDate := in.VisitDate
			p.TanggalPemeriksaan = &visitDate
		}
		return s.patients.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteRecord removes a visit record. Prescriptions referencing it are not
// deleted; the storage layer nulls their record_id.
func (s *Service) DeleteRecord(ctx context.Context, id int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.records.Delete(ctx, id)
	})
}

// UpsertPrescriptionInput carries a prescription upsert request.
type UpsertPrescriptionInput struct {
	PatientID          int64
	RecordID           *int64
	PrescriptionNumber *string
	DoctorUsername     string
	DoctorFullName     string
	Medicines          []Medicine
	Instructions       string
}

// UpsertPrescription matches by prescription_number when supplied, else by
// the (record_id, patient_id) pair when record_id is non-nil. On a match the
// mutable fields are overwritten; otherwise a new row is inserted.
func (s *Service) UpsertPrescription(ctx context.Context, in UpsertPrescriptionInput) (*Prescription, error) {
	if in.PatientID == 0 {
		return nil, ValidationError("patient_id is required")
	}

	var result *Prescription
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.patients.GetByID(ctx, in.PatientID); err != nil {
			return err
		}

		existing, err := s.matchPrescription(ctx, in)
		if err != nil && !errors.Is(err, ErrPrescriptionNotFound) {
			return err
		}

		if existing != nil {
			existing.Medicines = in.Medicines
			existing.Instructions = in.Instructions
			existing.DoctorUsername = in.DoctorUsername
			existing.DoctorFullName = in.DoctorFullName
			if in.RecordID != nil {
				existing.RecordID = in.RecordID
			}
			if in.PrescriptionNumber != nil {
				existing.PrescriptionNumber = in.PrescriptionNumber
			}
			result = existing
			return s.prescriptions.Update(ctx, existing)
		}

		result = &Prescription{
			PatientID:          in.PatientID,
			RecordID:           in.RecordID,
			PrescriptionNumber: in.PrescriptionNumber,
			DoctorUsername:     in.DoctorUsername,
			DoctorFullName:     in.DoctorFullName,
			Medicines:          in.Medicines,
			Instructions:       in.Instructions,
		}
		return s.prescriptions.Create(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) matchPrescription(ctx context.Context, in UpsertPrescriptionInput) (*Prescription, error) {
	if in.PrescriptionNumber != nil && *in.PrescriptionNumber != "" {
		return s.prescriptions.GetByNumber(ctx, *in.PrescriptionNumber)
	}
	if in.RecordID != nil {
		return s.prescriptions.GetByRecordAndPatient(ctx, *in.RecordID, in.PatientID)
	}
	return nil, ErrPrescriptionNotFound
}
