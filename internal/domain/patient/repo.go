package patient

import (
	"context"
	"errors"
)

// Not-found sentinels returned by the repositories; handlers map them to 404.
var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrRecordNotFound       = errors.New("record not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
)

// ErrEmailExists is returned by the doctor-facing create path when email
// uniqueness is enforced and the address is already registered. This is
// deliberately distinct from reconciliation's silent skip by booking_id.
var ErrEmailExists = errors.New("email already registered")

// ValidationError marks a malformed request field; handlers map it to 422.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// PatientRepository is keyed CRUD + search over patients. Lookups that miss
// return ErrPatientNotFound.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// List returns all patients; when doctorEmail is non-empty only patients
	// assigned to that doctor.
	List(ctx context.Context, doctorEmail string) ([]*Patient, error)
	// Search matches q against full_name and email, with the same optional
	// doctor scoping as List.
	Search(ctx context.Context, q, doctorEmail string) ([]*Patient, error)
}

// RecordRepository is CRUD over medical-visit records.
type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id int64) (*MedicalRecord, error)
	Delete(ctx context.Context, id int64) error
	// ListByPatient returns a patient's records ordered by visit_date
	// descending.
	ListByPatient(ctx context.Context, patientID int64) ([]*MedicalRecord, error)
}

// PrescriptionRepository is CRUD over prescriptions plus the two natural-key
// lookups the upsert path matches on.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	Update(ctx context.Context, p *Prescription) error
	GetByNumber(ctx context.Context, number string) (*Prescription, error)
	GetByRecordAndPatient(ctx context.Context, recordID, patientID int64) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Prescription, error)
}
