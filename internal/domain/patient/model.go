// Package patient holds the patient, medical-record and prescription entities
// and the read projections built on top of them. The three entities live in
// one package because records and prescriptions are never addressed outside
// the context of their owning patient.
package patient

import (
	"time"
)

// StatusActive is forced onto every patient created through reconciliation.
// StatusControl is applied when a visit record is added with no explicit
// patient status.
const (
	StatusActive  = "Active"
	StatusControl = "Control"
)

// Patient maps to the patients table. Status is a free-form lifecycle label
// (Active / Follow-up / Control / ...). BookingID links a patient to the
// external booking system; it carries a unique index, which is the real
// safety net for concurrent reconciliation.
type Patient struct {
	ID                 int64      `db:"id" json:"id"`
	FullName           string     `db:"full_name" json:"full_name"`
	Email              string     `db:"email" json:"email"`
	PhoneNumber        string     `db:"phone_number" json:"phone_number"`
	Status             string     `db:"status" json:"status"`
	Gender             string     `db:"gender" json:"gender"`
	Age                int        `db:"age" json:"age"`
	BirthDate          *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	BloodType          *string    `db:"blood_type" json:"blood_type,omitempty"`
	Allergies          *string    `db:"allergies" json:"allergies,omitempty"`
	EmergencyContact   *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	Address            string     `db:"address" json:"address"`
	TipeLayanan        string     `db:"tipe_layanan" json:"tipe_layanan"`
	TanggalPemeriksaan *time.Time `db:"tanggal_pemeriksaan" json:"tanggal_pemeriksaan,omitempty"`
	JamPemeriksaan     string     `db:"jam_pemeriksaan" json:"jam_pemeriksaan"`
	BookingID          *int64     `db:"booking_id" json:"booking_id,omitempty"`
	DoctorEmail        string     `db:"doctor_email" json:"doctor_email"`
	DoctorFullName     string     `db:"doctor_full_name" json:"doctor_full_name"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// VitalSigns is the optional vitals sub-object on a medical record, stored as
// JSONB. All fields are free-form strings as entered by the doctor.
type VitalSigns struct {
	BloodPressure string `json:"blood_pressure,omitempty"`
	HeartRate     string `json:"heart_rate,omitempty"`
	Temperature   string `json:"temperature,omitempty"`
	Weight        string `json:"weight,omitempty"`
	Height        string `json:"height,omitempty"`
}

// MedicalRecord maps to the medical_records table. A record belongs to
// exactly one patient and is created only by doctor actions, never by
// reconciliation. Prescription is the legacy free-text field superseded by
// the Prescription entity.
type MedicalRecord struct {
	ID             int64                  `db:"id" json:"id"`
	PatientID      int64                  `db:"patient_id" json:"patient_id"`
	BookingID      *int64                 `db:"booking_id" json:"booking_id,omitempty"`
	DoctorUsername string                 `db:"doctor_username" json:"doctor_username"`
	DoctorFullName string                 `db:"doctor_full_name" json:"doctor_full_name"`
	VisitDate      time.Time              `db:"visit_date" json:"visit_date"`
	VisitType      string                 `db:"visit_type" json:"visit_type"`
	Diagnosis      string                 `db:"diagnosis" json:"diagnosis"`
	Treatment      string                 `db:"treatment" json:"treatment"`
	Prescription   string                 `db:"prescription" json:"prescription"`
	VitalSigns     *VitalSigns            `db:"vital_signs" json:"vital_signs,omitempty"`
	ExtendedData   map[string]interface{} `db:"extended_data" json:"extended_data,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time              `db:"updated_at" json:"updated_at"`
}

// Medicine is one entry in a prescription's ordered medicine list, stored as
// JSONB.
type Medicine struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Prescription maps to the prescriptions table. RecordID is optional and is
// set to NULL when the referenced record is deleted; prescriptions do not
// cascade with either the record or the patient's records.
type Prescription struct {
	ID                 int64      `db:"id" json:"id"`
	PatientID          int64      `db:"patient_id" json:"patient_id"`
	RecordID           *int64     `db:"record_id" json:"record_id,omitempty"`
	PrescriptionNumber *string    `db:"prescription_number" json:"prescription_number,omitempty"`
	DoctorUsername     string     `db:"doctor_username" json:"doctor_username"`
	DoctorFullName     string     `db:"doctor_full_name" json:"doctor_full_name"`
	Medicines          []Medicine `db:"medicines" json:"medicines"`
	Instructions       string     `db:"instructions" json:"instructions"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}
