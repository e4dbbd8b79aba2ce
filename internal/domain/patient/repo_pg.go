package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentracare/patient-service/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, full_name, email, phone_number, status, gender, age, birth_date,
	blood_type, allergies, emergency_contact, address,
	tipe_layanan, tanggal_pemeriksaan, jam_pemeriksaan, booking_id,
	doctor_email, doctor_full_name, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.PhoneNumber, &p.Status, &p.Gender, &p.Age, &p.BirthDate,
		&p.BloodType, &p.Allergies, &p.EmergencyContact, &p.Address,
		&p.TipeLayanan, &p.TanggalPemeriksaan, &p.JamPemeriksaan, &p.BookingID,
		&p.DoctorEmail, &p.DoctorFullName, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (full_name, email, phone_number, status, gender, age, birth_date,
			blood_type, allergies, emergency_contact, address,
			tipe_layanan, tanggal_pemeriksaan, jam_pemeriksaan, booking_id,
			doctor_email, doctor_full_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at`,
		p.FullName, p.Email, p.PhoneNumber, p.Status, p.Gender, p.Age, p.BirthDate,
		p.BloodType, p.Allergies, p.EmergencyContact, p.Address,
		p.TipeLayanan, p.TanggalPemeriksaan, p.JamPemeriksaan, p.BookingID,
		p.DoctorEmail, p.DoctorFullName).Scan(&p.ID, &p.CreatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE email = $1 ORDER BY id LIMIT 1`, email))
}

func (r *patientRepoPG) GetByBookingID(ctx context.Context, bookingID int64) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE booking_id = $1`, bookingID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET full_name=$2, email=$3, phone_number=$4, status=$5, gender=$6,
			age=$7, birth_date=$8, blood_type=$9, allergies=$10, emergency_contact=$11,
			address=$12, tipe_layanan=$13, tanggal_pemeriksaan=$14, jam_pemeriksaan=$15,
			doctor_email=$16, doctor_full_name=$17
		WHERE id = $1`,
		p.ID, p.FullName, p.Email, p.PhoneNumber, p.Status, p.Gender,
		p.Age, p.BirthDate, p.BloodType, p.Allergies, p.EmergencyContact,
		p.Address, p.TipeLayanan, p.TanggalPemeriksaan, p.JamPemeriksaan,
		p.DoctorEmail, p.DoctorFullName)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, doctorEmail string) ([]*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients`
	var args []interface{}
	if doctorEmail != "" {
		query += ` WHERE doctor_email = $1`
		args = append(args, doctorEmail)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryPatients(ctx, query, args...)
}

func (r *patientRepoPG) Search(ctx context.Context, q, doctorEmail string) ([]*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE (full_name ILIKE $1 OR email ILIKE $1)`
	args := []interface{}{"%" + q + "%"}
	if doctorEmail != "" {
		query += fmt.Sprintf(` AND doctor_email = $%d`, len(args)+1)
		args = append(args, doctorEmail)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryPatients(ctx, query, args...)
}

func (r *patientRepoPG) queryPatients(ctx context.Context, query string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// =========== Record Repository ===========

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository { return &recordRepoPG{pool: pool} }

func (r *recordRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, patient_id, booking_id, doctor_username, doctor_full_name,
	visit_date, visit_type, diagnosis, treatment, prescription,
	vital_signs, extended_data, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.BookingID, &m.DoctorUsername, &m.DoctorFullName,
		&m.VisitDate, &m.VisitType, &m.Diagnosis, &m.Treatment, &m.Prescription,
		&m.VitalSigns, &m.ExtendedData, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return &m, err
}

func (r *recordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_records (patient_id, booking_id, doctor_username, doctor_full_name,
			visit_date, visit_type, diagnosis, treatment, prescription, vital_signs, extended_data)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at`,
		m.PatientID, m.BookingID, m.DoctorUsername, m.DoctorFullName,
		m.VisitDate, m.VisitType, m.Diagnosis, m.Treatment, m.Prescription,
		m.VitalSigns, m.ExtendedData).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *recordRepoPG) GetByID(ctx context.Context, id int64) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *recordRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE patient_id = $1 ORDER BY visit_date DESC, id DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// =========== Prescription Repository ===========

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const prescriptionCols = `id, patient_id, record_id, prescription_number,
	doctor_username, doctor_full_name, medicines, instructions, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.RecordID, &p.PrescriptionNumber,
		&p.DoctorUsername, &p.DoctorFullName, &p.Medicines, &p.Instructions, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPrescriptionNotFound
	}
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (patient_id, record_id, prescription_number,
			doctor_username, doctor_full_name, medicines, instructions)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`,
		p.PatientID, p.RecordID, p.PrescriptionNumber,
		p.DoctorUsername, p.DoctorFullName, p.Medicines, p.Instructions).Scan(&p.ID, &p.CreatedAt)
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET record_id=$2, prescription_number=$3,
			doctor_username=$4, doctor_full_name=$5, medicines=$6, instructions=$7
		WHERE id = $1`,
		p.ID, p.RecordID, p.PrescriptionNumber,
		p.DoctorUsername, p.DoctorFullName, p.Medicines, p.Instructions)
	return err
}

func (r *prescriptionRepoPG) GetByNumber(ctx context.Context, number string) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE prescription_number = $1`, number))
}

func (r *prescriptionRepoPG) GetByRecordAndPatient(ctx context.Context, recordID, patientID int64) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE record_id = $1 AND patient_id = $2`,
		recordID, patientID))
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE patient_id = $1 ORDER BY created_at DESC, id DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
