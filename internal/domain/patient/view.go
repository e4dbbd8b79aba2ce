package patient

import (
	"sort"
	"time"

	"github.com/sentracare/patient-service/internal/platform/dates"
)

// ageOf returns the stored age, or an approximation from birth_date when no
// age is stored. The day/365 division is intentionally not calendar-exact.
func ageOf(p *Patient, today time.Time) int {
	if p.Age == 0 && p.BirthDate != nil {
		days := int(today.Sub(*p.BirthDate).Hours() / 24)
		if days < 0 {
			return 0
		}
		return days / 365
	}
	return p.Age
}

// sortRecordsDesc orders records by visit_date descending for presentation,
// newest first, without mutating the input.
func sortRecordsDesc(records []*MedicalRecord) []*MedicalRecord {
	sorted := make([]*MedicalRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VisitDate.After(sorted[j].VisitDate)
	})
	return sorted
}

func projectRecord(m *MedicalRecord) map[string]interface{} {
	result := map[string]interface{}{
		"id":               m.ID,
		"patient_id":       m.PatientID,
		"doctor_username":  m.DoctorUsername,
		"doctor_full_name": m.DoctorFullName,
		"visit_date":       dates.FormatVisitDate(m.VisitDate),
		"visit_type":       m.VisitType,
		"diagnosis":        m.Diagnosis,
		"treatment":        m.Treatment,
		"prescription":     m.Prescription,
		"created_at":       m.CreatedAt.Format(time.RFC3339),
		"updated_at":       m.UpdatedAt.Format(time.RFC3339),
	}
	if m.BookingID != nil {
		result["booking_id"] = *m.BookingID
	}
	if m.VitalSigns != nil {
		result["vital_signs"] = m.VitalSigns
	}
	if m.ExtendedData != nil {
		result["extended_data"] = m.ExtendedData
	}
	return result
}

func projectPrescription(p *Prescription) map[string]interface{} {
	result := map[string]interface{}{
		"id":               p.ID,
		"patient_id":       p.PatientID,
		"doctor_username":  p.DoctorUsername,
		"doctor_full_name": p.DoctorFullName,
		"medicines":        p.Medicines,
		"instructions":     p.Instructions,
		"created_at":       p.CreatedAt.Format(time.RFC3339),
	}
	if p.RecordID != nil {
		result["record_id"] = *p.RecordID
	}
	if p.PrescriptionNumber != nil {
		result["prescription_number"] = *p.PrescriptionNumber
	}
	return result
}

// projectPatient builds the read view of a patient with its nested records
// and computed fields. Prescriptions are included only when the caller loaded
// them (the detail view does, the list view does not).
func projectPatient(p *Patient, records []*MedicalRecord, prescriptions []*Prescription, today time.Time) map[string]interface{} {
	sorted := sortRecordsDesc(records)

	recordViews := make([]map[string]interface{}, 0, len(sorted))
	for _, m := range sorted {
		recordViews = append(recordViews, projectRecord(m))
	}

	result := map[string]interface{}{
		"id":               p.ID,
		"full_name":        p.FullName,
		"email":            p.Email,
		"phone_number":     p.PhoneNumber,
		"status":           p.Status,
		"gender":           p.Gender,
		"age":              ageOf(p, today),
		"address":          p.Address,
		"tipe_layanan":     p.TipeLayanan,
		"jam_pemeriksaan":  p.JamPemeriksaan,
		"doctor_email":     p.DoctorEmail,
		"doctor_full_name": p.DoctorFullName,
		"created_at":       p.CreatedAt.Format(time.RFC3339),
		"records_count":    len(sorted),
		"records":          recordViews,
	}
	if p.BirthDate != nil {
		result["birth_date"] = dates.FormatVisitDate(*p.BirthDate)
	}
	if p.BloodType != nil {
		result["blood_type"] = *p.BloodType
	}
	if p.Allergies != nil {
		result["allergies"] = *p.Allergies
	}
	if p.EmergencyContact != nil {
		result["emergency_contact"] = *p.EmergencyContact
	}
	if p.TanggalPemeriksaan != nil {
		result["tanggal_pemeriksaan"] = dates.FormatVisitDate(*p.TanggalPemeriksaan)
	}
	if p.BookingID != nil {
		result["booking_id"] = *p.BookingID
	}
	if len(sorted) > 0 {
		result["last_visit"] = dates.FormatVisitDate(sorted[0].VisitDate)
	}
	if prescriptions != nil {
		prescriptionViews := make([]map[string]interface{}, 0, len(prescriptions))
		for _, pr := range prescriptions {
			prescriptionViews = append(prescriptionViews, projectPrescription(pr))
		}
		result["prescriptions"] = prescriptionViews
	}
	return result
}

// buildStats aggregates the read-side statistics over a patient set. A
// patient counts toward new_this_month when its most recent record's month
// and year match today's.
func buildStats(patients []*Patient, recordsByPatient map[int64][]*MedicalRecord, today time.Time) map[string]interface{} {
	byStatus := map[string]int{}
	newThisMonth := 0

	for _, p := range patients {
		byStatus[p.Status]++

		records := sortRecordsDesc(recordsByPatient[p.ID])
		if len(records) == 0 {
			continue
		}
		latest := records[0].VisitDate
		if latest.Month() == today.Month() && latest.Year() == today.Year() {
			newThisMonth++
		}
	}

	return map[string]interface{}{
		"total_patients": len(patients),
		"by_status":      byStatus,
		"new_this_month": newThisMonth,
	}
}
