package patient

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAgeOf(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	stored := &Patient{Age: 42}
	if got := ageOf(stored, today); got != 42 {
		t.Errorf("expected stored age 42, got %d", got)
	}

	birth := time.Date(1990, 6, 20, 0, 0, 0, 0, time.UTC)
	computed := &Patient{BirthDate: &birth}
	// 12779 days / 365 = 35 by the deliberate approximation, even though the
	// 35th birthday is five days away.
	if got := ageOf(computed, today); got != 35 {
		t.Errorf("expected approximated age 35, got %d", got)
	}

	neither := &Patient{}
	if got := ageOf(neither, today); got != 0 {
		t.Errorf("expected 0 with no age source, got %d", got)
	}
}

func TestProjectPatient_LastVisitAndCount(t *testing.T) {
	now := time.Now()
	p := &Patient{ID: 1, FullName: "Budi", Email: "budi@example.com", Status: StatusActive}
	records := []*MedicalRecord{
		{ID: 1, PatientID: 1, VisitDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{ID: 2, PatientID: 1, VisitDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: 3, PatientID: 1, VisitDate: time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)},
	}

	view := projectPatient(p, records, nil, now)

	if view["last_visit"] != "2025-03-02" {
		t.Errorf("expected last_visit 2025-03-02, got %v", view["last_visit"])
	}
	if view["records_count"] != 3 {
		t.Errorf("expected records_count 3, got %v", view["records_count"])
	}

	views := view["records"].([]map[string]interface{})
	if views[0]["id"] != int64(2) || views[2]["id"] != int64(3) {
		t.Errorf("expected records sorted by visit_date descending, got order %v %v %v",
			views[0]["id"], views[1]["id"], views[2]["id"])
	}
	if _, ok := view["prescriptions"]; ok {
		t.Error("list view should not include prescriptions")
	}
}

func TestProjectPatient_NoRecords(t *testing.T) {
	view := projectPatient(&Patient{ID: 5, FullName: "X"}, nil, []*Prescription{}, time.Now())
	if _, ok := view["last_visit"]; ok {
		t.Error("expected last_visit absent with no records")
	}
	if view["records_count"] != 0 {
		t.Errorf("expected records_count 0, got %v", view["records_count"])
	}
	if _, ok := view["prescriptions"]; !ok {
		t.Error("detail view should include prescriptions even when empty")
	}
}

func TestVitalSigns_RoundTripThroughProjection(t *testing.T) {
	vs := &VitalSigns{
		BloodPressure: "120/80",
		HeartRate:     "72",
		Temperature:   "36.6",
		Weight:        "68",
		Height:        "172",
	}
	record := &MedicalRecord{ID: 1, PatientID: 1, VisitDate: time.Now(), VitalSigns: vs}

	raw, err := json.Marshal(projectRecord(record))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded struct {
		VitalSigns VitalSigns `json:"vital_signs"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.VitalSigns != *vs {
		t.Errorf("vital signs lost fields through projection: %+v", decoded.VitalSigns)
	}
}

func TestBuildStats_NewThisMonth(t *testing.T) {
	today := time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC)

	patients := []*Patient{
		{ID: 1, Status: StatusActive},
		{ID: 2, Status: StatusControl},
		{ID: 3, Status: StatusActive},
		{ID: 4, Status: "Follow-up"},
	}
	recordsByPatient := map[int64][]*MedicalRecord{
		// Most recent record in the current month: counts.
		1: {
			{VisitDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{VisitDate: time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)},
		},
		// Most recent record in a prior month: does not count.
		2: {{VisitDate: time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)}},
		// Same month, previous year: does not count.
		3: {{VisitDate: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)}},
		// No records: does not count.
	}

	stats := buildStats(patients, recordsByPatient, today)

	if stats["total_patients"] != 4 {
		t.Errorf("expected total 4, got %v", stats["total_patients"])
	}
	if stats["new_this_month"] != 1 {
		t.Errorf("expected new_this_month 1, got %v", stats["new_this_month"])
	}
	byStatus := stats["by_status"].(map[string]int)
	if byStatus[StatusActive] != 2 || byStatus[StatusControl] != 1 || byStatus["Follow-up"] != 1 {
		t.Errorf("unexpected by_status: %v", byStatus)
	}
}
