package patient

import (
	"context"
	"testing"

	"github.com/sentracare/patient-service/internal/platform/graphql"
)

func newTestEngine(t *testing.T) (*graphql.Engine, *Service) {
	t.Helper()
	svc, _, _, _ := newTestService()
	engine := graphql.NewEngine()
	RegisterGraphQL(engine, svc)
	return engine, svc
}

func TestGraphQL_PatientByEmail(t *testing.T) {
	engine, svc := newTestEngine(t)
	ctx := context.Background()

	p := &Patient{FullName: "Budi Santoso", Email: "budi@example.com", Gender: "Laki-laki"}
	if err := svc.CreatePatient(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := engine.Execute(ctx, graphql.Request{
		Query: `{ patientByEmail(email: "budi@example.com") { id, full_name, status } }`,
	})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	data := resp.Data.(map[string]interface{})["patientByEmail"].(map[string]interface{})
	if data["full_name"] != "Budi Santoso" || data["status"] != StatusActive {
		t.Errorf("unexpected data: %v", data)
	}
	if _, ok := data["email"]; ok {
		t.Error("email was not selected and should be absent")
	}
}

func TestGraphQL_PatientByEmail_NotFound(t *testing.T) {
	engine, _ := newTestEngine(t)
	resp := engine.Execute(context.Background(), graphql.Request{
		Query: `{ patientByEmail(email: "none@example.com") { id } }`,
	})
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "patient not found" {
		t.Errorf("expected in-band not-found error, got %v", resp.Errors)
	}
}

func TestGraphQL_AddMedicalRecordAndDeleteRecord(t *testing.T) {
	engine, svc := newTestEngine(t)
	ctx := context.Background()

	p := &Patient{FullName: "Ani", Email: "ani@example.com"}
	if err := svc.CreatePatient(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := engine.Execute(ctx, graphql.Request{
		Query: `mutation { addMedicalRecord(patient_id: 1, input: $input) { id, diagnosis, visit_date } }`,
		Variables: map[string]interface{}{
			"input": map[string]interface{}{
				"visit_date":       "2025-03-14",
				"diagnosis":        "Hipertensi",
				"doctor_username":  "siti",
				"doctor_full_name": "Dr. Siti Rahma",
				"vital_signs":      map[string]interface{}{"blood_pressure": "140/90"},
			},
		},
	})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	data := resp.Data.(map[string]interface{})["addMedicalRecord"].(map[string]interface{})
	if data["diagnosis"] != "Hipertensi" || data["visit_date"] != "2025-03-14" {
		t.Errorf("unexpected data: %v", data)
	}

	// Malformed date surfaces as an in-band validation error.
	resp = engine.Execute(ctx, graphql.Request{
		Query: `mutation { addMedicalRecord(patient_id: 1, input: $input) { id } }`,
		Variables: map[string]interface{}{
			"input": map[string]interface{}{"visit_date": "14/03/2025"},
		},
	})
	if len(resp.Errors) != 1 {
		t.Fatalf("expected validation error, got %v", resp.Errors)
	}

	resp = engine.Execute(ctx, graphql.Request{
		Query: `mutation { deleteRecord(id: 1) { deleted } }`,
	})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	del := resp.Data.(map[string]interface{})["deleteRecord"].(map[string]interface{})
	if del["deleted"] != true {
		t.Errorf("unexpected delete result: %v", del)
	}

	resp = engine.Execute(ctx, graphql.Request{
		Query: `mutation { deleteRecord(id: 1) { deleted } }`,
	})
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "record not found" {
		t.Errorf("expected not-found on second delete, got %v", resp.Errors)
	}
}

func TestGraphQL_UpsertPatientMutation(t *testing.T) {
	engine, svc := newTestEngine(t)
	ctx := context.Background()

	resp := engine.Execute(ctx, graphql.Request{
		Query: `mutation { upsertPatient(email: "cici@example.com", full_name: "Cici", status: "Active") { id, full_name } }`,
	})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}

	resp = engine.Execute(ctx, graphql.Request{
		Query: `mutation { upsertPatient(email: "cici@example.com", full_name: "Cici Paramida") { id, full_name } }`,
	})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	data := resp.Data.(map[string]interface{})["upsertPatient"].(map[string]interface{})
	if data["full_name"] != "Cici Paramida" {
		t.Errorf("expected overwrite, got %v", data)
	}

	views, err := svc.ListPatientViews(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Errorf("expected one patient after two upserts, got %d", len(views))
	}
}

func TestGraphQL_PatientStats(t *testing.T) {
	engine, svc := newTestEngine(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if err := svc.CreatePatient(ctx, &Patient{FullName: "P", Email: email}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	resp := engine.Execute(ctx, graphql.Request{
		Query: `{ patientStats { total_patients, new_this_month } }`,
	})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	stats := resp.Data.(map[string]interface{})["patientStats"].(map[string]interface{})
	if stats["total_patients"] != 2 {
		t.Errorf("expected total 2, got %v", stats["total_patients"])
	}
	if stats["new_this_month"] != 0 {
		t.Errorf("expected 0 new this month with no records, got %v", stats["new_this_month"])
	}
}
