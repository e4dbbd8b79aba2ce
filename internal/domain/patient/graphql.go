package patient

import (
	"context"
	"encoding/json"

	"github.com/sentracare/patient-service/internal/platform/dates"
	"github.com/sentracare/patient-service/internal/platform/graphql"
)

// RegisterGraphQL wires the patient queries and mutations into the engine.
// Errors surface in-band through the GraphQL errors array.
func RegisterGraphQL(engine *graphql.Engine, svc *Service) {
	engine.RegisterQuery("patientByEmail", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		email := graphql.ArgString(args, "email")
		if email == "" {
			return nil, ValidationError("email is required")
		}
		return svc.GetPatientViewByEmail(ctx, email)
	})

	engine.RegisterQuery("patientById", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		id, err := graphql.ArgInt64(args, "id")
		if err != nil {
			return nil, err
		}
		return svc.GetPatientView(ctx, id)
	})

	engine.RegisterQuery("patientsByDoctor", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return svc.ListPatientViews(ctx, graphql.ArgString(args, "doctor_email"))
	})

	engine.RegisterQuery("searchPatients", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		q := graphql.ArgString(args, "query")
		if q == "" {
			return nil, ValidationError("query is required")
		}
		return svc.SearchPatientViews(ctx, q, graphql.ArgString(args, "doctor_email"))
	})

	engine.RegisterQuery("patientStats", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return svc.Stats(ctx, graphql.ArgString(args, "doctor_email"))
	})

	engine.RegisterMutation("upsertPatient", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return svc.UpsertPatient(ctx, UpsertPatientInput{
			FullName:    graphql.ArgString(args, "full_name"),
			Email:       graphql.ArgString(args, "email"),
			PhoneNumber: graphql.ArgString(args, "phone_number"),
			Status:      graphql.ArgString(args, "status"),
		})
	})

	engine.RegisterMutation("addMedicalRecord", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		patientID, err := graphql.ArgInt64(args, "patient_id")
		if err != nil {
			return nil, err
		}
		input := graphql.ArgObject(args, "input")
		if input == nil {
			return nil, ValidationError("input is required")
		}

		visitDate, err := dates.ParseVisitDate(stringField(input, "visit_date"))
		if err != nil {
			return nil, ValidationError(err.Error())
		}

		record, err := svc.AddRecord(ctx, AddRecordInput{
			PatientID:      patientID,
			DoctorUsername: stringField(input, "doctor_username"),
			DoctorFullName: stringField(input, "doctor_full_name"),
			VisitDate:      visitDate,
			VisitType:      stringField(input, "visit_type"),
			Diagnosis:      stringField(input, "diagnosis"),
			Treatment:      stringField(input, "treatment"),
			Prescription:   stringField(input, "prescription"),
			VitalSigns:     vitalSignsField(input, "vital_signs"),
			ExtendedData:   objectField(input, "extended_data"),
			PatientStatus:  stringField(input, "status"),
		})
		if err != nil {
			return nil, err
		}
		return projectRecord(record), nil
	})

	engine.RegisterMutation("deleteRecord", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		id, err := graphql.ArgInt64(args, "id")
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteRecord(ctx, id); err != nil {
			return nil, err
		}
		return map[string]interface{}{"deleted": true, "id": id}, nil
	})
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}

func objectField(obj map[string]interface{}, key string) map[string]interface{} {
	m, _ := obj[key].(map[string]interface{})
	return m
}

// vitalSignsField decodes the JSON-typed vital_signs variable into the typed
// sub-object.
func vitalSignsField(obj map[string]interface{}, key string) *VitalSigns {
	m, ok := obj[key].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var vs VitalSigns
	if err := json.Unmarshal(raw, &vs); err != nil {
		return nil
	}
	return &vs
}
